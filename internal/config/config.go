package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string
	HTTPAddr string
	Timezone string

	DatabaseURL string
	RedisURL    string
	JWTSecret   string

	LogLevel  string
	LogFormat string

	Gemini GeminiConfig
	R2     R2Config
	Sweep  SweepConfig
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type R2Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

type SweepConfig struct {
	Interval  time.Duration
	DaysAhead int
}

// Load reads .env outside production, then resolves everything through
// viper so defaults and environment share one lookup path.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app_env", "development")
	if v.GetString("app_env") != "production" {
		_ = godotenv.Load()
	}

	setDefaults(v)

	return &Config{
		AppEnv:      v.GetString("app_env"),
		HTTPAddr:    v.GetString("http_addr"),
		Timezone:    v.GetString("timezone"),
		DatabaseURL: v.GetString("database_url"),
		RedisURL:    v.GetString("redis_url"),
		JWTSecret:   v.GetString("jwt_secret"),
		LogLevel:    v.GetString("log_level"),
		LogFormat:   v.GetString("log_format"),
		Gemini: GeminiConfig{
			APIKey:  v.GetString("gemini_api_key"),
			Model:   v.GetString("gemini_model"),
			BaseURL: v.GetString("gemini_base_url"),
			Timeout: v.GetDuration("gemini_timeout"),
		},
		R2: R2Config{
			Endpoint:      v.GetString("r2_endpoint"),
			AccessKey:     v.GetString("r2_access_key"),
			SecretKey:     v.GetString("r2_secret_key"),
			Bucket:        v.GetString("r2_bucket_name"),
			PublicBaseURL: v.GetString("r2_public_base_url"),
		},
		Sweep: SweepConfig{
			Interval:  v.GetDuration("expiry_sweep_interval"),
			DaysAhead: v.GetInt("expiry_sweep_days_ahead"),
		},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8000")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("gemini_model", "gemini-1.5-flash")
	v.SetDefault("gemini_base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini_timeout", 60*time.Second)
	v.SetDefault("expiry_sweep_interval", 24*time.Hour)
	v.SetDefault("expiry_sweep_days_ahead", 1)
}

// Required lists the keys each binary refuses to start without.
var (
	RequiredAPI = []string{
		"JWT_SECRET",
		"DATABASE_URL",
		"REDIS_URL",
		"GEMINI_API_KEY",
		"R2_ACCESS_KEY",
		"R2_SECRET_KEY",
		"R2_BUCKET_NAME",
		"R2_ENDPOINT",
		"R2_PUBLIC_BASE_URL",
	}
	RequiredWorker = []string{"DATABASE_URL"}
)

// Validate reports every required key that resolved to an empty value.
func (c *Config) Validate(required []string) error {
	values := map[string]string{
		"JWT_SECRET":         c.JWTSecret,
		"DATABASE_URL":       c.DatabaseURL,
		"REDIS_URL":          c.RedisURL,
		"GEMINI_API_KEY":     c.Gemini.APIKey,
		"GEMINI_MODEL":       c.Gemini.Model,
		"R2_ACCESS_KEY":      c.R2.AccessKey,
		"R2_SECRET_KEY":      c.R2.SecretKey,
		"R2_BUCKET_NAME":     c.R2.Bucket,
		"R2_ENDPOINT":        c.R2.Endpoint,
		"R2_PUBLIC_BASE_URL": c.R2.PublicBaseURL,
	}

	var errs []error
	for _, k := range required {
		if values[k] == "" {
			errs = append(errs, fmt.Errorf("missing env var: %s", k))
		}
	}
	return errors.Join(errs...)
}

// Location resolves Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
