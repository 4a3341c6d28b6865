package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rshashank20/foodexpiry-tracker/internal/auth"
	"github.com/rshashank20/foodexpiry-tracker/internal/config"
	"github.com/rshashank20/foodexpiry-tracker/internal/db"
	"github.com/rshashank20/foodexpiry-tracker/internal/extract"
	"github.com/rshashank20/foodexpiry-tracker/internal/inventory"
	"github.com/rshashank20/foodexpiry-tracker/internal/kv"
	"github.com/rshashank20/foodexpiry-tracker/internal/notify"
	"github.com/rshashank20/foodexpiry-tracker/internal/platform/logging"
	"github.com/rshashank20/foodexpiry-tracker/internal/platform/metrics"
	"github.com/rshashank20/foodexpiry-tracker/internal/router"
	"github.com/rshashank20/foodexpiry-tracker/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ───────────────────────── ENV ─────────────────────────
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		panic(err)
	}
	logging.SetDefault(log)

	if err := cfg.Validate(config.RequiredAPI); err != nil {
		log.Fatal("invalid configuration", logging.Err(err))
	}
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	loc := cfg.Location()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// ───────────────────────── DB ─────────────────────────
	pgDB, err := db.ConnectPostgres(ctx, cfg.DatabaseURL, log.Named("db"))
	if err != nil {
		log.Fatal("postgres init failed", logging.Err(err))
	}
	defer pgDB.Close()

	store, err := kv.NewRedisStore(ctx, cfg.RedisURL, kv.WithPrefix("pantry:"))
	if err != nil {
		log.Fatal("redis init failed", logging.Err(err))
	}
	defer store.Close()

	// ───────────────────────── STORAGE ─────────────────────────
	r2Client, err := storage.NewR2Client(ctx, cfg.R2)
	if err != nil {
		log.Fatal("r2 init failed", logging.Err(err))
	}

	// ───────────────────────── SERVICES ─────────────────────────
	gemini := extract.NewGeminiClient(cfg.Gemini,
		extract.WithLocation(loc),
		extract.WithLogger(log.Named("gemini")),
	)

	inventoryService := inventory.NewService(
		inventory.NewPostgresRepository(pgDB),
		r2Client,
		gemini,
		inventory.WithLocation(loc),
		inventory.WithLogger(log.Named("inventory")),
		inventory.WithMetrics(m),
	)

	inbox := notify.NewInbox(store, notify.WithInboxLogger(log.Named("inbox")))
	settings := notify.NewSettingsStore(store)
	generator := notify.NewGenerator(inventoryService, settings, inbox,
		notify.WithLocation(loc),
		notify.WithLogger(log.Named("notify")),
		notify.WithMetrics(m),
	)

	tokens, err := auth.NewTokens(cfg.JWTSecret)
	if err != nil {
		log.Fatal("auth init failed", logging.Err(err))
	}

	// ───────────────────────── ROUTER ─────────────────────────
	r := router.NewRouter(router.Deps{
		Tokens:    tokens,
		Inventory: inventory.NewHandler(inventoryService),
		Notify:    notify.NewHandler(inbox, generator, settings),
		Metrics:   m,
		Logger:    log.Named("http"),
		Checks: map[string]router.HealthCheck{
			"postgres": pgDB.Ping,
			"redis":    store.Health,
		},
	})

	// ───────────────────────── START ─────────────────────────
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("api listening", logging.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", logging.Err(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", logging.Err(err))
	}
}
