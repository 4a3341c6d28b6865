package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rshashank20/foodexpiry-tracker/internal/config"
	"github.com/rshashank20/foodexpiry-tracker/internal/expiry"
	"github.com/rshashank20/foodexpiry-tracker/internal/inventory"
	"github.com/rshashank20/foodexpiry-tracker/internal/platform/logging"
)

var (
	ErrMissingAPIKey    = errors.New("missing GEMINI_API_KEY")
	ErrMissingModel     = errors.New("missing GEMINI_MODEL")
	ErrEmptyImage       = errors.New("empty image")
	ErrPermissionDenied = errors.New("generative language API is not enabled for this key")
)

// GeminiClient sends receipt and label photos to the Gemini
// generateContent endpoint and parses the reply into raw items.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	loc     *time.Location
	now     func() time.Time
	log     logging.Logger
}

type Option func(*GeminiClient)

func WithHTTPClient(c *http.Client) Option { return func(g *GeminiClient) { g.http = c } }

func WithClock(now func() time.Time) Option { return func(g *GeminiClient) { g.now = now } }

func WithLocation(loc *time.Location) Option { return func(g *GeminiClient) { g.loc = loc } }

func WithLogger(l logging.Logger) Option { return func(g *GeminiClient) { g.log = l } }

func NewGeminiClient(cfg config.GeminiConfig, opts ...Option) *GeminiClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	g := &GeminiClient{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		loc:     time.UTC,
		now:     time.Now,
		log:     logging.NewNopLogger(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateRequest struct {
	Contents []struct {
		Parts []part `json:"parts"`
	} `json:"contents"`
	GenerationConfig map[string]any `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Extract returns the items visible in image. The model's text is handed to
// ParseResponse, so a reachable but confused model still yields at least a
// placeholder item.
func (g *GeminiClient) Extract(ctx context.Context, image []byte, mimeType string) ([]inventory.RawItem, error) {
	if g.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if g.model == "" {
		return nil, ErrMissingModel
	}
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	text, err := g.generate(ctx, image, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to extract food items from image: %w", err)
	}

	items := ParseResponse(text, expiry.Today(g.now(), g.loc))
	g.log.Info("gemini extraction complete", logging.Int("items", len(items)))
	return items, nil
}

func (g *GeminiClient) generate(ctx context.Context, image []byte, mimeType string) (string, error) {
	var payload generateRequest
	payload.Contents = make([]struct {
		Parts []part `json:"parts"`
	}, 1)
	payload.Contents[0].Parts = []part{
		{Text: BuildPrompt()},
		{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
	}
	payload.GenerationConfig = map[string]any{
		"temperature":     0.2,
		"maxOutputTokens": 2048,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	g.log.Debug("gemini raw response",
		logging.Int("status", resp.StatusCode),
		logging.Int("bytes", len(raw)),
	)

	if resp.StatusCode == http.StatusForbidden || bytes.Contains(raw, []byte("PERMISSION_DENIED")) {
		return "", ErrPermissionDenied
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini api error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var result generateResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("gemini api error: %s", result.Error.Message)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		g.log.Warn("gemini returned no candidates")
		return "", nil
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}
