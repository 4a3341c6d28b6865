package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshashank20/foodexpiry-tracker/internal/auth"
	"github.com/rshashank20/foodexpiry-tracker/internal/inventory"
	"github.com/rshashank20/foodexpiry-tracker/internal/kv"
	"github.com/rshashank20/foodexpiry-tracker/internal/notify"
	"github.com/rshashank20/foodexpiry-tracker/internal/platform/metrics"
)

func newTestDeps(t *testing.T) (Deps, *auth.Tokens) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokens("router-test-secret")
	require.NoError(t, err)

	clock := inventory.WithClock(func() time.Time { return time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC) })
	items := inventory.NewService(inventory.NewMemoryRepository(), nil, nil, clock)
	store := kv.NewMemoryStore()
	inbox := notify.NewInbox(store)
	settings := notify.NewSettingsStore(store)

	return Deps{
		Tokens:    tokens,
		Inventory: inventory.NewHandler(items),
		Notify:    notify.NewHandler(inbox, notify.NewGenerator(items, settings, inbox), settings),
		Metrics:   metrics.New(prometheus.NewRegistry()),
	}, tokens
}

func TestHealthCheck(t *testing.T) {
	d, _ := newTestDeps(t)
	r := NewRouter(d)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthCheck_Degraded(t *testing.T) {
	d, _ := newTestDeps(t)
	d.Checks = map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}
	r := NewRouter(d)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"degraded","dependencies":{"postgres":"ok","redis":"connection refused"}}`, w.Body.String())
}

func TestProtectedRoutes(t *testing.T) {
	d, tokens := newTestDeps(t)
	r := NewRouter(d)

	for _, p := range []string{"/inventory/items", "/notifications", "/settings/notifications"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, p)
	}

	token, err := tokens.Generate("u1", "")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/inventory/items",
		strings.NewReader(`{"items":[{"raw_name":"Milk","raw_expiry":"2025-01-11"}]}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/notifications/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Milk expires tomorrow")
}

func TestMetricsEndpoint(t *testing.T) {
	d, _ := newTestDeps(t)
	d.Metrics.ItemAnnotated("fresh")
	r := NewRouter(d)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `pantry_items_annotated_total{status="fresh"} 1`)
}
