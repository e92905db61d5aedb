package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fla-ops/fla/internal/observability"
	_ "github.com/fla-ops/fla/internal/testing/guard"
)

type pingMounter struct{}

func (pingMounter) MountRoutes(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("pong")) })
}

func testConfig() *Config {
	return &Config{AppEnv: "test", RateLimitPerMinute: 1000}
}

func TestRouterMountsAPIAndHealth(t *testing.T) {
	h := NewRouter(RouterParams{
		Logger:  NewLogger(testConfig()),
		Config:  testConfig(),
		Metrics: observability.NewMetrics(),
		Health:  map[string]Pinger{"postgres": PingFunc(func(context.Context) error { return nil })},
		API:     []Mounter{pingMounter{}},
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fla_http_requests_total")
}

func TestHealthReportsFailingBackend(t *testing.T) {
	h := NewRouter(RouterParams{
		Logger: NewLogger(testConfig()),
		Config: testConfig(),
		Health: map[string]Pinger{"redis": PingFunc(func(context.Context) error { return errors.New("down") })},
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","failing":"redis"}`, rec.Body.String())
}

func TestGuardEnablesTestMode(t *testing.T) {
	RefreshTestMode()
	assert.True(t, InTestMode())
}
