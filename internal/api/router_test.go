package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Conceptual-Machines/uivariants-api/internal/config"
	"github.com/Conceptual-Machines/uivariants-api/internal/generation"
	"github.com/Conceptual-Machines/uivariants-api/internal/history"
	"github.com/Conceptual-Machines/uivariants-api/internal/metrics"
	"github.com/Conceptual-Machines/uivariants-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const componentReply = "```html\n<section class=\"p-6 rounded-xl shadow\"><h2>Pro plan</h2><button>Choose</button></section>\n```"

type cannedProvider struct{}

func (cannedProvider) Complete(context.Context, string, models.ConnectionSettings) (string, error) {
	return componentReply, nil
}

func newTestRouter(t *testing.T, authMode string) (*gin.Engine, history.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(metrics.NewPrometheus(reg), nil)
	store := history.NewMemoryStore(10)
	orchestrator := generation.NewOrchestrator(cannedProvider{}, generation.WithRecorder(recorder))

	cfg := &config.Config{
		AuthMode:       authMode,
		HistoryBackend: config.HistoryBackendMemory,
	}
	router := SetupRouter(Dependencies{
		Generator:      orchestrator,
		ConnectionTest: cannedProvider{},
		History:        store,
		Themes:         orchestrator.Themes(),
		Recorder:       recorder,
		Gatherer:       reg,
	}, cfg, "test")
	return router, store
}

func serve(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_GenerationFlow(t *testing.T) {
	router, store := newTestRouter(t, "none")

	body := `{"instruction":"Pricing card for a pro plan","settings":{"modelName":"gpt-4o-mini","apiKey":"sk-test","baseUrl":"https://api.openai.com/v1"}}`
	w := serve(router, http.MethodPost, "/api/v1/generations", body, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var result models.GenerationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Variations, 5)
	assert.Equal(t, "OpenAI", result.Provider)
	assert.Equal(t, models.StyleMinimal, result.Variations[0].Style)
	assert.True(t, strings.HasPrefix(result.Variations[0].HTMLCode, "<section"))

	saved, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, result.ID, saved[0].ID)

	w = serve(router, http.MethodGet, "/api/v1/history", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), result.ID)

	w = serve(router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "uivariants_variant_attempts_total")
}

func TestRouter_ConfigurationErrorIsBadRequest(t *testing.T) {
	router, store := newTestRouter(t, "none")

	body := `{"instruction":"Pricing card","settings":{"modelName":"gpt-4o-mini","apiKey":"","baseUrl":"https://api.openai.com/v1"}}`
	w := serve(router, http.MethodPost, "/api/v1/generations", body, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	saved, _ := store.List(context.Background(), 0)
	assert.Empty(t, saved)
}

func TestRouter_GatewayMode(t *testing.T) {
	router, _ := newTestRouter(t, "gateway")

	w := serve(router, http.MethodGet, "/api/v1/themes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(router, http.MethodGet, "/api/v1/themes", "", map[string]string{"X-User-ID": "u-1"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Health stays public
	w = serve(router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, "none")

	w := serve(router, http.MethodOptions, "/api/v1/generations", "", map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
