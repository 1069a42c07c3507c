package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golf-fortune-engine/internal/config"
	"golf-fortune-engine/internal/handlers"
	"golf-fortune-engine/internal/services/fortune"
	"golf-fortune-engine/internal/services/pipeline"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{LLMProvider: config.ProviderOpenAI, LLMModel: "gpt-4o", Stage: "test"}
	services := &pipeline.Services{
		Pipeline: pipeline.New(fortune.NewGenerator(nil, fortune.WithSeed(5)), nil),
	}

	srv := httptest.NewServer(newRouter(cfg, services))
	t.Cleanup(srv.Close)
	return srv
}

func TestServer_AnalyzeUser(t *testing.T) {
	srv := newTestServer(t)

	body := `{"name":"김철수","birthDate":"1990.05.15","birthTime":"14:30","gender":"남성","handicap":15}`
	resp, err := http.Post(srv.URL+"/api/analyze-user", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out handlers.AnalyzeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Fortune.IsComplete())
}

func TestServer_CORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/analyze-user", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_HealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health", "/api/health", "/api/test-env"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	// Generate one fortune so the counters have a sample.
	resp, err := http.Post(srv.URL+"/api/analyze-user", "application/json", strings.NewReader(`{"name":"a","birthDate":"1991.01.01"}`))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "golf_fortune_generations_total")
}
