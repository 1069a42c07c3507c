package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"LLM_PROVIDER", "OPENAI_API_KEY", "GEMINI_API_KEY", "LLM_MODEL",
		"LLM_TIMEOUT", "LLM_MAX_RETRIES", "DATABASE_URL", "DB_HOST", "S3_BUCKET",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, "gpt-4o", cfg.LLMModel)
	assert.Equal(t, 20*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 0, cfg.LLMMaxRetries)
	assert.False(t, cfg.HasLLMCredential())
	assert.False(t, cfg.DatabaseEnabled())
}

func TestLoad_GeminiProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LLM_MODEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.LLMProvider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLMModel)
	assert.Equal(t, "g-key", cfg.LLMAPIKey())
	assert.True(t, cfg.HasLLMCredential())
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "15")
	assert.Equal(t, 15*time.Second, getEnvDuration("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION", "1500ms")
	assert.Equal(t, 1500*time.Millisecond, getEnvDuration("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION", "soon")
	assert.Equal(t, time.Second, getEnvDuration("TEST_DURATION", time.Second))
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{DBHost: "localhost", DBPort: 5432, DBName: "golf_fortune", DBUser: "postgres", DBPassword: "pw"}
	assert.Equal(t, "postgres://postgres:pw@localhost:5432/golf_fortune?sslmode=disable", cfg.DatabaseURL())
	assert.True(t, cfg.DatabaseEnabled())

	cfg.DatabaseURLOverride = "postgres://example/db"
	assert.Equal(t, "postgres://example/db", cfg.DatabaseURL())
}
