package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"golf-fortune-engine/internal/config"
	"golf-fortune-engine/internal/utils"
)

// NewFromConfig picks the provider named by LLM_PROVIDER.
// Without a credential it returns a disabled generator; the service still runs on templates.
func NewFromConfig(ctx context.Context, cfg *config.Config) TextGenerator {
	logger := utils.Named("llm")
	if !cfg.HasLLMCredential() {
		logger.Warn("No LLM credential configured, fortunes will use templates",
			zap.String("provider", cfg.LLMProvider))
		return NewDisabled(cfg.LLMModel)
	}

	switch cfg.LLMProvider {
	case config.ProviderGemini:
		client, err := NewGeminiClient(ctx, GeminiConfig{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.LLMModel,
			Timeout:    cfg.LLMTimeout,
			MaxRetries: cfg.LLMMaxRetries,
			Backoff:    time.Second,
		})
		if err != nil {
			logger.Error("Failed to create Gemini client", zap.Error(err))
			return NewDisabled(cfg.LLMModel)
		}
		return client
	default:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.LLMModel,
			Timeout:    cfg.LLMTimeout,
			MaxRetries: cfg.LLMMaxRetries,
			Backoff:    time.Second,
		})
	}
}
