package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"golf-fortune-engine/internal/models"
	"golf-fortune-engine/internal/utils"
)

// GeminiClient implements TextGenerator on the Gemini API.
type GeminiClient struct {
	client     *genai.Client
	model      string
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

// NewGeminiClient creates a Gemini client. An empty API key is an error.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, models.ErrMissingCredential
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{
		client:     client,
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		maxRetries: max(cfg.MaxRetries, 0),
		backoff:    cfg.Backoff,
		logger:     utils.Named("llm.gemini"),
	}, nil
}

// Model returns the configured model identifier.
func (c *GeminiClient) Model() string {
	return c.model
}

// Generate calls Models.GenerateContent with the persona as system instruction.
func (c *GeminiClient) Generate(ctx context.Context, req Request) Result {
	start := time.Now()
	ctx, cancel := withDefaultTimeout(ctx, c.timeout)
	defer cancel()

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
		TopP:        genai.Ptr(float32(req.TopP)),
	}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.FrequencyPenalty != 0 {
		genCfg.FrequencyPenalty = genai.Ptr(float32(req.FrequencyPenalty))
	}
	if req.PresencePenalty != 0 {
		genCfg.PresencePenalty = genai.Ptr(float32(req.PresencePenalty))
	}
	if req.JSONMode {
		genCfg.ResponseMIMEType = "application/json"
	}

	var result Result
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := sleepBackoff(ctx, c.backoff, attempt); err != nil {
			result = Unavailable(err)
			result.Attempts = attempt
			break
		}

		result = c.once(ctx, req.Prompt, genCfg)
		result.Attempts = attempt + 1
		if result.OK() || result.Outcome == OutcomeMalformed || ctx.Err() != nil {
			break
		}

		c.logger.Warn("Gemini attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(result.Err),
		)
	}

	result.Latency = time.Since(start)
	return result
}

func (c *GeminiClient) once(ctx context.Context, prompt string, genCfg *genai.GenerateContentConfig) Result {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), genCfg)
	if err != nil {
		return Unavailable(fmt.Errorf("generate content: %w", err))
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return Malformed(errors.New("no candidates in response"))
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return Malformed(errors.New("completion truncated at max output tokens"))
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return Malformed(errors.New("empty completion"))
	}
	return Ok(text)
}
