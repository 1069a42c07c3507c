package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"golf-fortune-engine/internal/models"
	"golf-fortune-engine/internal/utils"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// OpenAIConfig configures an OpenAI-compatible chat completions client.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

// OpenAIClient implements TextGenerator against /chat/completions.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIRequest struct {
	Model            string                `json:"model"`
	Messages         []openAIMessage       `json:"messages"`
	MaxTokens        int                   `json:"max_tokens,omitempty"`
	Temperature      float64               `json:"temperature"`
	TopP             float64               `json:"top_p,omitempty"`
	FrequencyPenalty float64               `json:"frequency_penalty,omitempty"`
	PresencePenalty  float64               `json:"presence_penalty,omitempty"`
	ResponseFormat   *openAIResponseFormat `json:"response_format,omitempty"`
}

// finishLength is the finish_reason of a completion cut off by max_tokens.
const finishLength = "length"

type openAIResponse struct {
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIClient creates a new OpenAI-compatible client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &OpenAIClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
		httpClient: &http.Client{},
		logger:     utils.Named("llm.openai"),
	}
}

// Model returns the configured model identifier.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Generate sends one chat completion, retrying transient failures up to maxRetries times.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) Result {
	start := time.Now()
	if c.apiKey == "" {
		return Unavailable(models.ErrMissingCredential)
	}

	ctx, cancel := withDefaultTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return Malformed(fmt.Errorf("failed to marshal request: %w", err))
	}

	var result Result
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := sleepBackoff(ctx, c.backoff, attempt); err != nil {
			result = Unavailable(err)
			result.Attempts = attempt
			break
		}

		var retryable bool
		result, retryable = c.do(ctx, body)
		result.Attempts = attempt + 1
		if result.OK() || !retryable {
			break
		}

		c.logger.Warn("Chat completion attempt failed",
			zap.Int("attempt", attempt+1),
			zap.String("outcome", result.Outcome.String()),
			zap.Error(result.Err),
		)
	}

	result.Latency = time.Since(start)
	return result
}

func (c *OpenAIClient) buildRequest(req Request) openAIRequest {
	body := openAIRequest{
		Model: c.model,
		Messages: []openAIMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens:        req.MaxTokens,
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		FrequencyPenalty: req.FrequencyPenalty,
		PresencePenalty:  req.PresencePenalty,
	}
	if req.JSONMode {
		body.ResponseFormat = &openAIResponseFormat{Type: "json_object"}
	}
	return body
}

// do performs a single HTTP exchange. The bool reports whether a retry may help.
func (c *OpenAIClient) do(ctx context.Context, body []byte) (Result, bool) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Unavailable(fmt.Errorf("failed to create request: %w", err)), false
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// A cancelled or expired context will not recover on retry.
		return Unavailable(fmt.Errorf("request failed: %w", err)), ctx.Err() == nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Unavailable(fmt.Errorf("failed to read response: %w", err)), true
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return Unavailable(fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(raw), 200))), retryable
	}

	var parsed openAIResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Malformed(fmt.Errorf("failed to decode response: %w", err)), false
	}
	if parsed.Error != nil {
		return Unavailable(fmt.Errorf("API error: %s", parsed.Error.Message)), false
	}
	if len(parsed.Choices) == 0 {
		return Malformed(errors.New("no choices in response")), false
	}

	if parsed.Choices[0].FinishReason == finishLength {
		return Malformed(errors.New("completion truncated at max_tokens")), false
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return Malformed(errors.New("empty completion")), false
	}

	return Ok(text), false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
