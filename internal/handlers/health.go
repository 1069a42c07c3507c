package handlers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"

	appConfig "golf-fortune-engine/internal/config"
	"golf-fortune-engine/internal/utils"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db    HealthChecker
	stage string
}

// NewHealthHandler creates a health handler. Pass a nil interface when no database is configured.
func NewHealthHandler(cfg *appConfig.Config, db HealthChecker) *HealthHandler {
	return &HealthHandler{db: db, stage: cfg.Stage}
}

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Stage     string `json:"stage"`
	Database  string `json:"database"`
}

// Check builds the health response and its status code.
func (h *HealthHandler) Check(ctx context.Context) (int, HealthResponse) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   utils.ServiceName,
		Version:   getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
		Stage:     h.stage,
		Database:  "not configured",
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := h.db.HealthCheck(ctx); err != nil {
			response.Database = "disconnected"
			response.Status = "degraded"
		} else {
			response.Database = "connected"
		}
	}

	statusCode := http.StatusOK
	if response.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	return statusCode, response
}

// ServeHTTP handles GET /health and /api/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status, response := h.Check(r.Context())
	writeJSON(w, status, response)
}

// Handle processes health check requests from API Gateway.
func (h *HealthHandler) Handle(ctx context.Context, _ events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	status, response := h.Check(ctx)
	return proxyJSON(status, response), nil
}

// EnvReport shows which credentials are configured, never their values.
type EnvReport struct {
	Provider        string `json:"provider"`
	Model           string `json:"model"`
	HasOpenAIKey    bool   `json:"hasOpenAIKey"`
	HasGeminiKey    bool   `json:"hasGeminiKey"`
	RemoteEnabled   bool   `json:"remoteEnabled"`
	ResponseFormat  string `json:"responseFormat"`
	DatabaseEnabled bool   `json:"databaseEnabled"`
	S3Enabled       bool   `json:"s3Enabled"`
	SESEnabled      bool   `json:"sesEnabled"`
	Stage           string `json:"stage"`
}

// NewEnvReport summarizes cfg.
func NewEnvReport(cfg *appConfig.Config) EnvReport {
	return EnvReport{
		Provider:        cfg.LLMProvider,
		Model:           cfg.LLMModel,
		HasOpenAIKey:    cfg.OpenAIAPIKey != "",
		HasGeminiKey:    cfg.GeminiAPIKey != "",
		RemoteEnabled:   cfg.HasLLMCredential(),
		ResponseFormat:  cfg.LLMResponseFormat,
		DatabaseEnabled: cfg.DatabaseEnabled(),
		S3Enabled:       cfg.S3Bucket != "",
		SESEnabled:      cfg.SESSenderEmail != "",
		Stage:           cfg.Stage,
	}
}

// EnvHandler serves GET /api/test-env.
func EnvHandler(cfg *appConfig.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, NewEnvReport(cfg))
	}
}

// getEnvOrDefault returns environment variable or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
