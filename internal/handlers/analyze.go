package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"golf-fortune-engine/internal/models"
	"golf-fortune-engine/internal/services/pipeline"
	"golf-fortune-engine/internal/utils"
)

// ErrAnalyzeFailed is the message returned for unreadable requests.
const ErrAnalyzeFailed = "Failed to analyze user info"

// maxBodyBytes caps the request body.
const maxBodyBytes = 64 << 10

// AnalyzeResponse is the v1 body of POST /api/analyze-user.
type AnalyzeResponse struct {
	Version   string                 `json:"version"`
	Phase     string                 `json:"phase"`
	RequestID string                 `json:"requestId"`
	Analysis  models.ElementAnalysis `json:"analysis"`
	Fortune   models.FortuneResult   `json:"fortune"`
}

// NewAnalyzeResponse builds the response body for a record.
func NewAnalyzeResponse(record *models.FortuneRecord) AnalyzeResponse {
	return AnalyzeResponse{
		Version:   SchemaVersion,
		Phase:     PhaseComplete,
		RequestID: record.RequestID,
		Analysis:  record.Analysis,
		Fortune:   record.Fortune,
	}
}

// AnalyzeHandler serves the analyze endpoint.
type AnalyzeHandler struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
}

// NewAnalyzeHandler creates a handler over p.
func NewAnalyzeHandler(p *pipeline.Pipeline) *AnalyzeHandler {
	return &AnalyzeHandler{
		pipeline: p,
		logger:   utils.Named("handlers.analyze"),
	}
}

// decodeInput parses a UserInput body. Unknown fields are ignored.
func decodeInput(body []byte) (models.UserInput, error) {
	var input models.UserInput
	if err := json.Unmarshal(body, &input); err != nil {
		return input, fmt.Errorf("decode user input: %w", err)
	}
	return input, nil
}

func (h *AnalyzeHandler) analyze(ctx context.Context, body []byte) (int, any) {
	input, err := decodeInput(body)
	if err != nil {
		h.logger.Warn("Rejected analyze request", zap.Error(err), zap.Int("body_bytes", len(body)))
		return http.StatusInternalServerError, ErrorResponse{Error: ErrAnalyzeFailed}
	}

	record := h.pipeline.Analyze(ctx, input)
	return http.StatusOK, NewAnalyzeResponse(record)
}

// ServeHTTP handles POST /api/analyze-user.
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn("Failed to read request body", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrAnalyzeFailed})
		return
	}

	status, resp := h.analyze(r.Context(), body)
	writeJSON(w, status, resp)
}

// Handle processes API Gateway requests for the same endpoint.
func (h *AnalyzeHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch request.HTTPMethod {
	case http.MethodOptions:
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Headers: corsHeaders()}, nil
	case http.MethodPost, "":
	default:
		return proxyJSON(http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"}), nil
	}

	body := []byte(request.Body)
	if request.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(request.Body)
		if err != nil {
			h.logger.Warn("Failed to decode request body", zap.Error(err))
			return proxyJSON(http.StatusInternalServerError, ErrorResponse{Error: ErrAnalyzeFailed}), nil
		}
		body = decoded
	}

	status, resp := h.analyze(ctx, body)
	return proxyJSON(status, resp), nil
}
