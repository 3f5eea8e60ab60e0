package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/igorsal/commit-reviewer/internal/interfaces"
	"github.com/igorsal/commit-reviewer/internal/models"
	pkgerrors "github.com/igorsal/commit-reviewer/pkg/errors"
)

const (
	MaxBodySize = 10 * 1024 * 1024 // 10MB max

	gitlabTokenHeader = "X-Gitlab-Token"
	gitlabEventHeader = "X-Gitlab-Event"
)

type WebhookHandler struct {
	pipeline  interfaces.ReviewPipeline
	logger    interfaces.Logger
	metrics   interfaces.MetricsCollector
	validator *validator.Validate
}

// NewWebhookHandler creates the GitLab push webhook handler
func NewWebhookHandler(pipeline interfaces.ReviewPipeline, logger interfaces.Logger, metrics interfaces.MetricsCollector) *WebhookHandler {
	return &WebhookHandler{
		pipeline:  pipeline,
		logger:    logger,
		metrics:   metrics,
		validator: validator.New(),
	}
}

// Handle processes one GitLab push webhook delivery
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, pkgerrors.NewValidationError("method not allowed"), http.StatusMethodNotAllowed)
		return
	}

	h.logger.Info("Received GitLab webhook",
		"event", r.Header.Get(gitlabEventHeader),
		"token_present", r.Header.Get(gitlabTokenHeader) != "",
	)

	var event models.PushEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&event); err != nil {
		h.logger.Error("Failed to decode webhook payload", err)
		h.writeError(w, pkgerrors.NewValidationError("invalid request body"), http.StatusBadRequest)
		return
	}

	if err := h.validator.Struct(event); err != nil {
		h.logger.Error("Webhook payload validation failed", err)
		h.writeError(w, pkgerrors.NewValidationError("validation failed: "+err.Error()), http.StatusBadRequest)
		return
	}

	result, err := h.pipeline.ProcessPush(r.Context(), r.Header.Get(gitlabTokenHeader), &event)
	if err != nil {
		h.logger.Error("Push pipeline failed", err, "project", event.Project.Name)
		h.writeError(w, err, statusCodeFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("Failed to encode response", err)
	}

	h.logger.Info("Webhook processed",
		"project", event.Project.Name,
		"success", result.Success,
		"review_count", result.ReviewCount,
	)
}

func (h *WebhookHandler) writeError(w http.ResponseWriter, err error, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := models.PipelineResult{
		Success: false,
		Message: err.Error(),
	}

	if encErr := json.NewEncoder(w).Encode(response); encErr != nil {
		h.logger.Error("Failed to encode error response", encErr)
	}
}

// statusCodeFor maps pipeline errors to HTTP status codes
func statusCodeFor(err error) int {
	if appErr, ok := pkgerrors.AsAppError(err); ok {
		switch appErr.Type {
		case pkgerrors.ErrorTypeValidation:
			return http.StatusBadRequest
		case pkgerrors.ErrorTypeUnauthorized:
			return http.StatusUnauthorized
		case pkgerrors.ErrorTypeRateLimit:
			return http.StatusTooManyRequests
		case pkgerrors.ErrorTypeUnavailable:
			return http.StatusServiceUnavailable
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
