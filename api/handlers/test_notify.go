package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/igorsal/commit-reviewer/internal/interfaces"
	"github.com/igorsal/commit-reviewer/internal/models"
)

type TestNotifyHandler struct {
	dispatcher interfaces.NotificationDispatcher
	logger     interfaces.Logger
	validator  *validator.Validate
}

type TestNotifyRequest struct {
	Message string `json:"message" validate:"max=500"`
	Title   string `json:"title" validate:"max=100"`
}

// NewTestNotifyHandler creates the DingTalk test endpoint handler
func NewTestNotifyHandler(dispatcher interfaces.NotificationDispatcher, logger interfaces.Logger) *TestNotifyHandler {
	return &TestNotifyHandler{
		dispatcher: dispatcher,
		logger:     logger,
		validator:  validator.New(),
	}
}

// Handle sends a canned review report so operators can verify the webhook
// wiring without pushing a commit
func (h *TestNotifyHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeResult(w, http.StatusMethodNotAllowed, false, "method not allowed")
		return
	}

	var req TestNotifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&req); err != nil {
		h.logger.Error("Failed to decode test notify request", err)
		h.writeResult(w, http.StatusBadRequest, false, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.writeResult(w, http.StatusBadRequest, false, "validation failed: "+err.Error())
		return
	}

	message := req.Message
	if message == "" {
		message = "test commit message"
	}

	notification := models.ReviewNotification{
		ProjectName: "test project",
		Branch:      "main",
		Commit: models.CommitRecord{
			ID:      "test123456789",
			ShortID: "test1234",
			Message: message,
			Author:  "test user",
			URL:     "https://gitlab.com/test/commit/test123456789",
		},
		Review: models.ReviewResult{
			OverallScore: 9,
			Summary:      "This is a test message verifying the DingTalk notification wiring.",
			Issues: []models.Issue{
				{
					Severity:   models.SeverityLow,
					Type:       models.IssueStyle,
					File:       "test.go",
					Message:    "This is a test issue",
					Suggestion: "This is a test suggestion",
				},
			},
			Positives:       []string{"Notification pipeline reachable", "Report rendering works"},
			Recommendations: []string{"Keep up the good coding habits"},
		},
	}

	if err := h.dispatcher.NotifyReview(r.Context(), notification); err != nil {
		h.logger.Error("Test notification failed", err)
		h.writeResult(w, statusCodeFor(err), false, err.Error())
		return
	}

	h.writeResult(w, http.StatusOK, true, "test notification delivered")
}

func (h *TestNotifyHandler) writeResult(w http.ResponseWriter, statusCode int, success bool, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]any{
		"success": success,
		"message": message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode test notify response", err)
	}
}
