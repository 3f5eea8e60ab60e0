package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/igorsal/commit-reviewer/internal/interfaces"
)

type InfoHandler struct {
	logger interfaces.Logger
}

type InfoResponse struct {
	Service     string   `json:"service"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Endpoints   []string `json:"endpoints"`
}

// NewInfoHandler creates a new info handler
func NewInfoHandler(logger interfaces.Logger) *InfoHandler {
	return &InfoHandler{logger: logger}
}

// Handle returns static service information
func (h *InfoHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := InfoResponse{
		Service:     "GitLab Commit Review Relay",
		Version:     getVersion(),
		Description: "Reviews pushed commits and relays the report to DingTalk",
		Endpoints: []string{
			"POST /webhook/gitlab",
			"POST /test/dingtalk",
			"GET /health",
			"GET /info",
			"GET /metrics",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode info response", err)
	}
}
