package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/castpro/castpro/internal/handler/dto"
	"github.com/castpro/castpro/internal/service"
)

// ChatHandler relays messages to the fishing assistant.
// The endpoint is public; no authentication is required.
type ChatHandler struct {
	svc    *service.ChatService
	logger *slog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(svc *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		svc:    svc,
		logger: logger,
	}
}

// FishingAssistant handles POST /chat/fishing-assistant.
func (h *ChatHandler) FishingAssistant(w http.ResponseWriter, r *http.Request) {
	var req dto.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.svc.Ask(r.Context(), req.Message)
	if err != nil {
		h.handleChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ChatResponse{Response: response})
}

// handleChatError maps chat errors to HTTP responses.
// Upstream failures surface the original message in the detail string.
func (h *ChatHandler) handleChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMessageRequired):
		writeError(w, http.StatusBadRequest, "Message is required")
	case errors.Is(err, service.ErrChatNotConfigured):
		writeError(w, http.StatusInternalServerError, "OpenAI API key not configured")
	default:
		h.logger.Error("chat request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error communicating with AI assistant: "+err.Error())
	}
}
