package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"chat-relay/internal/models"
	"chat-relay/internal/services"
)

// Fixed reply texts returned to callers.
const (
	ReplyMissingMessage = "Missing user message"
	ReplyInvalidBody    = "Invalid request body"
	ReplyUpstreamFailed = "Failed to call Azure OpenAI, please check the configuration."
)

type chatService interface {
	Complete(ctx context.Context, message string) (string, error)
}

type ChatHandler struct {
	chatService chatService
	log         *slog.Logger
}

func NewChatHandler(chatService chatService, log *slog.Logger) *ChatHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ChatHandler{
		chatService: chatService,
		log:         log,
	}
}

// Chat relays a single user message to the completion service.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")

	var req models.ChatRequest
	// An empty body reads as an empty request.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.log.Debug("invalid chat request body", "request_id", requestID, "error", err)
		writeJSON(w, http.StatusBadRequest, models.ChatResponse{Reply: ReplyInvalidBody})
		return
	}

	h.log.Debug("chat request received", "request_id", requestID, "message", req.Message)

	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, models.ChatResponse{Reply: ReplyMissingMessage})
		return
	}

	reply, err := h.chatService.Complete(r.Context(), req.Message)
	if err != nil {
		h.log.Error("azure openai call failed", "request_id", requestID, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ChatResponse{
			Reply: ReplyUpstreamFailed,
			Error: upstreamDescription(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

func upstreamDescription(err error) string {
	var upErr *services.UpstreamError
	if errors.As(err, &upErr) {
		return upErr.Description
	}
	return services.DescribeError(err)
}
