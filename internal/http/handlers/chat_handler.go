package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vitalmed/exam-bookings/internal/http/response"
	"github.com/vitalmed/exam-bookings/pkg/logger"
)

// ChatBot answers one user message within a session.
type ChatBot interface {
	Respond(ctx context.Context, sessionID, message string) (string, error)
}

type ChatHandler struct {
	bot ChatBot
}

func NewChatHandler(bot ChatBot) *ChatHandler {
	return &ChatHandler{bot: bot}
}

func (h *ChatHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.message)
	return r
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (h *ChatHandler) message(w http.ResponseWriter, r *http.Request) {
	var in chatRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(in.Message) == "" || strings.TrimSpace(in.SessionID) == "" {
		response.BadRequest(w, "Mensagem e ID da sessão são obrigatórios.")
		return
	}

	ctx := context.WithValue(r.Context(), logger.SessionIDKey, in.SessionID)

	reply, err := h.bot.Respond(ctx, in.SessionID, in.Message)
	if err != nil {
		logger.ErrorContext(ctx, "Chat message processing failed", "error", err)
		response.InternalError(w, "Erro interno do servidor ao processar a mensagem.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(chatResponse{Response: reply})
}
