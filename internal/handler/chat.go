package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"petwell/internal/service"
)

// ChatHandler exposes the veterinary advice chat.
type ChatHandler struct {
	chat   *service.ChatService
	logger *slog.Logger
}

func NewChatHandler(chat *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

// HandleVetChat answers one turn of the chat.
//
// HTTP: POST /api/chat/vet
// BODY: {"message", "history": [{"role","content"}, ...]}
//
// The client replays the recent conversation on every request — the
// server keeps no chat state. Responds 503 when no AI provider is
// configured.
func (h *ChatHandler) HandleVetChat(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Message string             `json:"message"`
		History []service.ChatTurn `json:"history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid chat JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	reply, err := h.chat.VetChat(r.Context(), user.ID, req.Message, req.History)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}
