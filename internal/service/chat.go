package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"petwell/internal/ai"
	"petwell/internal/apperror"
	"petwell/internal/repository"
)

// ChatService answers one turn of the veterinary advice chat.
//
// STATELESS BY DESIGN:
// The server stores no conversation. The client sends the recent history
// with every request and the assistant window-trims it — which keeps the
// endpoint horizontally boring: no session affinity, nothing to expire.
type ChatService struct {
	pets      repository.PetRepository
	assistant *ai.Assistant
	logger    *slog.Logger
}

func NewChatService(pets repository.PetRepository, assistant *ai.Assistant, logger *slog.Logger) *ChatService {
	return &ChatService{
		pets:      pets,
		assistant: assistant,
		logger:    logger,
	}
}

// ChatTurn is one prior message in the conversation, as replayed by the
// client.
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// VetChat answers the user's message with their pets as context.
//
// This is an explicit AI endpoint: no provider means the whole feature is
// absent, so failures surface as apperror.AIUnavailable (503) rather than
// a canned reply pretending to be advice.
func (s *ChatService) VetChat(ctx context.Context, ownerID, message string, history []ChatTurn) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apperror.ValidationFailed("message", "message is required")
	}

	pets, err := s.pets.ListPets(ctx, ownerID, repository.ListOptions{Limit: DefaultListLimit})
	if err != nil {
		return "", fmt.Errorf("loading pets for chat context: %w", err)
	}

	messages := make([]ai.Message, 0, len(history))
	for _, turn := range history {
		role := ai.RoleUser
		if turn.Role == "assistant" {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.Message{Role: role, Content: turn.Content})
	}

	reply, err := s.assistant.VetChat(ctx, pets, messages, message)
	if err != nil {
		if !errors.Is(err, ai.ErrUnavailable) {
			s.logger.Error("vet chat failed",
				slog.String("userID", ownerID),
				slog.String("error", err.Error()),
			)
		}
		return "", apperror.AIUnavailable()
	}

	return reply, nil
}
