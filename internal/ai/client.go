// Package ai is the optional augmentation layer: care-tip generation,
// activity auto-categorization, routine insights, and the vet chat.
//
// DESIGN CONTRACT:
// AI calls are best-effort side enrichments. The enrichment entry points
// (CareTips, CategorizeActivity, ActivityInsights) catch every provider
// failure — absence, network error, timeout, malformed output — and
// substitute a deterministic default. They never return an error, so an AI
// outage can never break core CRUD. Only the endpoints whose entire purpose
// is the AI call (vet chat, regenerate tips) surface ErrUnavailable.
//
// The capability is an interface with two implementations: the OpenAI
// client and Disabled. The rest of the app holds a Client and never asks
// "is AI configured?" — a Disabled client answers every call with
// ErrUnavailable, and the fallback paths take it from there.
package ai

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by every Complete call on a Disabled client,
// and by the chat/regenerate entry points when the provider is absent.
// Handlers map it to 503.
var ErrUnavailable = errors.New("ai: provider unavailable")

// Message is one turn of a chat-completion conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Options tunes a single completion call. Zero values mean "provider
// default".
type Options struct {
	MaxTokens   int
	Temperature float32
}

// Client is the AI provider capability.
type Client interface {
	// Complete sends the messages and returns the assistant's reply text.
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

// Disabled is the null provider, used when no API key is configured.
type Disabled struct{}

func (Disabled) Complete(context.Context, []Message, Options) (string, error) {
	return "", ErrUnavailable
}
