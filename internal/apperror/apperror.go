package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation error")
	ErrDuplicate     = errors.New("duplicate identity")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrUnverified    = errors.New("email not verified")
	ErrAIUnavailable = errors.New("ai unavailable")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that an entity does not exist for the caller.
//
// OWNERSHIP AND NOT-FOUND:
// A record owned by another user is reported with this same error, never
// with a "forbidden". If the two were distinguishable, an attacker could
// probe IDs and learn which records exist. Not-owned looks exactly like
// not-existing, all the way to the wire.
func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Duplicate reports a uniqueness violation on a user identity field
// (username or email). Handlers map it to 409 Conflict.
func Duplicate(field string) *AppError {
	return &AppError{
		Err:     ErrDuplicate,
		Message: fmt.Sprintf("%s already registered", field),
		Field:   field,
	}
}

// Unauthorized covers missing, invalid, or expired credentials.
// The message is intentionally uniform — see AccountService.Authenticate.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Unverified reports correct credentials on an account that has not
// completed email verification. Unlike Unauthorized, this one is allowed
// to be specific: the caller already proved the password.
func Unverified() *AppError {
	return &AppError{
		Err:     ErrUnverified,
		Message: "Please verify your email before logging in. Check your inbox for the verification link.",
	}
}

// AIUnavailable is reserved for endpoints whose entire purpose is the AI
// call (vet chat, regenerate tips). Enrichment paths never return it —
// they fall back to defaults instead. Handlers map it to 503.
func AIUnavailable() *AppError {
	return &AppError{
		Err:     ErrAIUnavailable,
		Message: "AI service is currently unavailable. Please try again later.",
	}
}
