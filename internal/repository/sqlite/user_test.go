package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"petwell/internal/apperror"
	"petwell/internal/model"
)

func TestCreateUser_SetsIDAndTimestamps(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Username:     "dana",
		Email:        "dana@example.com",
		PasswordHash: "hash",
		IsActive:     true,
	}
	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Create() did not set timestamps")
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "dana")

	dup := &model.User{
		Username:     "dana",
		Email:        "other@example.com",
		PasswordHash: "hash",
	}
	err := db.Create(context.Background(), dup)
	if !errors.Is(err, apperror.ErrDuplicate) {
		t.Fatalf("Create() error = %v, want ErrDuplicate", err)
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Field != "username" {
		t.Errorf("Field = %q, want %q", appErr.Field, "username")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "dana")

	// Different username, same email — still rejected.
	dup := &model.User{
		Username:     "dana2",
		Email:        "dana@example.com",
		PasswordHash: "hash",
	}
	err := db.Create(context.Background(), dup)
	if !errors.Is(err, apperror.ErrDuplicate) {
		t.Fatalf("Create() error = %v, want ErrDuplicate", err)
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Field != "email" {
		t.Errorf("Field = %q, want %q", appErr.Field, "email")
	}
}

func TestGetUserByIdentifier_MatchesUsernameOrEmail(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "dana")

	byUsername, err := db.GetUserByIdentifier(context.Background(), "dana")
	if err != nil {
		t.Fatalf("GetUserByIdentifier(username) error = %v", err)
	}
	if byUsername.ID != user.ID {
		t.Errorf("by username: got user %s, want %s", byUsername.ID, user.ID)
	}

	byEmail, err := db.GetUserByIdentifier(context.Background(), "dana@example.com")
	if err != nil {
		t.Fatalf("GetUserByIdentifier(email) error = %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("by email: got user %s, want %s", byEmail.ID, user.ID)
	}
}

func TestGetUserByIdentifier_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByIdentifier(context.Background(), "nobody")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetUserByIdentifier() error = %v, want ErrNotFound", err)
	}
}

func TestGetUserByVerificationToken(t *testing.T) {
	db := newTestDB(t)

	expiry := time.Now().Add(24 * time.Hour)
	user := &model.User{
		Username:          "pending",
		Email:             "pending@example.com",
		PasswordHash:      "hash",
		IsActive:          true,
		VerificationToken: "tok-abc123",
		TokenExpiresAt:    &expiry,
	}
	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := db.GetUserByVerificationToken(context.Background(), "tok-abc123")
	if err != nil {
		t.Fatalf("GetUserByVerificationToken() error = %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("got user %s, want %s", found.ID, user.ID)
	}
	if found.TokenExpiresAt == nil {
		t.Error("TokenExpiresAt was not round-tripped")
	}
}

// A cleared token must be stored as NULL, not "" — otherwise looking up
// an empty token would match every verified user.
func TestUpdateUser_ClearedTokenIsUnmatchable(t *testing.T) {
	db := newTestDB(t)

	expiry := time.Now().Add(24 * time.Hour)
	user := &model.User{
		Username:          "pending",
		Email:             "pending@example.com",
		PasswordHash:      "hash",
		IsActive:          true,
		VerificationToken: "tok-onetime",
		TokenExpiresAt:    &expiry,
	}
	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	user.IsVerified = true
	user.VerificationToken = ""
	user.TokenExpiresAt = nil
	if err := db.Update(context.Background(), user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if _, err := db.GetUserByVerificationToken(context.Background(), "tok-onetime"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("used token lookup error = %v, want ErrNotFound", err)
	}
	if _, err := db.GetUserByVerificationToken(context.Background(), ""); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("empty token lookup error = %v, want ErrNotFound", err)
	}

	reloaded, err := db.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if !reloaded.IsVerified {
		t.Error("IsVerified was not persisted")
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	ghost := &model.User{ID: "no-such-id", Username: "x", Email: "x@example.com"}
	if err := db.Update(context.Background(), ghost); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
}
