package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"petwell/internal/apperror"
	"petwell/internal/auth"
	"petwell/internal/model"
)

func newAccountHarness(t *testing.T) (*AccountService, *mockUserRepo, *mockMailer) {
	t.Helper()

	users := newMockUserRepo()
	mailer := &mockMailer{}

	tokens, err := auth.NewTokenService("unit-test-secret-0123456789")
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	// MinCost: these tests hash real passwords, production cost would
	// dominate the suite's runtime.
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)

	svc := NewAccountService(users, passwords, tokens, mailer, testLogger())
	return svc, users, mailer
}

func registerTestUser(t *testing.T, svc *AccountService, username string) *model.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "sekret1",
		FirstName: "Test",
		LastName:  "User",
	})
	if err != nil {
		t.Fatalf("setup: Register(%q) error = %v", username, err)
	}
	return user
}

// =========================================================================
// REGISTER
// =========================================================================

func TestRegister_Success(t *testing.T) {
	svc, _, mailer := newAccountHarness(t)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username:  "nadia",
		Email:     "Nadia@Example.COM",
		Password:  "sekret1",
		FirstName: "  Nadia  ",
		LastName:  "K",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.ID == "" {
		t.Error("expected user to have an ID")
	}
	if user.Email != "nadia@example.com" {
		t.Errorf("Email = %q, want lowercased %q", user.Email, "nadia@example.com")
	}
	if user.FirstName != "Nadia" {
		t.Errorf("FirstName = %q, want trimmed %q", user.FirstName, "Nadia")
	}
	if user.IsVerified {
		t.Error("new account should start unverified")
	}
	if !user.IsActive {
		t.Error("new account should start active")
	}
	if user.PasswordHash == "" || user.PasswordHash == "sekret1" {
		t.Error("password should be stored hashed")
	}
	if user.VerificationToken == "" || user.TokenExpiresAt == nil {
		t.Error("expected a verification token with an expiry")
	}

	// The email goes out on a goroutine; wait for it.
	sent := mailer.waitForVerification(t, 1)
	if sent != user.VerificationToken {
		t.Errorf("emailed token = %q, want the stored token %q", sent, user.VerificationToken)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newAccountHarness(t)

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"username too short", RegisterInput{Username: "ab", Email: "a@b.com", Password: "sekret1"}},
		{"username too long", RegisterInput{Username: strings.Repeat("x", MaxUsernameLength+1), Email: "a@b.com", Password: "sekret1"}},
		{"email without @", RegisterInput{Username: "valid", Email: "not-an-email", Password: "sekret1"}},
		{"password too short", RegisterInput{Username: "valid", Email: "a@b.com", Password: "12345"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRegister_DuplicatePreCheck(t *testing.T) {
	svc, _, _ := newAccountHarness(t)
	registerTestUser(t, svc, "nadia")

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "nadia", Email: "other@example.com", Password: "sekret1",
	})
	if !errors.Is(err, apperror.ErrDuplicate) {
		t.Errorf("duplicate username error = %v, want ErrDuplicate", err)
	}

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "different", Email: "nadia@example.com", Password: "sekret1",
	})
	if !errors.Is(err, apperror.ErrDuplicate) {
		t.Errorf("duplicate email error = %v, want ErrDuplicate", err)
	}
}

// racingUserRepo blinds the advisory pre-checks, so registration reaches
// Create and hits the uniqueness constraint — the race-loser path.
type racingUserRepo struct {
	*mockUserRepo
}

func (r *racingUserRepo) GetUserByIdentifier(context.Context, string) (*model.User, error) {
	return nil, apperror.NotFound("user")
}

func (r *racingUserRepo) GetUserByEmail(context.Context, string) (*model.User, error) {
	return nil, apperror.NotFound("user")
}

func TestRegister_RaceLoserGetsSameDuplicate(t *testing.T) {
	users := newMockUserRepo()
	tokens, err := auth.NewTokenService("unit-test-secret-0123456789")
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	svc := NewAccountService(
		&racingUserRepo{users},
		auth.NewPasswordServiceForTest(bcrypt.MinCost),
		tokens,
		&mockMailer{},
		testLogger(),
	)

	// The "winner" is already stored when the loser's Create lands.
	winner := &model.User{Username: "nadia", Email: "nadia@example.com", IsActive: true}
	if err := users.Create(context.Background(), winner); err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "nadia", Email: "nadia@example.com", Password: "sekret1",
	})
	if !errors.Is(err, apperror.ErrDuplicate) {
		t.Errorf("race loser error = %v, want ErrDuplicate from the constraint", err)
	}
}

// =========================================================================
// EMAIL VERIFICATION
// =========================================================================

func TestVerifyEmail_SuccessIsSingleUse(t *testing.T) {
	svc, users, mailer := newAccountHarness(t)
	user := registerTestUser(t, svc, "nadia")
	token := user.VerificationToken

	result, err := svc.VerifyEmail(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}
	if result != VerificationSuccess {
		t.Errorf("result = %q, want %q", result, VerificationSuccess)
	}

	stored, err := users.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if !stored.IsVerified {
		t.Error("user should be verified after redeeming the token")
	}
	if stored.VerificationToken != "" || stored.TokenExpiresAt != nil {
		t.Error("verification token should be cleared on success")
	}

	if got := mailer.waitForWelcome(t); got != user.Email {
		t.Errorf("welcome email went to %q, want %q", got, user.Email)
	}

	// Replaying the link finds no matching token and fails as invalid.
	if _, err := svc.VerifyEmail(context.Background(), token); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("replayed token error = %v, want ErrValidation", err)
	}
}

func TestVerifyEmail_InvalidToken(t *testing.T) {
	svc, _, _ := newAccountHarness(t)

	_, err := svc.VerifyEmail(context.Background(), "not-a-real-token")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("VerifyEmail() error = %v, want ErrValidation", err)
	}
}

func TestVerifyEmail_ExpiredToken(t *testing.T) {
	svc, users, _ := newAccountHarness(t)
	user := registerTestUser(t, svc, "nadia")

	expired := time.Now().Add(-time.Hour)
	users.users[user.ID].TokenExpiresAt = &expired

	_, err := svc.VerifyEmail(context.Background(), user.VerificationToken)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("VerifyEmail() error = %v, want ErrValidation", err)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || !strings.Contains(appErr.Message, "expired") {
		t.Errorf("error message = %v, want an expiry explanation", err)
	}
}

func TestVerifyEmail_AlreadyVerified(t *testing.T) {
	svc, users, _ := newAccountHarness(t)
	user := registerTestUser(t, svc, "nadia")

	// Two browser tabs: the second redeem finds an already-verified user.
	users.users[user.ID].IsVerified = true

	result, err := svc.VerifyEmail(context.Background(), user.VerificationToken)
	if err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}
	if result != VerificationAlreadyVerified {
		t.Errorf("result = %q, want %q", result, VerificationAlreadyVerified)
	}
}

func TestResendVerification_RotatesToken(t *testing.T) {
	svc, users, mailer := newAccountHarness(t)
	user := registerTestUser(t, svc, "nadia")
	original := user.VerificationToken
	mailer.waitForVerification(t, 1)

	if err := svc.ResendVerification(context.Background(), user.Email); err != nil {
		t.Fatalf("ResendVerification() error = %v", err)
	}

	resent := mailer.waitForVerification(t, 2)
	if resent == original {
		t.Error("resend should issue a fresh token")
	}
	stored, _ := users.GetUserByID(context.Background(), user.ID)
	if stored.VerificationToken != resent {
		t.Errorf("stored token = %q, want the resent token %q", stored.VerificationToken, resent)
	}
}

func TestResendVerification_RevealsNothing(t *testing.T) {
	svc, users, mailer := newAccountHarness(t)

	// Unknown email: silently succeeds.
	if err := svc.ResendVerification(context.Background(), "ghost@example.com"); err != nil {
		t.Errorf("unknown email error = %v, want nil", err)
	}

	// Already-verified account: also silently succeeds, no email.
	verified := &model.User{
		Username: "vera", Email: "vera@example.com",
		IsVerified: true, IsActive: true,
	}
	if err := users.Create(context.Background(), verified); err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}
	if err := svc.ResendVerification(context.Background(), "vera@example.com"); err != nil {
		t.Errorf("verified account error = %v, want nil", err)
	}

	if n := mailer.verificationCount(); n != 0 {
		t.Errorf("sent %d verification emails, want 0", n)
	}
}

// =========================================================================
// AUTHENTICATE
// =========================================================================

func TestAuthenticate_Success(t *testing.T) {
	svc, users, _ := newAccountHarness(t)
	user := registerTestUser(t, svc, "nadia")
	users.users[user.ID].IsVerified = true

	// Both username and email work as the identifier.
	for _, identifier := range []string{"nadia", "nadia@example.com"} {
		result, err := svc.Authenticate(context.Background(), identifier, "sekret1")
		if err != nil {
			t.Fatalf("Authenticate(%q) error = %v", identifier, err)
		}
		if result.Token == "" {
			t.Errorf("Authenticate(%q) returned no session token", identifier)
		}
		if result.User.ID != user.ID {
			t.Errorf("Authenticate(%q) user = %q, want %q", identifier, result.User.ID, user.ID)
		}
	}
}

// Unknown identifier, wrong password and deactivated account must be
// byte-for-byte indistinguishable, or the endpoint enumerates accounts.
func TestAuthenticate_UniformFailure(t *testing.T) {
	svc, users, _ := newAccountHarness(t)
	user := registerTestUser(t, svc, "nadia")
	users.users[user.ID].IsVerified = true

	inactive := registerTestUser(t, svc, "dormant")
	users.users[inactive.ID].IsVerified = true
	users.users[inactive.ID].IsActive = false

	attempts := []struct {
		name                 string
		identifier, password string
	}{
		{"unknown identifier", "ghost", "sekret1"},
		{"wrong password", "nadia", "wrong-password"},
		{"deactivated account", "dormant", "sekret1"},
	}

	var messages []string
	for _, attempt := range attempts {
		_, err := svc.Authenticate(context.Background(), attempt.identifier, attempt.password)
		if !errors.Is(err, apperror.ErrUnauthorized) {
			t.Fatalf("%s: error = %v, want ErrUnauthorized", attempt.name, err)
		}
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			t.Fatalf("%s: error = %v, want *apperror.AppError", attempt.name, err)
		}
		messages = append(messages, appErr.Message)
	}

	for i := 1; i < len(messages); i++ {
		if messages[i] != messages[0] {
			t.Errorf("failure messages differ: %q vs %q", messages[0], messages[i])
		}
	}
}

func TestAuthenticate_UnverifiedEmail(t *testing.T) {
	svc, _, _ := newAccountHarness(t)
	registerTestUser(t, svc, "nadia")

	// Correct password, but the email was never verified.
	_, err := svc.Authenticate(context.Background(), "nadia", "sekret1")
	if !errors.Is(err, apperror.ErrUnverified) {
		t.Errorf("Authenticate() error = %v, want ErrUnverified", err)
	}
}

// =========================================================================
// PASSWORD AND PROFILE CHANGES
// =========================================================================

func TestChangePassword(t *testing.T) {
	svc, users, _ := newAccountHarness(t)
	user := registerTestUser(t, svc, "nadia")
	users.users[user.ID].IsVerified = true
	user, _ = users.GetUserByID(context.Background(), user.ID)

	if err := svc.ChangePassword(context.Background(), user, "wrong-current", "newsekret"); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("wrong current password error = %v, want ErrUnauthorized", err)
	}
	if err := svc.ChangePassword(context.Background(), user, "sekret1", "short"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("short new password error = %v, want ErrValidation", err)
	}

	if err := svc.ChangePassword(context.Background(), user, "sekret1", "newsekret"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "nadia", "sekret1"); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("old password still works after change: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nadia", "newsekret"); err != nil {
		t.Errorf("new password rejected after change: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, users, _ := newAccountHarness(t)
	user := registerTestUser(t, svc, "nadia")
	registerTestUser(t, svc, "taken")

	strPtr := func(s string) *string { return &s }

	// Colliding with another account's username is a conflict.
	_, err := svc.UpdateProfile(context.Background(), user, ProfileUpdate{Username: strPtr("taken")})
	if !errors.Is(err, apperror.ErrDuplicate) {
		t.Errorf("taken username error = %v, want ErrDuplicate", err)
	}

	// Re-submitting your own username is not.
	user, _ = users.GetUserByID(context.Background(), user.ID)
	if _, err := svc.UpdateProfile(context.Background(), user, ProfileUpdate{Username: strPtr("nadia")}); err != nil {
		t.Errorf("own username re-submit error = %v, want nil", err)
	}

	user, _ = users.GetUserByID(context.Background(), user.ID)
	updated, err := svc.UpdateProfile(context.Background(), user, ProfileUpdate{
		FirstName: strPtr("  Anna  "),
		Email:     strPtr("Anna@Example.com"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.FirstName != "Anna" {
		t.Errorf("FirstName = %q, want trimmed %q", updated.FirstName, "Anna")
	}
	if updated.Email != "anna@example.com" {
		t.Errorf("Email = %q, want normalised %q", updated.Email, "anna@example.com")
	}

	stored, _ := users.GetUserByID(context.Background(), user.ID)
	if stored.Email != "anna@example.com" {
		t.Errorf("stored email = %q, update not persisted", stored.Email)
	}
}
