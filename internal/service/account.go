// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services accept primitives and small input structs, never HTTP types, and
// return domain errors (apperror), never status codes. Every service takes
// its repository as an interface so tests can substitute in-memory mocks.
//
// TENANCY RULE:
// Every method that touches a pet, activity, medication or reminder takes
// the authenticated owner's ID and passes it straight into the repository
// predicate. No service method ever fetches an entity "by ID alone".
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"petwell/internal/apperror"
	"petwell/internal/auth"
	"petwell/internal/mail"
	"petwell/internal/model"
	"petwell/internal/repository"
)

// Account validation limits.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 6
)

// AccountService owns the account lifecycle: registration, email
// verification, login, password and profile changes.
type AccountService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	mailer    mail.Sender
	logger    *slog.Logger
}

func NewAccountService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	mailer mail.Sender,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		mailer:    mailer,
		logger:    logger,
	}
}

// RegisterInput is everything a new account needs.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a new, unverified account and triggers the verification
// email.
//
// DUPLICATE HANDLING — TWO LINES OF DEFENCE:
// We pre-check username and email for a friendly early error, but the
// pre-check is advisory: two concurrent registrations can both pass it.
// The database UNIQUE constraint is the real arbiter, and the repository
// translates its violation into the same apperror.ErrDuplicate — so the
// race loser gets an identical 409 to the pre-check path.
//
// The verification email is fire-and-forget: a down SMTP relay must not
// fail registration. The user can always hit resend-verification later.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength))
	}
	if !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email address is required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	// Advisory pre-checks. ErrNotFound here is the GOOD outcome.
	if _, err := s.users.GetUserByIdentifier(ctx, username); err == nil {
		return nil, apperror.Duplicate("username")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.Duplicate("email")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	token, expiry, err := auth.NewVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("generating verification token: %w", err)
	}

	user := &model.User{
		Username:          username,
		Email:             email,
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		PasswordHash:      hash,
		IsActive:          true,
		VerificationToken: token,
		TokenExpiresAt:    &expiry,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Duplicate from the UNIQUE constraint propagates as-is.
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	go func() {
		_ = s.mailer.SendVerification(user.Email, user.FirstName, token)
	}()

	return user, nil
}

// VerificationResult is the outcome of a verifyEmail attempt.
type VerificationResult string

const (
	VerificationSuccess         VerificationResult = "success"
	VerificationAlreadyVerified VerificationResult = "already_verified"
)

// VerifyEmail redeems an opaque verification token.
//
// SINGLE-USE BY CONSTRUCTION:
// Success clears the stored token, so replaying the same link finds no
// matching user and fails as invalid. A token presented for an
// already-verified account (e.g. two browser tabs) reports
// AlreadyVerified rather than an error — the user's goal is achieved.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) (VerificationResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperror.ValidationFailed("token", "verification token is required")
	}

	user, err := s.users.GetUserByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.ValidationFailed("token", "Invalid verification token")
		}
		return "", fmt.Errorf("looking up verification token: %w", err)
	}

	if user.IsVerified {
		return VerificationAlreadyVerified, nil
	}

	if user.TokenExpiresAt == nil || time.Now().After(*user.TokenExpiresAt) {
		return "", apperror.ValidationFailed("token",
			"Verification token has expired. Please request a new one.")
	}

	user.IsVerified = true
	user.VerificationToken = ""
	user.TokenExpiresAt = nil

	if err := s.users.Update(ctx, user); err != nil {
		return "", fmt.Errorf("marking user verified: %w", err)
	}

	s.logger.Info("email verified", slog.String("userID", user.ID))

	go func() {
		_ = s.mailer.SendWelcome(user.Email, user.FirstName)
	}()

	return VerificationSuccess, nil
}

// ResendVerification regenerates the verification token for an unverified
// account and re-sends the email.
//
// ANTI-ENUMERATION:
// This method NEVER reveals whether the email exists or is already
// verified — all three cases (unknown email, verified account, email
// re-sent) return nil, and the handler responds with the same generic
// "If the email exists, a verification link has been sent." An attacker
// probing this endpoint learns nothing about the account base.
func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("looking up email: %w", err)
	}

	if user.IsVerified {
		return nil
	}

	token, expiry, err := auth.NewVerificationToken()
	if err != nil {
		return fmt.Errorf("generating verification token: %w", err)
	}

	user.VerificationToken = token
	user.TokenExpiresAt = &expiry

	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("storing new verification token: %w", err)
	}

	go func() {
		_ = s.mailer.SendVerification(user.Email, user.FirstName, token)
	}()

	return nil
}

// AuthResult bundles the logged-in user with their freshly issued session
// token so the handler can respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Authenticate checks credentials and issues a session token.
//
// UNIFORM FAILURE:
// Unknown identifier, wrong password and deactivated account all return
// the exact same "Incorrect username or password" — response content AND
// error type are indistinguishable, so the endpoint cannot be used to
// enumerate accounts.
//
// The unverified-email error, by contrast, is deliberately specific. It is
// only reachable AFTER the password check passes: the caller has proved
// they own the account, so telling them to check their inbox leaks nothing.
func (s *AccountService) Authenticate(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = strings.TrimSpace(identifier)

	user, err := s.users.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Incorrect username or password")
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("Incorrect username or password")
	}

	if !user.IsActive {
		return nil, apperror.Unauthorized("Incorrect username or password")
	}

	if !user.IsVerified {
		return nil, apperror.Unverified()
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing session token: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// ChangePassword re-verifies the current password before rehashing.
// Requiring the current password means a stolen session token alone is not
// enough to lock the owner out of their account.
func (s *AccountService) ChangePassword(ctx context.Context, user *model.User, current, newPassword string) error {
	if err := s.passwords.Verify(user.PasswordHash, current); err != nil {
		return apperror.Unauthorized("Current password is incorrect")
	}
	if len(newPassword) < MinPasswordLength {
		return apperror.ValidationFailed("newPassword",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hashing new password: %w", err)
	}

	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("storing new password: %w", err)
	}

	s.logger.Info("password changed", slog.String("userID", user.ID))
	return nil
}

// ProfileUpdate is a partial update: nil fields are left unchanged.
type ProfileUpdate struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
}

// UpdateProfile applies a partial profile change, re-checking uniqueness
// when the username or email actually changes.
func (s *AccountService) UpdateProfile(ctx context.Context, user *model.User, patch ProfileUpdate) (*model.User, error) {
	if patch.Username != nil {
		username := strings.TrimSpace(*patch.Username)
		if username != user.Username {
			if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
				return nil, apperror.ValidationFailed("username",
					fmt.Sprintf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength))
			}
			if _, err := s.users.GetUserByIdentifier(ctx, username); err == nil {
				return nil, apperror.Duplicate("username")
			} else if !errors.Is(err, apperror.ErrNotFound) {
				return nil, fmt.Errorf("checking username: %w", err)
			}
			user.Username = username
		}
	}

	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		if email != user.Email {
			if !strings.Contains(email, "@") {
				return nil, apperror.ValidationFailed("email", "a valid email address is required")
			}
			if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
				return nil, apperror.Duplicate("email")
			} else if !errors.Is(err, apperror.ErrNotFound) {
				return nil, fmt.Errorf("checking email: %w", err)
			}
			user.Email = email
		}
	}

	if patch.FirstName != nil {
		user.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		user.LastName = strings.TrimSpace(*patch.LastName)
	}

	if err := s.users.Update(ctx, user); err != nil {
		// The UNIQUE constraint backstops the pre-checks here too.
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	return user, nil
}

// GetUserByID returns the user for the given internal ID. Used by the auth
// middleware and the /users/me handler.
func (s *AccountService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetUserByID(ctx, id)
}
