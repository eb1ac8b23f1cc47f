package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"petwell/internal/apperror"
	"petwell/internal/model"
	"petwell/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, username, email, first_name, last_name, password_hash,
	is_verified, is_active, verification_token, token_expires_at, created_at, updated_at`

// Create inserts a new user row.
//
// RACE RESOLUTION VIA UNIQUE CONSTRAINT:
// The service pre-checks username/email, but two concurrent registrations
// can both pass that check. The UNIQUE constraints on users.username and
// users.email reject the second writer here, and we translate that
// violation into the exact same ErrDuplicate the pre-check produces. The
// caller cannot tell which path rejected it — which is the point.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, first_name, last_name, password_hash,
			is_verified, is_active, verification_token, token_expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.IsVerified,
		user.IsActive,
		nullString(user.VerificationToken),
		user.TokenExpiresAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users.username") {
			return apperror.Duplicate("username")
		}
		if isUniqueViolation(err, "users.email") {
			return apperror.Duplicate("email")
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByIdentifier matches the identifier against username OR email —
// the login form accepts either.
func (db *DB) GetUserByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	return db.getUser(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? OR email = ?`,
		identifier, identifier)
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// GetUserByVerificationToken finds the user holding an outstanding
// verification token. Verified users have the column NULLed, so a used
// token matches nothing.
func (db *DB) GetUserByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	return db.getUser(ctx,
		`SELECT `+userColumns+` FROM users WHERE verification_token = ?`, token)
}

// Update writes back every mutable column. The caller (service layer) is
// responsible for having fetched the row first.
func (db *DB) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, first_name = ?, last_name = ?,
			password_hash = ?, is_verified = ?, is_active = ?,
			verification_token = ?, token_expires_at = ?, updated_at = ?
		 WHERE id = ?`,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.IsVerified,
		user.IsActive,
		nullString(user.VerificationToken),
		user.TokenExpiresAt,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "users.username") {
			return apperror.Duplicate("username")
		}
		if isUniqueViolation(err, "users.email") {
			return apperror.Duplicate("email")
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("user")
	}

	return nil
}

func (db *DB) getUser(ctx context.Context, query string, args ...any) (*model.User, error) {
	var (
		u     model.User
		token sql.NullString
	)

	err := db.conn.QueryRowContext(ctx, query, args...).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.PasswordHash,
		&u.IsVerified,
		&u.IsActive,
		&token,
		&u.TokenExpiresAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	u.VerificationToken = token.String
	return &u, nil
}

// nullString maps "" to NULL so a cleared verification token really is
// absent, not an empty string another lookup could match.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
