package model

import "time"

// User represents a registered account.
//
// The internal ID is an xid string (same scheme as the rest of the app's
// string IDs). Username and email are UNIQUE in the database — that
// constraint, not application code, is the final arbiter when two
// registrations race.
//
// WHY PasswordHash HAS json:"-"?
// The hash must never leave the server. Tagging it json:"-" means even a
// careless handler that encodes the whole struct cannot leak it.
// VerificationToken and its expiry get the same treatment: the token is a
// credential, delivered only by email.
type User struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	FirstName         string     `json:"firstName"`
	LastName          string     `json:"lastName"`
	PasswordHash      string     `json:"-"`
	IsVerified        bool       `json:"isVerified"`
	IsActive          bool       `json:"isActive"`
	VerificationToken string     `json:"-"`
	TokenExpiresAt    *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}
