package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account represents a registered owner of a family ledger.
type Account struct {
	// ID is the unique identifier (UUID format). It is the opaque user_id
	// stamped on every member and expense row.
	ID string

	// Email is the login address, stored lower-cased and unique.
	Email string

	// DisplayName is the name given at sign-up. It also becomes the name of
	// the account's Admin member.
	DisplayName string

	// PasswordHash is the bcrypt hash of the account password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewAccount builds an account with a fresh ID and creation time.
func NewAccount(email, displayName, passwordHash string) *Account {
	return &Account{
		ID:           uuid.New().String(),
		Email:        NormalizeEmail(email),
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Session is the persisted half of a signed-in session.
// The session token carries ID as its jti claim.
type Session struct {
	ID        string
	AccountID string
	CreatedAt int64
	ExpiresAt int64
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return now.Unix() >= s.ExpiresAt
}
