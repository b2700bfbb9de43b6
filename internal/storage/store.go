// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/familyspend/internal/models"
)

var (
	// ErrNotFound is returned when a row does not exist for the owner.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")
)

// AccountStore persists accounts. Creating an account also creates its Admin
// member, so an account never exists without one.
type AccountStore interface {
	// CreateAccount inserts the account and the given admin member together.
	// admin.UserID, admin.Role and admin.ID are set by the store.
	CreateAccount(ctx context.Context, account *models.Account, admin *models.Member) error

	// GetAccountByEmail returns ErrNotFound if no account uses the email.
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetAccountByID returns ErrNotFound if the account does not exist.
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
}

// SessionStore persists the server side of signed-in sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *models.Session) error

	// GetSession returns ErrNotFound once the session has been deleted.
	GetSession(ctx context.Context, id string) (*models.Session, error)

	// DeleteSession is idempotent.
	DeleteSession(ctx context.Context, id string) error

	// PurgeExpiredSessions removes sessions that expired before the given
	// Unix time and reports how many were removed.
	PurgeExpiredSessions(ctx context.Context, before int64) (int64, error)
}

// MemberStore persists family members. All methods are scoped to an owner.
type MemberStore interface {
	// ListMembers returns the owner's members ordered by ID ascending.
	ListMembers(ctx context.Context, ownerID string) ([]*models.Member, error)

	// CreateMember inserts a member and sets its ID and CreatedAt.
	CreateMember(ctx context.Context, member *models.Member) error

	// DeleteMember returns ErrNotFound if the member does not exist.
	DeleteMember(ctx context.Context, ownerID string, memberID int64) error
}

// ExpenseStore persists expenses. All methods are scoped to an owner.
type ExpenseStore interface {
	// ListExpenses returns expenses dated within [from, to] (YYYY-MM-DD,
	// inclusive), newest date first, then newest creation first.
	ListExpenses(ctx context.Context, ownerID, from, to string) ([]*models.Expense, error)

	// GetExpense returns ErrNotFound if the expense does not exist.
	GetExpense(ctx context.Context, ownerID string, id int64) (*models.Expense, error)

	// CreateExpense inserts an expense and sets its ID and CreatedAt.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// UpdateExpense rewrites member, member name, category, amount, note and
	// date. Returns ErrNotFound if the expense does not exist.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense returns ErrNotFound if the expense does not exist.
	DeleteExpense(ctx context.Context, ownerID string, id int64) error

	// ReassignExpenses moves every expense of fromMemberID to the target
	// member, rewriting both member_id and member_name. It returns the number
	// of expenses moved.
	ReassignExpenses(ctx context.Context, ownerID string, fromMemberID int64, to *models.Member) (int64, error)
}

// MemberReassigner is implemented by stores that can reassign a member's
// expenses and delete the member in one transaction.
type MemberReassigner interface {
	ReassignAndDeleteMember(ctx context.Context, ownerID string, memberID int64, to *models.Member) (int64, error)
}

// LedgerStore is the part of the store used by the expense/member ledger.
type LedgerStore interface {
	MemberStore
	ExpenseStore
}

// Store defines the full storage surface.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	AccountStore
	SessionStore
	LedgerStore

	// Close releases any resources held by the store.
	Close() error
}
