package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/familyspend/internal/models"
	"github.com/mmynk/familyspend/internal/storage"
)

// Session is the explicit session context handed to the ledger.
// It exists only between a successful sign-in and sign-out.
type Session struct {
	ID        string
	AccountID string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// OwnerID returns the account ID that scopes every ledger row.
func (s *Session) OwnerID() string {
	return s.AccountID
}

// SessionStorage defines the persistence operations the session manager needs.
type SessionStorage interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// SessionManager opens, resolves and closes sessions.
type SessionManager struct {
	jwt     *JWTManager
	storage SessionStorage
	ttl     time.Duration
	now     func() time.Time
}

// NewSessionManager creates a session manager issuing tokens valid for ttl.
func NewSessionManager(jwtManager *JWTManager, storage SessionStorage, ttl time.Duration) *SessionManager {
	return &SessionManager{
		jwt:     jwtManager,
		storage: storage,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Open creates a session for the account and returns it with a signed token.
func (m *SessionManager) Open(ctx context.Context, account *models.Account) (*Session, error) {
	now := m.now()
	record := &models.Session{
		ID:        uuid.New().String(),
		AccountID: account.ID,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(m.ttl).Unix(),
	}

	if err := m.storage.CreateSession(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	expiresAt := time.Unix(record.ExpiresAt, 0)
	token, err := m.jwt.Generate(record.ID, account.ID, account.Email, now, expiresAt)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:        record.ID,
		AccountID: account.ID,
		Email:     account.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Resolve validates a token and checks that its session is still open.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := m.jwt.Validate(token)
	if err != nil {
		return nil, err
	}

	record, err := m.storage.GetSession(ctx, claims.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrSessionClosed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if record.AccountID != claims.AccountID || record.Expired(m.now()) {
		return nil, ErrInvalidToken
	}

	return &Session{
		ID:        record.ID,
		AccountID: record.AccountID,
		Email:     claims.Email,
		Token:     token,
		ExpiresAt: time.Unix(record.ExpiresAt, 0),
	}, nil
}

// Close destroys the session. Closing an already closed session succeeds.
func (m *SessionManager) Close(ctx context.Context, session *Session) error {
	if err := m.storage.DeleteSession(ctx, session.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
