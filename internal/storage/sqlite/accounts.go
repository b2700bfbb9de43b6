package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/familyspend/internal/models"
	"github.com/mmynk/familyspend/internal/storage"
)

// CreateAccount inserts a new account and its Admin member in one transaction.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *models.Account, admin *models.Member) error {
	if account.CreatedAt == 0 {
		account.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO accounts (id, email, display_name, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		account.ID, account.Email, account.DisplayName, account.PasswordHash, account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account %s: %w", account.Email, storage.ErrConflict)
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	admin.UserID = account.ID
	admin.Role = models.RoleAdmin
	if err := insertMember(ctx, tx, admin); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetAccountByEmail retrieves an account by its (normalized) email address.
func (s *SQLiteStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.getAccount(ctx, "email", models.NormalizeEmail(email))
}

// GetAccountByID retrieves an account by its ID.
func (s *SQLiteStore) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	return s.getAccount(ctx, "id", id)
}

func (s *SQLiteStore) getAccount(ctx context.Context, column, value string) (*models.Account, error) {
	query := `
		SELECT id, email, display_name, password_hash, created_at
		FROM accounts
		WHERE ` + column + ` = ?
	`

	account := &models.Account{}
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&account.ID,
		&account.Email,
		&account.DisplayName,
		&account.PasswordHash,
		&account.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", value, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by %s: %w", column, err)
	}

	return account, nil
}
