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

const expenseColumns = "id, user_id, member_id, member_name, category, amount, date, note, created_at"

// ListExpenses retrieves an account's expenses dated within [from, to].
func (s *SQLiteStore) ListExpenses(ctx context.Context, ownerID, from, to string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+expenseColumns+`
		 FROM expenses
		 WHERE user_id = ? AND date >= ? AND date <= ?
		 ORDER BY date DESC, created_at DESC, id DESC`,
		ownerID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []*models.Expense{}
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

// GetExpense retrieves a single expense.
func (s *SQLiteStore) GetExpense(ctx context.Context, ownerID string, id int64) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND user_id = ?`,
		id, ownerID,
	)

	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// CreateExpense persists a new expense.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, member_id, member_name, category, amount, date, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.UserID, expense.MemberID, expense.MemberName, expense.Category,
		expense.Amount.String(), expense.Date, nullableNote(expense.Note), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read expense id: %w", err)
	}
	expense.ID = id

	return nil
}

// UpdateExpense rewrites the mutable fields of an expense.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE expenses
		 SET member_id = ?, member_name = ?, category = ?, amount = ?, note = ?, date = ?
		 WHERE id = ? AND user_id = ?`,
		expense.MemberID, expense.MemberName, expense.Category, expense.Amount.String(),
		nullableNote(expense.Note), expense.Date, expense.ID, expense.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return requireAffected(res, "expense", expense.ID)
}

// DeleteExpense removes an expense by ID.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, ownerID string, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireAffected(res, "expense", id)
}

// ReassignExpenses moves a member's expenses to another member.
func (s *SQLiteStore) ReassignExpenses(ctx context.Context, ownerID string, fromMemberID int64, to *models.Member) (int64, error) {
	return reassignExpenses(ctx, s.db, ownerID, fromMemberID, to)
}

// ReassignAndDeleteMember moves a member's expenses to another member and
// deletes the member. Either both steps commit or neither does.
func (s *SQLiteStore) ReassignAndDeleteMember(ctx context.Context, ownerID string, memberID int64, to *models.Member) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	moved, err := reassignExpenses(ctx, tx, ownerID, memberID, to)
	if err != nil {
		return 0, err
	}

	if err := deleteMember(ctx, tx, ownerID, memberID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return moved, nil
}

func reassignExpenses(ctx context.Context, db execer, ownerID string, fromMemberID int64, to *models.Member) (int64, error) {
	res, err := db.ExecContext(ctx,
		"UPDATE expenses SET member_id = ?, member_name = ? WHERE member_id = ? AND user_id = ?",
		to.ID, to.Name, fromMemberID, ownerID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign expenses: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var note sql.NullString

	err := row.Scan(
		&expense.ID,
		&expense.UserID,
		&expense.MemberID,
		&expense.MemberName,
		&expense.Category,
		&expense.Amount,
		&expense.Date,
		&note,
		&expense.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}

	if note.Valid {
		expense.Note = note.String
	}
	return expense, nil
}

func nullableNote(note string) any {
	if note == "" {
		return nil
	}
	return note
}
