package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/familyspend/internal/models"
	"github.com/mmynk/familyspend/internal/storage"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ListMembers retrieves all members of an account, oldest first.
func (s *SQLiteStore) ListMembers(ctx context.Context, ownerID string) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, email, role, created_at
		 FROM members WHERE user_id = ? ORDER BY id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []*models.Member{}
	for rows.Next() {
		member := &models.Member{}
		var email sql.NullString
		var role string

		if err := rows.Scan(&member.ID, &member.UserID, &member.Name, &email, &role, &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}

		member.Role = models.Role(role)
		if email.Valid {
			member.Email = email.String
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// CreateMember persists a new member.
func (s *SQLiteStore) CreateMember(ctx context.Context, member *models.Member) error {
	return insertMember(ctx, s.db, member)
}

func insertMember(ctx context.Context, db execer, member *models.Member) error {
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().Unix()
	}
	if member.Role == "" {
		member.Role = models.RoleMember
	}

	var email any = nil
	if member.Email != "" {
		email = member.Email
	}

	res, err := db.ExecContext(ctx,
		"INSERT INTO members (user_id, name, email, role, created_at) VALUES (?, ?, ?, ?, ?)",
		member.UserID, member.Name, email, string(member.Role), member.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("admin member for %s: %w", member.UserID, storage.ErrConflict)
		}
		return fmt.Errorf("failed to insert member: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read member id: %w", err)
	}
	member.ID = id

	return nil
}

// DeleteMember removes a member. It fails while expenses still reference it.
func (s *SQLiteStore) DeleteMember(ctx context.Context, ownerID string, memberID int64) error {
	return deleteMember(ctx, s.db, ownerID, memberID)
}

func deleteMember(ctx context.Context, db execer, ownerID string, memberID int64) error {
	res, err := db.ExecContext(ctx, "DELETE FROM members WHERE id = ? AND user_id = ?", memberID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return requireAffected(res, "member", memberID)
}
