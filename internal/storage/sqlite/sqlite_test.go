package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/familyspend/internal/models"
	"github.com/mmynk/familyspend/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "familyspend-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func createAccount(t *testing.T, store *SQLiteStore, email, name string) (*models.Account, *models.Member) {
	t.Helper()

	account := models.NewAccount(email, name, "hash")
	admin := &models.Member{Name: name, Email: email}
	if err := store.CreateAccount(context.Background(), account, admin); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	return account, admin
}

func addExpense(t *testing.T, store *SQLiteStore, owner string, member *models.Member, date, amount string, createdAt int64) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:     owner,
		MemberID:   member.ID,
		MemberName: member.Name,
		Category:   "Groceries",
		Amount:     decimal.RequireFromString(amount),
		Date:       date,
		CreatedAt:  createdAt,
	}
	if err := store.CreateExpense(context.Background(), expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return expense
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateAccount creates the admin member", func(t *testing.T) {
		account, admin := createAccount(t, store, "Sam@Example.com ", "Sam")

		if admin.ID == 0 {
			t.Error("Expected admin ID to be assigned")
		}
		if admin.Role != models.RoleAdmin {
			t.Errorf("Role = %s, want Admin", admin.Role)
		}

		members, err := store.ListMembers(ctx, account.ID)
		if err != nil {
			t.Fatalf("ListMembers failed: %v", err)
		}
		if len(members) != 1 || !members[0].IsAdmin() || members[0].Name != "Sam" {
			t.Fatalf("unexpected members: %+v", members)
		}

		byEmail, err := store.GetAccountByEmail(ctx, "sam@example.com")
		if err != nil {
			t.Fatalf("GetAccountByEmail failed: %v", err)
		}
		if byEmail.ID != account.ID {
			t.Errorf("ID mismatch: got %s, want %s", byEmail.ID, account.ID)
		}
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		createAccount(t, store, "dup@example.com", "First")

		err := store.CreateAccount(ctx, models.NewAccount("dup@example.com", "Second", "hash"), &models.Member{Name: "Second"})
		if !errors.Is(err, storage.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("missing account is not found", func(t *testing.T) {
		_, err := store.GetAccountByID(ctx, "nope")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("only one admin per account", func(t *testing.T) {
		account, _ := createAccount(t, store, "admin@example.com", "Ada")

		err := store.CreateMember(ctx, &models.Member{UserID: account.ID, Name: "Other", Role: models.RoleAdmin})
		if !errors.Is(err, storage.ErrConflict) {
			t.Fatalf("expected ErrConflict for second admin, got %v", err)
		}
	})

	t.Run("ListExpenses filters by month and orders newest first", func(t *testing.T) {
		account, admin := createAccount(t, store, "order@example.com", "Ola")

		older := addExpense(t, store, account.ID, admin, "2024-02-10", "5", 100)
		sameDayFirst := addExpense(t, store, account.ID, admin, "2024-02-20", "6", 200)
		sameDaySecond := addExpense(t, store, account.ID, admin, "2024-02-20", "7", 300)
		addExpense(t, store, account.ID, admin, "2024-03-01", "8", 400)
		addExpense(t, store, account.ID, admin, "2024-01-31", "9", 500)

		expenses, err := store.ListExpenses(ctx, account.ID, "2024-02-01", "2024-02-29")
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}

		wantIDs := []int64{sameDaySecond.ID, sameDayFirst.ID, older.ID}
		if len(expenses) != len(wantIDs) {
			t.Fatalf("got %d expenses, want %d", len(expenses), len(wantIDs))
		}
		for i, id := range wantIDs {
			if expenses[i].ID != id {
				t.Errorf("position %d: got expense %d, want %d", i, expenses[i].ID, id)
			}
		}
		if !expenses[0].Amount.Equal(decimal.NewFromInt(7)) {
			t.Errorf("Amount round trip = %s", expenses[0].Amount)
		}
	})

	t.Run("expenses are scoped to their owner", func(t *testing.T) {
		first, firstAdmin := createAccount(t, store, "a@example.com", "A")
		second, _ := createAccount(t, store, "b@example.com", "B")

		expense := addExpense(t, store, first.ID, firstAdmin, "2024-05-05", "10", 0)

		if _, err := store.GetExpense(ctx, second.ID, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound across accounts, got %v", err)
		}
		if err := store.DeleteExpense(ctx, second.ID, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound deleting across accounts, got %v", err)
		}
	})

	t.Run("UpdateExpense and DeleteExpense", func(t *testing.T) {
		account, admin := createAccount(t, store, "upd@example.com", "Uma")
		expense := addExpense(t, store, account.ID, admin, "2024-06-01", "1", 0)

		expense.Category = "Meal"
		expense.Amount = decimal.RequireFromString("12.34")
		expense.Note = "lunch"
		if err := store.UpdateExpense(ctx, expense); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, account.ID, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Category != "Meal" || got.Note != "lunch" || !got.Amount.Equal(expense.Amount) {
			t.Errorf("update not persisted: %+v", got)
		}

		if err := store.DeleteExpense(ctx, account.ID, expense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if err := store.DeleteExpense(ctx, account.ID, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("member with expenses cannot be deleted directly", func(t *testing.T) {
		account, _ := createAccount(t, store, "fk@example.com", "Fay")
		lee := &models.Member{UserID: account.ID, Name: "Lee"}
		if err := store.CreateMember(ctx, lee); err != nil {
			t.Fatalf("CreateMember failed: %v", err)
		}
		addExpense(t, store, account.ID, lee, "2024-07-01", "20", 0)

		if err := store.DeleteMember(ctx, account.ID, lee.ID); err == nil {
			t.Fatal("expected foreign key failure deleting a member with expenses")
		}
	})

	t.Run("ReassignAndDeleteMember moves expenses to the admin", func(t *testing.T) {
		account, admin := createAccount(t, store, "move@example.com", "Sam")
		lee := &models.Member{UserID: account.ID, Name: "Lee"}
		if err := store.CreateMember(ctx, lee); err != nil {
			t.Fatalf("CreateMember failed: %v", err)
		}
		expense := addExpense(t, store, account.ID, lee, "2024-08-01", "20", 0)

		moved, err := store.ReassignAndDeleteMember(ctx, account.ID, lee.ID, admin)
		if err != nil {
			t.Fatalf("ReassignAndDeleteMember failed: %v", err)
		}
		if moved != 1 {
			t.Errorf("moved = %d, want 1", moved)
		}

		got, err := store.GetExpense(ctx, account.ID, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.MemberID != admin.ID || got.MemberName != "Sam" {
			t.Errorf("expense not reassigned: %+v", got)
		}

		members, _ := store.ListMembers(ctx, account.ID)
		if len(members) != 1 || members[0].ID != admin.ID {
			t.Errorf("expected only the admin to remain, got %+v", members)
		}
	})

	t.Run("ReassignAndDeleteMember rolls back when the member is missing", func(t *testing.T) {
		account, admin := createAccount(t, store, "rollback@example.com", "Rae")
		other, otherAdmin := createAccount(t, store, "rollback2@example.com", "Ray")
		expense := addExpense(t, store, other.ID, otherAdmin, "2024-09-01", "3", 0)

		_, err := store.ReassignAndDeleteMember(ctx, account.ID, 999999, admin)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}

		got, _ := store.GetExpense(ctx, other.ID, expense.ID)
		if got.MemberID != otherAdmin.ID {
			t.Errorf("unrelated expense touched: %+v", got)
		}
	})

	t.Run("sessions can be deleted and purged", func(t *testing.T) {
		account, _ := createAccount(t, store, "sess@example.com", "Sue")

		live := &models.Session{ID: "live", AccountID: account.ID, CreatedAt: 1, ExpiresAt: 5000}
		stale := &models.Session{ID: "stale", AccountID: account.ID, CreatedAt: 1, ExpiresAt: 10}
		for _, s := range []*models.Session{live, stale} {
			if err := store.CreateSession(ctx, s); err != nil {
				t.Fatalf("CreateSession failed: %v", err)
			}
		}

		purged, err := store.PurgeExpiredSessions(ctx, 100)
		if err != nil {
			t.Fatalf("PurgeExpiredSessions failed: %v", err)
		}
		if purged != 1 {
			t.Errorf("purged = %d, want 1", purged)
		}

		if _, err := store.GetSession(ctx, "live"); err != nil {
			t.Errorf("live session missing: %v", err)
		}
		if err := store.DeleteSession(ctx, "live"); err != nil {
			t.Fatalf("DeleteSession failed: %v", err)
		}
		if err := store.DeleteSession(ctx, "live"); err != nil {
			t.Errorf("DeleteSession should be idempotent, got %v", err)
		}
		if _, err := store.GetSession(ctx, "live"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})
}
