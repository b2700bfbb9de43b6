// Package ledger implements the expense and member operations of one account.
//
// Every operation takes the caller's session explicitly and, on success,
// returns the refreshed month the caller is viewing. Local state is never
// patched optimistically; the returned MonthData is what the store holds.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/familyspend/internal/auth"
	"github.com/mmynk/familyspend/internal/calculator"
	"github.com/mmynk/familyspend/internal/calendar"
	"github.com/mmynk/familyspend/internal/models"
	"github.com/mmynk/familyspend/internal/storage"
)

// MonthData is the server-confirmed state of one month.
type MonthData struct {
	Window   calendar.Window
	Members  []*models.Member
	Expenses []*models.Expense
	Summary  calculator.Summary
}

// ExpenseInput carries the fields of an expense form.
// A zero ID creates a new expense.
type ExpenseInput struct {
	ID       int64
	MemberID int64
	Category string
	Amount   decimal.NullDecimal
	Note     string
	// Date is optional. Updates keep the stored date when empty; creates
	// derive it from the selected month.
	Date string
}

// MemberInput carries the fields of the add-member form.
type MemberInput struct {
	Name  string
	Email string
	Role  models.Role
}

// Ledger runs expense and member operations against a store.
type Ledger struct {
	store storage.LedgerStore
	now   func() time.Time
}

// New creates a ledger over the given store.
func New(store storage.LedgerStore) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// WithClock returns a copy of the ledger that reads the current time from now.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	return &Ledger{store: l.store, now: now}
}

// FetchMonth loads the members and the window's expenses.
func (l *Ledger) FetchMonth(ctx context.Context, sess *auth.Session, window calendar.Window) (*MonthData, error) {
	if sess == nil {
		return nil, ErrNoSession
	}
	owner := sess.OwnerID()
	from, to := window.DateRange()

	var members []*models.Member
	var expenses []*models.Expense

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = l.store.ListMembers(gctx, owner)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = l.store.ListExpenses(gctx, owner, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, remoteError("fetch month", err)
	}

	return &MonthData{
		Window:   window,
		Members:  members,
		Expenses: expenses,
		Summary:  calculator.Aggregate(expenses),
	}, nil
}

// SaveExpense creates or updates an expense.
func (l *Ledger) SaveExpense(ctx context.Context, sess *auth.Session, window calendar.Window, in ExpenseInput) (*MonthData, error) {
	if sess == nil {
		return nil, ErrNoSession
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	owner := sess.OwnerID()

	members, err := l.store.ListMembers(ctx, owner)
	if err != nil {
		return nil, remoteError("load members", err)
	}
	payer := models.FindMember(members, in.MemberID)
	if payer == nil {
		return nil, validationError("member", "Selected member no longer exists")
	}

	category := strings.TrimSpace(in.Category)
	note := strings.TrimSpace(in.Note)

	if in.ID != 0 {
		expense, err := l.store.GetExpense(ctx, owner, in.ID)
		if err != nil {
			return nil, remoteError("load expense", err)
		}
		expense.MemberID = payer.ID
		expense.MemberName = payer.Name
		expense.Category = category
		expense.Amount = in.Amount.Decimal
		expense.Note = note
		if in.Date != "" {
			expense.Date = in.Date
		}
		if err := l.store.UpdateExpense(ctx, expense); err != nil {
			return nil, remoteError("update expense", err)
		}
		slog.Info("Expense updated", "expense_id", expense.ID, "user_id", owner)
	} else {
		date := in.Date
		if date == "" {
			date = calendar.ExpenseDate(window, l.now())
		}
		expense := &models.Expense{
			UserID:     owner,
			MemberID:   payer.ID,
			MemberName: payer.Name,
			Category:   category,
			Amount:     in.Amount.Decimal,
			Date:       date,
			Note:       note,
			CreatedAt:  l.now().Unix(),
		}
		if err := l.store.CreateExpense(ctx, expense); err != nil {
			return nil, remoteError("create expense", err)
		}
		slog.Info("Expense created", "expense_id", expense.ID, "user_id", owner)
	}

	return l.FetchMonth(ctx, sess, window)
}

func (in ExpenseInput) validate() error {
	if in.MemberID == 0 {
		return validationError("member", "Please select a member")
	}
	if strings.TrimSpace(in.Category) == "" {
		return validationError("category", "Please select a category")
	}
	if !in.Amount.Valid {
		return validationError("amount", "Please enter an amount")
	}
	if in.Amount.Decimal.IsNegative() {
		return validationError("amount", "Amount cannot be negative")
	}
	if in.Date != "" {
		if _, err := time.Parse(calendar.DateLayout, in.Date); err != nil {
			return validationError("date", "Date must look like 2006-01-02")
		}
	}
	return nil
}

// DeleteExpense removes an expense.
func (l *Ledger) DeleteExpense(ctx context.Context, sess *auth.Session, window calendar.Window, id int64) (*MonthData, error) {
	if sess == nil {
		return nil, ErrNoSession
	}
	if err := l.store.DeleteExpense(ctx, sess.OwnerID(), id); err != nil {
		return nil, remoteError("delete expense", err)
	}
	slog.Info("Expense deleted", "expense_id", id, "user_id", sess.OwnerID())

	return l.FetchMonth(ctx, sess, window)
}

// AddMember adds a family member. The role defaults to Member.
func (l *Ledger) AddMember(ctx context.Context, sess *auth.Session, window calendar.Window, in MemberInput) (*MonthData, error) {
	if sess == nil {
		return nil, ErrNoSession
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name", "Please enter a name")
	}
	role := in.Role
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		return nil, validationError("role", "Role must be Member or Admin")
	}
	if role == models.RoleAdmin {
		return nil, domainError(CodeAdminExists, "This family already has an admin")
	}

	member := &models.Member{
		UserID:    sess.OwnerID(),
		Name:      name,
		Email:     strings.TrimSpace(in.Email),
		Role:      role,
		CreatedAt: l.now().Unix(),
	}
	if err := l.store.CreateMember(ctx, member); err != nil {
		return nil, remoteError("create member", err)
	}
	slog.Info("Member added", "member_id", member.ID, "user_id", member.UserID)

	return l.FetchMonth(ctx, sess, window)
}

// DeleteMember reassigns a member's expenses to the Admin and removes the member.
func (l *Ledger) DeleteMember(ctx context.Context, sess *auth.Session, window calendar.Window, id int64) (*MonthData, error) {
	if sess == nil {
		return nil, ErrNoSession
	}
	owner := sess.OwnerID()

	members, err := l.store.ListMembers(ctx, owner)
	if err != nil {
		return nil, remoteError("load members", err)
	}

	admin := models.FindAdmin(members)
	if admin == nil {
		return nil, domainError(CodeNoAdmin, "No admin found to reassign expenses to")
	}
	target := models.FindMember(members, id)
	if target == nil {
		return nil, domainError(CodeMemberNotFound, "Member not found")
	}
	if target.IsAdmin() {
		return nil, domainError(CodeTargetIsAdmin, "The admin cannot be deleted")
	}

	moved, err := l.reassignAndDelete(ctx, owner, target.ID, admin)
	if err != nil {
		return nil, err
	}
	slog.Info("Member deleted",
		"member_id", target.ID,
		"reassigned_to", admin.ID,
		"expenses_moved", moved,
		"user_id", owner,
	)

	return l.FetchMonth(ctx, sess, window)
}

func (l *Ledger) reassignAndDelete(ctx context.Context, owner string, memberID int64, admin *models.Member) (int64, error) {
	if tx, ok := l.store.(storage.MemberReassigner); ok {
		moved, err := tx.ReassignAndDeleteMember(ctx, owner, memberID, admin)
		if err != nil {
			return 0, remoteError("delete member", err)
		}
		return moved, nil
	}

	moved, err := l.store.ReassignExpenses(ctx, owner, memberID, admin)
	if err != nil {
		return 0, remoteError("reassign expenses", err)
	}

	// A member already gone means an earlier attempt finished the job.
	err = l.store.DeleteMember(ctx, owner, memberID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Warn("Member deletion partially applied",
			"member_id", memberID,
			"expenses_moved", moved,
			"error", err,
		)
		rerr := remoteError("delete member", err)
		rerr.Partial = true
		return moved, rerr
	}

	return moved, nil
}

// Categories returns the suggested categories followed by any other
// category used in the month, in first-use order.
func Categories(data *MonthData) []string {
	categories := append([]string(nil), models.SuggestedCategories...)
	if data == nil {
		return categories
	}

	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		seen[c] = true
	}
	for _, b := range data.Summary.ByCategory {
		if !seen[b.Key] {
			seen[b.Key] = true
			categories = append(categories, b.Key)
		}
	}
	return categories
}
