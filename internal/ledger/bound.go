package ledger

import (
	"context"

	"github.com/mmynk/familyspend/internal/auth"
	"github.com/mmynk/familyspend/internal/calendar"
)

// Bound is a Ledger fixed to one session.
type Bound struct {
	ledger  *Ledger
	session *auth.Session
}

// Bind returns the ledger's operations bound to sess.
func (l *Ledger) Bind(sess *auth.Session) *Bound {
	return &Bound{ledger: l, session: sess}
}

func (b *Bound) FetchMonth(ctx context.Context, window calendar.Window) (*MonthData, error) {
	return b.ledger.FetchMonth(ctx, b.session, window)
}

func (b *Bound) SaveExpense(ctx context.Context, window calendar.Window, in ExpenseInput) (*MonthData, error) {
	return b.ledger.SaveExpense(ctx, b.session, window, in)
}

func (b *Bound) DeleteExpense(ctx context.Context, window calendar.Window, id int64) (*MonthData, error) {
	return b.ledger.DeleteExpense(ctx, b.session, window, id)
}

func (b *Bound) AddMember(ctx context.Context, window calendar.Window, in MemberInput) (*MonthData, error) {
	return b.ledger.AddMember(ctx, b.session, window, in)
}

func (b *Bound) DeleteMember(ctx context.Context, window calendar.Window, id int64) (*MonthData, error) {
	return b.ledger.DeleteMember(ctx, b.session, window, id)
}
