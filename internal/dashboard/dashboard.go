// Package dashboard holds the client-side state a screen layer renders: the
// selected month, the last server-confirmed month data and the expense form.
//
// Month fetches carry a generation number, so a response that arrives after
// a newer fetch or mutation started is dropped instead of overwriting newer
// state. Mutations are serialized: a second one while the first is still in
// flight fails with ErrBusy.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/familyspend/internal/calculator"
	"github.com/mmynk/familyspend/internal/calendar"
	"github.com/mmynk/familyspend/internal/ledger"
	"github.com/mmynk/familyspend/internal/models"
)

var (
	// ErrBusy is returned when a mutation is attempted while another is in flight.
	ErrBusy = errors.New("another change is still being saved")

	// ErrStale is returned by a fetch whose result was superseded.
	ErrStale = errors.New("superseded by a newer request")
)

// Backend is the ledger as seen by one signed-in user. *ledger.Bound serves
// it in process and *client.LedgerClient over the network.
type Backend interface {
	FetchMonth(ctx context.Context, window calendar.Window) (*ledger.MonthData, error)
	SaveExpense(ctx context.Context, window calendar.Window, in ledger.ExpenseInput) (*ledger.MonthData, error)
	DeleteExpense(ctx context.Context, window calendar.Window, id int64) (*ledger.MonthData, error)
	AddMember(ctx context.Context, window calendar.Window, in ledger.MemberInput) (*ledger.MonthData, error)
	DeleteMember(ctx context.Context, window calendar.Window, id int64) (*ledger.MonthData, error)
}

var _ Backend = (*ledger.Bound)(nil)

// Dashboard is safe for concurrent use.
type Dashboard struct {
	backend Backend

	mu         sync.Mutex
	window     calendar.Window
	generation uint64
	data       *ledger.MonthData
	busy       bool
}

// New creates a dashboard showing the month containing now. Call Refresh to
// load it.
func New(backend Backend, now time.Time) *Dashboard {
	window := calendar.Current(now)
	return &Dashboard{
		backend: backend,
		window:  window,
		data:    emptyMonth(window, nil),
	}
}

func emptyMonth(window calendar.Window, members []*models.Member) *ledger.MonthData {
	if members == nil {
		members = []*models.Member{}
	}
	return &ledger.MonthData{
		Window:   window,
		Members:  members,
		Expenses: []*models.Expense{},
		Summary:  calculator.Aggregate(nil),
	}
}

// Window returns the selected month.
func (d *Dashboard) Window() calendar.Window {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.window
}

// Data returns the last accepted month data.
func (d *Dashboard) Data() *ledger.MonthData {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data
}

// Busy reports whether a mutation is in flight.
func (d *Dashboard) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

// Navigate moves the selected month and loads it.
func (d *Dashboard) Navigate(ctx context.Context, dir calendar.Direction) (*ledger.MonthData, error) {
	d.mu.Lock()
	d.window = d.window.Navigate(dir)
	d.mu.Unlock()
	return d.Refresh(ctx)
}

// Select jumps to window and loads it.
func (d *Dashboard) Select(ctx context.Context, window calendar.Window) (*ledger.MonthData, error) {
	d.mu.Lock()
	d.window = window
	d.mu.Unlock()
	return d.Refresh(ctx)
}

// begin starts a request and returns its generation and target window.
// Callers hold d.mu.
func (d *Dashboard) begin() (uint64, calendar.Window) {
	d.generation++
	return d.generation, d.window
}

// Refresh loads the selected month. A failed fetch leaves the dashboard
// showing an empty month. ErrStale means a newer request took over.
func (d *Dashboard) Refresh(ctx context.Context) (*ledger.MonthData, error) {
	d.mu.Lock()
	gen, window := d.begin()
	d.mu.Unlock()

	data, err := d.backend.FetchMonth(ctx, window)

	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.generation {
		slog.Debug("Discarding superseded fetch", "month", window.String(), "generation", gen)
		return nil, ErrStale
	}
	if err != nil {
		d.data = emptyMonth(window, nil)
		return nil, err
	}
	d.data = data
	return data, nil
}

// mutate runs op unless another mutation is in flight. On success the
// returned month replaces local state, unless the user moved on meanwhile.
// On failure local state is left unchanged.
func (d *Dashboard) mutate(ctx context.Context, op func(context.Context, calendar.Window) (*ledger.MonthData, error)) (*ledger.MonthData, error) {
	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return nil, ErrBusy
	}
	d.busy = true
	gen, window := d.begin()
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.busy = false
		d.mu.Unlock()
	}()

	data, err := op(ctx, window)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if gen == d.generation {
		d.data = data
	}
	d.mu.Unlock()
	return data, nil
}

// SaveExpense submits the form. An invalid form returns its
// ValidationError without contacting the backend. The form is reset after
// a successful save.
func (d *Dashboard) SaveExpense(ctx context.Context, form *ExpenseForm) (*ledger.MonthData, error) {
	in, err := form.Submit()
	if err != nil {
		return nil, err
	}

	data, err := d.mutate(ctx, func(ctx context.Context, w calendar.Window) (*ledger.MonthData, error) {
		return d.backend.SaveExpense(ctx, w, in)
	})
	if err != nil {
		return nil, err
	}
	form.Reset()
	return data, nil
}

func (d *Dashboard) DeleteExpense(ctx context.Context, id int64) (*ledger.MonthData, error) {
	return d.mutate(ctx, func(ctx context.Context, w calendar.Window) (*ledger.MonthData, error) {
		return d.backend.DeleteExpense(ctx, w, id)
	})
}

// AddMember adds a member. A blank name is rejected locally.
func (d *Dashboard) AddMember(ctx context.Context, in ledger.MemberInput) (*ledger.MonthData, error) {
	if blank(in.Name) {
		return nil, &ledger.ValidationError{Field: "name", Message: "Please enter a name"}
	}
	return d.mutate(ctx, func(ctx context.Context, w calendar.Window) (*ledger.MonthData, error) {
		return d.backend.AddMember(ctx, w, in)
	})
}

func (d *Dashboard) DeleteMember(ctx context.Context, id int64) (*ledger.MonthData, error) {
	return d.mutate(ctx, func(ctx context.Context, w calendar.Window) (*ledger.MonthData, error) {
		return d.backend.DeleteMember(ctx, w, id)
	})
}
