package dashboard

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/familyspend/internal/ledger"
	"github.com/mmynk/familyspend/internal/models"
)

// FormState is the state of an ExpenseForm.
//
//	Empty -> Editing -> Valid | Invalid
//
// Any edit moves the form back to Editing. Only a Valid form submits.
type FormState int

const (
	FormEmpty FormState = iota
	FormEditing
	FormValid
	FormInvalid
)

func (s FormState) String() string {
	switch s {
	case FormEmpty:
		return "empty"
	case FormEditing:
		return "editing"
	case FormValid:
		return "valid"
	case FormInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ExpenseForm collects the fields of the add/edit expense form as typed.
type ExpenseForm struct {
	id       int64
	memberID int64
	category string
	amount   string
	note     string
	date     string

	state FormState
	err   *ledger.ValidationError
}

// NewExpenseForm returns an empty form for a new expense.
func NewExpenseForm() *ExpenseForm {
	return &ExpenseForm{}
}

// EditExpenseForm returns a form prefilled from e. It is already validated.
func EditExpenseForm(e *models.Expense) *ExpenseForm {
	f := &ExpenseForm{
		id:       e.ID,
		memberID: e.MemberID,
		category: e.Category,
		amount:   e.Amount.String(),
		note:     e.Note,
		date:     e.Date,
		state:    FormEditing,
	}
	f.Validate()
	return f
}

func (f *ExpenseForm) State() FormState { return f.state }

// Err returns the problem found by the last Validate, if any.
func (f *ExpenseForm) Err() *ledger.ValidationError { return f.err }

func (f *ExpenseForm) ID() int64 { return f.id }

func (f *ExpenseForm) edit() {
	f.state = FormEditing
	f.err = nil
}

func (f *ExpenseForm) SetMember(id int64) {
	f.memberID = id
	f.edit()
}

func (f *ExpenseForm) SetCategory(category string) {
	f.category = category
	f.edit()
}

// SetAmount takes the amount as typed. Both "12.50" and "12,50" are accepted.
func (f *ExpenseForm) SetAmount(amount string) {
	f.amount = amount
	f.edit()
}

func (f *ExpenseForm) SetNote(note string) {
	f.note = note
	f.edit()
}

// SetDate overrides the date. Empty means the store picks it.
func (f *ExpenseForm) SetDate(date string) {
	f.date = date
	f.edit()
}

// Validate moves an edited form to Valid or Invalid. An untouched form
// stays Empty.
func (f *ExpenseForm) Validate() FormState {
	if f.state == FormEmpty {
		return f.state
	}
	if _, err := f.input(); err != nil {
		f.state = FormInvalid
		f.err = err
	} else {
		f.state = FormValid
		f.err = nil
	}
	return f.state
}

// Submit validates the form and returns its input. An Empty form is
// reported as missing its member.
func (f *ExpenseForm) Submit() (ledger.ExpenseInput, error) {
	if f.state == FormEmpty {
		f.state = FormEditing
	}
	if f.Validate() != FormValid {
		return ledger.ExpenseInput{}, f.err
	}
	in, _ := f.input()
	return in, nil
}

// Reset empties the form.
func (f *ExpenseForm) Reset() {
	*f = ExpenseForm{}
}

func (f *ExpenseForm) input() (ledger.ExpenseInput, *ledger.ValidationError) {
	if f.memberID == 0 {
		return ledger.ExpenseInput{}, &ledger.ValidationError{Field: "member", Message: "Please select a member"}
	}
	if blank(f.category) {
		return ledger.ExpenseInput{}, &ledger.ValidationError{Field: "category", Message: "Please select a category"}
	}

	amount, verr := parseAmount(f.amount)
	if verr != nil {
		return ledger.ExpenseInput{}, verr
	}

	return ledger.ExpenseInput{
		ID:       f.id,
		MemberID: f.memberID,
		Category: strings.TrimSpace(f.category),
		Amount:   decimal.NewNullDecimal(amount),
		Note:     strings.TrimSpace(f.note),
		Date:     strings.TrimSpace(f.date),
	}, nil
}

// parseAmount reads a non-negative amount typed with either a point or a
// comma as the decimal separator.
func parseAmount(s string) (decimal.Decimal, *ledger.ValidationError) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, &ledger.ValidationError{Field: "amount", Message: "Please enter an amount"}
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ledger.ValidationError{Field: "amount", Message: "Amount must be a number"}
	}
	if amount.IsNegative() {
		return decimal.Zero, &ledger.ValidationError{Field: "amount", Message: "Amount cannot be negative"}
	}
	return amount, nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
