package models

import "github.com/shopspring/decimal"

// SuggestedCategories is the category set offered when recording an expense.
// Categories are free-form labels; the store does not constrain them.
var SuggestedCategories = []string{
	"Meal",
	"Groceries",
	"Eco Shop",
	"Transport",
	"Entertainment",
	"Education",
}

// Expense represents a single spend event attributed to one member.
type Expense struct {
	// ID is assigned by the store.
	ID int64

	// UserID is the owning account ID.
	UserID string

	// MemberID references the paying member of the same account.
	MemberID int64

	// MemberName is the payer's name at the time the expense was written.
	MemberName string

	// Category is a free-form label such as "Groceries".
	Category string

	// Amount is a non-negative currency value.
	Amount decimal.Decimal

	// Date is the calendar date in YYYY-MM-DD form, with no time component.
	Date string

	// Note is an optional description.
	Note string

	// CreatedAt is the Unix timestamp when the row was inserted.
	CreatedAt int64
}
