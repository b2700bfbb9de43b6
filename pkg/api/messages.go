package api

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/familyspend/internal/calendar"
)

type Account struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by SignUp and SignIn.
type SessionResponse struct {
	Account   *Account `json:"account"`
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
}

type SignOutRequest struct{}

type SignOutResponse struct{}

type CurrentAccountRequest struct{}

type CurrentAccountResponse struct {
	Account *Account `json:"account"`
}

type Member struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	CreatedAt int64  `json:"created_at"`
}

type Expense struct {
	ID         int64           `json:"id"`
	MemberID   int64           `json:"member_id"`
	MemberName string          `json:"member_name"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  int64           `json:"created_at"`
}

type Bucket struct {
	Key    string          `json:"key"`
	Amount decimal.Decimal `json:"amount"`
}

type Summary struct {
	Total      decimal.Decimal `json:"total"`
	ByCategory []Bucket        `json:"by_category"`
	ByMember   []Bucket        `json:"by_member"`
}

// MonthData is the response of FetchMonth and of every mutation.
type MonthData struct {
	Month    calendar.Window `json:"month"`
	Members  []*Member       `json:"members"`
	Expenses []*Expense      `json:"expenses"`
	Summary  Summary         `json:"summary"`
}

// A zero Month in any request means the current month.

type FetchMonthRequest struct {
	Month calendar.Window `json:"month"`
}

type SaveExpenseRequest struct {
	Month    calendar.Window     `json:"month"`
	ID       int64               `json:"id,omitempty"`
	MemberID int64               `json:"member_id"`
	Category string              `json:"category"`
	Amount   decimal.NullDecimal `json:"amount"`
	Note     string              `json:"note,omitempty"`
	Date     string              `json:"date,omitempty"`
}

type DeleteExpenseRequest struct {
	Month calendar.Window `json:"month"`
	ID    int64           `json:"id"`
}

type AddMemberRequest struct {
	Month calendar.Window `json:"month"`
	Name  string          `json:"name"`
	Email string          `json:"email,omitempty"`
	Role  string          `json:"role,omitempty"`
}

type DeleteMemberRequest struct {
	Month calendar.Window `json:"month"`
	ID    int64           `json:"id"`
}

type CategoriesRequest struct {
	Month calendar.Window `json:"month"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}
