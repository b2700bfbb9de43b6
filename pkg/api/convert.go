package api

import (
	"github.com/mmynk/familyspend/internal/calculator"
	"github.com/mmynk/familyspend/internal/ledger"
	"github.com/mmynk/familyspend/internal/models"
)

// AccountToAPI converts an account, dropping the password hash.
func AccountToAPI(a *models.Account) *Account {
	return &Account{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		CreatedAt:   a.CreatedAt,
	}
}

func MemberToAPI(m *models.Member) *Member {
	return &Member{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Role:      string(m.Role),
		CreatedAt: m.CreatedAt,
	}
}

func MemberFromAPI(m *Member) *models.Member {
	return &models.Member{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Role:      models.Role(m.Role),
		CreatedAt: m.CreatedAt,
	}
}

func ExpenseToAPI(e *models.Expense) *Expense {
	return &Expense{
		ID:         e.ID,
		MemberID:   e.MemberID,
		MemberName: e.MemberName,
		Category:   e.Category,
		Amount:     e.Amount,
		Date:       e.Date,
		Note:       e.Note,
		CreatedAt:  e.CreatedAt,
	}
}

func ExpenseFromAPI(e *Expense) *models.Expense {
	return &models.Expense{
		ID:         e.ID,
		MemberID:   e.MemberID,
		MemberName: e.MemberName,
		Category:   e.Category,
		Amount:     e.Amount,
		Date:       e.Date,
		Note:       e.Note,
		CreatedAt:  e.CreatedAt,
	}
}

func bucketsToAPI(buckets []calculator.Bucket) []Bucket {
	out := make([]Bucket, len(buckets))
	for i, b := range buckets {
		out[i] = Bucket{Key: b.Key, Amount: b.Amount}
	}
	return out
}

// MonthDataToAPI converts a ledger month for the wire.
func MonthDataToAPI(d *ledger.MonthData) *MonthData {
	out := &MonthData{
		Month:    d.Window,
		Members:  make([]*Member, len(d.Members)),
		Expenses: make([]*Expense, len(d.Expenses)),
		Summary: Summary{
			Total:      d.Summary.Total,
			ByCategory: bucketsToAPI(d.Summary.ByCategory),
			ByMember:   bucketsToAPI(d.Summary.ByMember),
		},
	}
	for i, m := range d.Members {
		out.Members[i] = MemberToAPI(m)
	}
	for i, e := range d.Expenses {
		out.Expenses[i] = ExpenseToAPI(e)
	}
	return out
}

// MonthDataFromAPI rebuilds a ledger month. The summary is recomputed from
// the expenses rather than trusted from the wire.
func MonthDataFromAPI(d *MonthData) *ledger.MonthData {
	out := &ledger.MonthData{
		Window:   d.Month,
		Members:  make([]*models.Member, len(d.Members)),
		Expenses: make([]*models.Expense, len(d.Expenses)),
	}
	for i, m := range d.Members {
		out.Members[i] = MemberFromAPI(m)
	}
	for i, e := range d.Expenses {
		out.Expenses[i] = ExpenseFromAPI(e)
	}
	out.Summary = calculator.Aggregate(out.Expenses)
	return out
}
