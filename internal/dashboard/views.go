package dashboard

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/familyspend/internal/calculator"
	"github.com/mmynk/familyspend/internal/ledger"
)

// FormatAmount renders an amount with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type ExpenseRow struct {
	ID         int64
	Date       string
	Category   string
	MemberName string
	Amount     string
	Note       string
}

// RecentLimit is how many expenses the home view lists as recent.
const RecentLimit = 5

// MemberTotal is one member's spending for the month.
type MemberTotal struct {
	Name   string
	Amount string
}

// HomeView is the month summary and expense list.
type HomeView struct {
	Month string
	Total string
	// MemberTotals follows the order members first appear in the month.
	MemberTotals []MemberTotal
	ExpenseCount int
	MemberCount  int
	// Recent holds the newest RecentLimit expenses; Expenses holds them all.
	Recent   []ExpenseRow
	Expenses []ExpenseRow
	Empty    bool
}

func Home(data *ledger.MonthData) HomeView {
	rows := make([]ExpenseRow, len(data.Expenses))
	for i, e := range data.Expenses {
		rows[i] = ExpenseRow{
			ID:         e.ID,
			Date:       e.Date,
			Category:   e.Category,
			MemberName: e.MemberName,
			Amount:     FormatAmount(e.Amount),
			Note:       e.Note,
		}
	}

	totals := make([]MemberTotal, len(data.Summary.ByMember))
	for i, b := range data.Summary.ByMember {
		totals[i] = MemberTotal{Name: b.Key, Amount: FormatAmount(b.Amount)}
	}

	return HomeView{
		Month:        data.Window.Label(),
		Total:        FormatAmount(data.Summary.Total),
		MemberTotals: totals,
		ExpenseCount: len(rows),
		MemberCount:  len(data.Members),
		Recent:       rows[:min(len(rows), RecentLimit)],
		Expenses:     rows,
		Empty:        len(rows) == 0,
	}
}

// ShareView is one row of an analytics breakdown.
type ShareView struct {
	Key     string
	Amount  string
	Percent string
}

// AnalyticsView breaks the month down by category and by member, largest first.
type AnalyticsView struct {
	Month      string
	Total      string
	Categories []ShareView
	Members    []ShareView
}

func Analytics(data *ledger.MonthData) AnalyticsView {
	total := data.Summary.Total
	return AnalyticsView{
		Month:      data.Window.Label(),
		Total:      FormatAmount(total),
		Categories: shareViews(data.Summary.ByCategory, total),
		Members:    shareViews(data.Summary.ByMember, total),
	}
}

func shareViews(buckets []calculator.Bucket, total decimal.Decimal) []ShareView {
	rows := calculator.Shares(buckets, total)
	out := make([]ShareView, len(rows))
	for i, r := range rows {
		out[i] = ShareView{
			Key:     r.Key,
			Amount:  FormatAmount(r.Amount),
			Percent: decimal.NewFromFloat(r.Percent).StringFixed(1) + "%",
		}
	}
	return out
}

type MemberRow struct {
	ID    int64
	Name  string
	Email string
	Role  string
	// CanDelete is false for the Admin.
	CanDelete bool
	// Spent is the member's total for the month.
	Spent string
}

type MembersView struct {
	Members []MemberRow
}

func Members(data *ledger.MonthData) MembersView {
	rows := make([]MemberRow, len(data.Members))
	for i, m := range data.Members {
		rows[i] = MemberRow{
			ID:        m.ID,
			Name:      m.Name,
			Email:     m.Email,
			Role:      string(m.Role),
			CanDelete: !m.IsAdmin(),
			Spent:     FormatAmount(calculator.Lookup(data.Summary.ByMember, m.Name)),
		}
	}
	return MembersView{Members: rows}
}
