package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/familyspend/internal/models"
)

// Bucket is an amount summed under one key (a category or a member name).
type Bucket struct {
	Key    string
	Amount decimal.Decimal
}

// Summary is the aggregation of one set of expenses.
type Summary struct {
	// Total is the sum of all amounts.
	Total decimal.Decimal

	// ByCategory holds one bucket per category, in order of first occurrence.
	ByCategory []Bucket

	// ByMember holds one bucket per member name, in order of first occurrence.
	ByMember []Bucket
}

// ShareRow is a bucket with its percentage of the total, ready for display.
type ShareRow struct {
	Key     string
	Amount  decimal.Decimal
	Percent float64
}

// Aggregate computes the total and the per-category and per-member sums in a
// single pass over expenses. It never fails and returns a zero total with
// empty buckets for empty input.
//
// Member buckets are keyed by the denormalized MemberName, so two members
// sharing a name share a bucket.
func Aggregate(expenses []*models.Expense) Summary {
	summary := Summary{
		Total:      decimal.Zero,
		ByCategory: []Bucket{},
		ByMember:   []Bucket{},
	}

	categoryIndex := make(map[string]int)
	memberIndex := make(map[string]int)

	for _, exp := range expenses {
		summary.Total = summary.Total.Add(exp.Amount)
		summary.ByCategory = addTo(summary.ByCategory, categoryIndex, exp.Category, exp.Amount)
		summary.ByMember = addTo(summary.ByMember, memberIndex, exp.MemberName, exp.Amount)
	}

	return summary
}

func addTo(buckets []Bucket, index map[string]int, key string, amount decimal.Decimal) []Bucket {
	if i, ok := index[key]; ok {
		buckets[i].Amount = buckets[i].Amount.Add(amount)
		return buckets
	}
	index[key] = len(buckets)
	return append(buckets, Bucket{Key: key, Amount: amount})
}

// Lookup returns the amount of the bucket with the given key, or zero.
func Lookup(buckets []Bucket, key string) decimal.Decimal {
	for _, b := range buckets {
		if b.Key == key {
			return b.Amount
		}
	}
	return decimal.Zero
}

// SortByAmount returns a copy of buckets ordered by descending amount.
// Equal amounts keep their first-occurrence order.
func SortByAmount(buckets []Bucket) []Bucket {
	sorted := make([]Bucket, len(buckets))
	copy(sorted, buckets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})
	return sorted
}

// Share returns amount as a percentage of total. A zero total yields 0.
func Share(amount, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return amount.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// Shares sorts buckets by descending amount and attaches each one's share of
// total.
func Shares(buckets []Bucket, total decimal.Decimal) []ShareRow {
	sorted := SortByAmount(buckets)
	rows := make([]ShareRow, len(sorted))
	for i, b := range sorted {
		rows[i] = ShareRow{
			Key:     b.Key,
			Amount:  b.Amount,
			Percent: Share(b.Amount, total),
		}
	}
	return rows
}
