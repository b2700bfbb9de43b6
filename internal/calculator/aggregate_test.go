package calculator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/familyspend/internal/models"
)

func expense(member, category, amount string) *models.Expense {
	return &models.Expense{
		MemberName: member,
		Category:   category,
		Amount:     decimal.RequireFromString(amount),
	}
}

func sampleExpenses() []*models.Expense {
	return []*models.Expense{
		expense("Sam", "Groceries", "42.10"),
		expense("Lee", "Meal", "12.50"),
		expense("Sam", "Transport", "3.20"),
		expense("Kim", "Groceries", "17.90"),
		expense("Lee", "Groceries", "0.30"),
		expense("Sam", "Meal", "8"),
	}
}

func TestAggregate(t *testing.T) {
	summary := Aggregate(sampleExpenses())

	if !summary.Total.Equal(decimal.RequireFromString("84.00")) {
		t.Errorf("Total = %s, want 84.00", summary.Total)
	}

	wantCategories := []Bucket{
		{Key: "Groceries", Amount: decimal.RequireFromString("60.30")},
		{Key: "Meal", Amount: decimal.RequireFromString("20.50")},
		{Key: "Transport", Amount: decimal.RequireFromString("3.20")},
	}
	assertBuckets(t, "ByCategory", summary.ByCategory, wantCategories)

	wantMembers := []Bucket{
		{Key: "Sam", Amount: decimal.RequireFromString("53.30")},
		{Key: "Lee", Amount: decimal.RequireFromString("12.80")},
		{Key: "Kim", Amount: decimal.RequireFromString("17.90")},
	}
	assertBuckets(t, "ByMember", summary.ByMember, wantMembers)
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	expenses := sampleExpenses()
	want := Aggregate(expenses).Total

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := make([]*models.Expense, len(expenses))
		copy(shuffled, expenses)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := Aggregate(shuffled)
		if !got.Total.Equal(want) {
			t.Fatalf("shuffle %d: Total = %s, want %s", i, got.Total, want)
		}
		for _, b := range got.ByCategory {
			if !b.Amount.Equal(Lookup(Aggregate(expenses).ByCategory, b.Key)) {
				t.Fatalf("shuffle %d: category %s = %s", i, b.Key, b.Amount)
			}
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	summary := Aggregate(nil)

	if !summary.Total.IsZero() {
		t.Errorf("Total = %s, want 0", summary.Total)
	}
	if len(summary.ByCategory) != 0 || len(summary.ByMember) != 0 {
		t.Errorf("expected empty buckets, got %v / %v", summary.ByCategory, summary.ByMember)
	}

	for _, row := range Shares(summary.ByCategory, summary.Total) {
		t.Errorf("unexpected row %v", row)
	}
}

func TestShare(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		total  string
		want   float64
	}{
		{"zero total", "10", "0", 0},
		{"zero both", "0", "0", 0},
		{"quarter", "25", "100", 25},
		{"all", "12.34", "12.34", 100},
		{"third", "1", "3", 33.3333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Share(decimal.RequireFromString(tt.amount), decimal.RequireFromString(tt.total))
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Share = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSharesSortsDescending(t *testing.T) {
	summary := Aggregate([]*models.Expense{
		expense("Sam", "Meal", "5"),
		expense("Sam", "Groceries", "30"),
		expense("Sam", "Transport", "5"),
		expense("Sam", "Education", "60"),
	})

	rows := Shares(summary.ByCategory, summary.Total)
	wantKeys := []string{"Education", "Groceries", "Meal", "Transport"}
	if len(rows) != len(wantKeys) {
		t.Fatalf("got %d rows, want %d", len(rows), len(wantKeys))
	}
	for i, key := range wantKeys {
		if rows[i].Key != key {
			t.Errorf("row %d = %s, want %s", i, rows[i].Key, key)
		}
	}
	if math.Abs(rows[0].Percent-60) > 0.001 {
		t.Errorf("Education share = %v, want 60", rows[0].Percent)
	}

	// The source buckets keep first-occurrence order.
	if summary.ByCategory[0].Key != "Meal" {
		t.Errorf("SortByAmount mutated its input: first bucket = %s", summary.ByCategory[0].Key)
	}
}

func assertBuckets(t *testing.T, label string, got, want []Bucket) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d buckets, want %d (%v)", label, len(got), len(want), got)
	}
	for i := range want {
		if got[i].Key != want[i].Key || !got[i].Amount.Equal(want[i].Amount) {
			t.Errorf("%s[%d] = %s %s, want %s %s", label, i, got[i].Key, got[i].Amount, want[i].Key, want[i].Amount)
		}
	}
}
