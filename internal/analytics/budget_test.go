package analytics

import (
	"testing"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

func TestEvaluateThresholds(t *testing.T) {
	cases := []struct {
		name      string
		limit     int64
		spent     int64
		pct       float64
		class     Classification
		over      bool
		remaining int64
	}{
		{"under", 10000, 6999, 69.99, Under, false, 3001},
		{"near at seventy", 10000, 7000, 70.0, Near, false, 3000},
		{"at limit is over but not OverBudget", 10000, 10000, 100.0, Over, false, 0},
		{"past limit", 10000, 12000, 120.0, Over, true, -2000},
		{"zero limit", 0, 500, 0, Under, true, -500},
		{"nothing spent", 5000, 0, 0, Under, false, 5000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(
				map[string]core.Money{"food": {Cents: tc.limit}},
				map[string]core.Money{"food": {Cents: tc.spent}},
			)["food"]
			if got.Percentage != tc.pct {
				t.Fatalf("percentage = %v want %v", got.Percentage, tc.pct)
			}
			if got.Classification != tc.class {
				t.Fatalf("classification = %s want %s", got.Classification, tc.class)
			}
			if got.OverBudget != tc.over {
				t.Fatalf("over = %v want %v", got.OverBudget, tc.over)
			}
			if got.Remaining.Cents != tc.remaining {
				t.Fatalf("remaining = %d want %d", got.Remaining.Cents, tc.remaining)
			}
		})
	}
}

func TestEvaluateOnlyBudgetedCategories(t *testing.T) {
	got := Evaluate(
		map[string]core.Money{"Food": {Cents: 100}, "Travel": {Cents: 500}},
		map[string]core.Money{"Food": {Cents: 50}, "Rent": {Cents: 900}},
	)
	if len(got) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(got))
	}
	if _, ok := got["Rent"]; ok {
		t.Fatalf("unbudgeted category must be omitted")
	}
	if got["Travel"].Spent.Cents != 0 {
		t.Fatalf("missing spend should count as zero")
	}
	sorted := SortedStatuses(got)
	if sorted[0].Category != "Food" || sorted[1].Category != "Travel" {
		t.Fatalf("sorted = %v", sorted)
	}
}

func TestBudgetMapLastWriteWins(t *testing.T) {
	m := BudgetMap([]core.BudgetLimit{
		{Category: "Food", Limit: core.Money{Cents: 100}},
		{Category: "Food", Limit: core.Money{Cents: 300}},
	})
	if m["Food"].Cents != 300 {
		t.Fatalf("got %d", m["Food"].Cents)
	}
}
