package analytics

import (
	"sort"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

// Classification buckets spend-to-limit percentage.
type Classification string

const (
	Under Classification = "under"
	Near  Classification = "near"
	Over  Classification = "over"
)

// Thresholds are fixed.
const (
	nearThreshold = 70.0
	overThreshold = 100.0
)

// BudgetStatus is the budget-vs-actual view of one category.
type BudgetStatus struct {
	Category       string
	Limit          core.Money
	Spent          core.Money
	Remaining      core.Money
	Percentage     float64
	Classification Classification
	// OverBudget uses a strict comparison, so spending exactly the limit is
	// classified Over while OverBudget stays false.
	OverBudget bool
}

// Classify maps a percentage to its bucket.
func Classify(pct float64) Classification {
	switch {
	case pct < nearThreshold:
		return Under
	case pct < overThreshold:
		return Near
	default:
		return Over
	}
}

// Evaluate builds a status for every budgeted category. Categories with
// spend but no budget are left out.
func Evaluate(budgets, spend map[string]core.Money) map[string]BudgetStatus {
	out := make(map[string]BudgetStatus, len(budgets))
	for cat, limit := range budgets {
		spent := spend[cat]
		var pct float64
		if limit.Cents != 0 {
			pct = float64(spent.Cents) * 100 / float64(limit.Cents)
		}
		out[cat] = BudgetStatus{
			Category:       cat,
			Limit:          limit,
			Spent:          spent,
			Remaining:      limit.Sub(spent),
			Percentage:     pct,
			Classification: Classify(pct),
			OverBudget:     spent.Cents > limit.Cents,
		}
	}
	return out
}

// SortedStatuses returns the statuses ordered by category name.
func SortedStatuses(m map[string]BudgetStatus) []BudgetStatus {
	out := make([]BudgetStatus, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// BudgetMap indexes budget limits by category. Later entries win.
func BudgetMap(limits []core.BudgetLimit) map[string]core.Money {
	out := make(map[string]core.Money, len(limits))
	for _, b := range limits {
		out[b.Category] = b.Limit
	}
	return out
}
