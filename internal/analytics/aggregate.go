// Package analytics derives totals, budget statuses and forecasts from
// transaction sequences. Every function is pure: callers load records from a
// store and pass them in on each request.
package analytics

import (
	"sort"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

// SumAmounts totals the amount of every record. Empty input yields zero.
func SumAmounts(records []core.Transaction) core.Money {
	var total core.Money
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}

// GroupByCategory totals records per category. Category names are taken
// verbatim, so "Food" and "food" are distinct keys.
func GroupByCategory(records []core.Transaction) map[string]core.Money {
	out := make(map[string]core.Money)
	for _, r := range records {
		out[r.Category] = out[r.Category].Add(r.Amount)
	}
	return out
}

// GroupByMonth totals records per YYYY-MM month-key.
func GroupByMonth(records []core.Transaction) core.MonthlyTotals {
	out := make(core.MonthlyTotals)
	for _, r := range records {
		key := r.Date.MonthKey()
		out[key] = out[key].Add(r.Amount)
	}
	return out
}

// TopCategory returns the category with the highest total. Ties go to the
// lexicographically smallest name. ok is false when records is empty.
func TopCategory(records []core.Transaction) (name string, total core.Money, ok bool) {
	for cat, amt := range GroupByCategory(records) {
		if !ok || amt.Cents > total.Cents || (amt.Cents == total.Cents && cat < name) {
			name, total, ok = cat, amt, true
		}
	}
	return name, total, ok
}

// FilterByDate keeps records with start <= date <= end. A zero bound is
// unbounded on that side; with both zero the input is returned as is.
func FilterByDate(records []core.Transaction, start, end core.Date) []core.Transaction {
	if start.IsEmpty() && end.IsEmpty() {
		return records
	}
	out := make([]core.Transaction, 0, len(records))
	for _, r := range records {
		if !start.IsEmpty() && r.Date.Before(start.Time) {
			continue
		}
		if !end.IsEmpty() && r.Date.After(end.Time) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortedMonths returns the month-keys in chronological order.
func SortedMonths(m core.MonthlyTotals) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MonthSeries returns the totals as a chronologically ordered slice.
func MonthSeries(m core.MonthlyTotals) []core.MonthAmount {
	keys := SortedMonths(m)
	out := make([]core.MonthAmount, len(keys))
	for i, k := range keys {
		out[i] = core.MonthAmount{Month: k, Amount: m[k]}
	}
	return out
}

// SortedCategories orders category totals by amount descending, then name.
func SortedCategories(m map[string]core.Money) []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(m))
	for name, amt := range m {
		out = append(out, core.CategoryAmount{Name: name, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Totals is the headline block of the dashboard.
type Totals struct {
	Expenses core.Money
	Income   core.Money
	Balance  core.Money
	Count    int
}

// Summarize totals both sides of the ledger.
func Summarize(expenses, income []core.Transaction) Totals {
	exp := SumAmounts(expenses)
	inc := SumAmounts(income)
	return Totals{
		Expenses: exp,
		Income:   inc,
		Balance:  inc.Sub(exp),
		Count:    len(expenses) + len(income),
	}
}
