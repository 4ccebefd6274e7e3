package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/usere2211-alt/finance-dashboard/internal/analytics"
	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

// Period bounds the records an overview covers. Zero dates are unbounded.
type Period struct {
	Start core.Date
	End   core.Date
}

// ParsePeriod reads optional ISO start/end dates.
func ParsePeriod(start, end string) (Period, error) {
	var p Period
	var err error
	if start != "" {
		if p.Start, err = core.ParseDate(start); err != nil {
			return Period{}, fmt.Errorf("start: %w", err)
		}
	}
	if end != "" {
		if p.End, err = core.ParseDate(end); err != nil {
			return Period{}, fmt.Errorf("end: %w", err)
		}
	}
	return p, nil
}

// Overview is everything the dashboard shows, recomputed per request.
type Overview struct {
	Period Period
	Totals analytics.Totals

	ExpensesByCategory []core.CategoryAmount
	IncomeByCategory   []core.CategoryAmount
	ExpensesByMonth    []core.MonthAmount
	IncomeByMonth      []core.MonthAmount

	TopCategory    core.CategoryAmount
	HasTopCategory bool

	Budgets []analytics.BudgetStatus

	// Forecasts of next month's expenses, one per strategy. They use the
	// whole expense history regardless of Period.
	Forecasts []analytics.Prediction

	ExpensesState core.DataState
	IncomeState   core.DataState
	BudgetsState  core.DataState
}

// State is the most severe of the three read states.
func (o Overview) State() core.DataState {
	return core.Worst(o.ExpensesState, o.IncomeState, o.BudgetsState)
}

// Overview loads the three domains concurrently and derives the dashboard.
// A failed load degrades its part to empty; the overview itself never fails.
func (s *LedgerService) Overview(ctx context.Context, p Period) Overview {
	var (
		expenses, income []core.Transaction
		limits           []core.BudgetLimit
		o                = Overview{Period: p}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		expenses, o.ExpensesState = s.List(gctx, core.KindExpense)
		return nil
	})
	g.Go(func() error {
		income, o.IncomeState = s.List(gctx, core.KindIncome)
		return nil
	})
	g.Go(func() error {
		limits, o.BudgetsState = s.Budgets(gctx)
		return nil
	})
	_ = g.Wait()

	inExpenses := analytics.FilterByDate(expenses, p.Start, p.End)
	inIncome := analytics.FilterByDate(income, p.Start, p.End)

	o.Totals = analytics.Summarize(inExpenses, inIncome)
	spend := analytics.GroupByCategory(inExpenses)
	o.ExpensesByCategory = analytics.SortedCategories(spend)
	o.IncomeByCategory = analytics.SortedCategories(analytics.GroupByCategory(inIncome))
	o.ExpensesByMonth = analytics.MonthSeries(analytics.GroupByMonth(inExpenses))
	o.IncomeByMonth = analytics.MonthSeries(analytics.GroupByMonth(inIncome))

	if name, total, ok := analytics.TopCategory(inExpenses); ok {
		o.TopCategory = core.CategoryAmount{Name: name, Amount: total}
		o.HasTopCategory = true
	}

	o.Budgets = analytics.SortedStatuses(analytics.Evaluate(analytics.BudgetMap(limits), spend))

	monthly := analytics.GroupByMonth(expenses)
	for _, strategy := range analytics.Strategies {
		o.Forecasts = append(o.Forecasts, analytics.Forecast(monthly, strategy))
	}
	return o
}

// Forecast predicts next month's expenses from the whole history.
func (s *LedgerService) Forecast(ctx context.Context, strategy analytics.Strategy) (analytics.Prediction, core.DataState) {
	expenses, state := s.List(ctx, core.KindExpense)
	return analytics.Forecast(analytics.GroupByMonth(expenses), strategy), state
}
