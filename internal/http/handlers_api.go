package http

import (
	"net/http"

	"github.com/usere2211-alt/finance-dashboard/internal/analytics"
	"github.com/usere2211-alt/finance-dashboard/internal/core"
	"github.com/usere2211-alt/finance-dashboard/internal/services"
)

// JSON views. Amounts are integer cents.
type (
	apiAmount struct {
		Name  string `json:"name"`
		Cents int64  `json:"cents"`
	}

	apiBudget struct {
		Category       string  `json:"category"`
		LimitCents     int64   `json:"limit_cents"`
		SpentCents     int64   `json:"spent_cents"`
		RemainingCents int64   `json:"remaining_cents"`
		Percentage     float64 `json:"percentage"`
		Classification string  `json:"classification"`
		OverBudget     bool    `json:"over_budget"`
	}

	apiForecast struct {
		Requested string  `json:"requested"`
		Used      string  `json:"used"`
		Cents     int64   `json:"cents"`
		Months    int     `json:"months"`
		NextMonth string  `json:"next_month,omitempty"`
		Slope     float64 `json:"slope,omitempty"`
		Intercept float64 `json:"intercept,omitempty"`
		State     string  `json:"state,omitempty"`
	}

	apiOverview struct {
		Start              string        `json:"start,omitempty"`
		End                string        `json:"end,omitempty"`
		ExpensesCents      int64         `json:"expenses_cents"`
		IncomeCents        int64         `json:"income_cents"`
		BalanceCents       int64         `json:"balance_cents"`
		Count              int           `json:"count"`
		TopCategory        *apiAmount    `json:"top_category,omitempty"`
		ExpensesByCategory []apiAmount   `json:"expenses_by_category"`
		IncomeByCategory   []apiAmount   `json:"income_by_category"`
		ExpensesByMonth    []apiAmount   `json:"expenses_by_month"`
		IncomeByMonth      []apiAmount   `json:"income_by_month"`
		Budgets            []apiBudget   `json:"budgets"`
		Forecasts          []apiForecast `json:"forecasts"`
		State              string        `json:"state"`
	}
)

func categoryAmounts(rows []core.CategoryAmount) []apiAmount {
	out := make([]apiAmount, 0, len(rows))
	for _, r := range rows {
		out = append(out, apiAmount{Name: r.Name, Cents: r.Amount.Cents})
	}
	return out
}

func monthAmounts(rows []core.MonthAmount) []apiAmount {
	out := make([]apiAmount, 0, len(rows))
	for _, r := range rows {
		out = append(out, apiAmount{Name: r.Month, Cents: r.Amount.Cents})
	}
	return out
}

func toAPIForecast(p analytics.Prediction) apiForecast {
	return apiForecast{
		Requested: string(p.Requested),
		Used:      string(p.Used),
		Cents:     p.Amount.Cents,
		Months:    p.Months,
		NextMonth: p.NextMonth,
		Slope:     p.Slope,
		Intercept: p.Intercept,
	}
}

func toAPIOverview(o services.Overview) apiOverview {
	out := apiOverview{
		Start:              o.Period.Start.String(),
		End:                o.Period.End.String(),
		ExpensesCents:      o.Totals.Expenses.Cents,
		IncomeCents:        o.Totals.Income.Cents,
		BalanceCents:       o.Totals.Balance.Cents,
		Count:              o.Totals.Count,
		ExpensesByCategory: categoryAmounts(o.ExpensesByCategory),
		IncomeByCategory:   categoryAmounts(o.IncomeByCategory),
		ExpensesByMonth:    monthAmounts(o.ExpensesByMonth),
		IncomeByMonth:      monthAmounts(o.IncomeByMonth),
		Budgets:            make([]apiBudget, 0, len(o.Budgets)),
		Forecasts:          make([]apiForecast, 0, len(o.Forecasts)),
		State:              string(o.State()),
	}
	if o.HasTopCategory {
		out.TopCategory = &apiAmount{Name: o.TopCategory.Name, Cents: o.TopCategory.Amount.Cents}
	}
	for _, b := range o.Budgets {
		out.Budgets = append(out.Budgets, apiBudget{
			Category:       b.Category,
			LimitCents:     b.Limit.Cents,
			SpentCents:     b.Spent.Cents,
			RemainingCents: b.Remaining.Cents,
			Percentage:     b.Percentage,
			Classification: string(b.Classification),
			OverBudget:     b.OverBudget,
		})
	}
	for _, p := range o.Forecasts {
		out.Forecasts = append(out.Forecasts, toAPIForecast(p))
	}
	return out
}

type apiError struct {
	Error string `json:"error"`
}

func (s *Server) handleAPIOverview(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriodParams(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toAPIOverview(s.ledger.Overview(r.Context(), period)))
}

func (s *Server) handleAPIForecast(w http.ResponseWriter, r *http.Request) {
	strategy, err := analytics.ParseStrategy(r.URL.Query().Get("strategy"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	prediction, state := s.ledger.Forecast(r.Context(), strategy)
	out := toAPIForecast(prediction)
	out.State = string(state)
	writeJSON(w, http.StatusOK, out)
}
