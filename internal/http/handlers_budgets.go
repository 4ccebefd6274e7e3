package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/usere2211-alt/finance-dashboard/internal/analytics"
	"github.com/usere2211-alt/finance-dashboard/internal/core"
	applog "github.com/usere2211-alt/finance-dashboard/internal/log"
)

type budgetsPage struct {
	Title      string
	Active     string
	Statuses   []analytics.BudgetStatus
	State      core.DataState
	Categories []string
	Start      string
	End        string
}

// handleListBudgets shows every limit against the spend of the requested
// period, or of all time when no period is given.
func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriodParams(r.URL.Query())
	if err != nil {
		UnprocessableEntityError("Invalid period: " + err.Error()).Write(w)
		return
	}
	o := s.ledger.Overview(r.Context(), period)
	page := budgetsPage{
		Title:      "Budgets",
		Active:     "budgets",
		Statuses:   o.Budgets,
		State:      core.Worst(o.BudgetsState, o.ExpensesState),
		Categories: s.ledger.Categories(r.Context(), core.KindExpense),
		Start:      period.Start.String(),
		End:        period.End.String(),
	}
	if isHTMX(r) {
		s.render(w, r, "budgets_table", page)
		return
	}
	s.render(w, r, "budgets.html", page)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := ParseBudget(NewRequestBodyParser(r))
	if err != nil {
		writeInputError(w, err)
		return
	}
	if err := s.ledger.SetBudget(r.Context(), b); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to save budget",
			applog.FieldError, err,
			applog.FieldCategory, b.Category)
		InternalServerError("Error saving budget").Write(w)
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, "/budgets", http.StatusSeeOther)
		return
	}
	NewHTMXResponse().
		TriggerFormReset().
		TriggerRecordsChanged(core.BudgetsDomain).
		TriggerOverviewRefresh().
		TriggerSuccessNotification("Budget saved: " + b.Category + " " + formatEuros(b.Limit.Cents)).
		Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when the request carried escapes Path cannot
	// represent, and then the param is still escaped.
	category := chi.URLParam(r, "category")
	if r.URL.RawPath != "" {
		c, err := url.PathUnescape(category)
		if err != nil {
			BadRequestError("Invalid category").Write(w)
			return
		}
		category = c
	}
	err := s.ledger.DeleteBudget(r.Context(), category)
	switch {
	case errors.Is(err, core.ErrNotFound):
		NewHTMXResponse().
			TriggerRecordsChanged(core.BudgetsDomain).
			TriggerWarningNotification("No budget for " + category).
			Write(w)
		return
	case err != nil:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to delete budget",
			applog.FieldError, err,
			applog.FieldCategory, category)
		InternalServerError("Error deleting budget").Write(w)
		return
	}
	NewHTMXResponse().
		TriggerRecordsChanged(core.BudgetsDomain).
		TriggerOverviewRefresh().
		TriggerSuccessNotification("Budget removed: " + category).
		Write(w)
}
