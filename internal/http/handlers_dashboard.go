package http

import (
	"net/http"

	"github.com/usere2211-alt/finance-dashboard/internal/analytics"
	"github.com/usere2211-alt/finance-dashboard/internal/core"
	applog "github.com/usere2211-alt/finance-dashboard/internal/log"
	"github.com/usere2211-alt/finance-dashboard/internal/services"
)

type dashboardPage struct {
	Title    string
	Active   string
	Overview services.Overview
	Start    string
	End      string
}

type forecastPage struct {
	Title      string
	Active     string
	Strategy   analytics.Strategy
	Strategies []analytics.Strategy
	Prediction analytics.Prediction
	History    []core.MonthAmount
	State      core.DataState
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) (dashboardPage, bool) {
	period, err := ParsePeriodParams(r.URL.Query())
	if err != nil {
		UnprocessableEntityError("Invalid period: " + err.Error()).Write(w)
		return dashboardPage{}, false
	}
	return dashboardPage{
		Title:    "Dashboard",
		Active:   "dashboard",
		Overview: s.ledger.Overview(r.Context(), period),
		Start:    period.Start.String(),
		End:      period.End.String(),
	}, true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	s.render(w, r, "index.html", page)
}

// handleOverviewPartial renders the overview section for htmx refreshes.
func (s *Server) handleOverviewPartial(w http.ResponseWriter, r *http.Request) {
	page, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	s.render(w, r, "overview", page)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	strategy, err := analytics.ParseStrategy(r.URL.Query().Get("strategy"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	prediction, state := s.ledger.Forecast(r.Context(), strategy)
	expenses, _ := s.ledger.List(r.Context(), core.KindExpense)

	applog.FromContext(r.Context()).DebugContext(r.Context(), "Forecast computed",
		applog.FieldOperation, applog.OpForecast,
		applog.FieldStrategy, prediction.Used,
		applog.FieldAmountCents, prediction.Amount.Cents)

	s.render(w, r, "forecast.html", forecastPage{
		Title:      "Forecast",
		Active:     "forecast",
		Strategy:   strategy,
		Strategies: analytics.Strategies,
		Prediction: prediction,
		History:    analytics.MonthSeries(analytics.GroupByMonth(expenses)),
		State:      state,
	})
}
