package http

import (
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/usere2211-alt/finance-dashboard/internal/analytics"
	"github.com/usere2211-alt/finance-dashboard/internal/core"
	applog "github.com/usere2211-alt/finance-dashboard/internal/log"
)

type transactionsPage struct {
	Title      string
	Active     string
	Kind       core.Kind
	Domain     string
	LabelName  string
	Rows       []core.Transaction
	Total      core.Money
	State      core.DataState
	Categories []string
	Today      string
	Start      string
	End        string
}

// handleListTransactions renders a record page, or only its table for htmx.
func (s *Server) handleListTransactions(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period, err := ParsePeriodParams(r.URL.Query())
		if err != nil {
			UnprocessableEntityError("Invalid period: " + err.Error()).Write(w)
			return
		}
		txs, state := s.ledger.List(r.Context(), kind)
		rows := append([]core.Transaction(nil), analytics.FilterByDate(txs, period.Start, period.End)...)
		// Newest first; stored order breaks ties.
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.After(rows[j].Date.Time) })

		page := transactionsPage{
			Title:      pageTitle(kind),
			Active:     kind.Domain(),
			Kind:       kind,
			Domain:     kind.Domain(),
			LabelName:  kind.LabelField(),
			Rows:       rows,
			Total:      analytics.SumAmounts(rows),
			State:      state,
			Categories: s.ledger.Categories(r.Context(), kind),
			Today:      core.Today().String(),
			Start:      period.Start.String(),
			End:        period.End.String(),
		}
		if isHTMX(r) {
			s.render(w, r, "transactions_table", page)
			return
		}
		s.render(w, r, "transactions.html", page)
	}
}

func (s *Server) handleCreateTransaction(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tx, err := ParseTransaction(NewRequestBodyParser(r), kind)
		if err != nil {
			writeInputError(w, err)
			return
		}

		saved, err := s.ledger.Create(r.Context(), tx)
		if err != nil {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to save transaction",
				applog.FieldError, err,
				applog.FieldDomain, kind.Domain(),
				applog.FieldOperation, applog.OpCreate)
			InternalServerError("Error saving "+string(kind)).Write(w)
			return
		}
		s.created.Add(1)

		if !isHTMX(r) {
			http.Redirect(w, r, "/"+kind.Domain(), http.StatusSeeOther)
			return
		}
		NewHTMXResponse().
			TriggerFormReset().
			TriggerRecordsChanged(kind.Domain()).
			TriggerOverviewRefresh().
			TriggerSuccessNotification(savedMessage(saved)).
			Write(w)
	}
}

func (s *Server) handleUpdateTransaction(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tx, err := ParseTransaction(NewRequestBodyParser(r), kind)
		if err != nil {
			writeInputError(w, err)
			return
		}
		tx.ID = chi.URLParam(r, "id")

		if err := s.ledger.Update(r.Context(), tx); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				NotFoundError("Record not found").Write(w)
				return
			}
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to update transaction",
				applog.FieldError, err,
				applog.FieldDomain, kind.Domain(),
				applog.FieldRecordID, tx.ID)
			InternalServerError("Error updating "+string(kind)).Write(w)
			return
		}

		if !isHTMX(r) {
			http.Redirect(w, r, "/"+kind.Domain(), http.StatusSeeOther)
			return
		}
		NewHTMXResponse().
			TriggerRecordsChanged(kind.Domain()).
			TriggerOverviewRefresh().
			TriggerSuccessNotification("Record updated").
			Write(w)
	}
}

// handleDeleteTransaction deletes by id. An unknown id is a no-op answered
// with 200 and a warning notification.
func (s *Server) handleDeleteTransaction(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		err := s.ledger.Delete(r.Context(), kind, id)
		switch {
		case errors.Is(err, core.ErrNotFound):
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Delete of unknown record ignored",
				applog.FieldDomain, kind.Domain(),
				applog.FieldRecordID, id)
			NewHTMXResponse().
				TriggerRecordsChanged(kind.Domain()).
				TriggerWarningNotification("Record not found; nothing was deleted").
				Write(w)
			return
		case err != nil:
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to delete transaction",
				applog.FieldError, err,
				applog.FieldDomain, kind.Domain(),
				applog.FieldRecordID, id)
			InternalServerError("Error deleting "+string(kind)).Write(w)
			return
		}
		s.deleted.Add(1)

		NewHTMXResponse().
			TriggerRecordsChanged(kind.Domain()).
			TriggerOverviewRefresh().
			TriggerSuccessNotification("Record deleted").
			Write(w)
	}
}

// writeInputError answers 422 for validation failures and 400 for bodies
// that could not be parsed at all.
func writeInputError(w http.ResponseWriter, err error) {
	if core.IsInputError(err) {
		UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
		return
	}
	BadRequestError("Invalid request format").Write(w)
}

func pageTitle(kind core.Kind) string {
	if kind == core.KindIncome {
		return "Income"
	}
	return "Expenses"
}

func savedMessage(tx core.Transaction) string {
	msg := pageTitle(tx.Kind) + " saved: " + formatEuros(tx.Amount.Cents)
	if tx.Label != "" {
		msg += " " + tx.Label
	}
	if tx.Category != "" {
		msg += " (" + tx.Category + ")"
	}
	return msg
}
