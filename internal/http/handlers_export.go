package http

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
	"github.com/usere2211-alt/finance-dashboard/internal/export"
	applog "github.com/usere2211-alt/finance-dashboard/internal/log"
)

// handleExport downloads one domain as CSV. An empty domain downloads as an
// empty file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")
	logger := applog.FromContext(r.Context())

	var (
		buf   bytes.Buffer
		err   error
		state core.DataState
	)
	switch domain {
	case core.BudgetsDomain:
		var limits []core.BudgetLimit
		limits, state = s.ledger.Budgets(r.Context())
		err = export.CSV(&buf, limits)
	default:
		kind, kerr := core.ParseKind(domain)
		if kerr != nil || kind.Domain() != domain {
			NotFoundError("Unknown export " + domain).Write(w)
			return
		}
		var txs []core.Transaction
		txs, state = s.ledger.List(r.Context(), kind)
		err = export.CSV(&buf, txs)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "Export failed",
			applog.FieldError, err,
			applog.FieldDomain, domain,
			applog.FieldOperation, applog.OpExport)
		InternalServerError("Export failed").Write(w)
		return
	}
	if state.Degraded() {
		logger.WarnContext(r.Context(), "Exporting degraded data",
			applog.FieldDomain, domain,
			applog.FieldDataState, state)
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(domain)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
