package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
	"github.com/usere2211-alt/finance-dashboard/internal/events"
	applog "github.com/usere2211-alt/finance-dashboard/internal/log"
	"github.com/usere2211-alt/finance-dashboard/internal/store"
)

// TableWriter replaces the mirrored copy of one domain.
type TableWriter interface {
	WriteTable(ctx context.Context, domain string, header []string, rows [][]string) error
}

// MirrorWorker copies store domains to a TableWriter (the Sheets mirror).
type MirrorWorker struct {
	store  store.Store
	mirror TableWriter
	logger *applog.Logger
}

func NewMirrorWorker(st store.Store, mirror TableWriter, logger *applog.Logger) *MirrorWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &MirrorWorker{
		store:  st,
		mirror: mirror,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleChange processes a single change event from AMQP. The event only
// names the domain; the whole domain is re-read and mirrored.
func (w *MirrorWorker) HandleChange(ctx context.Context, ev events.ChangeEvent) error {
	w.logger.InfoContext(ctx, "Processing change event",
		applog.FieldDomain, ev.Domain,
		applog.FieldOperation, ev.Op,
		applog.FieldRecordID, ev.ID)
	return w.SyncDomain(ctx, ev.Domain)
}

// SyncDomain mirrors one domain. Corrupt rows are left out of the mirror;
// an unreadable store fails the sync so the event is retried.
func (w *MirrorWorker) SyncDomain(ctx context.Context, domain string) error {
	header, rows, err := w.table(ctx, domain)
	if err != nil {
		if !errors.Is(err, core.ErrCorruptData) {
			return fmt.Errorf("read %s: %w", domain, err)
		}
		if len(rows) == 0 && headerUnreadable(err) {
			// Keep the last good copy instead of a bare header.
			w.logger.WarnContext(ctx, "Skipping mirror of unreadable file",
				applog.FieldDomain, domain,
				applog.FieldDataState, core.StateCorrupt,
				applog.FieldError, err)
			return nil
		}
		w.logger.WarnContext(ctx, "Mirroring readable rows only",
			applog.FieldDomain, domain,
			applog.FieldDataState, core.StateCorrupt,
			applog.FieldError, err)
	}

	if err := w.mirror.WriteTable(ctx, domain, header, rows); err != nil {
		return fmt.Errorf("mirror %s: %w", domain, err)
	}

	w.logger.InfoContext(ctx, "Successfully mirrored domain",
		applog.FieldDomain, domain,
		applog.FieldRows, len(rows))
	return nil
}

func headerUnreadable(err error) bool {
	var pe *core.ParseError
	return errors.As(err, &pe) && pe.Field == "header"
}

// SyncAll mirrors every domain and joins the failures.
func (w *MirrorWorker) SyncAll(ctx context.Context) error {
	var errs []error
	for _, domain := range core.Domains {
		if err := w.SyncDomain(ctx, domain); err != nil {
			w.logger.ErrorContext(ctx, "Failed to mirror domain",
				applog.FieldDomain, domain,
				applog.FieldError, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run performs a full sync now and then every interval until ctx is done.
// This is the backup path for lost or unconsumed change events.
func (w *MirrorWorker) Run(ctx context.Context, interval time.Duration) {
	start := time.Now()
	if err := w.SyncAll(ctx); err != nil {
		w.logger.WarnContext(ctx, "Startup sync completed with errors", applog.FieldError, err)
	} else {
		w.logger.InfoContext(ctx, "Startup sync completed",
			applog.FieldDuration, time.Since(start).Milliseconds())
	}
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.SyncAll(ctx); err != nil {
				w.logger.WarnContext(ctx, "Periodic sync completed with errors", applog.FieldError, err)
			}
		}
	}
}

func (w *MirrorWorker) table(ctx context.Context, domain string) ([]string, [][]string, error) {
	if domain == core.BudgetsDomain {
		budgets, err := w.store.Budgets(ctx)
		rows := make([][]string, 0, len(budgets))
		for _, b := range budgets {
			rows = append(rows, b.Values())
		}
		return core.BudgetFields, rows, err
	}

	kind, err := core.ParseKind(domain)
	if err != nil {
		return nil, nil, err
	}
	txs, err := w.store.List(ctx, kind)
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, tx.Values())
	}
	return kind.Fields(), rows, err
}
