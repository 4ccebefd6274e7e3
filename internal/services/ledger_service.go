package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
	"github.com/usere2211-alt/finance-dashboard/internal/events"
	applog "github.com/usere2211-alt/finance-dashboard/internal/log"
	"github.com/usere2211-alt/finance-dashboard/internal/store"
)

// Publisher announces successful writes. The AMQP events client implements it.
type Publisher interface {
	PublishChange(ctx context.Context, ev events.ChangeEvent) error
}

// LedgerService orchestrates record operations across the store and AMQP.
type LedgerService struct {
	store     store.Store
	publisher Publisher
	logger    *applog.Logger
}

// NewLedgerService wires a store with an optional publisher (nil disables events).
func NewLedgerService(st store.Store, publisher Publisher, logger *applog.Logger) *LedgerService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &LedgerService{
		store:     st,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentLedger),
	}
}

// Store exposes the underlying record store to read-only consumers.
func (s *LedgerService) Store() store.Store {
	return s.store
}

// List returns the usable records of a kind and the state of the read.
// A failed read yields no records and StateUnavailable.
func (s *LedgerService) List(ctx context.Context, kind core.Kind) ([]core.Transaction, core.DataState) {
	txs, err := s.store.List(ctx, kind)
	return txs, s.state(ctx, kind.Domain(), len(txs), err)
}

// Create validates tx, stores it with a fresh id and publishes the change.
func (s *LedgerService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.ID = ""
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	id, err := s.store.Append(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save %s: %w", tx.Kind, err)
	}
	tx.ID = id

	applog.NewStructuredLogger(s.logger).
		LogTransactionSaved(ctx, applog.OpCreate, tx.Kind.Domain(), id, tx.Amount.Cents, tx.Category)
	s.publish(ctx, tx.Kind.Domain(), events.OpCreate, id)
	return tx, nil
}

// Update replaces the record with tx.ID. Unknown ids return core.ErrNotFound.
func (s *LedgerService) Update(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if err := s.store.Update(ctx, tx); err != nil {
		return fmt.Errorf("update %s %s: %w", tx.Kind, tx.ID, err)
	}

	s.logger.InfoContext(ctx, "Transaction updated", applog.NewFields().
		WithOperation(applog.OpUpdate).
		WithTransaction(tx.Kind.Domain(), tx.ID, tx.Amount.Cents, tx.Category).ToSlice()...)
	s.publish(ctx, tx.Kind.Domain(), events.OpUpdate, tx.ID)
	return nil
}

// Delete removes a record. Unknown ids return core.ErrNotFound and leave
// the store unchanged.
func (s *LedgerService) Delete(ctx context.Context, kind core.Kind, id string) error {
	if err := s.store.Delete(ctx, kind, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}

	s.logger.InfoContext(ctx, "Transaction deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldDomain, kind.Domain(),
		applog.FieldRecordID, id)
	s.publish(ctx, kind.Domain(), events.OpDelete, id)
	return nil
}

// Budgets returns the stored limits and the state of the read.
func (s *LedgerService) Budgets(ctx context.Context) ([]core.BudgetLimit, core.DataState) {
	limits, err := s.store.Budgets(ctx)
	return limits, s.state(ctx, core.BudgetsDomain, len(limits), err)
}

// SetBudget creates or replaces the limit of b.Category.
func (s *LedgerService) SetBudget(ctx context.Context, b core.BudgetLimit) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := s.store.SetBudget(ctx, b); err != nil {
		return fmt.Errorf("set budget %q: %w", b.Category, err)
	}

	s.logger.InfoContext(ctx, "Budget saved",
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldCategory, b.Category,
		applog.FieldAmountCents, b.Limit.Cents)
	s.publish(ctx, core.BudgetsDomain, events.OpUpdate, b.Category)
	return nil
}

func (s *LedgerService) DeleteBudget(ctx context.Context, category string) error {
	if err := s.store.DeleteBudget(ctx, category); err != nil {
		return fmt.Errorf("delete budget %q: %w", category, err)
	}

	s.logger.InfoContext(ctx, "Budget deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldCategory, category)
	s.publish(ctx, core.BudgetsDomain, events.OpDelete, category)
	return nil
}

// Categories returns the distinct categories used by records of kind, plus
// budget categories for expenses, sorted.
func (s *LedgerService) Categories(ctx context.Context, kind core.Kind) []string {
	seen := make(map[string]struct{})
	txs, _ := s.List(ctx, kind)
	for _, tx := range txs {
		if strings.TrimSpace(tx.Category) != "" {
			seen[tx.Category] = struct{}{}
		}
	}
	if kind == core.KindExpense {
		limits, _ := s.Budgets(ctx)
		for _, b := range limits {
			seen[b.Category] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Ping reports whether the store can serve reads.
func (s *LedgerService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// state classifies a read and logs degraded outcomes.
func (s *LedgerService) state(ctx context.Context, domain string, n int, err error) core.DataState {
	st := core.StateFor(n, err)
	if st.Degraded() {
		s.logger.WarnContext(ctx, "Degraded read",
			applog.FieldDomain, domain,
			applog.FieldDataState, st,
			applog.FieldError, err)
	}
	return st
}

func (s *LedgerService) publish(ctx context.Context, domain, op, id string) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping change event",
			applog.FieldDomain, domain)
		return
	}
	if err := s.publisher.PublishChange(ctx, events.NewChangeEvent(domain, op, id)); err != nil {
		// Don't fail the request - the record is stored
		applog.NewStructuredLogger(s.logger).LogError(ctx, "Failed to publish change event", err,
			applog.ComponentAMQP, op, applog.LogFields{applog.FieldDomain: domain, applog.FieldRecordID: id})
	}
}

// Close closes the store and the publisher when it holds a connection.
func (s *LedgerService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}
