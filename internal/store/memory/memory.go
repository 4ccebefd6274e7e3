package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

// Store keeps everything in process memory. It is used by tests and by the
// memory backend for demos; nothing survives a restart.
type Store struct {
	mu      sync.Mutex
	txs     map[core.Kind][]core.Transaction
	budgets []core.BudgetLimit
}

func New() *Store {
	return &Store{txs: make(map[core.Kind][]core.Transaction)}
}

// NewWithData returns a store seeded with the given records.
func NewWithData(txs []core.Transaction, budgets []core.BudgetLimit) *Store {
	s := New()
	for _, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		s.txs[tx.Kind] = append(s.txs[tx.Kind], tx)
	}
	s.budgets = append(s.budgets, budgets...)
	return s
}

func (s *Store) List(ctx context.Context, kind core.Kind) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs[kind]...), nil
}

func (s *Store) Get(_ context.Context, kind core.Kind, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(kind, id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
	}
	return s.txs[kind][i], nil
}

// Append stores the transaction and returns its ID.
func (s *Store) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs[tx.Kind] = append(s.txs[tx.Kind], tx)
	return tx.ID, nil
}

func (s *Store) Update(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(tx.Kind, tx.ID)
	if i < 0 {
		return fmt.Errorf("%s %s: %w", tx.Kind, tx.ID, core.ErrNotFound)
	}
	s.txs[tx.Kind][i] = tx
	return nil
}

func (s *Store) Delete(_ context.Context, kind core.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(kind, id)
	if i < 0 {
		return fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
	}
	list := s.txs[kind]
	s.txs[kind] = append(list[:i:i], list[i+1:]...)
	return nil
}

func (s *Store) ReplaceAll(_ context.Context, kind core.Kind, txs []core.Transaction) error {
	out := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		tx.Kind = kind
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		out[i] = tx
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs[kind] = out
	return nil
}

func (s *Store) Budgets(ctx context.Context) ([]core.BudgetLimit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.BudgetLimit(nil), s.budgets...), nil
}

func (s *Store) SetBudget(_ context.Context, b core.BudgetLimit) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		if s.budgets[i].Category == b.Category {
			s.budgets[i] = b
			return nil
		}
	}
	s.budgets = append(s.budgets, b)
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.budgets[:0]
	for _, b := range s.budgets {
		if b.Category != category {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(s.budgets) {
		return fmt.Errorf("budget %q: %w", category, core.ErrNotFound)
	}
	s.budgets = kept
	return nil
}

func (s *Store) ReplaceBudgets(_ context.Context, limits []core.BudgetLimit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = append([]core.BudgetLimit(nil), limits...)
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

func (s *Store) indexOf(kind core.Kind, id string) int {
	for i, tx := range s.txs[kind] {
		if tx.ID == id {
			return i
		}
	}
	return -1
}
