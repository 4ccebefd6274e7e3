// Package csvstore keeps transactions and budgets in one CSV file per domain
// (expenses.csv, income.csv, budgets.csv) inside a data directory.
//
// Each file is mirrored in memory and reloaded when its modification time or
// size changes. Writes replace the whole file through a temp file and rename.
// A mutex serialises callers inside one process; two processes writing the
// same directory can still lose updates.
package csvstore

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

type Store struct {
	dir     string
	mu      sync.Mutex
	txs     map[core.Kind]*table[core.Transaction]
	budgets *table[core.BudgetLimit]
}

// New opens the data directory, creating it when missing. Files are created
// lazily on first access.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	s := &Store{
		dir:     dir,
		txs:     make(map[core.Kind]*table[core.Transaction], len(core.Kinds)),
		budgets: newTable(dir, budgetCodec()),
	}
	for _, k := range core.Kinds {
		s.txs[k] = newTable(dir, transactionCodec(k))
	}
	return s, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) table(kind core.Kind) (*table[core.Transaction], error) {
	t, ok := s.txs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
	return t, nil
}

func (s *Store) List(ctx context.Context, kind core.Kind) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.table(kind)
	if err != nil {
		return nil, err
	}
	if err := t.sync(); err != nil {
		return nil, err
	}
	return t.values()
}

func (s *Store) Get(ctx context.Context, kind core.Kind, id string) (core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.table(kind)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := t.sync(); err != nil {
		return core.Transaction{}, err
	}
	if i := indexOf(t.rows, id); i >= 0 {
		return t.rows[i].val, nil
	}
	return core.Transaction{}, fmt.Errorf("%s %s: %w", kind.Domain(), id, core.ErrNotFound)
}

// Append stores the transaction and returns its ID.
func (s *Store) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := tx.Validate(); err != nil {
		return "", err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.table(tx.Kind)
	if err != nil {
		return "", err
	}
	err = t.apply(func(rows []row[core.Transaction]) ([]row[core.Transaction], error) {
		return append(rows, row[core.Transaction]{val: tx}), nil
	})
	if err != nil {
		return "", err
	}
	return tx.ID, nil
}

func (s *Store) Update(ctx context.Context, tx core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.table(tx.Kind)
	if err != nil {
		return err
	}
	return t.apply(func(rows []row[core.Transaction]) ([]row[core.Transaction], error) {
		i := indexOf(rows, tx.ID)
		if i < 0 {
			return nil, fmt.Errorf("%s %s: %w", tx.Kind.Domain(), tx.ID, core.ErrNotFound)
		}
		rows[i] = row[core.Transaction]{val: tx}
		return rows, nil
	})
}

func (s *Store) Delete(ctx context.Context, kind core.Kind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.table(kind)
	if err != nil {
		return err
	}
	return t.apply(func(rows []row[core.Transaction]) ([]row[core.Transaction], error) {
		i := indexOf(rows, id)
		if i < 0 {
			return nil, fmt.Errorf("%s %s: %w", kind.Domain(), id, core.ErrNotFound)
		}
		return append(rows[:i], rows[i+1:]...), nil
	})
}

// ReplaceAll overwrites the whole file, dropping any undecodable rows.
func (s *Store) ReplaceAll(ctx context.Context, kind core.Kind, txs []core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([]row[core.Transaction], len(txs))
	for i, tx := range txs {
		tx.Kind = kind
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		rows[i] = row[core.Transaction]{val: tx}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.table(kind)
	if err != nil {
		return err
	}
	return t.apply(func([]row[core.Transaction]) ([]row[core.Transaction], error) {
		return rows, nil
	})
}

func (s *Store) Budgets(ctx context.Context) ([]core.BudgetLimit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.budgets.sync(); err != nil {
		return nil, err
	}
	return s.budgets.values()
}

// SetBudget inserts or replaces the limit of a category.
func (s *Store) SetBudget(ctx context.Context, b core.BudgetLimit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets.apply(func(rows []row[core.BudgetLimit]) ([]row[core.BudgetLimit], error) {
		out := rows[:0]
		replaced := false
		for _, r := range rows {
			if r.err == nil && r.val.Category == b.Category {
				if replaced {
					continue
				}
				r = row[core.BudgetLimit]{val: b}
				replaced = true
			}
			out = append(out, r)
		}
		if !replaced {
			out = append(out, row[core.BudgetLimit]{val: b})
		}
		return out, nil
	})
}

func (s *Store) DeleteBudget(ctx context.Context, category string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets.apply(func(rows []row[core.BudgetLimit]) ([]row[core.BudgetLimit], error) {
		out := rows[:0]
		for _, r := range rows {
			if r.err == nil && r.val.Category == category {
				continue
			}
			out = append(out, r)
		}
		if len(out) == len(rows) {
			return nil, fmt.Errorf("budget %q: %w", category, core.ErrNotFound)
		}
		return out, nil
	})
}

func (s *Store) ReplaceBudgets(ctx context.Context, limits []core.BudgetLimit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([]row[core.BudgetLimit], len(limits))
	for i, b := range limits {
		rows[i] = row[core.BudgetLimit]{val: b}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets.apply(func([]row[core.BudgetLimit]) ([]row[core.BudgetLimit], error) {
		return rows, nil
	})
}

// Ping checks that the data directory is still reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	st, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	if !st.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", core.ErrStoreUnavailable, s.dir)
	}
	return nil
}

func (s *Store) Close() error { return nil }

func indexOf(rows []row[core.Transaction], id string) int {
	if id == "" {
		return -1
	}
	for i, r := range rows {
		if r.err == nil && r.val.ID == id {
			return i
		}
	}
	return -1
}
