// Package store defines the record store ports shared by the csv, sqlite and
// memory adapters.
package store

import (
	"context"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionStore persists expense and income records, keyed by ID.
	TransactionStore interface {
		// List returns the usable records of a kind in stored order. When some
		// stored rows cannot be decoded the good rows are still returned along
		// with an error wrapping core.ErrCorruptData.
		List(ctx context.Context, kind core.Kind) ([]core.Transaction, error)
		Get(ctx context.Context, kind core.Kind, id string) (core.Transaction, error)
		// Append stores tx, assigning an ID when it has none.
		Append(ctx context.Context, tx core.Transaction) (id string, err error)
		Update(ctx context.Context, tx core.Transaction) error
		// Delete returns core.ErrNotFound for an unknown id.
		Delete(ctx context.Context, kind core.Kind, id string) error
		ReplaceAll(ctx context.Context, kind core.Kind, txs []core.Transaction) error
	}

	// BudgetStore persists per-category limits. Category is the key.
	BudgetStore interface {
		Budgets(ctx context.Context) ([]core.BudgetLimit, error)
		SetBudget(ctx context.Context, b core.BudgetLimit) error
		DeleteBudget(ctx context.Context, category string) error
		ReplaceBudgets(ctx context.Context, limits []core.BudgetLimit) error
	}

	// Store is what a backend provides.
	Store interface {
		TransactionStore
		BudgetStore
		// Ping reports whether the backend can currently serve reads.
		Ping(ctx context.Context) error
		Close() error
	}
)
