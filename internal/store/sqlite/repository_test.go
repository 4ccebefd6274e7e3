package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
	"github.com/usere2211-alt/finance-dashboard/internal/store"
	"github.com/usere2211-alt/finance-dashboard/internal/store/storetest"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	r, err := NewRepository(filepath.Join(t.TempDir(), "data", "fintrack.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRepository(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newRepo(t) })
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")
	r, err := NewRepository(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := r.Append(context.Background(), storetest.Expense("2025-01-01", 100, "a", "A")); err != nil {
		t.Fatalf("append: %v", err)
	}
	r.Close()

	r, err = NewRepository(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer r.Close()
	got, err := r.List(context.Background(), core.KindExpense)
	if err != nil || len(got) != 1 {
		t.Fatalf("data lost across reopen: %v, %v", got, err)
	}
}

func TestMalformedStoredDateIsCorrupt(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	if _, err := r.Append(ctx, storetest.Expense("2025-01-01", 100, "good", "A")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, kind, date, amount_cents, label, category) VALUES ('bad', 'expense', '2025/01/02', 100, 'bad', 'A')`); err != nil {
		t.Fatalf("raw insert: %v", err)
	}
	got, err := r.List(ctx, core.KindExpense)
	if len(got) != 1 || got[0].Label != "good" {
		t.Fatalf("good rows = %+v", got)
	}
	if !errors.Is(err, core.ErrCorruptData) {
		t.Fatalf("expected corrupt data, got %v", err)
	}
}
