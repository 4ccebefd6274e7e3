// Package sqlite is the SQLite backend of the record store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/usere2211-alt/finance-dashboard/internal/core"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

// NewRepository opens (or creates) the database file and applies migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time keeps SQLITE_BUSY out of the request path.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

const selectTransactions = `SELECT id, date, amount_cents, label, category FROM transactions`

func (r *Repository) List(ctx context.Context, kind core.Kind) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransactions+` WHERE kind = ? ORDER BY rowid`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", kind.Domain(), core.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var (
		out     []core.Transaction
		rowErrs []error
		line    int
	)
	for rows.Next() {
		line++
		tx, err := scanTransaction(rows, kind, line)
		if err != nil {
			var pe *core.ParseError
			if errors.As(err, &pe) {
				rowErrs = append(rowErrs, err)
				continue
			}
			return nil, fmt.Errorf("scan %s: %w", kind.Domain(), err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", kind.Domain(), core.ErrStoreUnavailable, err)
	}
	return out, core.CorruptError(kind.Domain(), rowErrs)
}

func (r *Repository) Get(ctx context.Context, kind core.Kind, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, selectTransactions+` WHERE kind = ? AND id = ?`, string(kind), id)
	tx, err := scanTransaction(row, kind, 0)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("%s %s: %w", kind.Domain(), id, core.ErrNotFound)
	}
	return tx, err
}

// Append stores the transaction and returns its ID.
func (r *Repository) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if err := insertTransaction(ctx, r.db, tx); err != nil {
		return "", err
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"kind", tx.Kind,
		"amount_cents", tx.Amount.Cents,
		"date", tx.Date.String())

	return tx.ID, nil
}

func (r *Repository) Update(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET date = ?, amount_cents = ?, label = ?, category = ? WHERE kind = ? AND id = ?`,
		tx.Date.String(), tx.Amount.Cents, tx.Label, tx.Category, string(tx.Kind), tx.ID)
	if err != nil {
		return fmt.Errorf("update %s: %w", tx.Kind.Domain(), err)
	}
	return expectOne(res, fmt.Sprintf("%s %s", tx.Kind.Domain(), tx.ID))
}

func (r *Repository) Delete(ctx context.Context, kind core.Kind, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE kind = ? AND id = ?`, string(kind), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind.Domain(), err)
	}
	return expectOne(res, fmt.Sprintf("%s %s", kind.Domain(), id))
}

// ReplaceAll swaps the records of a kind inside one transaction.
func (r *Repository) ReplaceAll(ctx context.Context, kind core.Kind, txs []core.Transaction) error {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer dbtx.Rollback()

	if _, err := dbtx.ExecContext(ctx, `DELETE FROM transactions WHERE kind = ?`, string(kind)); err != nil {
		return fmt.Errorf("clear %s: %w", kind.Domain(), err)
	}
	for _, tx := range txs {
		tx.Kind = kind
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		if err := insertTransaction(ctx, dbtx, tx); err != nil {
			return err
		}
	}
	return dbtx.Commit()
}

func (r *Repository) Budgets(ctx context.Context) ([]core.BudgetLimit, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category, limit_cents FROM budgets ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("budgets: %w: %v", core.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []core.BudgetLimit
	for rows.Next() {
		var b core.BudgetLimit
		if err := rows.Scan(&b.Category, &b.Limit.Cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("budgets: %w: %v", core.ErrStoreUnavailable, err)
	}
	return out, nil
}

// SetBudget inserts or replaces the limit of a category.
func (r *Repository) SetBudget(ctx context.Context, b core.BudgetLimit) error {
	if err := b.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (category, limit_cents) VALUES (?, ?)
		 ON CONFLICT(category) DO UPDATE SET limit_cents = excluded.limit_cents, updated_at = CURRENT_TIMESTAMP`,
		b.Category, b.Limit.Cents)
	if err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return nil
}

func (r *Repository) DeleteBudget(ctx context.Context, category string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE category = ?`, category)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return expectOne(res, fmt.Sprintf("budget %q", category))
}

func (r *Repository) ReplaceBudgets(ctx context.Context, limits []core.BudgetLimit) error {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer dbtx.Rollback()

	if _, err := dbtx.ExecContext(ctx, `DELETE FROM budgets`); err != nil {
		return fmt.Errorf("clear budgets: %w", err)
	}
	for _, b := range limits {
		if _, err := dbtx.ExecContext(ctx,
			`INSERT INTO budgets (category, limit_cents) VALUES (?, ?)
			 ON CONFLICT(category) DO UPDATE SET limit_cents = excluded.limit_cents`,
			b.Category, b.Limit.Cents); err != nil {
			return fmt.Errorf("insert budget: %w", err)
		}
	}
	return dbtx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTransaction(ctx context.Context, db execer, tx core.Transaction) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO transactions (id, kind, date, amount_cents, label, category) VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, string(tx.Kind), tx.Date.String(), tx.Amount.Cents, tx.Label, tx.Category)
	if err != nil {
		return fmt.Errorf("insert %s: %w", tx.Kind.Domain(), err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner, kind core.Kind, line int) (core.Transaction, error) {
	var (
		tx   = core.Transaction{Kind: kind}
		date string
	)
	if err := s.Scan(&tx.ID, &date, &tx.Amount.Cents, &tx.Label, &tx.Category); err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, &core.ParseError{Domain: kind.Domain(), Line: line, Field: "date", Value: date, Err: err}
	}
	tx.Date = d
	return tx, nil
}

func expectOne(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, core.ErrNotFound)
	}
	return nil
}
