// Package storetest holds behaviour checks shared by every store adapter.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
	"github.com/usere2211-alt/finance-dashboard/internal/store"
)

// Run exercises s through the store ports. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("EmptyStore", func(t *testing.T) {
		s := newStore(t)
		for _, k := range core.Kinds {
			got, err := s.List(context.Background(), k)
			if err != nil || len(got) != 0 {
				t.Fatalf("%s: got %v, %v", k, got, err)
			}
		}
		b, err := s.Budgets(context.Background())
		if err != nil || len(b) != 0 {
			t.Fatalf("budgets: got %v, %v", b, err)
		}
		if err := s.Ping(context.Background()); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})

	t.Run("AppendGetUpdateDelete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first := Expense("2025-01-10", 1250, "Lunch", "Food")
		id, err := s.Append(ctx, first)
		if err != nil || id == "" {
			t.Fatalf("append: id=%q err=%v", id, err)
		}
		secondID, err := s.Append(ctx, Expense("2025-01-11", 4000, "Train", "Transport"))
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if id == secondID {
			t.Fatalf("ids must be unique")
		}

		got, err := s.Get(ctx, core.KindExpense, id)
		if err != nil || got.Label != "Lunch" || got.Amount.Cents != 1250 || got.Date.String() != "2025-01-10" {
			t.Fatalf("get: %+v, %v", got, err)
		}

		got.Amount = core.Money{Cents: 1500}
		got.Category = "Eating out"
		if err := s.Update(ctx, got); err != nil {
			t.Fatalf("update: %v", err)
		}
		list, _ := s.List(ctx, core.KindExpense)
		if len(list) != 2 || list[0].ID != id || list[0].Amount.Cents != 1500 || list[0].Category != "Eating out" {
			t.Fatalf("after update: %+v", list)
		}

		if err := s.Delete(ctx, core.KindExpense, id); err != nil {
			t.Fatalf("delete: %v", err)
		}
		list, _ = s.List(ctx, core.KindExpense)
		if len(list) != 1 || list[0].ID != secondID {
			t.Fatalf("after delete: %+v", list)
		}
		income, _ := s.List(ctx, core.KindIncome)
		if len(income) != 0 {
			t.Fatalf("kinds must not mix: %+v", income)
		}
	})

	t.Run("UnknownIDLeavesSequenceUnchanged", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if _, err := s.Append(ctx, Income("2025-02-01", 200000, "Salary", "Work")); err != nil {
			t.Fatalf("append: %v", err)
		}
		if err := s.Delete(ctx, core.KindIncome, "missing"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("delete unknown: %v", err)
		}
		ghost := Income("2025-02-02", 1, "x", "y")
		ghost.ID = "missing"
		if err := s.Update(ctx, ghost); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("update unknown: %v", err)
		}
		if _, err := s.Get(ctx, core.KindIncome, "missing"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("get unknown: %v", err)
		}
		list, _ := s.List(ctx, core.KindIncome)
		if len(list) != 1 || list[0].Label != "Salary" {
			t.Fatalf("sequence changed: %+v", list)
		}
	})

	t.Run("ReplaceAll", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if _, err := s.Append(ctx, Expense("2025-01-01", 100, "a", "A")); err != nil {
			t.Fatalf("append: %v", err)
		}
		repl := []core.Transaction{
			Expense("2025-03-01", 300, "c", "C"),
			Expense("2025-02-01", 200, "b", "B"),
		}
		if err := s.ReplaceAll(ctx, core.KindExpense, repl); err != nil {
			t.Fatalf("replace: %v", err)
		}
		list, _ := s.List(ctx, core.KindExpense)
		if len(list) != 2 || list[0].Label != "c" || list[1].Label != "b" {
			t.Fatalf("after replace: %+v", list)
		}
		for _, tx := range list {
			if tx.ID == "" {
				t.Fatalf("replaced records need ids")
			}
		}
	})

	t.Run("Budgets", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if err := s.SetBudget(ctx, core.BudgetLimit{Category: "Food", Limit: core.Money{Cents: 10000}}); err != nil {
			t.Fatalf("set: %v", err)
		}
		if err := s.SetBudget(ctx, core.BudgetLimit{Category: "Fun", Limit: core.Money{}}); err != nil {
			t.Fatalf("set zero: %v", err)
		}
		if err := s.SetBudget(ctx, core.BudgetLimit{Category: "Food", Limit: core.Money{Cents: 25000}}); err != nil {
			t.Fatalf("overwrite: %v", err)
		}
		got, err := s.Budgets(ctx)
		if err != nil || len(got) != 2 {
			t.Fatalf("budgets: %+v, %v", got, err)
		}
		byCat := map[string]int64{}
		for _, b := range got {
			byCat[b.Category] = b.Limit.Cents
		}
		if byCat["Food"] != 25000 || byCat["Fun"] != 0 {
			t.Fatalf("last write should win: %v", byCat)
		}

		if err := s.DeleteBudget(ctx, "Fun"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := s.DeleteBudget(ctx, "Fun"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("delete twice: %v", err)
		}
		if err := s.ReplaceBudgets(ctx, []core.BudgetLimit{{Category: "Rent", Limit: core.Money{Cents: 90000}}}); err != nil {
			t.Fatalf("replace: %v", err)
		}
		got, _ = s.Budgets(ctx)
		if len(got) != 1 || got[0].Category != "Rent" {
			t.Fatalf("after replace: %+v", got)
		}
	})

	t.Run("RejectsInvalid", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		bad := Expense("2025-01-01", 0, "free", "Food")
		if _, err := s.Append(ctx, bad); !errors.Is(err, core.ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
		if err := s.SetBudget(ctx, core.BudgetLimit{Category: ""}); !errors.Is(err, core.ErrEmptyCategory) {
			t.Fatalf("expected ErrEmptyCategory, got %v", err)
		}
	})
}

// Expense builds a valid expense without an ID.
func Expense(date string, cents int64, label, category string) core.Transaction {
	return build(core.KindExpense, date, cents, label, category)
}

// Income builds a valid income without an ID.
func Income(date string, cents int64, label, category string) core.Transaction {
	return build(core.KindIncome, date, cents, label, category)
}

func build(kind core.Kind, date string, cents int64, label, category string) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{Kind: kind, Date: d, Amount: core.Money{Cents: cents}, Label: label, Category: category}
}
