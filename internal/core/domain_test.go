package core

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-02-29 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2024-02-29" || d.MonthKey() != "2024-02" {
		t.Fatalf("got %s / %s", d.String(), d.MonthKey())
	}
	for _, bad := range []string{"", "2024-13-01", "2023-02-29", "01/02/2024", "2024-1-5"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q: expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestMonthKeys(t *testing.T) {
	if got := MonthKeyOf("2024-01-15"); got != "2024-01" {
		t.Fatalf("MonthKeyOf = %q", got)
	}
	if got := MonthKeyOf("2024"); got != "2024" {
		t.Fatalf("short key = %q", got)
	}
	if got := (Date{}).MonthKey(); got != "" {
		t.Fatalf("zero date month key = %q", got)
	}
	next, err := NextMonthKey("2024-12")
	if err != nil || next != "2025-01" {
		t.Fatalf("NextMonthKey = %q, %v", next, err)
	}
	if _, err := NextMonthKey("december"); err == nil {
		t.Fatalf("expected error for bad month key")
	}
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"expense":  KindExpense,
		"Expenses": KindExpense,
		"income":   KindIncome,
		" incomes": KindIncome,
	}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %q, %v", in, got, err)
		}
	}
	if _, err := ParseKind("budget"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Kind:     KindExpense,
		Date:     NewDate(2025, 1, 1),
		Amount:   Money{Cents: 100},
		Label:    "coffee",
		Category: "Food",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'x'
	}
	bads := []Transaction{
		{Kind: "", Date: NewDate(2025, 1, 1), Amount: Money{Cents: 1}},
		{Kind: KindIncome, Date: Date{}, Amount: Money{Cents: 1}},
		{Kind: KindIncome, Date: NewDate(2025, 1, 1), Amount: Money{Cents: 0}},
		{Kind: KindExpense, Date: NewDate(2025, 1, 1), Amount: Money{Cents: 1}, Label: string(long)},
	}
	for i, tr := range bads {
		if err := tr.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionFieldsAndValues(t *testing.T) {
	exp := Transaction{ID: "a", Kind: KindExpense, Date: NewDate(2024, 1, 5), Amount: Money{Cents: 1230}, Label: "Lunch", Category: "Food"}
	if !reflect.DeepEqual(exp.Fields(), []string{"id", "date", "amount", "description", "category"}) {
		t.Fatalf("expense fields = %v", exp.Fields())
	}
	if !reflect.DeepEqual(exp.Values(), []string{"a", "2024-01-05", "12.30", "Lunch", "Food"}) {
		t.Fatalf("expense values = %v", exp.Values())
	}
	inc := Transaction{Kind: KindIncome}
	if inc.Fields()[3] != "source" {
		t.Fatalf("income label field = %q", inc.Fields()[3])
	}
}

func TestBudgetLimitValidate(t *testing.T) {
	if err := (BudgetLimit{Category: "Food", Limit: Money{}}).Validate(); err != nil {
		t.Fatalf("zero limit should be allowed, got %v", err)
	}
	if err := (BudgetLimit{Category: "  ", Limit: Money{Cents: 100}}).Validate(); !errors.Is(err, ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
	if err := (BudgetLimit{Category: "Food", Limit: Money{Cents: -1}}).Validate(); err == nil {
		t.Fatalf("expected error for negative limit")
	}
}

func TestParseErrorUnwrap(t *testing.T) {
	pe := &ParseError{Domain: "expenses", Line: 3, Field: "amount", Value: "abc", Err: ErrInvalidAmount}
	if !errors.Is(pe, ErrParse) || !errors.Is(pe, ErrInvalidAmount) {
		t.Fatalf("ParseError should unwrap to ErrParse and its cause")
	}
	err := CorruptError("expenses", []error{pe})
	if !errors.Is(err, ErrCorruptData) {
		t.Fatalf("expected ErrCorruptData, got %v", err)
	}
	var target *ParseError
	if !errors.As(err, &target) || target.Line != 3 {
		t.Fatalf("expected ParseError inside corrupt error, got %v", err)
	}
	if CorruptError("expenses", nil) != nil {
		t.Fatalf("no row errors should give nil")
	}
}

func TestStateFor(t *testing.T) {
	cases := []struct {
		n    int
		err  error
		want DataState
	}{
		{0, nil, StateEmpty},
		{3, nil, StateOK},
		{2, CorruptError("income", []error{errors.New("x")}), StateCorrupt},
		{0, ErrStoreUnavailable, StateUnavailable},
	}
	for i, tc := range cases {
		if got := StateFor(tc.n, tc.err); got != tc.want {
			t.Fatalf("case %d: got %s want %s", i, got, tc.want)
		}
	}
	if Worst(StateOK, StateCorrupt, StateEmpty) != StateCorrupt {
		t.Fatalf("Worst picked the wrong state")
	}
	if !StateUnavailable.Degraded() || StateEmpty.Degraded() {
		t.Fatalf("Degraded classification wrong")
	}
}
