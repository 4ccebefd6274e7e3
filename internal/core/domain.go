package core

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for storage and forms.
const DateLayout = "2006-01-02"

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

type (
	// Kind tells expense and income records apart.
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single expense or income row. Label holds the
	// description of an expense or the source of an income.
	Transaction struct {
		ID       string
		Kind     Kind
		Date     Date
		Amount   Money
		Label    string
		Category string
	}

	// BudgetLimit caps the spending of one category. Category is the key.
	BudgetLimit struct {
		Category string
		Limit    Money
	}
)

// Kinds lists the transaction kinds in display order.
var Kinds = []Kind{KindExpense, KindIncome}

// ParseKind accepts both the singular kind and its domain name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense", "expenses":
		return KindExpense, nil
	case "income", "incomes":
		return KindIncome, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// Domain returns the record store name for the kind, also used in URLs.
func (k Kind) Domain() string {
	if k == KindIncome {
		return "income"
	}
	return "expenses"
}

// LabelField is the column name of Transaction.Label for the kind.
func (k Kind) LabelField() string {
	if k == KindIncome {
		return "source"
	}
	return "description"
}

// Fields returns the column names of a record of this kind.
func (k Kind) Fields() []string {
	return []string{"id", "date", "amount", k.LabelField(), "category"}
}

// ParseDate parses an ISO YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// IsEmpty reports whether the date is unset. Filters treat it as unbounded.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// String renders the date as YYYY-MM-DD, or "" when unset.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthKey returns the YYYY-MM bucket of the date.
func (d Date) MonthKey() string {
	return MonthKeyOf(d.String())
}

// MonthKeyOf takes the first seven characters of an ISO date string.
func MonthKeyOf(iso string) string {
	if len(iso) < 7 {
		return iso
	}
	return iso[:7]
}

// NextMonthKey returns the month following a YYYY-MM key.
func NextMonthKey(key string) (string, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return "", fmt.Errorf("%w: month key %q", ErrInvalidDate, key)
	}
	return t.AddDate(0, 1, 0).Format("2006-01"), nil
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, t.Kind)
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(t.Label) > 200 {
		return ErrLabelTooLong
	}
	return nil
}

// Fields returns the column names of the record.
func (t Transaction) Fields() []string {
	return t.Kind.Fields()
}

// Values returns the record as a flat row matching Fields.
func (t Transaction) Values() []string {
	return []string{t.ID, t.Date.String(), t.Amount.Decimal(), t.Label, t.Category}
}

// BudgetsDomain names the budget limit store.
const BudgetsDomain = "budgets"

// Domains lists every record store: the two transaction kinds, then budgets.
var Domains = []string{KindExpense.Domain(), KindIncome.Domain(), BudgetsDomain}

// BudgetFields are the column names of a budget row.
var BudgetFields = []string{"category", "limit"}

func (b BudgetLimit) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Limit.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (b BudgetLimit) Fields() []string {
	return BudgetFields
}

func (b BudgetLimit) Values() []string {
	return []string{b.Category, b.Limit.Decimal()}
}
