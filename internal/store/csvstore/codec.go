package csvstore

import (
	"github.com/google/uuid"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

func transactionCodec(kind core.Kind) codec[core.Transaction] {
	domain := kind.Domain()
	label := kind.LabelField()
	return codec[core.Transaction]{
		domain:   domain,
		header:   kind.Fields(),
		required: []string{"date", "amount", label, "category"},
		decode: func(cols map[string]string, line int) (core.Transaction, error) {
			d, err := core.ParseDate(cols["date"])
			if err != nil {
				return core.Transaction{}, &core.ParseError{Domain: domain, Line: line, Field: "date", Value: cols["date"], Err: err}
			}
			amt, err := core.ParseStoredAmount(cols["amount"])
			if err != nil {
				return core.Transaction{}, &core.ParseError{Domain: domain, Line: line, Field: "amount", Value: cols["amount"], Err: err}
			}
			return core.Transaction{
				ID:       cols["id"],
				Kind:     kind,
				Date:     d,
				Amount:   amt,
				Label:    cols[label],
				Category: cols["category"],
			}, nil
		},
		encode: core.Transaction.Values,
		fill: func(tx *core.Transaction) bool {
			if tx.ID != "" {
				return false
			}
			tx.ID = uuid.NewString()
			return true
		},
	}
}

func budgetCodec() codec[core.BudgetLimit] {
	const domain = core.BudgetsDomain
	return codec[core.BudgetLimit]{
		domain:   domain,
		header:   core.BudgetFields,
		required: core.BudgetFields,
		decode: func(cols map[string]string, line int) (core.BudgetLimit, error) {
			if cols["category"] == "" {
				return core.BudgetLimit{}, &core.ParseError{Domain: domain, Line: line, Field: "category", Err: core.ErrEmptyCategory}
			}
			limit, err := core.ParseStoredLimit(cols["limit"])
			if err != nil {
				return core.BudgetLimit{}, &core.ParseError{Domain: domain, Line: line, Field: "limit", Value: cols["limit"], Err: err}
			}
			return core.BudgetLimit{Category: cols["category"], Limit: limit}, nil
		},
		encode: core.BudgetLimit.Values,
	}
}
