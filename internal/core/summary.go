package core

import "errors"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthAmount is the total of one YYYY-MM bucket.
type MonthAmount struct {
	Month  string
	Amount Money
}

// MonthlyTotals maps a month-key to the summed amount of that month.
type MonthlyTotals map[string]Money

// DataState tells the presentation layer why a view may be empty.
type DataState string

const (
	StateOK          DataState = "ok"
	StateEmpty       DataState = "empty"
	StateCorrupt     DataState = "corrupt"
	StateUnavailable DataState = "unavailable"
)

// StateFor classifies the outcome of a store read of n usable records.
func StateFor(n int, err error) DataState {
	switch {
	case err == nil && n == 0:
		return StateEmpty
	case err == nil:
		return StateOK
	case errors.Is(err, ErrCorruptData):
		return StateCorrupt
	default:
		return StateUnavailable
	}
}

// Degraded reports whether the state should be surfaced as a warning.
func (s DataState) Degraded() bool {
	return s == StateCorrupt || s == StateUnavailable
}

// Worst picks the most severe of the given states.
func Worst(states ...DataState) DataState {
	rank := map[DataState]int{StateOK: 0, StateEmpty: 1, StateCorrupt: 2, StateUnavailable: 3}
	worst := StateOK
	for _, s := range states {
		if rank[s] > rank[worst] {
			worst = s
		}
	}
	return worst
}
