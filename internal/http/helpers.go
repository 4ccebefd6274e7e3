package http

import (
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/usere2211-alt/finance-dashboard/internal/analytics"
	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

// formatEuros formats cents as a Euro currency string (e.g., "€12,34").
func formatEuros(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	euros := cents / 100
	rem := cents % 100
	s := strconv.FormatInt(euros, 10) + "," + fmt.Sprintf("%02d", rem)
	if neg {
		return "-€" + s
	}
	return "€" + s
}

// sanitizeInput removes control characters (except tab and newlines) and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// barWidth scales v against max to a 0..100 percentage, keeping tiny
// non-zero values visible.
func barWidth(v, max int64) int {
	if max <= 0 || v <= 0 {
		return 0
	}
	width := int((v*100 + max/2) / max)
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}

// stateMessage is the banner text for a degraded read.
func stateMessage(s core.DataState) string {
	switch s {
	case core.StateCorrupt:
		return "Some stored rows could not be read and were skipped."
	case core.StateUnavailable:
		return "The data store is unavailable; figures shown as zero."
	}
	return ""
}

var templateFuncs = template.FuncMap{
	"euros": func(m core.Money) string { return formatEuros(m.Cents) },
	"pct":   func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "%" },
	"bar": func(v core.Money, max core.Money) int {
		return barWidth(v.Cents, max.Cents)
	},
	"clamp": func(v float64) int {
		if v > 100 {
			return 100
		}
		if v < 0 {
			return 0
		}
		return int(v)
	},
	"stateMessage": stateMessage,
	"pathEscape":   url.PathEscape,
	"degraded":     func(s core.DataState) bool { return s.Degraded() },
	"firstAmount": func(rows []core.CategoryAmount) core.Money {
		if len(rows) == 0 {
			return core.Money{}
		}
		return rows[0].Amount
	},
	"strategyLabel": func(s analytics.Strategy) string {
		if s == analytics.StrategyTrend {
			return "Linear trend"
		}
		return "Historical average"
	},
}
