package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/usere2211-alt/finance-dashboard/internal/analytics"
	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

var (
	titleColor = color.New(color.Bold, color.Underline)
	mutedColor = color.New(color.Faint)
	goodColor  = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	badColor   = color.New(color.FgHiRed)
)

var classColors = map[analytics.Classification]*color.Color{
	analytics.Under: goodColor,
	analytics.Near:  warnColor,
	analytics.Over:  badColor,
}

func disableColor() {
	color.NoColor = true
}

// euros renders cents with thousands separators, e.g. "-1,234.50 EUR".
func euros(m core.Money) string {
	return decimalString(m.Cents) + " EUR"
}

func decimalString(cents int64) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s%s.%02d", sign, groupThousands(cents/100), cents%100)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func classified(c analytics.Classification, text string) string {
	if col, ok := classColors[c]; ok {
		return col.Sprint(text)
	}
	return text
}

func title(w io.Writer, s string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleColor.Sprint(s))
}

// warnState prints a banner when a read was degraded.
func warnState(w io.Writer, domain string, s core.DataState) {
	switch s {
	case core.StateCorrupt:
		fmt.Fprintln(w, warnColor.Sprintf("warning: %s has unreadable rows; they were skipped", domain))
	case core.StateUnavailable:
		fmt.Fprintln(w, badColor.Sprintf("warning: %s could not be read; showing zero", domain))
	}
}

// bar draws pct (0..100, clamped) as a fixed-width gauge.
func bar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct*float64(width)/100 + 0.5)
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}
