package analytics

import (
	"math"
	"testing"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

func months(vals map[string]int64) core.MonthlyTotals {
	out := make(core.MonthlyTotals, len(vals))
	for k, v := range vals {
		out[k] = core.Money{Cents: v}
	}
	return out
}

func TestAverage(t *testing.T) {
	if got := Average(nil); got.Cents != 0 {
		t.Fatalf("no data = %d", got.Cents)
	}
	if got := Average(months(map[string]int64{"2025-01": 10000})); got.Cents != 10000 {
		t.Fatalf("single month = %d", got.Cents)
	}
	if got := Average(months(map[string]int64{"2025-01": 100, "2025-02": 201})); got.Cents != 151 {
		t.Fatalf("rounded average = %d", got.Cents)
	}
}

func TestTrendTwoPointLine(t *testing.T) {
	amount, slope, intercept, ok := Trend(months(map[string]int64{"2025-01": 10000, "2025-02": 20000}))
	if !ok || amount.Cents != 30000 {
		t.Fatalf("got %d ok=%v", amount.Cents, ok)
	}
	if slope != 10000 || intercept != 10000 {
		t.Fatalf("slope=%v intercept=%v", slope, intercept)
	}
}

func TestTrendUsesChronologicalOrder(t *testing.T) {
	// Keys given out of order; the fit must follow the calendar.
	m := months(map[string]int64{"2025-03": 300, "2025-01": 100, "2025-02": 200})
	amount, slope, _, _ := Trend(m)
	if amount.Cents != 400 || math.Abs(slope-100) > 1e-9 {
		t.Fatalf("amount=%d slope=%v", amount.Cents, slope)
	}
}

func TestTrendFallsBackToAverage(t *testing.T) {
	amount, _, _, ok := Trend(months(map[string]int64{"2025-01": 10000}))
	if ok || amount.Cents != 10000 {
		t.Fatalf("fallback: %d ok=%v", amount.Cents, ok)
	}
}

func TestForecast(t *testing.T) {
	m := months(map[string]int64{"2025-11": 10000, "2025-12": 20000})

	p := Forecast(m, StrategyTrend)
	if p.Used != StrategyTrend || p.Amount.Cents != 30000 || p.NextMonth != "2026-01" || p.Months != 2 {
		t.Fatalf("trend = %+v", p)
	}

	p = Forecast(m, StrategyAverage)
	if p.Used != StrategyAverage || p.Amount.Cents != 15000 {
		t.Fatalf("average = %+v", p)
	}

	p = Forecast(months(map[string]int64{"2025-11": 5000}), StrategyTrend)
	if p.Requested != StrategyTrend || p.Used != StrategyAverage || p.Amount.Cents != 5000 {
		t.Fatalf("fallback = %+v", p)
	}

	p = Forecast(nil, StrategyTrend)
	if p.Amount.Cents != 0 || p.NextMonth != "" {
		t.Fatalf("empty = %+v", p)
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{"": StrategyAverage, "Average": StrategyAverage, "trend": StrategyTrend} {
		got, err := ParseStrategy(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %q, %v", in, got, err)
		}
	}
	if _, err := ParseStrategy("arima"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
