package analytics

import (
	"fmt"
	"strings"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

// Strategy selects how the next month is predicted.
type Strategy string

const (
	StrategyAverage Strategy = "average"
	StrategyTrend   Strategy = "trend"
)

// Strategies lists the supported strategies in display order.
var Strategies = []Strategy{StrategyAverage, StrategyTrend}

// ParseStrategy accepts "average" and "trend". An empty name means average.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyAverage:
		return StrategyAverage, nil
	case StrategyTrend:
		return StrategyTrend, nil
	}
	return "", fmt.Errorf("unknown forecast strategy %q", s)
}

// Prediction is a next-month spending forecast.
type Prediction struct {
	Requested Strategy
	Used      Strategy
	Amount    core.Money
	Months    int
	// Slope and Intercept are set by the trend strategy, in cents.
	Slope     float64
	Intercept float64
	NextMonth string
}

// Average is the mean of the monthly totals, or 0 without data.
func Average(monthly core.MonthlyTotals) core.Money {
	if len(monthly) == 0 {
		return core.Money{}
	}
	var sum float64
	for _, v := range monthly {
		sum += float64(v.Cents)
	}
	return core.MoneyFromFloat(sum / float64(len(monthly)))
}

// Trend fits an ordinary least squares line of total against month index
// (0..n-1, chronological) and evaluates it at n. With fewer than two months
// it falls back to Average and reports ok=false.
func Trend(monthly core.MonthlyTotals) (amount core.Money, slope, intercept float64, ok bool) {
	n := len(monthly)
	if n < 2 {
		return Average(monthly), 0, 0, false
	}
	ys := make([]float64, n)
	for i, k := range SortedMonths(monthly) {
		ys[i] = float64(monthly[k].Cents)
	}
	var meanX, meanY float64
	for i, y := range ys {
		meanX += float64(i)
		meanY += y
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var cov, variance float64
	for i, y := range ys {
		dx := float64(i) - meanX
		cov += dx * (y - meanY)
		variance += dx * dx
	}
	slope = cov / variance
	intercept = meanY - slope*meanX
	return core.MoneyFromFloat(intercept + slope*float64(n)), slope, intercept, true
}

// Forecast predicts next month's total with the given strategy.
func Forecast(monthly core.MonthlyTotals, strategy Strategy) Prediction {
	p := Prediction{Requested: strategy, Used: StrategyAverage, Months: len(monthly)}
	if months := SortedMonths(monthly); len(months) > 0 {
		if next, err := core.NextMonthKey(months[len(months)-1]); err == nil {
			p.NextMonth = next
		}
	}
	if strategy == StrategyTrend {
		amount, slope, intercept, ok := Trend(monthly)
		p.Amount = amount
		if ok {
			p.Used = StrategyTrend
			p.Slope, p.Intercept = slope, intercept
		}
		return p
	}
	p.Amount = Average(monthly)
	return p
}
