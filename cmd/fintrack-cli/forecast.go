package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usere2211-alt/finance-dashboard/internal/analytics"
	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

func newForecastCmd(opts *options) *cobra.Command {
	var strategyName string
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Predict next month's expenses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			strategy, err := analytics.ParseStrategy(strategyName)
			if err != nil {
				return err
			}
			p, state := opts.ledger.Forecast(cmd.Context(), strategy)
			w := cmd.OutOrStdout()
			warnState(w, core.KindExpense.Domain(), state)

			month := p.NextMonth
			if month == "" {
				month = "next month"
			}
			title(w, "FORECAST "+month)
			unit := "months"
			if p.Months == 1 {
				unit = "month"
			}
			fmt.Fprintf(w, "%s  (%s over %d %s)\n", euros(p.Amount), p.Used, p.Months, unit)
			if p.Used != p.Requested {
				fmt.Fprintln(w, mutedColor.Sprintf("%s needs at least two months; used %s", p.Requested, p.Used))
			}
			if p.Used == analytics.StrategyTrend {
				fmt.Fprintln(w, mutedColor.Sprintf("slope %.0f cents/month, intercept %.0f cents", p.Slope, p.Intercept))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&strategyName, "strategy", "s", string(analytics.StrategyAverage), "average or trend")
	return cmd
}
