package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

func newStatsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Totals, categories and months for a period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			period, err := opts.period()
			if err != nil {
				return err
			}
			o := opts.ledger.Overview(cmd.Context(), period)
			w := cmd.OutOrStdout()

			warnState(w, core.KindExpense.Domain(), o.ExpensesState)
			warnState(w, core.KindIncome.Domain(), o.IncomeState)

			title(w, "TOTALS")
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintf(tw, "Income\t%s\t\n", euros(o.Totals.Income))
			fmt.Fprintf(tw, "Expenses\t%s\t\n", euros(o.Totals.Expenses))
			fmt.Fprintf(tw, "Balance\t%s\t\n", euros(o.Totals.Balance))
			fmt.Fprintf(tw, "Records\t%d\t\n", o.Totals.Count)
			if err := tw.Flush(); err != nil {
				return err
			}
			if o.HasTopCategory {
				fmt.Fprintf(w, "Top category: %s (%s)\n", o.TopCategory.Name, euros(o.TopCategory.Amount))
			}

			title(w, "EXPENSES BY CATEGORY")
			if len(o.ExpensesByCategory) == 0 {
				fmt.Fprintln(w, mutedColor.Sprint("no expenses"))
			}
			tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			for _, c := range o.ExpensesByCategory {
				name := c.Name
				if name == "" {
					name = "(uncategorized)"
				}
				fmt.Fprintf(tw, "%s\t%s\n", name, euros(c.Amount))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			title(w, "BY MONTH")
			income := make(map[string]core.Money, len(o.IncomeByMonth))
			months := make([]string, 0, len(o.ExpensesByMonth))
			expenses := make(map[string]core.Money, len(o.ExpensesByMonth))
			for _, m := range o.ExpensesByMonth {
				expenses[m.Month] = m.Amount
				months = append(months, m.Month)
			}
			for _, m := range o.IncomeByMonth {
				income[m.Month] = m.Amount
				if _, ok := expenses[m.Month]; !ok {
					months = append(months, m.Month)
				}
			}
			sort.Strings(months)
			tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "Month\tExpenses\tIncome")
			for _, m := range months {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", m, euros(expenses[m]), euros(income[m]))
			}
			return tw.Flush()
		},
	}
	addPeriodFlags(cmd, opts)
	return cmd
}
