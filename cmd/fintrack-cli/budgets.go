package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

func newBudgetsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Spend against each budget limit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			period, err := opts.period()
			if err != nil {
				return err
			}
			o := opts.ledger.Overview(cmd.Context(), period)
			w := cmd.OutOrStdout()

			warnState(w, core.BudgetsDomain, o.BudgetsState)
			warnState(w, core.KindExpense.Domain(), o.ExpensesState)
			if len(o.Budgets) == 0 {
				fmt.Fprintln(w, mutedColor.Sprint("no budgets set; add one with: fintrack-cli budgets set <category> <limit>"))
				return nil
			}

			title(w, "BUDGETS")
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "Category\tSpent\tLimit\tRemaining\tUsed\t")
			for _, b := range o.Budgets {
				used := fmt.Sprintf("%s %5.1f%%", bar(b.Percentage, 20), b.Percentage)
				if b.OverBudget {
					used += " OVER"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
					b.Category, euros(b.Spent), euros(b.Limit), euros(b.Remaining),
					classified(b.Classification, used))
			}
			return tw.Flush()
		},
	}
	addPeriodFlags(cmd, opts)

	cmd.AddCommand(&cobra.Command{
		Use:   "set <category> <limit>",
		Short: "Create or replace a category limit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := core.ParseLimitToCents(args[1])
			if err != nil {
				return fmt.Errorf("limit %q: %w", args[1], err)
			}
			b := core.BudgetLimit{Category: args[0], Limit: core.Money{Cents: cents}}
			if err := opts.ledger.SetBudget(cmd.Context(), b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", goodColor.Sprint("saved"), b.Category, euros(b.Limit))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <category>",
		Aliases: []string{"delete"},
		Short:   "Remove a category limit",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := opts.ledger.DeleteBudget(cmd.Context(), args[0])
			if errors.Is(err, core.ErrNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s no budget for %s\n", warnColor.Sprint("skipped"), args[0])
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", goodColor.Sprint("removed"), args[0])
			return nil
		},
	})
	return cmd
}
