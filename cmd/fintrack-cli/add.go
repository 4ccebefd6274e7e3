package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

func newAddCmd(opts *options) *cobra.Command {
	var date, amount, label, category string
	cmd := &cobra.Command{
		Use:   "add <expense|income>",
		Short: "Record an expense or an income",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := core.ParseKind(args[0])
			if err != nil {
				return err
			}
			d := core.Today()
			if date != "" {
				if d, err = core.ParseDate(date); err != nil {
					return err
				}
			}
			cents, err := core.ParseDecimalToCents(amount)
			if err != nil {
				return fmt.Errorf("amount %q: %w", amount, err)
			}

			saved, err := opts.ledger.Create(cmd.Context(), core.Transaction{
				Kind:     kind,
				Date:     d,
				Amount:   core.Money{Cents: cents},
				Label:    label,
				Category: category,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s %s\n",
				goodColor.Sprint("saved"), saved.Kind, saved.Date, euros(saved.Amount), mutedColor.Sprint(saved.ID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount, e.g. 12.50 or 12,50")
	cmd.Flags().StringVarP(&label, "label", "l", "", "Description of an expense or source of an income")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
