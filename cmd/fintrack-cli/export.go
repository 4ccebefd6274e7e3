package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
	"github.com/usere2211-alt/finance-dashboard/internal/export"
)

func newExportCmd(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:       "export <expenses|income|budgets>",
		Short:     "Write one domain as CSV",
		Args:      cobra.ExactArgs(1),
		ValidArgs: core.Domains,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := writeExport(cmd, opts, args[0], w); err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", goodColor.Sprint("wrote"), output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (default stdout)")
	return cmd
}

func writeExport(cmd *cobra.Command, opts *options, domain string, w io.Writer) error {
	ctx := cmd.Context()
	if domain == core.BudgetsDomain {
		limits, state := opts.ledger.Budgets(ctx)
		warnState(cmd.ErrOrStderr(), domain, state)
		return export.CSV(w, limits)
	}
	kind, err := core.ParseKind(domain)
	if err != nil || kind.Domain() != domain {
		return fmt.Errorf("unknown domain %q: want one of %v", domain, core.Domains)
	}
	txs, state := opts.ledger.List(ctx, kind)
	warnState(cmd.ErrOrStderr(), domain, state)
	return export.CSV(w, txs)
}
