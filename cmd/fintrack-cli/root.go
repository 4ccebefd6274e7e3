package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/usere2211-alt/finance-dashboard/internal/backend"
	"github.com/usere2211-alt/finance-dashboard/internal/cli"
	"github.com/usere2211-alt/finance-dashboard/internal/config"
	applog "github.com/usere2211-alt/finance-dashboard/internal/log"
	"github.com/usere2211-alt/finance-dashboard/internal/services"
)

type options struct {
	backend string
	dataDir string
	dbPath  string
	start   string
	end     string
	noColor bool
	verbose bool

	ledger *services.LedgerService
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "fintrack-cli",
		Short:        "Personal finance ledger from the terminal",
		Long:         "Inspect totals, budgets and forecasts, add records and export CSV files.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.open(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if opts.ledger == nil {
				return nil
			}
			return opts.ledger.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.backend, "backend", "", "Storage backend (csv, sqlite, memory); overrides DATA_BACKEND")
	flags.StringVar(&opts.dataDir, "data-dir", "", "CSV data directory; overrides DATA_DIR")
	flags.StringVar(&opts.dbPath, "db", "", "SQLite database path; overrides SQLITE_DB_PATH")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log at the configured level instead of warnings only")

	root.AddCommand(
		newStatsCmd(opts),
		newBudgetsCmd(opts),
		newForecastCmd(opts),
		newExportCmd(opts),
		newAddCmd(opts),
	)
	return root
}

// addPeriodFlags registers --start and --end on commands that filter by date.
func addPeriodFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.start, "start", "", "First day included (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.end, "end", "", "Last day included (YYYY-MM-DD)")
}

func (o *options) period() (services.Period, error) {
	return services.ParsePeriod(o.start, o.end)
}

func (o *options) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if o.backend != "" {
		cfg.DataBackend = o.backend
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.dbPath != "" {
		cfg.SQLiteDBPath = o.dbPath
	}
	if !o.verbose {
		cfg.LogLevel = "warn"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if o.noColor {
		disableColor()
	}

	// Warnings go to stderr so they never mix with exported CSV.
	logger := cli.SetupLogger(cfg, os.Stderr).WithComponent(applog.ComponentCLI)
	ledger, err := backend.NewFactory(logger).NewLedger(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	o.ledger = ledger
	return nil
}
