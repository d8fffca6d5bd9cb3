package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fintrack/internal/chart"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/ledger"
	"fintrack/internal/services"
)

// app holds what PersistentPreRunE prepared for the subcommands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// reportService builds the summary and chart service from the loaded config.
func (a *app) reportService(store *ledger.Store) *services.ReportService {
	return services.NewReportService(store,
		chart.NewPNGRenderer(a.cfg.ChartDir),
		services.WithCacheSize(a.cfg.SummaryCacheSize))
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var dataFile string

	root := &cobra.Command{
		Use:   "fintrack",
		Short: "Personal income and expense tracker",
		Long: `fintrack records incomes and expenses, merging entries that share
date, category and type, and summarizes the current month per category.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cli.LoadEnvFile()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dataFile != "" {
				cfg.DataFile = dataFile
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cli.SetupLogger(cfg.LogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&dataFile, "data-file", "", "CSV ledger path (overrides DATA_FILE)")

	root.AddCommand(a.serveCmd())
	root.AddCommand(a.addCmd())
	root.AddCommand(a.summaryCmd())
	root.AddCommand(a.chartCmd())
	return root
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
