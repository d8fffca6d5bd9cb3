package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fintrack/internal/chart"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

func (a *app) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print per-category totals for the current month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			l, err := cli.OpenLedger(ctx, a.logger, a.cfg)
			if err != nil {
				return err
			}
			defer l.Close()

			reports := a.reportService(l.Store)
			summary, ok := reports.MonthlySummary(ctx)
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "no data for %s\n", summary.Month)
				return nil
			}
			return printSummary(cmd.OutOrStdout(), summary)
		},
	}
}

func (a *app) chartCmd() *cobra.Command {
	var toStdout bool
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the current month chart as a PNG",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			l, err := cli.OpenLedger(ctx, a.logger, a.cfg)
			if err != nil {
				return err
			}
			defer l.Close()

			reports := a.reportService(l.Store)
			if toStdout {
				summary, ok := reports.MonthlySummary(ctx)
				if !ok {
					fmt.Fprintf(cmd.ErrOrStderr(), "no data for %s\n", summary.Month)
					return nil
				}
				return chart.WriteTo(cmd.OutOrStdout(), summary)
			}

			path, summary, err := reports.RenderMonthlyChart(ctx)
			if errors.Is(err, services.ErrNoData) {
				fmt.Fprintf(cmd.OutOrStdout(), "no data for %s\n", summary.Month)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "write the PNG to stdout instead of CHART_DIR")
	return cmd
}

func printSummary(out io.Writer, s core.MonthlySummary) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, s.Title())
	fmt.Fprintf(w, "Category\tExpenses\tIncomes\t\n")
	for i, c := range s.Categories {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t\n", c, s.Expenses[i], s.Incomes[i])
	}
	return w.Flush()
}
