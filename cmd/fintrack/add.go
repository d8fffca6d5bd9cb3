package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

func (a *app) addCmd() *cobra.Command {
	var in services.TransactionInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense or income and save the ledger",
		Long: `Record one transaction. An existing entry with the same date, category
and type has the amount added to it instead of a new row being created.`,
		Example: "  fintrack add --amount 12.50 --category Groceries --date 2024-01-15 --kind expense",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			l, err := cli.OpenLedger(ctx, a.logger, a.cfg)
			if err != nil {
				return err
			}
			defer l.Close()

			tx, err := services.NewLedgerService(l.Store).Record(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s %s %s %s\n",
				tx.Date, tx.Category, tx.Kind, core.FormatAmount(tx.Amount))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Amount, "amount", "", "amount, e.g. 12.50")
	cmd.Flags().StringVar(&in.Category, "category", "", "category name")
	cmd.Flags().StringVar(&in.Date, "date", "", "date as YYYY-MM-DD")
	cmd.Flags().StringVar(&in.Kind, "kind", string(core.Expense), "expense or income")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
