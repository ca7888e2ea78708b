package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"budget/internal/core"
	"budget/internal/services"
)

func planCmd() *cobra.Command {
	var (
		amount, start, end, split string
		count                     int
		asJSON                    bool
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview an installment plan",
		Long: `Split an amount into dated installments without storing anything.

Every installment but the last gets the rounded even share; the last one
absorbs the rounding remainder.`,
		Example: "  budgetctl plan --amount 1000 --count 3 --start 2024-01-31 --split monthly",
		RunE: func(cmd *cobra.Command, _ []string) error {
			total, err := core.ParseMoney(amount)
			if err != nil {
				return fmt.Errorf("--amount: %w", err)
			}
			freq, err := core.ParseSplitFrequency(split)
			if err != nil {
				return err
			}
			startDate, err := parseDateFlag("start", start, core.StartOfDay(time.Now().UTC()))
			if err != nil {
				return err
			}
			endDate, err := parseDateFlag("end", end, time.Time{})
			if err != nil {
				return err
			}

			lines, err := services.PlanInstallments(core.InstallmentPlanRequest{
				TotalAmount: total,
				Count:       count,
				StartDate:   startDate,
				Frequency:   freq,
				CustomEnd:   endDate,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(lines)
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tDUE\tAMOUNT")
			for i, l := range lines {
				fmt.Fprintf(w, "%d/%d\t%s\t%s\n", i+1, len(lines), l.DueDate.Format(core.DateLayout), l.Amount)
			}
			fmt.Fprintf(w, "\tTOTAL\t%s\n", total)
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "total amount, e.g. 1000.50 (required)")
	cmd.Flags().IntVar(&count, "count", 1, "number of installments")
	cmd.Flags().StringVar(&start, "start", "", "first due date (default today)")
	cmd.Flags().StringVar(&split, "split", "monthly", "split frequency (none, daily, monthly, semester, custom)")
	cmd.Flags().StringVar(&end, "end", "", "last due date, for --split custom")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
