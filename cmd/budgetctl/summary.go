package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"budget/internal/core"
)

func summaryCmd(v *viper.Viper) *cobra.Command {
	var period, from, to string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print income and expense totals per period and category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := core.ParsePeriod(period)
			if err != nil {
				return err
			}
			fromDate, err := parseDateFlag("from", from, time.Time{})
			if err != nil {
				return err
			}
			toDate, err := parseDateFlag("to", to, time.Time{})
			if err != nil {
				return err
			}
			if !toDate.IsZero() {
				toDate = core.AddDays(toDate, 1).Add(-time.Nanosecond)
			}

			app, closeFn, err := openApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer closeFn()

			report, err := app.Reports.Summary(cmd.Context(), core.ReportQuery{Period: p, From: fromDate, To: toDate})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "PERIOD\tINCOME\tEXPENSE\t")
			for _, b := range report.Buckets {
				fmt.Fprintf(w, "%s\t%s\t%s\t\n", b.Label, b.Income, b.Expense)
			}
			fmt.Fprintf(w, "TOTAL\t%s\t%s\t\n", report.Totals.Income, report.Totals.Expense)
			fmt.Fprintf(w, "NET\t%s\t\t\n", report.Totals.Net)
			if len(report.Categories) > 0 {
				fmt.Fprintln(w, "\t\t\t")
				fmt.Fprintln(w, "CATEGORY\tTYPE\tAMOUNT\t")
				for _, c := range report.Categories {
					fmt.Fprintf(w, "%s\t%s\t%s\t\n", c.Name, c.Kind, c.Amount)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&period, "period", "monthly", "daily, monthly or semester")
	cmd.Flags().StringVar(&from, "from", "", "first date included")
	cmd.Flags().StringVar(&to, "to", "", "last date included")
	return cmd
}
