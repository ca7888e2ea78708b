package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func catchUpCmd(v *viper.Viper) *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "catch-up",
		Short: "Post every recurring income that is due",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now, err := parseDateFlag("as-of", asOf, time.Now())
			if err != nil {
				return err
			}
			app, closeFn, err := openApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := app.Recurring.ProcessDue(cmd.Context(), now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d definitions: %d postings, %d skipped, %d failed\n",
				res.Checked, res.Posted, res.Skipped, res.Failed)
			if res.Failed > 0 {
				return fmt.Errorf("%d definitions failed to post", res.Failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "catch up as of this date (default now)")
	return cmd
}
