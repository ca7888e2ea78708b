package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"budget/internal/interchange"
)

func formatFor(flag, filename string) (interchange.Format, error) {
	if flag == "" && filename != "" && filename != "-" {
		return interchange.FormatFromFilename(filename), nil
	}
	return interchange.ParseFormat(flag)
}

func exportCmd(v *viper.Viper) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every transaction as JSON or CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := formatFor(format, output)
			if err != nil {
				return err
			}
			app, closeFn, err := openApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer closeFn()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer func() {
					if err := file.Close(); err != nil {
						slog.Error("failed to close export file", "error", err)
					}
				}()
				w = file
			}

			n, err := app.Transfer.Export(cmd.Context(), w, f)
			if err != nil {
				return err
			}
			if w != cmd.OutOrStdout() {
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d transactions to %s\n", n, output)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or csv (default from --output extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func importCmd(v *viper.Viper) *cobra.Command {
	var (
		format string
		yes    bool
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace every transaction with the content of FILE",
		Long: `Import a JSON or CSV export. The whole file is validated first; the store
is only changed when every record is valid, and then all stored
transactions are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("import replaces every stored transaction; pass --yes to confirm")
			}
			f, err := formatFor(format, args[0])
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open %s: %w", args[0], err)
				}
				defer file.Close()
				r = file
			}

			app, closeFn, err := openApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := app.Transfer.Import(cmd.Context(), r, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d transactions\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or csv (default from file extension)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm replacing stored transactions")
	return cmd
}
