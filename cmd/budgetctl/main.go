// Command budgetctl runs budget operations against the configured store
// from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"budget/internal/backend"
	"budget/internal/cli"
	"budget/internal/config"
	applog "budget/internal/log"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:           "budgetctl",
		Short:         "Personal budget tracker tools",
		Long:          "budgetctl plans installments, posts recurring incomes, moves data in and out and prints summaries.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./budgetctl.yaml)")
	root.PersistentFlags().String("data-backend", "", "data backend ("+strings.Join(backend.GetBackendTypeStrings(), ", ")+")")
	root.PersistentFlags().String("sqlite-db-path", "", "SQLite database path")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	for _, name := range []string{"data-backend", "sqlite-db-path", "log-level"} {
		_ = v.BindPFlag(name, root.PersistentFlags().Lookup(name))
	}

	root.AddCommand(
		planCmd(),
		catchUpCmd(v),
		exportCmd(v),
		importCmd(v),
		summaryCmd(v),
		versionCmd(),
	)
	return root
}

// initConfig layers flags over the config file over the environment over
// the defaults of config.Load.
func initConfig(v *viper.Viper, cfgFile string) error {
	cli.LoadEnvFile()
	defaults := config.Load()
	v.SetDefault("data-backend", defaults.DataBackend)
	v.SetDefault("sqlite-db-path", defaults.SQLiteDBPath)
	v.SetDefault("log-level", "warn")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("budgetctl")
		v.SetConfigType("yaml")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cli.SetupLogger(v.GetString("log-level"), applog.ComponentCLI)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "budgetctl", version)
		},
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
