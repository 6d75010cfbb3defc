package cmd

import (
	"fmt"
	"os"

	"github.com/upthermo/orcalc/internal/config"
	"github.com/upthermo/orcalc/internal/store"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagConfig string
	flagQuiet  bool
)

var rootCmd = &cobra.Command{
	Use:   "orcalc",
	Short: "ORC waste-heat savings calculator",
	Long:  "Estimate what an ORC turbine saves a plant on its energy bill, from the terminal, a TUI, or an HTTP server.",
	RunE:  runEstimate,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Amounts are JSON numbers everywhere: estimate --json, leads --json
	// and the HTTP API.
	decimal.MarshalJSONWithoutQuotes = true

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default "+config.Path()+")")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")

	addEstimateFlags(rootCmd)
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.Path()
}

// loadConfig is the shared config path used by all commands. A broken
// config file is reported and replaced by defaults so read-only commands
// keep working.
func loadConfig() config.Config {
	cfg, err := config.LoadFrom(configPath())
	if err != nil {
		logf("  Config error, using defaults: %v\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

func openStore(cfg config.Config) (*store.Store, error) {
	st, err := store.Open(config.DBPath(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}

// logf writes progress to stderr unless --quiet.
func logf(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
