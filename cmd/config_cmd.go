// Package cmd implements the orcalc CLI commands.
package cmd

import (
	"fmt"
	"sort"

	"github.com/upthermo/orcalc/internal/calculator"
	"github.com/upthermo/orcalc/internal/cli"
	"github.com/upthermo/orcalc/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadFrom(configPath())
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", configPath())
	if config.Exists() || flagConfig != "" {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	in := config.DefaultInput(cfg)
	fmt.Println("  [General]")
	fmt.Printf("    Default bill:   %s\n", cli.FormatBill(in.MonthlyBill))
	fmt.Printf("    Default waste:  %s\n", cli.FormatWaste(in.WasteTons))
	fmt.Printf("    Default shifts: %d\n", in.ShiftCount)
	fmt.Printf("    Default PV:     %s\n", cli.FormatSolar(in.HasSolar))
	fmt.Printf("    Database:       %s\n", config.DBPath(cfg))
	fmt.Println()

	p := config.CalculatorParams(cfg)
	fmt.Println("  [Calculator]")
	shifts := make([]int, 0, len(p.BaseRates))
	for n := range p.BaseRates {
		shifts = append(shifts, n)
	}
	sort.Ints(shifts)
	for _, n := range shifts {
		fmt.Printf("    Rate, %d shift(s): %s\n", n, cli.FormatRate(p.BaseRates[n]))
	}
	fmt.Printf("    Fallback rate:    %s\n", cli.FormatRate(p.FallbackRate))
	fmt.Printf("    Solar bonus:      +%s\n", cli.FormatRate(p.SolarBonus))
	fmt.Printf("    Heat bonus:       %s / month\n", cli.FormatMoney(p.HeatBonusMonthly))
	if !p.HeatBonusMonthly.Equal(calculator.DefaultParams().HeatBonusMonthly) {
		fmt.Println("                      (overridden)")
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:         %s\n", cfg.Server.Addr)
	fmt.Printf("    Cache TTL:       %ds\n", cfg.Server.CacheTTLSec)
	fmt.Printf("    Lead rate limit: %d / hour per client\n", cfg.Server.LeadRateLimit)
	if cfg.Server.RedisAddr != "" {
		fmt.Printf("    Redis:           %s\n", cfg.Server.RedisAddr)
	} else {
		fmt.Println("    Redis:           not configured (in-memory cache)")
	}
	if cfg.Server.TableServiceURL != "" {
		fmt.Printf("    Table storage:   %s (table %q)\n", cfg.Server.TableServiceURL, cfg.Server.LeadsTable)
	} else {
		fmt.Println("    Table storage:   not configured")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `orcalc setup` to reconfigure.")
	return nil
}
