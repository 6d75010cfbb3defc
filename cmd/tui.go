package cmd

import (
	"fmt"

	"github.com/upthermo/orcalc/internal/config"
	"github.com/upthermo/orcalc/internal/tui"
	"github.com/upthermo/orcalc/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive calculator",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	// The TUI still runs without a database; consent and leads then last
	// only for the session.
	st, err := openStore(cfg)
	if err != nil {
		logf("  %v, running without persistence\n", err)
		st = nil
	}
	if st != nil {
		defer func() { _ = st.Close() }()
	}

	app := tui.NewApp(tui.Options{
		Config:    cfg,
		Store:     st,
		NeedSetup: flagConfig == "" && !config.Exists(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
