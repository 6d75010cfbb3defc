package cmd

import (
	"fmt"
	"strconv"

	"github.com/upthermo/orcalc/internal/cli"
	"github.com/upthermo/orcalc/internal/production"

	"github.com/spf13/cobra"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "ORC deployment timeline",
	RunE:  runTimeline,
}

func init() {
	rootCmd.AddCommand(timelineCmd)
}

func runTimeline(_ *cobra.Command, _ []string) error {
	steps := production.Steps()
	rows := make([][]string, 0, len(steps))
	for i, s := range steps {
		rows = append(rows, []string{strconv.Itoa(i + 1), s.Title, s.Weeks})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("WDROŻENIE ORC"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"#", "Etap", "Termin"},
		Rows:    rows,
	}))
	fmt.Println()
	for i, s := range steps {
		fmt.Printf("  %d. %s\n     %s\n", i+1, cli.RenderHeader(s.Title), cli.RenderMuted(s.Detail))
	}
	fmt.Println()
	return nil
}
