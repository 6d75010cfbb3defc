package cmd

import (
	"fmt"

	"github.com/upthermo/orcalc/internal/cli"
	"github.com/upthermo/orcalc/internal/production"

	"github.com/spf13/cobra"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Monthly ORC vs PV production",
	RunE:  runChart,
}

func init() {
	rootCmd.AddCommand(chartCmd)
}

func runChart(_ *cobra.Command, _ []string) error {
	chart := production.Comparison()
	peak := chart.Peak()

	fmt.Println()
	fmt.Println(cli.RenderTitle(chart.Title))
	fmt.Println()

	for _, s := range chart.Series {
		fmt.Printf("  %s\n", cli.RenderHeader(s.Label))
		for i, v := range s.Values {
			fmt.Printf("  %-4s%s\n", chart.Labels[i], cli.RenderHorizontalBar(cli.FormatKWh(v), v, peak, 40))
		}
		fmt.Println()
	}

	rows := make([][]string, 0, len(chart.Series))
	for _, s := range chart.Series {
		rows = append(rows, []string{s.Label, cli.FormatKWh(s.Total()), cli.FormatKWh(s.Peak())})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Podsumowanie roczne",
		Headers: []string{"Źródło", "Rocznie", "Szczyt"},
		Rows:    rows,
	}))
	fmt.Println()

	headers := []string{"Miesiąc"}
	for _, s := range chart.Series {
		headers = append(headers, s.Label)
	}
	headers = append(headers, "Razem")
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Produkcja miesięczna",
		Headers: headers,
		Rows:    monthlyRows(chart),
	}))
	fmt.Println()
	return nil
}

// monthlyRows lists every month with each series and the combined total.
func monthlyRows(chart production.Chart) [][]string {
	totals := chart.Totals()
	rows := make([][]string, 0, len(chart.Labels))
	for i, label := range chart.Labels {
		row := []string{label}
		for _, s := range chart.Series {
			row = append(row, cli.FormatKWh(s.Values[i]))
		}
		rows = append(rows, append(row, cli.FormatKWh(totals[i])))
	}
	return rows
}
