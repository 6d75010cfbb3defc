package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/upthermo/orcalc/internal/cli"

	"github.com/spf13/cobra"
)

var flagLeadsLimit int

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List contact-form leads saved locally",
	RunE:  runLeads,
}

func init() {
	leadsCmd.Flags().IntVarP(&flagLeadsLimit, "limit", "l", 20, "Max leads to show (0 = all)")
	leadsCmd.Flags().BoolVar(&flagJSON, "json", false, "Print leads as JSON")
	rootCmd.AddCommand(leadsCmd)
}

func runLeads(_ *cobra.Command, _ []string) error {
	st, err := openStore(loadConfig())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	list, err := st.ListLeads(context.Background(), flagLeadsLimit)
	if err != nil {
		return fmt.Errorf("listing leads: %w", err)
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list) == 0 {
		fmt.Println("\n  No leads yet.")
		return nil
	}

	total, err := st.LeadCount()
	if err != nil {
		return fmt.Errorf("counting leads: %w", err)
	}

	rows := make([][]string, 0, len(list))
	for _, l := range list {
		rows = append(rows, []string{
			l.CreatedAt.Local().Format("2006-01-02 15:04"),
			l.Name,
			l.Email,
			l.Company,
			l.Summary.YearlySavings,
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("LEADS  %d of %s", len(list), cli.FormatNumber(int64(total)))))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Name", "E-mail", "Company", "Yearly savings"},
		Rows:    rows,
	}))
	return nil
}
