package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/upthermo/orcalc/internal/calculator"
	"github.com/upthermo/orcalc/internal/cli"
	"github.com/upthermo/orcalc/internal/config"
	"github.com/upthermo/orcalc/internal/leads"

	"github.com/spf13/cobra"
)

var (
	flagBill   string
	flagWaste  string
	flagShifts int
	flagSolar  bool
	flagJSON   bool
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate savings for a plant",
	RunE:  runEstimate,
}

func init() {
	addEstimateFlags(estimateCmd)
	rootCmd.AddCommand(estimateCmd)
}

func addEstimateFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagBill, "bill", "", "Monthly energy bill in PLN (default from config)")
	c.Flags().StringVar(&flagWaste, "waste", "", "Waste in tons per day (default from config)")
	c.Flags().IntVar(&flagShifts, "shifts", 0, "Shifts per day: 1, 2 or 3 (default from config)")
	c.Flags().BoolVar(&flagSolar, "solar", false, "Plant already runs photovoltaics")
	c.Flags().BoolVar(&flagJSON, "json", false, "Print the estimate as JSON")
}

// estimateInput merges flags over the configured defaults. Flags are parsed
// strictly: a malformed value is an error, not a zero.
func estimateInput(c *cobra.Command, cfg config.Config) (calculator.Input, error) {
	def := config.DefaultInput(cfg)
	raw := calculator.RawInput{
		Bill:   def.MonthlyBill.String(),
		Waste:  strconv.Itoa(def.WasteTons),
		Shifts: strconv.Itoa(def.ShiftCount),
		Solar:  strconv.FormatBool(def.HasSolar),
	}
	if c.Flags().Changed("bill") {
		raw.Bill = flagBill
	}
	if c.Flags().Changed("waste") {
		raw.Waste = flagWaste
	}
	if c.Flags().Changed("shifts") {
		raw.Shifts = strconv.Itoa(flagShifts)
	}
	if c.Flags().Changed("solar") {
		raw.Solar = strconv.FormatBool(flagSolar)
	}
	return calculator.ParseInput(raw)
}

type estimateOutput struct {
	calculator.Estimate
	Inaction calculator.Inaction `json:"inaction"`
	Tier     string              `json:"tier"`
	Context  string              `json:"context"`
	Summary  leads.Summary       `json:"summary"`
}

func newEstimateOutput(est calculator.Estimate) estimateOutput {
	return estimateOutput{
		Estimate: est,
		Inaction: est.Inaction(),
		Tier:     est.Tier().String(),
		Context:  cli.ContextSentence(est),
		Summary:  leads.Summarize(est),
	}
}

func runEstimate(c *cobra.Command, _ []string) error {
	cfg := loadConfig()
	in, err := estimateInput(c, cfg)
	if err != nil {
		return err
	}

	calc := calculator.New(config.CalculatorParams(cfg))
	est, err := calc.Estimate(in)
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(newEstimateOutput(est))
	}

	printEstimate(est)
	return nil
}

func printEstimate(est calculator.Estimate) {
	fmt.Println()
	fmt.Println(cli.RenderTitle("KALKULATOR ORC  Oszczędności"))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Parametry zakładu",
		Headers: []string{"Parametr", "Wartość"},
		Rows: [][]string{
			{"Rachunek miesięczny", cli.FormatBill(est.MonthlyBill)},
			{"Odpady dziennie", cli.FormatWaste(est.WasteTons)},
			{"Liczba zmian", strconv.Itoa(est.ShiftCount)},
			{"Fotowoltaika", cli.FormatSolar(est.HasSolar)},
		},
	}))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Wynik",
		Headers: []string{"Pozycja", "Kwota"},
		Rows: [][]string{
			{"Stopa oszczędności", cli.FormatRate(est.SavingsRate)},
			{"Oszczędność miesięczna", cli.FormatMoney(est.MonthlySavings)},
			{"Oszczędność roczna", cli.FormatMoney(est.YearlySavings)},
			{"---"},
			{"Premia za ciepło / mies.", cli.FormatMoney(est.HeatBonusMonthly)},
			{"Korzyść miesięczna", cli.FormatMoney(est.TotalMonthlyBenefit)},
			{"Obecny rachunek roczny", cli.FormatMoney(est.CurrentYearlyBill)},
		},
	}))
	fmt.Println()

	in := est.Inaction()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Koszt zaniechania",
		Headers: []string{"Okres", "Strata"},
		Rows: [][]string{
			{"Każdy dzień", cli.FormatLoss(in.Daily)},
			{"1 miesiąc", cli.FormatLoss(in.OneMonth)},
			{"6 miesięcy", cli.FormatLoss(in.SixMonths)},
			{"12 miesięcy", cli.FormatLoss(in.TwelveMonths)},
		},
	}))
	fmt.Printf("  Każdy dzień zwłoki to %s\n", cli.RenderLoss(cli.FormatLoss(in.Daily)))
	fmt.Println()

	before, figure, after := cli.ContextParts(est)
	fmt.Printf("  %s%s%s\n", before, cli.RenderMoney(figure), after)
	for _, b := range cli.Bonuses(est.HasSolar) {
		fmt.Printf("  %s %s\n", cli.RenderMoney("+"), b)
	}
	fmt.Println()
}
