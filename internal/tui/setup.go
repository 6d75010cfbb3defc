package tui

import (
	"errors"
	"strconv"

	"github.com/upthermo/orcalc/internal/calculator"
	"github.com/upthermo/orcalc/internal/config"
	"github.com/upthermo/orcalc/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers collected by the setup wizard.
type SetupValues struct {
	Bill   string
	Waste  string
	Shifts int
	Solar  bool
	Theme  string
}

// SetupValuesFrom seeds the wizard with the current configuration.
func SetupValuesFrom(cfg config.Config) SetupValues {
	in := config.DefaultInput(cfg)
	return SetupValues{
		Bill:   in.MonthlyBill.String(),
		Waste:  strconv.Itoa(in.WasteTons),
		Shifts: in.ShiftCount,
		Solar:  in.HasSolar,
		Theme:  theme.ByName(cfg.Appearance.Theme).Name,
	}
}

// Apply validates the answers and writes them into cfg.
func (v SetupValues) Apply(cfg *config.Config) error {
	in, err := calculator.ParseInput(calculator.RawInput{
		Bill:   v.Bill,
		Waste:  v.Waste,
		Shifts: strconv.Itoa(v.Shifts),
	})
	if err != nil {
		return err
	}
	cfg.General.DefaultBill = in.MonthlyBill.IntPart()
	cfg.General.DefaultWaste = in.WasteTons
	cfg.General.DefaultShifts = in.ShiftCount
	cfg.General.DefaultSolar = v.Solar
	cfg.Appearance.Theme = theme.ByName(v.Theme).Name
	return nil
}

// NewSetupForm builds the first-run wizard. The same form backs
// `orcalc setup` and the TUI's first launch.
func NewSetupForm(vals *SetupValues) *huh.Form {
	shiftOpts := []huh.Option[int]{
		huh.NewOption("1 zmiana", 1),
		huh.NewOption("2 zmiany", 2),
		huh.NewOption("3 zmiany (24/7)", 3),
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("orcalc").
				Description("Kalkulator oszczędności ORC.\nUstaw wartości, od których startuje kalkulator."),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Miesięczny rachunek za energię (PLN)").
				Placeholder("95000").
				Value(&vals.Bill).
				Validate(validateBill),
			huh.NewInput().
				Title("Odpady dziennie (tony)").
				Placeholder("10").
				Value(&vals.Waste).
				Validate(validateWaste),
			huh.NewSelect[int]().
				Title("Tryb pracy zakładu").
				Options(shiftOpts...).
				Value(&vals.Shifts),
			huh.NewConfirm().
				Title("Czy zakład ma instalację fotowoltaiczną?").
				Affirmative("Tak").
				Negative("Nie").
				Value(&vals.Solar),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Motyw kolorów").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
	).WithTheme(huh.ThemeCharm())
}

func validateBill(s string) error {
	if _, err := calculator.ParseInput(calculator.RawInput{Bill: s, Waste: "0"}); err != nil {
		return errors.New("podaj nieujemną kwotę")
	}
	return nil
}

func validateWaste(s string) error {
	if _, err := calculator.ParseInput(calculator.RawInput{Bill: "0", Waste: s}); err != nil {
		return errors.New("podaj nieujemną liczbę ton")
	}
	return nil
}
