// Package tui provides the interactive Bubble Tea calculator for orcalc.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/upthermo/orcalc/internal/calculator"
	"github.com/upthermo/orcalc/internal/config"
	"github.com/upthermo/orcalc/internal/leads"
	"github.com/upthermo/orcalc/internal/store"
	"github.com/upthermo/orcalc/internal/tui/components"
	"github.com/upthermo/orcalc/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

const (
	tabCalculator = iota
	tabProduction
	tabTimeline
	tabContact
)

// ConsentDelay is how long after start the cookie banner appears.
const ConsentDelay = time.Second

const (
	minTerminalWidth = 80
	maxContentWidth  = 140
	minContentHeight = 5
)

type consentDueMsg struct{}

// Options configures a new App.
type Options struct {
	Config config.Config
	// Store persists consent and leads. Nil keeps both in memory.
	Store *store.Store
	// Sink receives contact submissions. Defaults to Store.Sink().
	Sink leads.Sink
	// NeedSetup opens the first-run wizard before the calculator.
	NeedSetup bool
}

// App is the root Bubble Tea model.
type App struct {
	cfg  config.Config
	calc *calculator.Calculator
	st   *store.Store
	sink leads.Sink

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	calcState calculatorState
	timeline  timelineState
	contact   contactState

	// Cookie notice
	consent     bool
	showConsent bool
	consentErr  error

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool
	setupErr  error
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	a := App{
		cfg:       opts.Config,
		calc:      calculator.New(config.CalculatorParams(opts.Config)),
		st:        opts.Store,
		sink:      opts.Sink,
		needSetup: opts.NeedSetup,
		contact:   newContactState(),
	}
	if a.sink == nil && a.st != nil {
		a.sink = a.st.Sink()
	}
	if a.st != nil {
		// A read failure shows the banner again, which is the safe default.
		a.consent, _ = a.st.Consent()
	}

	a.calcState = newCalculatorState(config.DefaultInput(opts.Config))
	a.recompute()

	if a.needSetup {
		vals := SetupValuesFrom(opts.Config)
		a.setupVals = &vals
		a.setupForm = NewSetupForm(a.setupVals)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion}
	if !a.consent {
		cmds = append(cmds, consentCmd())
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	} else {
		cmds = append(cmds, a.calcState.focusCmd())
	}
	return tea.Batch(cmds...)
}

func consentCmd() tea.Cmd {
	return tea.Tick(ConsentDelay, func(time.Time) tea.Msg {
		return consentDueMsg{}
	})
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.contact.form != nil {
			a.contact.form = a.contact.form.WithWidth(a.contactFormWidth())
		}
		return a, nil

	case consentDueMsg:
		if !a.consent {
			a.showConsent = true
		}
		return a, nil

	case leadSavedMsg:
		return a.handleLeadSaved(msg), nil

	case spinner.TickMsg:
		if a.contact.saving {
			var cmd tea.Cmd
			a.contact.spinner, cmd = a.contact.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || (a.needSetup && a.setupForm != nil) {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}

		// First-run setup wizard intercepts all keys
		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		// The contact form owns the keyboard while it is open.
		if a.activeTab == tabContact && a.contact.editing() {
			if key == "esc" {
				return a.switchTab(tabCalculator)
			}
			return a.updateContactForm(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		if a.showConsent && key == "a" {
			return a.acceptConsent(), nil
		}

		if a.activeTab == tabCalculator {
			if next, cmd, handled := a.updateCalculator(msg); handled {
				return next, cmd
			}
		}
		if a.activeTab == tabTimeline {
			if next, handled := a.updateTimeline(key); handled {
				return next, nil
			}
		}
		if a.activeTab == tabContact && key == "enter" {
			return a.openContactForm(false)
		}

		if key == "q" {
			return a, tea.Quit
		}

		switch key {
		case "left", "shift+tab":
			return a.switchTab((a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs))
		case "right", "tab":
			return a.switchTab((a.activeTab + 1) % len(components.Tabs))
		}
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				return a.switchTab(idx)
			}
		}
		return a, nil
	}

	// Forward unhandled messages (cursor blinks and the like).
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.activeTab == tabContact && a.contact.editing() {
		return a.updateContactForm(msg)
	}
	if a.activeTab == tabCalculator {
		var cmd tea.Cmd
		a.calcState, cmd = a.calcState.updateInputs(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabTimeline {
			a.timeline.scrollBy(-wheelStep)
		}
		return a, nil

	case tea.MouseButtonWheelDown:
		if a.activeTab == tabTimeline {
			a.timeline.scrollBy(wheelStep)
		}
		return a, nil

	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return a, nil
		}
		// Tab bar is the first line
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				return a.switchTab(tab)
			}
		}
	}
	return a, nil
}

// switchTab activates tab idx, focusing its inputs.
func (a App) switchTab(idx int) (tea.Model, tea.Cmd) {
	if idx == a.activeTab {
		return a, nil
	}
	a.activeTab = idx
	switch idx {
	case tabCalculator:
		return a, a.calcState.focusCmd()
	case tabContact:
		if a.contact.form == nil && !a.contact.sent {
			return a.openContactForm(false)
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupErr = a.saveSetup()
		a.needSetup = false
		a.setupForm = nil
		return a, a.calcState.focusCmd()
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, a.calcState.focusCmd()
	}
	return a, cmd
}

// saveSetup applies the wizard answers to the running app and writes them
// to the config file.
func (a *App) saveSetup() error {
	cfg := a.cfg
	if err := a.setupVals.Apply(&cfg); err != nil {
		return err
	}
	a.cfg = cfg
	theme.SetActive(cfg.Appearance.Theme)
	a.calcState = newCalculatorState(config.DefaultInput(cfg))
	a.recompute()
	return config.Save(cfg)
}

func (a App) acceptConsent() App {
	a.consent = true
	a.showConsent = false
	if a.st != nil {
		a.consentErr = a.st.SetConsent(true)
	}
	return a
}

// recompute refreshes the estimate from the calculator controls.
func (a *App) recompute() {
	a.calcState.recompute(a.calc)
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal za wąski (%d kolumn)\n\n  orcalc potrzebuje co najmniej %d kolumn.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active
	h := a.height
	w := a.width

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	sectionStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Cyan).
		Background(t.Surface).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Skróty klawiszowe"))
	b.WriteString("\n\n")

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Nawigacja", []struct{ key, desc string }{
			{"k p w o", "Przejdź do zakładki"},
			{"← → Tab", "Poprzednia / następna zakładka"},
			{"↑ ↓", "Pole kalkulatora / przewijanie strony"},
			{"PgUp PgDn", "Przewiń o ekran"},
		}},
		{"Kalkulator", []struct{ key, desc string }{
			{"0-9", "Wpisz wartość"},
			{"h l", "Zmień liczbę zmian"},
			{"Spacja", "Przełącz fotowoltaikę"},
			{"s", "Wyślij kalkulację do formularza"},
		}},
		{"Inne", []struct{ key, desc string }{
			{"a", "Akceptuj pliki cookie"},
			{"Esc", "Zamknij formularz"},
			{"?", "Pomoc"},
			{"q", "Wyjście"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Dowolny klawisz zamyka pomoc"))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.statusHint(), a.statusRight())

	var banner string
	if a.showConsent {
		banner = renderConsentBanner(w)
	}

	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	bannerH := 0
	if banner != "" {
		bannerH = lipgloss.Height(banner)
	}
	contentH := h - headerH - statusH - bannerH
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case tabCalculator:
		content = a.renderCalculatorTab(cw)
	case tabProduction:
		content = a.renderProductionTab(cw, contentH)
	case tabTimeline:
		content = a.renderTimelineTab(cw, contentH)
	case tabContact:
		content = a.renderContactTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	parts := []string{header, content}
	if banner != "" {
		parts = append(parts, banner)
	}
	parts = append(parts, statusBar)
	output := lipgloss.JoinVertical(lipgloss.Left, parts...)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusHint() string {
	switch {
	case a.activeTab == tabContact && a.contact.editing():
		return " [esc]zamknij formularz  [ctrl+c]wyjście"
	case a.activeTab == tabCalculator:
		return " [↑↓]pole  [s]wyślij kalkulację  [?]pomoc  [q]wyjście"
	case a.activeTab == tabTimeline:
		return " [↑↓]przewijaj  [?]pomoc  [q]wyjście"
	}
	return ""
}

func (a App) statusRight() string {
	switch {
	case a.setupErr != nil:
		return "konfiguracja: " + a.setupErr.Error()
	case a.consentErr != nil:
		return "zgoda nie zapisana: " + a.consentErr.Error()
	}
	return a.calcState.summary.YearlySavings + " rocznie"
}

func renderConsentBanner(w int) string {
	t := theme.Active

	textStyle := lipgloss.NewStyle().
		Foreground(t.TextPrimary).
		Background(t.SurfaceBright)
	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.SurfaceBright).
		Bold(true)

	line := textStyle.Render(" Używamy plików cookie, aby zapamiętać Twoje ustawienia.  ") +
		keyStyle.Render("[a]") + textStyle.Render(" Akceptuję")

	return lipgloss.NewStyle().
		Background(t.SurfaceBright).
		Width(w).
		Render(line)
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
func (a App) tabAtX(x int) int {
	return components.TabAtX(x, a.activeTab)
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	padding := strings.Repeat("\n", h-len(lines))
	return s + padding
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
