package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/upthermo/orcalc/internal/leads"
	"github.com/upthermo/orcalc/internal/tui/components"
	"github.com/upthermo/orcalc/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

const leadSaveTimeout = 10 * time.Second

var errNoSink = errors.New("brak skonfigurowanego miejsca zapisu")

// contactValues are the form controls, held behind a pointer so the huh
// fields stay bound across App copies.
type contactValues struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Message string
}

// contactState tracks the contact tab.
type contactState struct {
	form    *huh.Form
	vals    *contactValues
	invalid leads.Result
	saving  bool
	sent    bool
	err     error
	spinner spinner.Model
}

type leadSavedMsg struct {
	err error
}

func newContactState() contactState {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)
	return contactState{vals: &contactValues{}, spinner: sp}
}

func (c contactState) editing() bool {
	return c.form != nil && !c.saving
}

var fieldLabels = map[string]string{
	leads.FieldName:    "Imię i nazwisko",
	leads.FieldEmail:   "E-mail",
	leads.FieldPhone:   "Telefon",
	leads.FieldCompany: "Firma",
	leads.FieldMessage: "Wiadomość",
}

// requiredField validates one control with the same rule the page uses.
func requiredField(name string) func(string) error {
	return func(s string) error {
		if leads.Validate([]leads.Field{{Name: name, Value: s, Required: true}}).Has(name) {
			return fmt.Errorf("%s: pole wymagane", fieldLabels[name])
		}
		return nil
	}
}

func newContactForm(vals *contactValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fieldLabels[leads.FieldName]+" *").
				Value(&vals.Name).
				Validate(requiredField(leads.FieldName)),
			huh.NewInput().
				Title(fieldLabels[leads.FieldEmail]+" *").
				Value(&vals.Email).
				Validate(requiredField(leads.FieldEmail)),
			huh.NewInput().
				Title(fieldLabels[leads.FieldPhone]).
				Value(&vals.Phone),
			huh.NewInput().
				Title(fieldLabels[leads.FieldCompany]).
				Value(&vals.Company),
			huh.NewText().
				Title(fieldLabels[leads.FieldMessage]+" *").
				Lines(5).
				Value(&vals.Message).
				Validate(requiredField(leads.FieldMessage)),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}

// openContactForm switches to the contact tab with a fresh form. offer
// replaces the message with the calculation summary, like the page's
// "send my calculation" link; otherwise an empty message is prefilled.
func (a App) openContactForm(offer bool) (tea.Model, tea.Cmd) {
	a.activeTab = tabContact
	a.contact.sent = false
	a.contact.err = nil

	msg := leads.OfferMessage(a.calcState.summary)
	if offer || strings.TrimSpace(a.contact.vals.Message) == "" {
		a.contact.vals.Message = msg
	}

	a.contact.form = newContactForm(a.contact.vals).WithWidth(a.contactFormWidth())
	return a, a.contact.form.Init()
}

func (a App) contactFormWidth() int {
	w := components.CardInnerWidth(components.LayoutRow(a.contentWidth(), 2)[0])
	if w < 30 {
		w = 30
	}
	return w
}

func (a App) updateContactForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.contact.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.contact.form = f
	}

	switch a.contact.form.State {
	case huh.StateCompleted:
		lead := a.contact.lead(a.calcState.summary, time.Now())
		a.contact.invalid = lead.Validate()
		if !a.contact.invalid.OK() {
			a.contact.form = newContactForm(a.contact.vals).WithWidth(a.contactFormWidth())
			return a, a.contact.form.Init()
		}
		a.contact.saving = true
		return a, tea.Batch(saveLeadCmd(a.sink, lead), a.contact.spinner.Tick)
	case huh.StateAborted:
		a.contact.form = nil
		a.activeTab = tabCalculator
		return a, a.calcState.focusCmd()
	}
	return a, cmd
}

// lead assembles the submission from the form and calculator summary.
func (c contactState) lead(summary leads.Summary, now time.Time) leads.Lead {
	v := c.vals
	return leads.Lead{
		Name:      strings.TrimSpace(v.Name),
		Email:     strings.TrimSpace(v.Email),
		Phone:     strings.TrimSpace(v.Phone),
		Company:   strings.TrimSpace(v.Company),
		Message:   strings.TrimSpace(v.Message),
		Summary:   summary,
		CreatedAt: now,
	}
}

func saveLeadCmd(sink leads.Sink, lead leads.Lead) tea.Cmd {
	return func() tea.Msg {
		if sink == nil {
			return leadSavedMsg{err: errNoSink}
		}
		ctx, cancel := context.WithTimeout(context.Background(), leadSaveTimeout)
		defer cancel()
		return leadSavedMsg{err: sink.Save(ctx, lead)}
	}
}

func (a App) handleLeadSaved(msg leadSavedMsg) App {
	a.contact.saving = false
	a.contact.err = msg.err
	a.contact.form = nil
	if msg.err != nil {
		// Keep the answers so the user can retry.
		return a
	}
	a.contact.sent = true
	a.contact.invalid = leads.Result{}
	a.contact.vals = &contactValues{}
	return a
}

func (a App) renderContactTab(cw int) string {
	t := theme.Active
	c := a.contact

	widths := components.LayoutRow(cw, 2)

	okStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var body string
	switch {
	case c.saving:
		body = c.spinner.View() + mutedStyle.Render(" Wysyłanie...")
	case c.form != nil:
		body = c.form.View()
		if !c.invalid.OK() {
			names := make([]string, 0, len(c.invalid.Invalid))
			for _, n := range c.invalid.Invalid {
				names = append(names, fieldLabels[n])
			}
			body = errStyle.Render("Uzupełnij: "+strings.Join(names, ", ")) + "\n\n" + body
		}
	case c.err != nil:
		body = errStyle.Render("Nie udało się wysłać: "+c.err.Error()) + "\n\n" +
			mutedStyle.Render("[enter] spróbuj ponownie")
	case c.sent:
		body = okStyle.Render("Dziękujemy! Odezwiemy się w ciągu 24 godzin.") + "\n\n" +
			mutedStyle.Render("[enter] nowa wiadomość")
	default:
		body = mutedStyle.Render("[enter] otwórz formularz")
	}

	return components.CardRow([]string{
		components.ContentCard("Formularz kontaktowy", body, widths[0]),
		components.ContentCard("Twoja kalkulacja", renderSummary(a.calcState.summary), widths[1]),
	})
}

func renderSummary(s leads.Summary) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)

	rows := []struct {
		label, value string
		style        lipgloss.Style
	}{
		{"Rachunek", s.Bill, valueStyle},
		{"Odpady", s.Waste, valueStyle},
		{"Zmiany", shiftLabel(s.Shifts), valueStyle},
		{"Fotowoltaika", s.Solar, valueStyle},
		{"Oszczędność roczna", s.YearlySavings, accentStyle},
	}

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-20s", r.label)))
		b.WriteString(r.style.Render(r.value))
	}
	return b.String()
}
