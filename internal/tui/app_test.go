package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/upthermo/orcalc/internal/config"
	"github.com/upthermo/orcalc/internal/leads"
	"github.com/upthermo/orcalc/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestApp(t *testing.T, st *store.Store) App {
	t.Helper()
	a := NewApp(Options{Config: config.DefaultConfig(), Store: st})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App)
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "orcalc.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func send(t *testing.T, a App, msgs ...tea.Msg) App {
	t.Helper()
	var m tea.Model = a
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m.(App)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func TestNewAppComputesDefaultEstimate(t *testing.T) {
	a := newTestApp(t, nil)
	if got := a.calcState.summary.YearlySavings; got != "798\u00a0000 zł" {
		t.Fatalf("yearly savings = %q, want 798\u00a0000 zł", got)
	}
	if a.activeTab != tabCalculator {
		t.Fatalf("activeTab = %d, want calculator", a.activeTab)
	}
}

func TestTypingRecomputesOnEveryKeystroke(t *testing.T) {
	a := newTestApp(t, nil)

	for i := 0; i < len("95000"); i++ {
		a = send(t, a, key(tea.KeyBackspace))
	}
	if a.calcState.bill.Value() != "" {
		t.Fatalf("bill = %q, want empty", a.calcState.bill.Value())
	}
	// An empty bill is coerced to zero and flagged.
	if got := a.calcState.summary.YearlySavings; got != "0 zł" {
		t.Fatalf("yearly savings = %q, want 0 zł", got)
	}
	if !a.calcState.invalid["bill"] {
		t.Fatal("empty bill should be marked invalid")
	}

	a = send(t, a, runes("100000"))
	if got := a.calcState.summary.YearlySavings; got != "840\u00a0000 zł" {
		t.Fatalf("yearly savings = %q, want 840\u00a0000 zł", got)
	}
	if a.calcState.invalid["bill"] {
		t.Fatal("valid bill should clear the mark")
	}
}

func TestLettersInNumberFieldSwitchTabs(t *testing.T) {
	a := newTestApp(t, nil)
	a = send(t, a, runes("p"))
	if a.activeTab != tabProduction {
		t.Fatalf("activeTab = %d, want production", a.activeTab)
	}
	if a.calcState.bill.Value() != "95000" {
		t.Fatalf("bill changed to %q", a.calcState.bill.Value())
	}
}

func TestShiftSelectorAndSolarToggle(t *testing.T) {
	a := newTestApp(t, nil)

	a = send(t, a, key(tea.KeyDown), key(tea.KeyDown))
	if a.calcState.focus != calcFieldShifts {
		t.Fatalf("focus = %d, want shifts", a.calcState.focus)
	}
	a = send(t, a, runes("h"))
	if a.calcState.shifts != 2 {
		t.Fatalf("shifts = %d, want 2", a.calcState.shifts)
	}
	if got := a.calcState.summary.YearlySavings; got != "741\u00a0000 zł" {
		t.Fatalf("yearly savings = %q, want 741\u00a0000 zł", got)
	}

	// Clamped at one shift.
	a = send(t, a, runes("h"), runes("h"))
	if a.calcState.shifts != 1 {
		t.Fatalf("shifts = %d, want 1", a.calcState.shifts)
	}

	a = send(t, a, runes("3"), key(tea.KeyDown), key(tea.KeySpace))
	if !a.calcState.solar {
		t.Fatal("space on the solar field should enable PV")
	}
	if got := a.calcState.summary.YearlySavings; got != "855\u00a0000 zł" {
		t.Fatalf("yearly savings = %q, want 855\u00a0000 zł", got)
	}
}

func TestConsentBannerAppearsAndPersists(t *testing.T) {
	st := openStore(t)
	a := newTestApp(t, st)

	if a.showConsent {
		t.Fatal("banner must wait for the delay")
	}
	a = send(t, a, consentDueMsg{})
	if !a.showConsent {
		t.Fatal("banner should show once the delay passes")
	}
	if !strings.Contains(a.View(), "Akceptuję") {
		t.Fatal("view should include the cookie banner")
	}

	a = send(t, a, runes("a"))
	if a.showConsent || !a.consent {
		t.Fatal("a should accept and hide the banner")
	}
	if ok, err := st.Consent(); err != nil || !ok {
		t.Fatalf("Consent() = %v, %v; want true", ok, err)
	}

	// A later start with stored consent never shows the banner.
	b := send(t, newTestApp(t, st), consentDueMsg{})
	if b.showConsent {
		t.Fatal("stored consent should suppress the banner")
	}
}

func TestSendCalculationPrefillsContactForm(t *testing.T) {
	a := newTestApp(t, nil)
	a = send(t, a, runes("s"))

	if a.activeTab != tabContact {
		t.Fatalf("activeTab = %d, want contact", a.activeTab)
	}
	if a.contact.form == nil {
		t.Fatal("contact form should be open")
	}
	want := leads.OfferMessage(a.calcState.summary)
	if a.contact.vals.Message != want {
		t.Fatalf("message = %q, want %q", a.contact.vals.Message, want)
	}

	// Esc leaves the form without discarding it.
	a = send(t, a, key(tea.KeyEsc))
	if a.activeTab != tabCalculator || a.contact.form == nil {
		t.Fatalf("esc: tab=%d form=%v", a.activeTab, a.contact.form != nil)
	}
}

func TestContactLeadTrimsAndValidates(t *testing.T) {
	c := newContactState()
	c.vals.Name = "  Jan Kowalski "
	c.vals.Email = "jan@example.com"
	c.vals.Message = "   "

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	lead := c.lead(leads.Summary{YearlySavings: "798\u00a0000 zł"}, now)
	if lead.Name != "Jan Kowalski" {
		t.Fatalf("Name = %q", lead.Name)
	}
	if !lead.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt = %v", lead.CreatedAt)
	}
	res := lead.Validate()
	if res.OK() || res.FirstInvalid != leads.FieldMessage {
		t.Fatalf("Validate() = %+v, want message invalid", res)
	}
}

func TestRequiredFieldValidator(t *testing.T) {
	v := requiredField(leads.FieldEmail)
	if err := v(" "); err == nil {
		t.Fatal("blank e-mail should fail")
	}
	if err := v("a@b.pl"); err != nil {
		t.Fatalf("valid e-mail failed: %v", err)
	}
}

func TestSaveLeadCmd(t *testing.T) {
	lead := leads.Lead{Name: "Jan", Email: "jan@example.com", Message: "Oferta", CreatedAt: time.Now()}

	msg := saveLeadCmd(nil, lead)().(leadSavedMsg)
	if !errors.Is(msg.err, errNoSink) {
		t.Fatalf("nil sink err = %v, want errNoSink", msg.err)
	}

	st := openStore(t)
	msg = saveLeadCmd(st.Sink(), lead)().(leadSavedMsg)
	if msg.err != nil {
		t.Fatalf("save: %v", msg.err)
	}
	n, err := st.LeadCount()
	if err != nil || n != 1 {
		t.Fatalf("LeadCount() = %d, %v; want 1", n, err)
	}
}

func TestLeadSavedResetsForm(t *testing.T) {
	a := newTestApp(t, nil)
	a = send(t, a, runes("s"))
	a.contact.vals.Name = "Jan"
	a.contact.saving = true

	failed := send(t, a, leadSavedMsg{err: errors.New("offline")})
	if failed.contact.err == nil || failed.contact.vals.Name != "Jan" {
		t.Fatal("a failed save should keep the answers and report the error")
	}

	ok := send(t, a, leadSavedMsg{})
	if !ok.contact.sent || ok.contact.form != nil || ok.contact.vals.Name != "" {
		t.Fatalf("successful save should reset the form: %+v", ok.contact)
	}
}

func TestSinkReceivesLeadContext(t *testing.T) {
	var got leads.Lead
	sink := leads.SinkFunc(func(ctx context.Context, l leads.Lead) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("save should run with a deadline")
		}
		got = l
		return nil
	})
	_ = saveLeadCmd(sink, leads.Lead{Name: "Ewa"})()
	if got.Name != "Ewa" {
		t.Fatalf("sink got %+v", got)
	}
}

func TestTimelineScrollDrivesActivation(t *testing.T) {
	a := newTestApp(t, nil)
	a = send(t, a, runes("w"))
	if a.activeTab != tabTimeline {
		t.Fatalf("activeTab = %d, want timeline", a.activeTab)
	}

	steps := 4
	if got := a.timeline.timeline(steps).ActiveCount(); got != 0 {
		t.Fatalf("at top: %d active steps, want 0", got)
	}

	a = send(t, a, key(tea.KeyEnd))
	if a.timeline.scrollTop != pageHeight()-pageViewport {
		t.Fatalf("scrollTop = %v, want clamped to %v", a.timeline.scrollTop, pageHeight()-pageViewport)
	}
	if got := a.timeline.timeline(steps).ActiveCount(); got != steps {
		t.Fatalf("at bottom: %d active steps, want %d", got, steps)
	}

	a = send(t, a, key(tea.KeyHome), key(tea.KeyUp))
	if a.timeline.scrollTop != 0 {
		t.Fatalf("scrollTop = %v, want 0", a.timeline.scrollTop)
	}
}

func TestTimelineAnchorJump(t *testing.T) {
	var s timelineState
	s.scrollTo(500)
	top := sectionTop("Wdrożenie")
	a := App{timeline: s}
	a, _ = a.updateTimeline("enter")
	if a.timeline.scrollTop != top-80 {
		t.Fatalf("scrollTop = %v, want %v", a.timeline.scrollTop, top-80)
	}
}

func TestViewRendersEveryTab(t *testing.T) {
	a := newTestApp(t, nil)
	for i, want := range []string{"Parametry zakładu", "Produkcja Energii", "Oś wdrożenia", "Twoja kalkulacja"} {
		a.activeTab = i
		if i == tabContact {
			m, _ := a.openContactForm(false)
			a = m.(App)
		}
		out := a.View()
		if !strings.Contains(out, want) {
			t.Errorf("tab %d view missing %q", i, want)
		}
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := send(t, NewApp(Options{Config: config.DefaultConfig()}), tea.WindowSizeMsg{Width: 60, Height: 20})
	if !strings.Contains(a.View(), "za wąski") {
		t.Fatal("narrow terminal should show the width notice")
	}
}

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	v := SetupValues{Bill: "120 000", Waste: "5", Shifts: 2, Solar: true, Theme: "upthermo-light"}
	if err := v.Apply(&cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	g := cfg.General
	if g.DefaultBill != 120000 || g.DefaultWaste != 5 || g.DefaultShifts != 2 || !g.DefaultSolar {
		t.Fatalf("general = %+v", g)
	}
	if cfg.Appearance.Theme != "upthermo-light" {
		t.Fatalf("theme = %q", cfg.Appearance.Theme)
	}

	bad := SetupValues{Bill: "-5", Waste: "1", Shifts: 3}
	if err := bad.Apply(&cfg); err == nil {
		t.Fatal("negative bill should be rejected")
	}
	if cfg.General.DefaultBill != 120000 {
		t.Fatal("a rejected setup must not modify the config")
	}
}

func TestSetupValuesFromConfig(t *testing.T) {
	v := SetupValuesFrom(config.DefaultConfig())
	if v.Bill != "95000" || v.Waste != "10" || v.Shifts != 3 || v.Theme != "upthermo" {
		t.Fatalf("SetupValuesFrom = %+v", v)
	}
	if NewSetupForm(&v) == nil {
		t.Fatal("NewSetupForm returned nil")
	}
}

func TestNeedSetupOpensWizard(t *testing.T) {
	a := NewApp(Options{Config: config.DefaultConfig(), NeedSetup: true})
	if a.setupForm == nil || a.setupVals == nil {
		t.Fatal("first run should open the setup wizard")
	}
}
