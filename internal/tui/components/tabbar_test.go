package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTabIdxByKey(t *testing.T) {
	tests := map[rune]int{'k': 0, 'p': 1, 'w': 2, 'o': 3, 'z': -1}
	for key, want := range tests {
		if got := TabIdxByKey(key); got != want {
			t.Errorf("TabIdxByKey(%q) = %d, want %d", key, got, want)
		}
	}
}

func TestRenderTabBarSingleRow(t *testing.T) {
	out := RenderTabBar(0, 80)
	if lipgloss.Height(out) != 1 {
		t.Fatalf("tab bar height = %d, want 1", lipgloss.Height(out))
	}
	if lipgloss.Width(out) != 80 {
		t.Fatalf("tab bar width = %d, want 80", lipgloss.Width(out))
	}
	plain := stripANSI(out)
	for _, want := range []string{"Kalkulator", "[p]rodukcja", "[W]drożenie", "K[o]ntakt"} {
		if !strings.Contains(strings.ToLower(plain), strings.ToLower(want)) {
			t.Errorf("tab bar missing %q: %q", want, plain)
		}
	}
}

func TestTabAtXMatchesRenderedLayout(t *testing.T) {
	active := 1
	// Column 1 is the first rune of the first tab.
	if got := TabAtX(1, active); got != 0 {
		t.Fatalf("TabAtX(1) = %d, want 0", got)
	}
	// Column 0 is the leading pad.
	if got := TabAtX(0, active); got != -1 {
		t.Fatalf("TabAtX(0) = %d, want -1", got)
	}
	// Walk the layout and check that every tab owns its span.
	pos := 1
	for i := range Tabs {
		w := TabVisualWidth(i, active)
		if got := TabAtX(pos, active); got != i {
			t.Errorf("TabAtX(%d) = %d, want %d", pos, got, i)
		}
		if got := TabAtX(pos+w-1, active); got != i {
			t.Errorf("TabAtX(%d) = %d, want %d", pos+w-1, got, i)
		}
		if got := TabAtX(pos+w, active); got != -1 {
			t.Errorf("TabAtX(%d) gap = %d, want -1", pos+w, got)
		}
		pos += w + tabGap
	}
	if got := TabAtX(pos+5, active); got != -1 {
		t.Errorf("TabAtX past end = %d, want -1", got)
	}
}

func TestRenderStatusBarPadsToWidth(t *testing.T) {
	out := RenderStatusBar(60, "", "wynik: 95000")
	if lipgloss.Width(out) != 60 {
		t.Fatalf("status bar width = %d, want 60", lipgloss.Width(out))
	}
	plain := stripANSI(out)
	if !strings.HasPrefix(plain, DefaultHint) || !strings.HasSuffix(plain, "wynik: 95000 ") {
		t.Fatalf("unexpected status bar %q", plain)
	}
}

func TestLabeledBarClamps(t *testing.T) {
	over := stripANSI(LabeledBar("ORC", 1.7, "100%", 5, 10))
	full := stripANSI(LabeledBar("ORC", 1, "100%", 5, 10))
	if over != full {
		t.Fatalf("pct above 1 should clamp:\n%q\n%q", over, full)
	}
	if !strings.HasPrefix(over, "ORC  ") {
		t.Fatalf("label should be padded to 5: %q", over)
	}
}
