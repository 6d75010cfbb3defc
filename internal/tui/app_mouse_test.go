package tui

import (
	"testing"

	"github.com/upthermo/orcalc/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	n := len(components.Tabs)
	for active := 0; active < n; active++ {
		a := App{activeTab: active}
		pos := 1 // leading pad

		for i := 0; i < n; i++ {
			w := components.TabVisualWidth(i, active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w + 2
		}
	}
}

func TestMouseClickSwitchesTab(t *testing.T) {
	a := newTestApp(t, nil)
	x := 1 + components.TabVisualWidth(0, 0) + 2 + 1 // inside "Produkcja"

	m, _ := a.Update(tea.MouseMsg{X: x, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if got := m.(App).activeTab; got != tabProduction {
		t.Fatalf("activeTab = %d, want %d", got, tabProduction)
	}
}

func TestMouseWheelScrollsTimeline(t *testing.T) {
	a := newTestApp(t, nil)
	a.activeTab = tabTimeline

	m, _ := a.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	if got := m.(App).timeline.scrollTop; got != wheelStep {
		t.Fatalf("scrollTop = %v, want %v", got, wheelStep)
	}
}
