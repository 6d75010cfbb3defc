package tui

import (
	"fmt"
	"strings"

	"github.com/upthermo/orcalc/internal/production"
	"github.com/upthermo/orcalc/internal/scroll"
	"github.com/upthermo/orcalc/internal/tui/components"
	"github.com/upthermo/orcalc/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// The timeline tab scrolls a simulated copy of the landing page so the
// scroll-linked widgets can be previewed in the terminal. Sizes are CSS
// pixels.
const (
	pageViewport = 800
	scrollStep   = 100
	wheelStep    = 60
	pageStep     = pageViewport / 2

	timelineItemOffset = 120
	timelineItemGap    = 220
)

// pageSection is one block of the simulated page.
type pageSection struct {
	Name   string
	Height float64
}

var pageSections = []pageSection{
	{"Start", 700},
	{"Kalkulator", 1100},
	{"Produkcja", 800},
	{"Wdrożenie", 1000},
	{"Kontakt", 900},
}

// sectionTop returns the document offset of the named section, or -1.
func sectionTop(name string) float64 {
	var top float64
	for _, s := range pageSections {
		if s.Name == name {
			return top
		}
		top += s.Height
	}
	return -1
}

func sectionRect(name string, scrollTop float64) scroll.Rect {
	top := sectionTop(name)
	for _, s := range pageSections {
		if s.Name == name {
			return scroll.Rect{Top: top - scrollTop, Bottom: top + s.Height - scrollTop}
		}
	}
	return scroll.Rect{}
}

func pageHeight() float64 {
	var h float64
	for _, s := range pageSections {
		h += s.Height
	}
	return h
}

// timelineState is the simulated scroll position.
type timelineState struct {
	scrollTop float64
}

func (s *timelineState) scrollBy(delta float64) {
	s.scrollTo(s.scrollTop + delta)
}

func (s *timelineState) scrollTo(y float64) {
	maxTop := pageHeight() - pageViewport
	switch {
	case y < 0:
		y = 0
	case y > maxTop:
		y = maxTop
	}
	s.scrollTop = y
}

// timeline computes the timeline fill for the current scroll position.
func (s timelineState) timeline(steps int) scroll.TimelineState {
	container := sectionRect("Wdrożenie", s.scrollTop)
	tops := make([]float64, steps)
	for i := range tops {
		tops[i] = container.Top + timelineItemOffset + float64(i)*timelineItemGap
	}
	return scroll.Timeline(container, pageViewport, tops)
}

func (a App) updateTimeline(key string) (App, bool) {
	switch key {
	case "down":
		a.timeline.scrollBy(scrollStep)
	case "up":
		a.timeline.scrollBy(-scrollStep)
	case "pgdown", " ":
		a.timeline.scrollBy(pageStep)
	case "pgup":
		a.timeline.scrollBy(-pageStep)
	case "home", "g":
		a.timeline.scrollTo(0)
	case "end", "G":
		a.timeline.scrollTo(pageHeight())
	case "enter":
		// Jump to the timeline the way the header anchor does.
		target := scroll.AnchorOffset(sectionRect("Wdrożenie", a.timeline.scrollTop).Top, a.timeline.scrollTop)
		a.timeline.scrollTo(target)
	default:
		return a, false
	}
	return a, true
}

func (a App) renderTimelineTab(cw, _ int) string {
	t := theme.Active
	st := a.timeline
	steps := production.Steps()
	tl := st.timeline(len(steps))

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	onStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	offStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	titleStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	detailStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	innerW := components.CardInnerWidth(cw)
	barW := innerW - 30
	if barW < 10 {
		barW = 10
	}

	// Page chrome driven by scroll position
	progress := scroll.Progress(st.scrollTop, pageHeight(), pageViewport)
	contact := sectionRect("Kontakt", st.scrollTop)

	var page strings.Builder
	page.WriteString(components.LabeledBar("Postęp strony", progress/100, fmt.Sprintf("%.0f%%", progress), 16, barW))
	page.WriteString("\n")
	page.WriteString(labelStyle.Render(fmt.Sprintf("%-16s ", "Przewinięcie")))
	page.WriteString(titleStyle.Render(fmt.Sprintf("%.0f px", st.scrollTop)))
	page.WriteString(labelStyle.Render("  sekcja: "))
	page.WriteString(titleStyle.Render(currentSection(st.scrollTop)))
	page.WriteString("\n")
	page.WriteString(labelStyle.Render(fmt.Sprintf("%-16s ", "Nagłówek")))
	page.WriteString(flag(scroll.HeaderScrolled(st.scrollTop), "kompaktowy", "pełny", onStyle, offStyle))
	page.WriteString("\n")
	page.WriteString(labelStyle.Render(fmt.Sprintf("%-16s ", "Przycisk CTA")))
	page.WriteString(flag(scroll.StickyCTAVisible(st.scrollTop, contact, pageViewport), "widoczny", "ukryty", onStyle, offStyle))

	var line strings.Builder
	line.WriteString(components.LabeledBar("Oś wdrożenia", tl.Percent/100, fmt.Sprintf("%.0f%%", tl.Percent), 16, barW))
	line.WriteString("\n")
	for i, step := range steps {
		line.WriteString("\n")
		dot := offStyle.Render("○ ")
		title := offStyle.Render(step.Title)
		if tl.Active[i] {
			dot = onStyle.Render("● ")
			title = titleStyle.Render(step.Title)
		}
		line.WriteString(dot + title + labelStyle.Render("  "+step.Weeks))
		line.WriteString("\n")
		line.WriteString(offStyle.Render("│ ") + detailStyle.Render(step.Detail))
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Strona", page.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard(fmt.Sprintf("Wdrożenie (%d/%d etapów)", tl.ActiveCount(), len(steps)), line.String(), cw))
	return b.String()
}

// currentSection names the section under the top of the viewport.
func currentSection(scrollTop float64) string {
	var top float64
	for _, s := range pageSections {
		if scrollTop < top+s.Height {
			return s.Name
		}
		top += s.Height
	}
	return pageSections[len(pageSections)-1].Name
}

func flag(on bool, yes, no string, onStyle, offStyle lipgloss.Style) string {
	if on {
		return onStyle.Render(yes)
	}
	return offStyle.Render(no)
}
