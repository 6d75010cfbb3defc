// Package theme defines color themes for the orcalc terminal UI.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card/panel backgrounds
	SurfaceHover  lipgloss.Color // Highlighted surface (active tab, selected row)
	SurfaceBright lipgloss.Color // Extra bright surface for emphasis
	Border        lipgloss.Color // Subtle borders
	BorderBright  lipgloss.Color // Prominent borders (cards, focus)
	BorderAccent  lipgloss.Color // Accent-colored borders for focus states
	TextDim       lipgloss.Color // Lowest contrast text (hints, disabled)
	TextMuted     lipgloss.Color // Secondary text (labels, metadata)
	TextPrimary   lipgloss.Color // Primary content text
	Accent        lipgloss.Color // Primary accent (links, active states)
	AccentBright  lipgloss.Color // Brighter accent for emphasis
	AccentDim     lipgloss.Color // Dimmed accent for backgrounds
	Green         lipgloss.Color
	GreenBright   lipgloss.Color
	Orange        lipgloss.Color
	Red           lipgloss.Color
	Blue          lipgloss.Color
	BlueBright    lipgloss.Color
	Yellow        lipgloss.Color
	Magenta       lipgloss.Color
	Cyan          lipgloss.Color
}

// Active is the currently selected theme.
var Active = Upthermo

// Upthermo is the default dark theme built around the brand orange.
var Upthermo = Theme{
	Name:          "upthermo",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceHover:  lipgloss.Color("#282726"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderBright:  lipgloss.Color("#575653"),
	BorderAccent:  lipgloss.Color("#FF6B35"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#FF6B35"),
	AccentBright:  lipgloss.Color("#FF915F"),
	AccentDim:     lipgloss.Color("#3D1E12"),
	Green:         lipgloss.Color("#879A39"),
	GreenBright:   lipgloss.Color("#A3B859"),
	Orange:        lipgloss.Color("#DA702C"),
	Red:           lipgloss.Color("#D14D41"),
	Blue:          lipgloss.Color("#4385BE"),
	BlueBright:    lipgloss.Color("#6BA3D6"),
	Yellow:        lipgloss.Color("#D0A215"),
	Magenta:       lipgloss.Color("#CE5D97"),
	Cyan:          lipgloss.Color("#24837B"),
}

// UpthermoLight mirrors the landing page: white cards, navy text and the
// brand orange.
var UpthermoLight = Theme{
	Name:          "upthermo-light",
	Background:    lipgloss.Color("#F7F8FA"),
	Surface:       lipgloss.Color("#FFFFFF"),
	SurfaceHover:  lipgloss.Color("#EEF1F5"),
	SurfaceBright: lipgloss.Color("#E2E7EE"),
	Border:        lipgloss.Color("#D5DBE3"),
	BorderBright:  lipgloss.Color("#A9B4C2"),
	BorderAccent:  lipgloss.Color("#FF6B35"),
	TextDim:       lipgloss.Color("#9AA5B4"),
	TextMuted:     lipgloss.Color("#5B6B80"),
	TextPrimary:   lipgloss.Color("#0F2A47"),
	Accent:        lipgloss.Color("#E8552A"),
	AccentBright:  lipgloss.Color("#FF6B35"),
	AccentDim:     lipgloss.Color("#FFE6DB"),
	Green:         lipgloss.Color("#2E8540"),
	GreenBright:   lipgloss.Color("#3FA556"),
	Orange:        lipgloss.Color("#E8552A"),
	Red:           lipgloss.Color("#C62828"),
	Blue:          lipgloss.Color("#1E5AA8"),
	BlueBright:    lipgloss.Color("#3B7DD8"),
	Yellow:        lipgloss.Color("#B7791F"),
	Magenta:       lipgloss.Color("#9C3D7A"),
	Cyan:          lipgloss.Color("#1B7F8C"),
}

// Terminal sticks to the 16 ANSI colors.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderBright:  lipgloss.Color("7"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	AccentDim:     lipgloss.Color("0"),
	Green:         lipgloss.Color("2"),
	GreenBright:   lipgloss.Color("10"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Blue:          lipgloss.Color("4"),
	BlueBright:    lipgloss.Color("12"),
	Yellow:        lipgloss.Color("3"),
	Magenta:       lipgloss.Color("5"),
	Cyan:          lipgloss.Color("6"),
}

// All available themes.
var All = []Theme{Upthermo, UpthermoLight, Terminal}

// ByName returns a theme by its name, defaulting to Upthermo.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return Upthermo
}

// Names lists the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
