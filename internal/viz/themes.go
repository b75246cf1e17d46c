package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the panel and overlay palette. Particle colors always come from
// the catalog.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Attractor lipgloss.Color
	Repeller  lipgloss.Color
}

var (
	ThemeQuantum = Theme{
		Name:      "quantum",
		Primary:   lipgloss.Color("#8B5CF6"),
		Secondary: lipgloss.Color("#00FFFF"),
		Accent:    lipgloss.Color("#FFE66D"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666688"),
		Success:   lipgloss.Color("#10FF10"),
		Warning:   lipgloss.Color("#FF6B35"),
		Error:     lipgloss.Color("#ff4444"),
		Attractor: lipgloss.Color("#FF3366"),
		Repeller:  lipgloss.Color("#33CCFF"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"),
		Secondary: lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Success:   lipgloss.Color("#88ff88"),
		Warning:   lipgloss.Color("#ffff00"),
		Error:     lipgloss.Color("#ff0000"),
		Attractor: lipgloss.Color("#ccff00"),
		Repeller:  lipgloss.Color("#00ffaa"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Success:   lipgloss.Color("#00ff00"),
		Warning:   lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff0000"),
		Attractor: lipgloss.Color("#ffffff"),
		Repeller:  lipgloss.Color("#888888"),
	}

	CurrentTheme = ThemeQuantum

	Themes = []Theme{
		ThemeQuantum,
		ThemeRetroGreen,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeQuantum
}

// SetTheme changes the current theme and restyles the panels.
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
	applyTheme(CurrentTheme)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			SetTheme(Themes[(i+1)%len(Themes)].Name)
			return
		}
	}
	SetTheme(ThemeQuantum.Name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
