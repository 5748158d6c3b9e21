package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

type Theme struct {
	Header       lipgloss.Style
	Tab          lipgloss.Style
	TabActive    lipgloss.Style
	Status       lipgloss.Style
	PanelTitle   lipgloss.Style
	PanelBorder  lipgloss.Style
	PanelBody    lipgloss.Style
	Section      lipgloss.Style
	SectionDone  lipgloss.Style
	Cursor       lipgloss.Style
	Checked      lipgloss.Style
	Accent       lipgloss.Style
	Muted        lipgloss.Style
	Error        lipgloss.Style
	Celebration  lipgloss.Style
	OverlayTitle lipgloss.Style
}

func DefaultTheme() Theme {
	return ThemeForVersion("red")
}

// ThemeForVersion picks the cartridge palette for a catalog version key.
// Unknown keys fall back to the red palette.
func ThemeForVersion(key string) Theme {
	switch key {
	case "blue":
		return cartridgeTheme(lipgloss.Color("#4F7BFF"), lipgloss.Color("#9DB8FF"))
	case "yellow":
		return cartridgeTheme(lipgloss.Color("#F2C94C"), lipgloss.Color("#FFE9A8"))
	default:
		return cartridgeTheme(lipgloss.Color("#E3350D"), lipgloss.Color("#FF9C85"))
	}
}

func cartridgeTheme(primary, soft color.Color) Theme {
	slate := lipgloss.Color("#1C2430")
	paper := lipgloss.Color("#ECF2F8")
	mint := lipgloss.Color("#6FE6A5")
	brick := lipgloss.Color("#FF6F6F")
	dim := lipgloss.Color("#7C8899")
	gold := lipgloss.Color("#F5D76E")

	return Theme{
		Header: lipgloss.NewStyle().
			Background(primary).
			Foreground(paper).
			Bold(true).
			Padding(0, 1),
		Tab: lipgloss.NewStyle().
			Foreground(dim).
			Padding(0, 1),
		TabActive: lipgloss.NewStyle().
			Background(slate).
			Foreground(soft).
			Bold(true).
			Padding(0, 1),
		Status: lipgloss.NewStyle().
			Background(slate).
			Foreground(paper).
			Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().
			Foreground(soft).
			Bold(true),
		PanelBorder: lipgloss.NewStyle().
			Foreground(dim),
		PanelBody: lipgloss.NewStyle().
			Foreground(paper),
		Section: lipgloss.NewStyle().
			Foreground(soft).
			Bold(true),
		SectionDone: lipgloss.NewStyle().
			Foreground(mint).
			Bold(true),
		Cursor: lipgloss.NewStyle().
			Background(slate).
			Foreground(paper),
		Checked: lipgloss.NewStyle().
			Foreground(mint),
		Accent: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(dim),
		Error: lipgloss.NewStyle().
			Foreground(brick).
			Bold(true),
		Celebration: lipgloss.NewStyle().
			Foreground(gold).
			Bold(true),
		OverlayTitle: lipgloss.NewStyle().
			Foreground(soft).
			Bold(true),
	}
}
