package tui

import "github.com/charmbracelet/lipgloss"

// The browser must stay readable on light and dark terminals, so every color
// is adaptive.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted      = ac("240", "243")
	colorSurfaceFg  = ac("235", "252")
	colorSelectedBg = ac("#e9e9e9", "#262626")
	colorSelectedFg = ac("235", "255")
	colorAccent     = ac("27", "62")
	colorActive     = ac("28", "42")
	colorInactive   = ac("160", "203")
	colorControlBg  = ac("252", "235")
)

func styleMuted() lipgloss.Style { return lipgloss.NewStyle().Foreground(colorMuted) }

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
}

func styleBadge(active bool) lipgloss.Style {
	if active {
		return lipgloss.NewStyle().Foreground(colorActive)
	}
	return lipgloss.NewStyle().Foreground(colorInactive)
}

func styleNotice(isErr bool) lipgloss.Style {
	if isErr {
		return lipgloss.NewStyle().Foreground(colorInactive).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(colorActive)
}
