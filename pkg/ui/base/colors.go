// Package base holds the colour palette shared by every rendered view.
package base

import "github.com/charmbracelet/lipgloss"

// ColorPalette defines a consistent color scheme
type ColorPalette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
}

// DarkPalette is the default dark theme palette
var DarkPalette = ColorPalette{
	Primary:   lipgloss.Color("#7C3AED"), // Purple
	Secondary: lipgloss.Color("#06B6D4"), // Cyan
	Accent:    lipgloss.Color("#10B981"), // Emerald
	Success:   lipgloss.Color("#10B981"), // Emerald
	Warning:   lipgloss.Color("#F59E0B"), // Amber
	Error:     lipgloss.Color("#EF4444"), // Red
	Muted:     lipgloss.Color("#94A3B8"), // Slate
}

// LightPalette is used on light terminal backgrounds.
var LightPalette = ColorPalette{
	Primary:   lipgloss.Color("#5A56E0"),
	Secondary: lipgloss.Color("#EE6FF8"),
	Accent:    lipgloss.Color("#02BA84"),
	Success:   lipgloss.Color("#02BA84"),
	Warning:   lipgloss.Color("#FF8C00"),
	Error:     lipgloss.Color("#FF5F56"),
	Muted:     lipgloss.Color("#9B9B9B"),
}

func adaptive(light, dark lipgloss.Color) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: string(light), Dark: string(dark)}
}

// Adaptive colors pick the palette matching the terminal background.
var (
	AdaptivePrimary   = adaptive(LightPalette.Primary, DarkPalette.Primary)
	AdaptiveSecondary = adaptive(LightPalette.Secondary, DarkPalette.Secondary)
	AdaptiveSuccess   = adaptive(LightPalette.Success, DarkPalette.Success)
	AdaptiveWarning   = adaptive(LightPalette.Warning, DarkPalette.Warning)
	AdaptiveError     = adaptive(LightPalette.Error, DarkPalette.Error)
	AdaptiveMuted     = adaptive(LightPalette.Muted, DarkPalette.Muted)
)
