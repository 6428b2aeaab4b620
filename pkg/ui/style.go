package ui

import (
	"github.com/charmbracelet/lipgloss"

	"tablegen/pkg/ui/base"
)

var (
	primaryColor   = base.AdaptivePrimary
	secondaryColor = base.AdaptiveSecondary
	successColor   = base.AdaptiveSuccess
	errorColor     = base.AdaptiveError
	textMuted      = base.AdaptiveMuted
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			MarginBottom(1)

	runBadgeStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	numberStyle = cellStyle.
			Align(lipgloss.Right)

	mutedStyle = lipgloss.NewStyle().
			Foreground(textMuted)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	borderStyle = lipgloss.NewStyle().
			Foreground(textMuted)
)
