// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"}
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"}
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"}

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusInfoColor    = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Selection and marks
	SelectionColor = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#3498DB"}
	MarkColor      = lipgloss.AdaptiveColor{Light: "#8839EF", Dark: "#CBA6F7"}

	StatusBarBgColor = lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#2D3436"}

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Background(StatusBarBgColor)

	StatusInfoStyle    = lipgloss.NewStyle().Foreground(StatusInfoColor).Background(StatusBarBgColor)
	StatusWarningStyle = lipgloss.NewStyle().Foreground(StatusWarningColor).Background(StatusBarBgColor).Bold(true)
	StatusErrorStyle   = lipgloss.NewStyle().Foreground(StatusErrorColor).Background(StatusBarBgColor).Bold(true)

	// Command line
	CommandLineStyle = lipgloss.NewStyle().Foreground(TextPrimaryColor)
	CompletionStyle  = lipgloss.NewStyle().Foreground(TextMutedColor)
	CompletionSelectedStyle = lipgloss.NewStyle().
				Foreground(TextPrimaryColor).
				Bold(true)

	// Lists and grids
	SelectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(SelectionColor).Bold(true)
	DirectoryStyle = lipgloss.NewStyle().Foreground(StatusInfoColor).Bold(true)
	MarkedStyle    = lipgloss.NewStyle().Foreground(MarkColor)
	MutedStyle     = lipgloss.NewStyle().Foreground(TextMutedColor)

	// Manipulate panel
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(TextMutedColor).
			Padding(0, 1)
	PanelFocusedLabelStyle = lipgloss.NewStyle().Foreground(StatusInfoColor).Bold(true)

	// Error display
	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true).
			Padding(1, 2)
)
