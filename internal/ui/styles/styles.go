// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#CCCCCC"} // Main/primary text
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"} // IDs, secondary info
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Hints, help text, footers
	TextPlaceholderColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#777777"} // Input placeholders

	// Semantic color names - Border
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"} // Unfocused borders
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"} // Focused input border

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"} // Success states
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"} // Warnings
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"} // Errors
	StatusInfoColor    = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"} // Informational

	// Table colors
	TableHeaderColor   = lipgloss.AdaptiveColor{Light: "#8839EF", Dark: "#CBA6F7"}
	TableCursorBgColor = lipgloss.AdaptiveColor{Light: "#DDDDDD", Dark: "#3A3A4A"}
	TableMarkColor     = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	// Table styles
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(TableHeaderColor)
	TableCursorStyle = lipgloss.NewStyle().Background(TableCursorBgColor)
	TableMarkStyle   = lipgloss.NewStyle().Bold(true).Foreground(TableMarkColor)

	// Status bar styles
	StatusBarStyle     = lipgloss.NewStyle().Foreground(TextMutedColor)
	StatusBarPageStyle = lipgloss.NewStyle().Bold(true).Foreground(TextSecondaryColor)

	// Header style for the title line
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)

	// Help footer style
	HelpStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	// Toast border colors
	ToastBorderSuccessColor = StatusSuccessColor
	ToastBorderErrorColor   = StatusErrorColor
	ToastBorderWarnColor    = StatusWarningColor
	ToastBorderInfoColor    = StatusInfoColor
)
