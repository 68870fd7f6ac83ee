// Package styles provides shared lipgloss v2 styles for CLI and TUI components.
package styles

import (
	"image/color"

	lipgloss "charm.land/lipgloss/v2"
)

// Notification icons.
const (
	IconNotifyInfo    = "●"
	IconNotifyWarning = "▲"
	IconNotifyError   = "✗"
)

// CurrentPalette is the active palette set by SetTheme.
var CurrentPalette Palette

// Semantic colors derived from the active palette.
var (
	ColorPrimary    color.Color
	ColorSecondary  color.Color
	ColorForeground color.Color
	ColorMuted      color.Color
	ColorBackground color.Color
	ColorSurface    color.Color
	ColorSuccess    color.Color
	ColorWarning    color.Color
	ColorError      color.Color
)

// Styles rebuilt whenever the theme changes.
var (
	PaneFocusedStyle lipgloss.Style
	PaneBlurredStyle lipgloss.Style

	StatusBarStyle  lipgloss.Style
	StatusKeyStyle  lipgloss.Style
	StatusPathStyle lipgloss.Style

	ToastInfoStyle    lipgloss.Style
	ToastWarningStyle lipgloss.Style
	ToastErrorStyle   lipgloss.Style

	TextMutedStyle          lipgloss.Style
	TextSuccessStyle        lipgloss.Style
	TextWarningStyle        lipgloss.Style
	TextErrorStyle          lipgloss.Style
	TextPrimaryBoldStyle    lipgloss.Style
	TextForegroundBoldStyle lipgloss.Style

	HeadingStyles map[string]lipgloss.Style
	QuoteStyle    lipgloss.Style
	RuleStyle     lipgloss.Style
)

func init() {
	p, _ := GetPalette(DefaultTheme)
	SetTheme(p)
}

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	PaneFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary)
	PaneBlurredStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSurface)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	StatusKeyStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary)
	StatusPathStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Bold(true)

	ToastInfoStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary)
	ToastWarningStyle = lipgloss.NewStyle().
		Foreground(ColorWarning)
	ToastErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError)

	TextMutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	TextSuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	TextWarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	TextErrorStyle = lipgloss.NewStyle().Foreground(ColorError)
	TextPrimaryBoldStyle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	TextForegroundBoldStyle = lipgloss.NewStyle().Foreground(ColorForeground).Bold(true)

	HeadingStyles = map[string]lipgloss.Style{
		"h1": lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		"h2": lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary),
		"h3": lipgloss.NewStyle().Bold(true).Foreground(ColorForeground),
		"h4": lipgloss.NewStyle().Bold(true),
		"h5": lipgloss.NewStyle().Bold(true),
		"h6": lipgloss.NewStyle().Bold(true).Foreground(ColorMuted),
	}
	QuoteStyle = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
	RuleStyle = lipgloss.NewStyle().Foreground(ColorSurface)
}
