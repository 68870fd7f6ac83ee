package tui

import (
	"strings"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/duet/internal/core/notify"
	"github.com/colonyops/duet/internal/core/styles"
)

const toastWidth = 50

func renderToast(t toast) string {
	var icon string
	var style lipgloss.Style

	switch t.notification.Level {
	case notify.LevelError:
		icon = styles.IconNotifyError
		style = styles.ToastErrorStyle
	case notify.LevelWarning:
		icon = styles.IconNotifyWarning
		style = styles.ToastWarningStyle
	default:
		icon = styles.IconNotifyInfo
		style = styles.ToastInfoStyle
	}

	return style.Width(toastWidth).Render(icon + " " + t.notification.Message)
}

// overlayToasts composites the toast stack over background in the
// lower-right corner, oldest at top.
func overlayToasts(background string, toasts []toast, width, height int) string {
	if len(toasts) == 0 {
		return background
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, renderToast(t))
	}
	content := strings.Join(rendered, "\n")

	bgLayer := lipgloss.NewLayer(background)
	toastLayer := lipgloss.NewLayer(content)

	toastW := lipgloss.Width(content)
	toastH := lipgloss.Height(content)
	toastLayer.X(max(width-toastW-1, 0)).Y(max(height-toastH, 0)).Z(1)

	return lipgloss.NewCompositor(bgLayer, toastLayer).Render()
}
