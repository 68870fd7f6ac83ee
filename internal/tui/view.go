package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/duet/internal/core/styles"
)

// View renders the TUI.
func (m Model) View() tea.View {
	w, h := m.width, m.height
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}

	editorStyle := styles.PaneBlurredStyle
	previewStyle := styles.PaneBlurredStyle
	if m.focus == paneEditor {
		editorStyle = styles.PaneFocusedStyle
	} else {
		previewStyle = styles.PaneFocusedStyle
	}

	panes := lipgloss.JoinHorizontal(
		lipgloss.Top,
		editorStyle.Render(m.editor.View()),
		previewStyle.Render(m.preview.View()),
	)
	content := lipgloss.JoinVertical(lipgloss.Left, panes, m.statusLine(w))

	if m.toasts.HasToasts() {
		content = overlayToasts(content, m.toasts.Toasts(), w, h)
	}

	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

func (m Model) statusLine(width int) string {
	name := "[scratch]"
	if m.docPath != "" {
		name = filepath.Base(m.docPath)
	}

	left := styles.StatusPathStyle.Render(name) +
		styles.StatusBarStyle.Render(fmt.Sprintf("  ln %d/%d", m.editor.Line()+1, m.editor.LineCount()))

	right := styles.StatusKeyStyle.Render("tab") +
		styles.StatusBarStyle.Render(" switch pane  ") +
		styles.StatusKeyStyle.Render("ctrl+c") +
		styles.StatusBarStyle.Render(" quit")

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
