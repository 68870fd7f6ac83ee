package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/duet/internal/core/scrollsync"
)

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case initParseMsg:
		return m, m.submitParse(m.lastValue)

	case parseResultMsg:
		m.applyParseResult(msg.res)
		return m, nil

	case drainSyncMsg:
		return m.handleDrainSync()

	case drainNotificationsMsg:
		return m.handleDrainNotifications()

	case toastTickMsg:
		return m.handleToastTick()

	case reloadMsg:
		return m.handleReload(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	paneHeight := max(m.height-3, 3) // status bar plus border rows
	paneWidth := max(m.width/2-2, 10)

	m.editor.SetWidth(paneWidth)
	m.editor.SetHeight(paneHeight)
	m.preview.SetSize(paneWidth, paneHeight)
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.toasts.HasToasts() {
			m.toasts.Dismiss()
			return m, nil
		}

	case "tab":
		if m.focus == paneEditor {
			m.focus = panePreview
			m.editor.Blur()
			return m, nil
		}
		m.focus = paneEditor
		return m, m.editor.Focus()
	}

	return m.updateFocused(msg)
}

// updateFocused routes input to the active pane and watches for the
// pane's scroll position moving as a result.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focus == panePreview {
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		if off := m.preview.Offset(); off != m.lastPreviewOff {
			m.lastPreviewOff = off
			m.previewScrolled(off)
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	cmds := []tea.Cmd{cmd}

	if v := m.editor.Value(); v != m.lastValue {
		m.lastValue = v
		cmds = append(cmds, m.submitParse(v))
	}
	if line := m.editor.Line(); line != m.lastEditorLine {
		m.lastEditorLine = line
		// Line() is 0-based; the mapping table speaks 1-based source lines.
		m.editorScrolled(line + 1)
	}
	return m, tea.Batch(cmds...)
}

// handleDrainSync applies queued programmatic scrolls. The hint set by
// the producing action keeps these from being misread as user input.
func (m Model) handleDrainSync() (tea.Model, tea.Cmd) {
	for _, sc := range m.syncs.Drain() {
		switch sc.target {
		case scrollsync.SourcePreview:
			m.preview.SetOffset(sc.offset)
			m.lastPreviewOff = m.preview.Offset()
		case scrollsync.SourceEditor:
			m.scrollEditorTo(sc.line)
			m.lastEditorLine = m.editor.Line()
		}
	}
	return m, m.syncs.WaitForSignal()
}

func (m Model) handleDrainNotifications() (tea.Model, tea.Cmd) {
	for _, n := range m.notifs.Drain() {
		m.toasts.Push(n)
	}

	cmds := []tea.Cmd{m.notifs.WaitForSignal()}
	if m.toasts.HasToasts() && !m.toasts.Ticking() {
		m.toasts.SetTicking(true)
		cmds = append(cmds, toastTick())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleToastTick() (tea.Model, tea.Cmd) {
	m.toasts.Tick(toastTickInterval)
	if m.toasts.HasToasts() {
		return m, toastTick()
	}
	m.toasts.SetTicking(false)
	return m, nil
}

func (m Model) handleReload(msg reloadMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.reloadDocument(msg.path)}
	if cmd := m.watchCmd(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func toastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(time.Time) tea.Msg {
		return toastTickMsg{}
	})
}
