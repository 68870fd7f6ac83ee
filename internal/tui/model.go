// Package tui implements the duet editor: an editing pane and a live
// preview pane, synchronized bidirectionally by scroll position. The
// Update loop owns all UI state; parse work runs on the dispatcher's
// worker, and debounced sync actions run on coordinator timers, both
// funneling back in through buffered messages.
package tui

import (
	"errors"
	"os"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/colonyops/duet/internal/core/config"
	"github.com/colonyops/duet/internal/core/dispatch"
	"github.com/colonyops/duet/internal/core/linemap"
	"github.com/colonyops/duet/internal/core/logging"
	"github.com/colonyops/duet/internal/core/scrollsync"
	"github.com/colonyops/duet/internal/core/watch"
	tuinotify "github.com/colonyops/duet/internal/tui/notify"
	"github.com/colonyops/duet/internal/tui/preview"
)

type pane int

const (
	paneEditor pane = iota
	panePreview
)

// Messages crossing from goroutines or commands into the Update loop.
type (
	initParseMsg   struct{}
	parseResultMsg struct {
		res dispatch.Result
	}
	drainSyncMsg          struct{}
	drainNotificationsMsg struct{}
	toastTickMsg          struct{}
	reloadMsg             struct {
		path string
	}
)

// Options configures the TUI.
type Options struct {
	Config       *config.Config
	Dispatcher   *dispatch.Dispatcher
	Coordinator  *scrollsync.Coordinator
	Watcher      *watch.Watcher // optional; nil when editing an unsaved buffer
	DocumentPath string
	InitialText  string
}

// Model is the main Bubble Tea model.
type Model struct {
	cfg *config.Config
	log zerolog.Logger

	editor     textarea.Model
	preview    preview.Model
	dispatcher *dispatch.Dispatcher
	coord      *scrollsync.Coordinator
	table      *linemap.Table

	bus    *tuinotify.Bus
	notifs *NotificationBuffer
	syncs  *syncBuffer
	toasts *ToastController

	watcher *watch.Watcher
	docPath string

	focus  pane
	width  int
	height int

	lastValue      string
	lastEditorLine int
	lastPreviewOff int

	// Latest-id-wins: a parse result older than the newest submission
	// (or the newest applied result) is discarded, so a fast series of
	// edits can never regress the preview to stale content.
	latestID  int64
	appliedID int64
}

// New constructs the editor model.
func New(opts Options) Model {
	ta := textarea.New()
	ta.SetValue(opts.InitialText)
	ta.Focus()

	var pvOpts preview.Options
	if opts.Config != nil {
		pvOpts = preview.Options{
			CodeStyle: opts.Config.Preview.CodeStyle,
			MaxWidth:  opts.Config.Preview.Width,
			TabWidth:  opts.Config.Editor.TabWidth,
		}
	}

	notifs := NewNotificationBuffer()
	bus := tuinotify.NewBus()
	bus.Subscribe(notifs.Push)

	return Model{
		cfg:        opts.Config,
		log:        logging.Component("tui"),
		editor:     ta,
		preview:    preview.New(pvOpts),
		dispatcher: opts.Dispatcher,
		coord:      opts.Coordinator,
		table:      linemap.NewTable(),
		bus:        bus,
		notifs:     notifs,
		syncs:      newSyncBuffer(),
		toasts:     NewToastController(),
		watcher:    opts.Watcher,
		docPath:    opts.DocumentPath,
		lastValue:  opts.InitialText,
	}
}

// Init starts the long-lived listeners and requests the initial parse.
// The parse itself is submitted from Update, where the model copy the
// submission's id bookkeeping lands on is the one bubbletea keeps.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.notifs.WaitForSignal(),
		m.syncs.WaitForSignal(),
		func() tea.Msg { return initParseMsg{} },
	}
	if cmd := m.watchCmd(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// submitParse posts text to the dispatcher and returns a command that
// delivers the settlement. The returned channel receives exactly once.
func (m *Model) submitParse(text string) tea.Cmd {
	id, ch := m.dispatcher.Submit(text)
	if id > m.latestID {
		m.latestID = id
	}
	m.log.Debug().Int64("parse_id", id).Msg("parse submitted")
	return func() tea.Msg {
		return parseResultMsg{res: <-ch}
	}
}

// watchCmd waits for the next external-change event.
func (m Model) watchCmd() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	events := m.watcher.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return reloadMsg{path: ev.Path}
	}
}

// applyParseResult applies a settled parse to the preview, enforcing
// latest-id-wins, and rebuilds the position table. Parse failures keep
// the previous preview content and surface the message.
func (m *Model) applyParseResult(res dispatch.Result) {
	if res.Err != nil {
		if errors.Is(res.Err, dispatch.ErrTerminated) {
			return
		}
		m.log.Warn().Int64("parse_id", res.ID).Err(res.Err).Msg("parse failed")
		m.bus.Errorf("render failed: %v", res.Err)
		return
	}
	if res.ID < m.latestID || res.ID <= m.appliedID {
		m.log.Debug().Int64("parse_id", res.ID).Int64("latest", m.latestID).Msg("stale parse discarded")
		return
	}

	if err := m.preview.SetHTML(res.HTML); err != nil {
		m.log.Warn().Int64("parse_id", res.ID).Err(err).Msg("preview layout failed")
		m.bus.Errorf("preview failed: %v", err)
		return
	}
	m.appliedID = res.ID
	m.table.Rebuild(m.preview.Entries())
	m.lastPreviewOff = m.preview.Offset()
}

// editorScrolled reacts to the editor's representative visible line
// changing. It must bail before debouncing when the editor is the
// target of a programmatic scroll, or the two panes feed back forever.
func (m *Model) editorScrolled(line int) {
	if m.coord.IsSyncingTo(scrollsync.SourceEditor) {
		return
	}

	coord := m.coord
	table := m.table
	syncs := m.syncs
	visible := m.preview.VisibleRows()

	coord.Debounce(scrollsync.SourceEditor, func() {
		coord.MarkSyncingTo(scrollsync.SourcePreview)
		entry := table.OffsetForLine(line)
		offset := entry.Offset - visible/2
		if offset < 0 {
			offset = 0
		}
		syncs.Push(syncCommand{target: scrollsync.SourcePreview, offset: offset})
	})
}

// previewScrolled is the symmetric handler for the preview pane.
func (m *Model) previewScrolled(offset int) {
	if m.coord.IsSyncingTo(scrollsync.SourcePreview) {
		return
	}

	coord := m.coord
	table := m.table
	syncs := m.syncs
	mid := offset + m.preview.VisibleRows()/2

	coord.Debounce(scrollsync.SourcePreview, func() {
		coord.MarkSyncingTo(scrollsync.SourceEditor)
		line := table.LineForOffset(mid)
		syncs.Push(syncCommand{target: scrollsync.SourceEditor, line: line})
	})
}

// scrollEditorTo centers the editor on the given 1-based source line by
// walking the cursor, which is the only scroll control the widget
// exposes.
func (m *Model) scrollEditorTo(line int) {
	target := line - 1
	if target < 0 {
		target = 0
	}
	if maxLine := m.editor.LineCount() - 1; target > maxLine {
		target = maxLine
	}

	for m.editor.Line() < target {
		m.editor.CursorDown()
	}
	for m.editor.Line() > target {
		m.editor.CursorUp()
	}
}

// reloadDocument refreshes the buffer from disk after an external
// modification.
func (m *Model) reloadDocument(path string) tea.Cmd {
	data, err := os.ReadFile(path)
	if err != nil {
		m.log.Warn().Str("path", path).Err(err).Msg("reload failed")
		m.bus.Errorf("reload failed: %v", err)
		return nil
	}

	text := string(data)
	if text == m.editor.Value() {
		return nil
	}

	m.editor.SetValue(text)
	m.lastValue = text
	m.lastEditorLine = m.editor.Line()
	m.bus.Infof("document reloaded from disk")
	return m.submitParse(text)
}
