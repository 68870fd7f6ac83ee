package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/duet/internal/core/dispatch"
	"github.com/colonyops/duet/internal/core/scrollsync"
	"github.com/colonyops/duet/internal/core/transform"
)

func sizedModel(t *testing.T, opts Options) Model {
	t.Helper()
	m := New(opts)
	mm, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return mm.(Model)
}

func TestModel_applyParseResult_updatesPreviewAndTable(t *testing.T) {
	m := sizedModel(t, Options{})
	m.latestID = 1

	m.applyParseResult(dispatch.Result{
		ID:   1,
		HTML: `<h1 data-line="1">title</h1><p data-line="3">body</p>`,
	})

	assert.Equal(t, int64(1), m.appliedID)
	require.Len(t, m.preview.Entries(), 2)
	assert.Equal(t, 1, m.preview.Entries()[0].Line)
	assert.Equal(t, 3, m.preview.Entries()[1].Line)
}

func TestModel_applyParseResult_discards_stale_results(t *testing.T) {
	m := sizedModel(t, Options{})
	m.latestID = 5

	m.applyParseResult(dispatch.Result{ID: 3, HTML: `<p data-line="1">stale</p>`})

	assert.Equal(t, int64(0), m.appliedID)
	assert.Empty(t, m.preview.Entries())

	m.applyParseResult(dispatch.Result{ID: 5, HTML: `<p data-line="1">fresh</p>`})
	assert.Equal(t, int64(5), m.appliedID)
	assert.Len(t, m.preview.Entries(), 1)
}

func TestModel_applyParseResult_discards_already_applied(t *testing.T) {
	m := sizedModel(t, Options{})
	m.latestID = 2

	m.applyParseResult(dispatch.Result{ID: 2, HTML: `<p data-line="1">a</p><p data-line="2">b</p>`})
	require.Equal(t, int64(2), m.appliedID)

	m.applyParseResult(dispatch.Result{ID: 2, HTML: `<p data-line="9">dup</p>`})
	require.Len(t, m.preview.Entries(), 2, "duplicate settlement must not reapply")
}

func TestModel_applyParseResult_error_keeps_previous_preview(t *testing.T) {
	m := sizedModel(t, Options{})
	m.latestID = 1

	m.applyParseResult(dispatch.Result{ID: 1, HTML: `<p data-line="1">good</p>`})
	require.Len(t, m.preview.Entries(), 1)

	m.latestID = 2
	m.applyParseResult(dispatch.Result{ID: 2, Err: errors.New("boom")})

	assert.Equal(t, int64(1), m.appliedID, "failed parse must not advance applied id")
	assert.Len(t, m.preview.Entries(), 1, "failed parse must not clear preview")

	items := m.notifs.Drain()
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Message, "boom")
}

func TestModel_applyParseResult_terminated_is_silent(t *testing.T) {
	m := sizedModel(t, Options{})

	m.applyParseResult(dispatch.Result{ID: 1, Err: dispatch.ErrTerminated})

	assert.Nil(t, m.notifs.Drain())
}

func TestModel_initParse_records_submission_id(t *testing.T) {
	d := dispatch.New(transform.New())
	defer d.Terminate()

	m := sizedModel(t, Options{Dispatcher: d, InitialText: "# hi\n"})

	mm, cmd := m.Update(initParseMsg{})
	require.NotNil(t, cmd)
	m = mm.(Model)

	assert.Equal(t, int64(1), m.latestID, "initial submission must be tracked for staleness checks")
}

func TestModel_editorScrolled_suppressed_while_editor_is_sync_target(t *testing.T) {
	coord := scrollsync.New(scrollsync.Options{
		DebounceQuiet: 5 * time.Millisecond,
		HintTimeout:   time.Second,
	})
	defer coord.Stop()

	m := sizedModel(t, Options{Coordinator: coord})
	m.latestID = 1
	m.applyParseResult(dispatch.Result{ID: 1, HTML: `<p data-line="1">a</p><p data-line="9">b</p>`})

	// A programmatic scroll is inbound for the editor; its own scroll
	// event must not bounce back to the preview.
	coord.MarkSyncingTo(scrollsync.SourceEditor)
	m.editorScrolled(9)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, m.syncs.Drain(), "self-inflicted editor scroll must not produce a sync")

	// Once the hint is cleared the same event syncs normally.
	coord.MarkSyncingTo(scrollsync.SourceNone)
	m.editorScrolled(9)

	time.Sleep(50 * time.Millisecond)
	cmds := m.syncs.Drain()
	require.Len(t, cmds, 1)
	assert.Equal(t, scrollsync.SourcePreview, cmds[0].target)
}

func TestModel_previewScrolled_suppressed_while_preview_is_sync_target(t *testing.T) {
	coord := scrollsync.New(scrollsync.Options{
		DebounceQuiet: 5 * time.Millisecond,
		HintTimeout:   time.Second,
	})
	defer coord.Stop()

	m := sizedModel(t, Options{Coordinator: coord})
	m.latestID = 1
	m.applyParseResult(dispatch.Result{ID: 1, HTML: `<p data-line="1">a</p><p data-line="9">b</p>`})

	coord.MarkSyncingTo(scrollsync.SourcePreview)
	m.previewScrolled(3)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, m.syncs.Drain(), "self-inflicted preview scroll must not produce a sync")

	coord.MarkSyncingTo(scrollsync.SourceNone)
	m.previewScrolled(3)

	time.Sleep(50 * time.Millisecond)
	cmds := m.syncs.Drain()
	require.Len(t, cmds, 1)
	assert.Equal(t, scrollsync.SourceEditor, cmds[0].target)
}

func TestModel_scrollEditorTo_walks_cursor(t *testing.T) {
	m := sizedModel(t, Options{
		InitialText: strings.Repeat("line\n", 9) + "line",
	})

	m.scrollEditorTo(5)
	assert.Equal(t, 4, m.editor.Line())

	m.scrollEditorTo(2)
	assert.Equal(t, 1, m.editor.Line())

	m.scrollEditorTo(99)
	assert.Equal(t, m.editor.LineCount()-1, m.editor.Line(), "clamps to last line")
}

func TestModel_reloadDocument_reads_and_reparses(t *testing.T) {
	d := dispatch.New(transform.New())
	defer d.Terminate()

	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# hello\n"), 0o644))

	m := sizedModel(t, Options{
		Dispatcher:   d,
		DocumentPath: path,
		InitialText:  "old text",
	})

	cmd := m.reloadDocument(path)
	require.NotNil(t, cmd)
	assert.Equal(t, "# hello\n", m.editor.Value())

	msg := cmd()
	res, ok := msg.(parseResultMsg)
	require.True(t, ok)
	require.NoError(t, res.res.Err)
	assert.Contains(t, res.res.HTML, transform.LineAttribute)
}

func TestModel_reloadDocument_unchanged_content_is_noop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("same"), 0o644))

	m := sizedModel(t, Options{DocumentPath: path, InitialText: "same"})

	assert.Nil(t, m.reloadDocument(path))
}

func TestModel_reloadDocument_missing_file_notifies(t *testing.T) {
	m := sizedModel(t, Options{})

	cmd := m.reloadDocument(filepath.Join(t.TempDir(), "gone.md"))

	assert.Nil(t, cmd)
	items := m.notifs.Drain()
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Message, "reload failed")
}

func TestModel_statusLine_shows_document_name(t *testing.T) {
	m := sizedModel(t, Options{DocumentPath: "/tmp/notes/draft.md"})

	line := m.statusLine(80)
	assert.Contains(t, line, "draft.md")
}
