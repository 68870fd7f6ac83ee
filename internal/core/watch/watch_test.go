package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_reports_external_write(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# one\n"), 0o644))

	w, err := New(path, 20*time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.NoError(t, os.WriteFile(path, []byte("# two\n"), 0o644))

	select {
	case ev := <-w.Events():
		assert.Equal(t, path, filepath.Clean(ev.Path))
	case <-time.After(3 * time.Second):
		t.Fatal("no event for external write")
	}
}

func TestWatcher_reports_rename_into_place(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	w, err := New(path, 20*time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	// Editors save via write-to-temp then rename.
	tmp := filepath.Join(dir, ".doc.md.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("new\n"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case <-w.Events():
	case <-time.After(3 * time.Second):
		t.Fatal("no event for rename into place")
	}
}

func TestWatcher_ignores_sibling_files(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))

	w, err := New(path, 20*time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.md"), []byte("y\n"), 0o644))

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_Close_closes_event_channel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))

	w, err := New(path, 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	select {
	case _, open := <-w.Events():
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("event channel never closed")
	}
}
