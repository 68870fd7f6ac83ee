// Package watch observes the open document on disk and reports external
// modifications so the editor can reload and re-render. Editors tend to
// replace files on save (write-to-temp then rename), so the watch is on
// the parent directory with events filtered to the document's name, and
// bursts are coalesced behind a quiet period.
package watch

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/colonyops/duet/internal/core/logging"
)

// Event reports that the watched document changed on disk.
type Event struct {
	Path string
}

// Watcher emits a coalesced Event when the watched file is written,
// created, or renamed into place.
type Watcher struct {
	path   string
	fw     *fsnotify.Watcher
	events chan Event
	done   chan struct{}
	log    zerolog.Logger
}

// New watches path, coalescing change bursts behind quiet.
func New(path string, quiet time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:   abs,
		fw:     fw,
		events: make(chan Event, 1),
		done:   make(chan struct{}),
		log:    logging.Component("watch"),
	}
	go w.loop(quiet)
	return w, nil
}

// Events delivers coalesced change events. The channel closes when the
// watcher is closed or its underlying OS watch fails.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops watching. Idempotent via the underlying watcher.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	return w.fw.Close()
}

func (w *Watcher) loop(quiet time.Duration) {
	defer close(w.events)

	var pending *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if pending == nil {
				pending = time.NewTimer(quiet)
			} else {
				pending.Reset(quiet)
			}
			fire = pending.C

		case <-fire:
			fire = nil
			select {
			case w.events <- Event{Path: w.path}:
			default:
				// A reload is already queued; the pending one will
				// read the same bytes.
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Str("path", w.path).Msg("watch error")
		}
	}
}
