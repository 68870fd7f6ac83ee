// Package scrollsync arbitrates which view — editor or preview — is the
// authoritative scroll source at any instant. A lock plus debounce
// discipline prevents the two views from feeding each other's scroll
// events back in an infinite loop, and a transient sync-target hint
// lets a view recognize a programmatic scroll as self-inflicted.
package scrollsync

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/duet/internal/core/logging"
)

// Source identifies a scroll participant.
type Source int

const (
	SourceNone Source = iota
	SourceEditor
	SourcePreview
)

func (s Source) String() string {
	switch s {
	case SourceEditor:
		return "editor"
	case SourcePreview:
		return "preview"
	default:
		return "none"
	}
}

// Options configures the coordinator's timing discipline. The hold and
// hint expirations are deadlock-avoidance safety nets, not performance
// tunables: they guarantee the system cannot wedge in a locked state
// when a release never arrives.
type Options struct {
	// HoldTimeout self-clears the lock if Release is never called.
	HoldTimeout time.Duration
	// HintTimeout self-clears the sync-target hint.
	HintTimeout time.Duration
	// DebounceQuiet is the quiet period that coalesces rapid scroll
	// events from one source into a single action.
	DebounceQuiet time.Duration
	// ReleaseGrace delays the post-action release long enough for the
	// resulting programmatic scroll to settle.
	ReleaseGrace time.Duration
}

func (o Options) withDefaults() Options {
	if o.HoldTimeout <= 0 {
		o.HoldTimeout = time.Second
	}
	if o.HintTimeout <= 0 {
		o.HintTimeout = 100 * time.Millisecond
	}
	if o.DebounceQuiet <= 0 {
		o.DebounceQuiet = 50 * time.Millisecond
	}
	if o.ReleaseGrace <= 0 {
		o.ReleaseGrace = 200 * time.Millisecond
	}
	return o
}

// Coordinator owns the scroll lock and sync hint. Timer callbacks fire
// on their own goroutines, so all state is mutex-guarded.
type Coordinator struct {
	opts Options
	log  zerolog.Logger

	mu        sync.Mutex
	holder    Source
	hint      Source
	holdTimer *time.Timer
	hintTimer *time.Timer
	debounce  map[Source]*time.Timer
	releases  map[Source]*time.Timer
	stopped   bool
}

// New constructs a coordinator. Zero-valued options take defaults.
func New(opts Options) *Coordinator {
	return &Coordinator{
		opts:     opts.withDefaults(),
		log:      logging.Component("scrollsync"),
		debounce: make(map[Source]*time.Timer),
		releases: make(map[Source]*time.Timer),
	}
}

// TryAcquire claims the lock for src. It succeeds iff the lock is free
// or already held by src, restarting the hold-expiry timer either way.
// It never blocks; contention returns false and the caller drops the
// sync attempt.
func (c *Coordinator) TryAcquire(src Source) bool {
	if src == SourceNone {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped || (c.holder != SourceNone && c.holder != src) {
		return false
	}

	c.holder = src
	if c.holdTimer != nil {
		c.holdTimer.Stop()
	}
	c.holdTimer = time.AfterFunc(c.opts.HoldTimeout, func() { c.expireHold(src) })
	return true
}

// Release clears the lock. Only the current holder may release; a
// release attempt by a non-holder is a no-op.
func (c *Coordinator) Release(src Source) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.holder != src {
		return
	}
	c.holder = SourceNone
	if c.holdTimer != nil {
		c.holdTimer.Stop()
		c.holdTimer = nil
	}
}

// Holder reports the current lock holder.
func (c *Coordinator) Holder() Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.holder
}

// MarkSyncingTo flags target as the imminent recipient of a
// programmatic scroll, so target's own scroll handler can recognize the
// resulting event as self-inflicted and suppress it. The hint
// self-clears after HintTimeout.
func (c *Coordinator) MarkSyncingTo(target Source) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.hint = target
	if c.hintTimer != nil {
		c.hintTimer.Stop()
	}
	c.hintTimer = time.AfterFunc(c.opts.HintTimeout, c.expireHint)
}

// IsSyncingTo reports whether src is currently flagged as a
// programmatic scroll target.
func (c *Coordinator) IsSyncingTo(src Source) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hint == src
}

// Debounce coalesces rapid scroll events from src into a single
// invocation of action after the quiet period. When the quiet period
// elapses the coordinator attempts to acquire the lock for src; on
// success it runs action and schedules a release after the grace
// delay, on contention the event is dropped — the next scroll event
// self-corrects any missed sync.
func (c *Coordinator) Debounce(src Source, action func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	if t, ok := c.debounce[src]; ok {
		t.Stop()
	}
	c.debounce[src] = time.AfterFunc(c.opts.DebounceQuiet, func() {
		c.fire(src, action)
	})
}

// Stop cancels all timers and refuses further work. Used on shutdown.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	c.holder = SourceNone
	c.hint = SourceNone
	for _, t := range []*time.Timer{c.holdTimer, c.hintTimer} {
		if t != nil {
			t.Stop()
		}
	}
	for _, t := range c.debounce {
		t.Stop()
	}
	for _, t := range c.releases {
		t.Stop()
	}
}

func (c *Coordinator) fire(src Source, action func()) {
	if !c.TryAcquire(src) {
		c.log.Debug().Stringer("source", src).Msg("sync dropped, lock contended")
		return
	}

	action()

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	if t, ok := c.releases[src]; ok {
		t.Stop()
	}
	c.releases[src] = time.AfterFunc(c.opts.ReleaseGrace, func() { c.Release(src) })
	c.mu.Unlock()
}

// expireHold is the hold timer's safety net: it clears the lock if the
// same source still holds it.
func (c *Coordinator) expireHold(src Source) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.holder == src {
		c.holder = SourceNone
		c.log.Debug().Stringer("source", src).Msg("scroll lock expired")
	}
}

func (c *Coordinator) expireHint() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hint = SourceNone
}
