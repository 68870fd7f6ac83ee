// Package dispatch offloads markdown rendering to a single long-lived
// worker goroutine so the interactive loop never blocks on a parse.
// Requests are correlated to callers by a monotonically increasing id;
// each submission settles exactly once.
package dispatch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/duet/internal/core/logging"
)

var (
	// ErrTerminated rejects callers once Terminate has been called.
	ErrTerminated = errors.New("dispatcher terminated")

	// ErrWorkerFailed rejects callers when the worker itself dies.
	// The dispatcher is unusable afterwards; the owner must construct
	// a new one.
	ErrWorkerFailed = errors.New("render worker failed")
)

// Renderer converts markdown to HTML. Invoked only on the worker
// goroutine.
type Renderer interface {
	Render(markdown string) (string, error)
}

// Result is the settlement of a single submission. Exactly one Result
// is delivered per Submit call, on the channel Submit returned.
type Result struct {
	ID   int64
	HTML string
	Err  error
}

type request struct {
	id       int64
	markdown string
}

// Dispatcher owns the render worker and the table of pending callers.
type Dispatcher struct {
	renderer Renderer
	log      zerolog.Logger

	mu         sync.Mutex
	nextID     int64
	pending    map[int64]chan Result
	terminated bool
	failed     bool

	requests chan request
	quit     chan struct{}
}

// New constructs a dispatcher and starts its worker goroutine.
func New(r Renderer) *Dispatcher {
	d := &Dispatcher{
		renderer: r,
		log:      logging.Component("dispatch"),
		pending:  make(map[int64]chan Result),
		requests: make(chan request, 64),
		quit:     make(chan struct{}),
	}
	go d.worker()
	return d
}

// Submit queues markdown for rendering and returns a channel that
// receives exactly one Result. Submissions may overlap; no coalescing
// or ordering across ids is guaranteed. Any "latest wins" policy is
// the caller's responsibility.
func (d *Dispatcher) Submit(markdown string) (int64, <-chan Result) {
	ch := make(chan Result, 1)

	d.mu.Lock()
	if d.terminated || d.failed {
		err := ErrTerminated
		if d.failed {
			err = ErrWorkerFailed
		}
		d.mu.Unlock()
		ch <- Result{Err: err}
		return 0, ch
	}
	d.nextID++
	id := d.nextID
	d.pending[id] = ch
	d.mu.Unlock()

	select {
	case d.requests <- request{id: id, markdown: markdown}:
	case <-d.quit:
		d.settle(id, Result{ID: id, Err: ErrTerminated})
	}
	return id, ch
}

// Terminate stops the worker and rejects every pending caller. It is
// idempotent and safe to call from any goroutine.
func (d *Dispatcher) Terminate() {
	d.mu.Lock()
	if d.terminated {
		d.mu.Unlock()
		return
	}
	d.terminated = true
	drained := d.drainLocked()
	d.mu.Unlock()

	close(d.quit)
	for id, ch := range drained {
		ch <- Result{ID: id, Err: ErrTerminated}
	}
	d.log.Debug().Int("rejected", len(drained)).Msg("dispatcher terminated")
}

// worker is the single background execution context. A renderer panic
// is a worker-level fatal failure: every pending caller is rejected
// and the goroutine exits.
func (d *Dispatcher) worker() {
	defer func() {
		if r := recover(); r != nil {
			d.fail(fmt.Errorf("%w: %v", ErrWorkerFailed, r))
		}
	}()

	for {
		select {
		case <-d.quit:
			return
		case req := <-d.requests:
			html, err := d.renderer.Render(req.markdown)
			if err != nil {
				d.settle(req.id, Result{ID: req.id, Err: err})
				continue
			}
			d.settle(req.id, Result{ID: req.id, HTML: html})
		}
	}
}

// settle delivers the result for id and removes its bookkeeping.
// At most one settlement happens per id; later attempts are no-ops.
func (d *Dispatcher) settle(id int64, res Result) {
	d.mu.Lock()
	ch, ok := d.pending[id]
	if ok {
		delete(d.pending, id)
	}
	d.mu.Unlock()

	if ok {
		ch <- res
	}
}

// fail marks the dispatcher dead and rejects every pending caller.
func (d *Dispatcher) fail(err error) {
	d.log.Error().Err(err).Msg("render worker failed")

	d.mu.Lock()
	d.failed = true
	drained := d.drainLocked()
	d.mu.Unlock()

	// Deliver outside the lock; the pending map is already clear, so a
	// re-entrant Submit cannot observe a half-rejected table.
	for id, ch := range drained {
		ch <- Result{ID: id, Err: err}
	}
}

// drainLocked empties the pending table and returns its entries.
func (d *Dispatcher) drainLocked() map[int64]chan Result {
	drained := d.pending
	d.pending = make(map[int64]chan Result)
	return drained
}
