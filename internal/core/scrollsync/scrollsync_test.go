package scrollsync

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fast returns options with short windows so tests stay quick without
// becoming flaky; assertions sleep several multiples of each window.
func fast() Options {
	return Options{
		HoldTimeout:   80 * time.Millisecond,
		HintTimeout:   40 * time.Millisecond,
		DebounceQuiet: 20 * time.Millisecond,
		ReleaseGrace:  30 * time.Millisecond,
	}
}

func TestCoordinator_TryAcquire_contention(t *testing.T) {
	c := New(fast())
	defer c.Stop()

	require.True(t, c.TryAcquire(SourceEditor))
	assert.False(t, c.TryAcquire(SourcePreview), "second source must fail while held")
	assert.True(t, c.TryAcquire(SourceEditor), "re-acquire by holder succeeds")

	c.Release(SourceEditor)
	assert.True(t, c.TryAcquire(SourcePreview), "succeeds after release")
}

func TestCoordinator_Release_by_non_holder_is_noop(t *testing.T) {
	c := New(fast())
	defer c.Stop()

	require.True(t, c.TryAcquire(SourceEditor))
	c.Release(SourcePreview)
	assert.Equal(t, SourceEditor, c.Holder())
}

func TestCoordinator_hold_self_expires(t *testing.T) {
	c := New(fast())
	defer c.Stop()

	require.True(t, c.TryAcquire(SourceEditor))
	assert.False(t, c.TryAcquire(SourcePreview))

	time.Sleep(3 * fast().HoldTimeout / 2)
	assert.True(t, c.TryAcquire(SourcePreview), "lock self-clears without release")
}

func TestCoordinator_sync_hint_expires(t *testing.T) {
	c := New(fast())
	defer c.Stop()

	c.MarkSyncingTo(SourcePreview)
	assert.True(t, c.IsSyncingTo(SourcePreview))
	assert.False(t, c.IsSyncingTo(SourceEditor))

	time.Sleep(2 * fast().HintTimeout)
	assert.False(t, c.IsSyncingTo(SourcePreview), "hint self-clears")
}

func TestCoordinator_Debounce_coalesces_rapid_events(t *testing.T) {
	c := New(fast())
	defer c.Stop()

	var calls atomic.Int32
	for range 10 {
		c.Debounce(SourceEditor, func() { calls.Add(1) })
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(4 * fast().DebounceQuiet)
	assert.Equal(t, int32(1), calls.Load(), "burst collapses to one action")
}

func TestCoordinator_Debounce_drops_action_under_contention(t *testing.T) {
	c := New(fast())
	defer c.Stop()

	require.True(t, c.TryAcquire(SourcePreview))

	var calls atomic.Int32
	c.Debounce(SourceEditor, func() { calls.Add(1) })

	time.Sleep(2 * fast().DebounceQuiet)
	assert.Equal(t, int32(0), calls.Load(), "editor action dropped while preview holds")
}

func TestCoordinator_Debounce_releases_after_grace(t *testing.T) {
	c := New(fast())
	defer c.Stop()

	done := make(chan struct{})
	c.Debounce(SourceEditor, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced action never ran")
	}
	assert.Equal(t, SourceEditor, c.Holder(), "lock held through the grace window")

	time.Sleep(3 * fast().ReleaseGrace)
	assert.Equal(t, SourceNone, c.Holder(), "released after grace delay")
}

func TestCoordinator_TryAcquire_none_is_rejected(t *testing.T) {
	c := New(fast())
	defer c.Stop()

	assert.False(t, c.TryAcquire(SourceNone))
}

func TestCoordinator_Stop_refuses_further_work(t *testing.T) {
	c := New(fast())
	c.Stop()

	assert.False(t, c.TryAcquire(SourceEditor))

	var calls atomic.Int32
	c.Debounce(SourceEditor, func() { calls.Add(1) })
	time.Sleep(2 * fast().DebounceQuiet)
	assert.Equal(t, int32(0), calls.Load())
}
