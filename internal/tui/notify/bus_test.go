package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/duet/internal/core/notify"
)

func TestBus_Publish_dispatches_to_subscribers(t *testing.T) {
	bus := NewBus()

	var received []notify.Notification
	bus.Subscribe(func(n notify.Notification) {
		received = append(received, n)
	})

	bus.Errorf("parse failed: %s", "bad fence")
	bus.Infof("document reloaded")
	bus.Warnf("slow render")

	require.Len(t, received, 3)
	assert.Equal(t, notify.LevelError, received[0].Level)
	assert.Equal(t, "parse failed: bad fence", received[0].Message)
	assert.Equal(t, notify.LevelInfo, received[1].Level)
	assert.Equal(t, notify.LevelWarning, received[2].Level)
	assert.False(t, received[0].CreatedAt.IsZero(), "timestamp is stamped on publish")
}

func TestBus_Publish_reaches_all_subscribers(t *testing.T) {
	bus := NewBus()

	var first, second int
	bus.Subscribe(func(notify.Notification) { first++ })
	bus.Subscribe(func(notify.Notification) { second++ })

	bus.Infof("hello")

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestBus_Subscribe_during_publish_is_safe(t *testing.T) {
	bus := NewBus()

	bus.Subscribe(func(notify.Notification) {
		// Re-entrant subscription must not deadlock or corrupt the list.
		bus.Subscribe(func(notify.Notification) {})
	})

	assert.NotPanics(t, func() { bus.Infof("reentrant") })
}
