package tui

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/duet/internal/core/notify"
	"github.com/colonyops/duet/internal/core/scrollsync"
)

func TestSyncBuffer_Drain_empty_returnsNil(t *testing.T) {
	b := newSyncBuffer()
	assert.Nil(t, b.Drain())
}

func TestSyncBuffer_PushDrain_orderAndClear(t *testing.T) {
	b := newSyncBuffer()
	b.Push(syncCommand{target: scrollsync.SourcePreview, offset: 10})
	b.Push(syncCommand{target: scrollsync.SourceEditor, line: 4})

	cmds := b.Drain()
	require.Len(t, cmds, 2)
	assert.Equal(t, scrollsync.SourcePreview, cmds[0].target)
	assert.Equal(t, 10, cmds[0].offset)
	assert.Equal(t, scrollsync.SourceEditor, cmds[1].target)
	assert.Equal(t, 4, cmds[1].line)
	assert.Nil(t, b.Drain())
}

func TestSyncBuffer_WaitForSignal_singleSignalDrainsAll(t *testing.T) {
	b := newSyncBuffer()
	b.Push(syncCommand{target: scrollsync.SourcePreview, offset: 1})
	b.Push(syncCommand{target: scrollsync.SourcePreview, offset: 2})

	msg := b.WaitForSignal()()
	_, ok := msg.(drainSyncMsg)
	require.True(t, ok)

	assert.Len(t, b.Drain(), 2)
}

func TestSyncBuffer_concurrent_pushes(t *testing.T) {
	b := newSyncBuffer()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Push(syncCommand{target: scrollsync.SourcePreview, offset: i})
		}()
	}
	wg.Wait()

	assert.Len(t, b.Drain(), 20)
}

func TestNotificationBuffer_Drain_empty_returnsNil(t *testing.T) {
	b := NewNotificationBuffer()
	assert.Nil(t, b.Drain())
}

func TestNotificationBuffer_PushDrain_orderAndClear(t *testing.T) {
	b := NewNotificationBuffer()
	b.Push(notify.Notification{Level: notify.LevelInfo, Message: "first"})
	b.Push(notify.Notification{Level: notify.LevelWarning, Message: "second"})

	items := b.Drain()
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].Message)
	assert.Equal(t, "second", items[1].Message)
	assert.Nil(t, b.Drain())
}

func TestNotificationBuffer_Push_setsCreatedAtWhenZero(t *testing.T) {
	b := NewNotificationBuffer()
	b.Push(notify.Notification{Level: notify.LevelInfo, Message: "stamp me"})

	items := b.Drain()
	require.Len(t, items, 1)
	assert.False(t, items[0].CreatedAt.IsZero())
}

func TestNotificationBuffer_WaitForSignal_bufferedSignal(t *testing.T) {
	b := NewNotificationBuffer()
	b.Push(notify.Notification{Level: notify.LevelInfo, Message: "queued"})

	msg := b.WaitForSignal()()
	_, ok := msg.(drainNotificationsMsg)
	require.True(t, ok)
}
