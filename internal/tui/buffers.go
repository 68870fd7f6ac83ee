package tui

import (
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/duet/internal/core/notify"
	"github.com/colonyops/duet/internal/core/scrollsync"
)

// syncCommand is a programmatic scroll produced on a debounce-timer
// goroutine and applied inside the Update loop.
type syncCommand struct {
	target scrollsync.Source
	offset int // preview row offset, when target is the preview
	line   int // editor source line, when target is the editor
}

// syncBuffer carries sync commands from timer goroutines into the
// Update loop. A 1-slot signal channel coalesces wakeups.
type syncBuffer struct {
	mu     sync.Mutex
	cmds   []syncCommand
	signal chan struct{}
}

func newSyncBuffer() *syncBuffer {
	return &syncBuffer{signal: make(chan struct{}, 1)}
}

// Push appends a command and emits a non-blocking drain signal.
func (b *syncBuffer) Push(cmd syncCommand) {
	b.mu.Lock()
	b.cmds = append(b.cmds, cmd)
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Drain returns all buffered commands and clears the buffer.
func (b *syncBuffer) Drain() []syncCommand {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.cmds) == 0 {
		return nil
	}
	out := make([]syncCommand, len(b.cmds))
	copy(out, b.cmds)
	b.cmds = b.cmds[:0]
	return out
}

// WaitForSignal blocks until there are commands ready to drain.
func (b *syncBuffer) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		<-b.signal
		return drainSyncMsg{}
	}
}

// NotificationBuffer buffers notifications published from any goroutine
// and emits coalesced drain signals into the Update loop.
type NotificationBuffer struct {
	mu            sync.Mutex
	notifications []notify.Notification
	signal        chan struct{}
}

// NewNotificationBuffer constructs a buffer for async notification delivery.
func NewNotificationBuffer() *NotificationBuffer {
	return &NotificationBuffer{signal: make(chan struct{}, 1)}
}

// Push appends a notification and emits a non-blocking drain signal.
func (b *NotificationBuffer) Push(n notify.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	b.mu.Lock()
	b.notifications = append(b.notifications, n)
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Drain returns all buffered notifications and clears the buffer.
func (b *NotificationBuffer) Drain() []notify.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.notifications) == 0 {
		return nil
	}
	out := make([]notify.Notification, len(b.notifications))
	copy(out, b.notifications)
	b.notifications = b.notifications[:0]
	return out
}

// WaitForSignal blocks until there are notifications ready to drain.
func (b *NotificationBuffer) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		<-b.signal
		return drainNotificationsMsg{}
	}
}
