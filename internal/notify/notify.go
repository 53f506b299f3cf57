// Package notify carries user-facing notices (the admin UI's toasts) from
// background operations back to whoever renders them.
package notify

import (
	"sync"
	"time"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a single user-facing message.
type Notice struct {
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Dispatcher accepts notices. Implementations must be safe for concurrent use.
type Dispatcher interface {
	Notify(level Level, message string)
}

// DispatcherFunc adapts a plain function to Dispatcher.
type DispatcherFunc func(level Level, message string)

func (f DispatcherFunc) Notify(level Level, message string) {
	f(level, message)
}

// Inbox buffers notices until they are drained by the next read of the view.
// Oldest notices are dropped once capacity is reached.
type Inbox struct {
	mu       sync.Mutex
	notices  []Notice
	capacity int
	now      func() time.Time
}

// NewInbox creates an Inbox holding at most capacity notices.
func NewInbox(capacity int) *Inbox {
	if capacity < 1 {
		capacity = 1
	}
	return &Inbox{capacity: capacity, now: time.Now}
}

func (b *Inbox) Notify(level Level, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.notices = append(b.notices, Notice{Level: level, Message: message, CreatedAt: b.now().UTC()})
	if over := len(b.notices) - b.capacity; over > 0 {
		b.notices = b.notices[over:]
	}
}

// Drain returns pending notices oldest first and empties the inbox.
func (b *Inbox) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	drained := b.notices
	b.notices = nil
	if drained == nil {
		drained = make([]Notice, 0)
	}
	return drained
}
