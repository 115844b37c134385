package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a non-blocking, user-visible message.
type Notification struct {
	Seq       int64     `json:"seq"`
	Level     Level     `json:"level"`
	Op        string    `json:"op,omitempty"`
	OpID      string    `json:"opId,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	Message   string    `json:"message"`
	Time      time.Time `json:"time"`
}

// Notifier receives notifications. Implementations must not block.
type Notifier interface {
	Notify(n Notification)
}

// LogNotifier writes notifications to the default slog logger.
type LogNotifier struct{}

func (LogNotifier) Notify(n Notification) {
	level := slog.LevelInfo
	switch n.Level {
	case LevelWarning:
		level = slog.LevelWarn
	case LevelError:
		level = slog.LevelError
	}
	slog.Log(context.Background(), level, n.Message,
		"component", "engine",
		"action", "notify",
		"op", n.Op,
		"op_id", n.OpID,
		"request_id", n.RequestID,
	)
}

// Feed keeps the most recent notifications in memory for polling clients.
type Feed struct {
	mu    sync.Mutex
	items []Notification
	max   int
	seq   int64
}

// NewFeed creates a feed holding at most max notifications.
func NewFeed(max int) *Feed {
	if max <= 0 {
		max = 100
	}
	return &Feed{max: max}
}

func (f *Feed) Notify(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	n.Seq = f.seq
	f.items = append(f.items, n)
	if len(f.items) > f.max {
		f.items = append([]Notification(nil), f.items[len(f.items)-f.max:]...)
	}
}

// Since returns the retained notifications with Seq greater than after.
func (f *Feed) Since(after int64) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []Notification{}
	for _, n := range f.items {
		if n.Seq > after {
			out = append(out, n)
		}
	}
	return out
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(n Notification) {
	for _, x := range m {
		x.Notify(n)
	}
}
