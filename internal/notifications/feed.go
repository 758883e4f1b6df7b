package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

// DefaultFeedSize bounds a feed when no size is configured.
const DefaultFeedSize = 50

// Feed buffers the latest notifications of one editing session until the client drains them.
// When full, the oldest entry is dropped.
type Feed struct {
	mu       sync.Mutex
	size     int
	items    []Notification
	detached bool
	now      func() time.Time
}

// NewFeed returns an empty feed holding at most size entries.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{size: size, now: time.Now}
}

func (f *Feed) Notify(_ context.Context, level enums.NotificationLevel, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detached {
		return
	}
	if len(f.items) == f.size {
		f.items = f.items[1:]
	}
	f.items = append(f.items, Notification{
		ID:        uuid.New(),
		Level:     level,
		Message:   message,
		CreatedAt: f.now().UTC(),
	})
}

// Drain returns buffered notifications oldest first and empties the feed.
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.items
	f.items = nil
	if out == nil {
		return []Notification{}
	}
	return out
}

// Pending reports how many notifications are buffered.
func (f *Feed) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Detach stops accepting notifications and drops anything buffered.
func (f *Feed) Detach() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detached = true
	f.items = nil
}
