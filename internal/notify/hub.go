// Package notify delivers change notifications. Hub fans them out to
// in-process watchers, Redis carries them between processes, and Fanout
// sends one notification to several notifiers.
package notify

import (
	"sync"

	"github.com/mesh-intelligence/provider/pkg/types"
)

// WatchBuffer is the channel capacity of each watch. When a watcher falls
// behind, further notifications are dropped: a full channel already tells
// it that something changed.
const WatchBuffer = 16

// Hub implements types.Notifier and types.Watcher in process.
// A watch receives every notification at, below or above its locator: a
// change to /notes reaches a watch on /notes/5 and the reverse.
type Hub struct {
	mu      sync.Mutex
	watches map[*watch]struct{}
}

type watch struct {
	at types.Locator
	ch chan types.Locator
}

var (
	_ types.Notifier = (*Hub)(nil)
	_ types.Watcher  = (*Hub)(nil)
)

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{watches: make(map[*watch]struct{})}
}

// Notify delivers l to every watch whose locator is an ancestor or a
// descendant of l. It never blocks.
func (h *Hub) Notify(l types.Locator) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.watches {
		if !l.IsDescendantOf(w.at) && !w.at.IsDescendantOf(l) {
			continue
		}
		select {
		case w.ch <- l:
		default:
		}
	}
}

// Watch registers a watch at l. The returned function removes it and
// closes the channel; calling it again is a no-op.
func (h *Hub) Watch(l types.Locator) (<-chan types.Locator, func()) {
	w := &watch{at: l, ch: make(chan types.Locator, WatchBuffer)}
	h.mu.Lock()
	h.watches[w] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return w.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.watches, w)
			close(w.ch)
			h.mu.Unlock()
		})
	}
}

// Len returns the number of active watches.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watches)
}
