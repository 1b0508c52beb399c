// Package notify fans store events out to in-process listeners.
package notify

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/yiblet/clipsync/internal/store"
)

// Listener receives events. It runs synchronously on the goroutine that
// committed the change.
type Listener func(store.Event)

// Bus is a store.Notifier that delivers every event to all subscribed
// listeners. A panicking listener is logged and skipped; it never fails
// the store operation or starves the other listeners.
type Bus struct {
	mu        sync.RWMutex
	listeners map[int]Listener
	nextID    int
	logger    *slog.Logger
}

var _ store.Notifier = (*Bus)(nil)

// NewBus creates an empty bus. A nil logger uses slog.Default().
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{listeners: make(map[int]Listener), logger: logger}
}

// Subscribe registers l and returns a function that unregisters it.
func (b *Bus) Subscribe(l Listener) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = l
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Notify delivers e to every listener in subscription order.
func (b *Bus) Notify(e store.Event) {
	b.mu.RLock()
	ids := make([]int, 0, len(b.listeners))
	for id := range b.listeners {
		ids = append(ids, id)
	}
	listeners := make([]Listener, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		listeners = append(listeners, b.listeners[id])
	}
	b.mu.RUnlock()

	for _, l := range listeners {
		b.deliver(l, e)
	}
}

func (b *Bus) deliver(l Listener, e store.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("Event listener panicked", "entity", e.Entity, "change", e.Change, "panic", r)
		}
	}()
	l(e)
}
