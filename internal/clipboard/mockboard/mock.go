// Package mockboard provides an in-memory clipboard for tests.
package mockboard

import (
	"bytes"
	"context"
	"sync"
)

// watchBuffer is the per-watcher queue size; changes beyond it are dropped.
const watchBuffer = 16

// MockClipboard implements clipboard.Clipboard in memory. Writes are
// delivered to every active watcher.
type MockClipboard struct {
	mu       sync.Mutex
	data     []byte
	watchers map[chan []byte]struct{}
}

// New creates an empty MockClipboard.
func New() *MockClipboard {
	return &MockClipboard{watchers: make(map[chan []byte]struct{})}
}

// Read returns a copy of the current content.
func (m *MockClipboard) Read() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return bytes.Clone(m.data), nil
}

// Write replaces the content and notifies watchers.
func (m *MockClipboard) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = bytes.Clone(data)
	for ch := range m.watchers {
		select {
		case ch <- bytes.Clone(data):
		default:
		}
	}
	return nil
}

// Watch registers a watcher that is closed when ctx is done.
func (m *MockClipboard) Watch(ctx context.Context) (<-chan []byte, error) {
	ch := make(chan []byte, watchBuffer)

	m.mu.Lock()
	m.watchers[ch] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.watchers, ch)
		close(ch)
		m.mu.Unlock()
	}()
	return ch, nil
}

// Watchers returns the number of active watchers.
func (m *MockClipboard) Watchers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.watchers)
}
