// Package clips holds the clip history operations used by the CLI and the
// clipboard watcher: capturing local copies, accepting pushes from other
// devices and addressing items by their position in the history.
package clips

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/yiblet/clipsync/internal/store"
)

// Manager manages the clip history on top of a store.
type Manager struct {
	store  store.Store
	device string
	now    func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithDevice sets the device name recorded on local copies.
func WithDevice(name string) Option {
	return func(m *Manager) { m.device = name }
}

// WithClock overrides the capture clock.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a manager over s.
func NewManager(s store.Store, opts ...Option) *Manager {
	m := &Manager{store: s, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Copy records text captured on this device. An existing item with the
// same text moves to the top and keeps its favorite flag and labels.
func (m *Manager) Copy(text string) (*store.ClipItem, error) {
	return m.save(store.ClipItem{
		Text:   text,
		Date:   m.now(),
		Device: m.device,
	})
}

// Push is a clip pushed from another device.
type Push struct {
	Text   string `json:"text"`
	Device string `json:"device"`

	// Date is the capture time in Unix milliseconds. Zero means now.
	Date int64 `json:"date"`
}

// Receive records a push message from another device. Malformed payloads
// fail with a *store.ParseError.
func (m *Manager) Receive(payload []byte) (*store.ClipItem, error) {
	var p Push
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, store.NewParseError("push message", err)
	}
	if store.ValidateText(p.Text) != nil {
		return nil, store.NewParseError("push message", errors.New("missing text"))
	}

	date := m.now()
	if p.Date != 0 {
		date = time.UnixMilli(p.Date)
	}
	return m.save(store.ClipItem{
		Text:   p.Text,
		Date:   date,
		Device: p.Device,
		Remote: true,
	})
}

func (m *Manager) save(item store.ClipItem) (*store.ClipItem, error) {
	if err := m.store.Clips().Record(&item); err != nil {
		return nil, err
	}
	return m.store.Clips().Get(item.Text)
}

// List returns items newest first.
func (m *Manager) List(opts store.ListOptions) ([]*store.ClipItem, error) {
	return m.store.Clips().List(opts)
}

// Get returns an item by index (0 = newest).
func (m *Manager) Get(index int) (*store.ClipItem, error) {
	items, err := m.List(store.ListOptions{})
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("index %d out of range (0-%d)", index, len(items)-1)
	}
	return items[index], nil
}

// SetFavorite marks or unmarks the item at index.
func (m *Manager) SetFavorite(index int, favorite bool) (*store.ClipItem, error) {
	return m.update(index, func(item *store.ClipItem) error {
		item.Favorite = favorite
		return nil
	})
}

// Tag attaches the named label to the item at index, creating the label
// if it does not exist yet.
func (m *Manager) Tag(index int, labelName string) (*store.ClipItem, error) {
	label, err := m.store.Labels().GetByName(labelName)
	if errors.Is(err, store.ErrNotFound) {
		label, err = m.store.Labels().Add(labelName)
	}
	if err != nil {
		return nil, err
	}

	return m.update(index, func(item *store.ClipItem) error {
		item.AddLabel(*label)
		return nil
	})
}

// Untag detaches the named label from the item at index.
func (m *Manager) Untag(index int, labelName string) (*store.ClipItem, error) {
	label, err := m.store.Labels().GetByName(labelName)
	if err != nil {
		return nil, err
	}

	return m.update(index, func(item *store.ClipItem) error {
		if !item.RemoveLabel(label.ID) {
			return fmt.Errorf("item %d is not labeled %q", index, labelName)
		}
		return nil
	})
}

func (m *Manager) update(index int, fn func(*store.ClipItem) error) (*store.ClipItem, error) {
	item, err := m.Get(index)
	if err != nil {
		return nil, err
	}
	if err := fn(item); err != nil {
		return nil, err
	}
	if err := m.store.Clips().Save(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes the items at the given indices. All indices are resolved
// against the same listing before anything is deleted.
func (m *Manager) Delete(indices ...int) error {
	items, err := m.List(store.ListOptions{})
	if err != nil {
		return err
	}

	texts := make([]string, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(items) {
			return fmt.Errorf("index %d out of range (0-%d)", i, len(items)-1)
		}
		texts = append(texts, items[i].Text)
	}
	slices.Sort(texts)
	return m.store.Clips().Delete(slices.Compact(texts)...)
}

// Size returns the number of items.
func (m *Manager) Size() (int, error) {
	return m.store.Clips().Count()
}
