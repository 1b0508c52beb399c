// Package memstore provides an in-memory implementation of the store interfaces.
// This implementation is designed for fast unit testing and does not persist data.
package memstore

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/yiblet/clipsync/internal/store"
)

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithMaxItems caps the number of stored clip items. Saving a new item
// beyond the cap reports store.ErrQuotaExceeded, which triggers eviction.
func WithMaxItems(n int) Option {
	return func(m *MemoryStore) { m.maxItems = n }
}

// WithNotifier sets the receiver of structural-change events.
func WithNotifier(n store.Notifier) Option {
	return func(m *MemoryStore) { m.notifier = n }
}

// MemoryStore is an in-memory implementation of store.Store.
// A single mutex guards all state; multi-step writes work on a copy that
// is swapped in only on success, so a failed write changes nothing.
// Data is not persisted and exists only for the lifetime of the process.
type MemoryStore struct {
	mu          sync.RWMutex
	items       map[string]store.ClipItem
	labels      map[uint]store.Label
	nextLabelID uint
	config      map[string]string

	maxItems int
	notifier store.Notifier
}

// NewMemoryStore creates a new in-memory store for testing.
func NewMemoryStore(opts ...Option) *MemoryStore {
	m := &MemoryStore{
		items:       make(map[string]store.ClipItem),
		labels:      make(map[uint]store.Label),
		nextLabelID: 1,
		config:      make(map[string]string),
		notifier:    store.NopNotifier{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Clips returns the clip item store.
func (m *MemoryStore) Clips() store.ClipStore {
	return (*memoryClipStore)(m)
}

// Labels returns the label store.
func (m *MemoryStore) Labels() store.LabelStore {
	return (*memoryLabelStore)(m)
}

// Config returns the config store.
func (m *MemoryStore) Config() store.ConfigStore {
	return (*memoryConfigStore)(m)
}

// Close releases resources (no-op for memory store).
func (m *MemoryStore) Close() error {
	return nil
}

// Export returns every label (by id) and clip item (newest first).
func (m *MemoryStore) Export() (*store.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := &store.Snapshot{
		Labels:    m.sortedLabels(),
		ClipItems: make([]store.ClipItem, 0, len(m.items)),
	}
	for _, item := range m.sortedItems() {
		snap.ClipItems = append(snap.ClipItems, item.Clone())
	}
	return snap, nil
}

// Replace swaps the whole store content for the snapshot.
func (m *MemoryStore) Replace(snap *store.Snapshot) error {
	if snap == nil {
		snap = &store.Snapshot{}
	}
	if m.maxItems > 0 && len(snap.ClipItems) > m.maxItems {
		return fmt.Errorf("failed to replace store: %w: %d items exceed limit %d",
			store.ErrQuotaExceeded, len(snap.ClipItems), m.maxItems)
	}

	labels := make(map[uint]store.Label, len(snap.Labels))
	var maxID uint
	for _, l := range snap.Labels {
		if err := store.ValidateText(l.Name); err != nil {
			return fmt.Errorf("failed to replace store: invalid label %d: %w", l.ID, err)
		}
		if _, dup := labels[l.ID]; dup {
			return fmt.Errorf("failed to replace store: duplicate label id %d", l.ID)
		}
		for _, other := range labels {
			if other.Name == l.Name {
				return fmt.Errorf("failed to replace store: label %q: %w", l.Name, store.ErrLabelExists)
			}
		}
		labels[l.ID] = l
		maxID = max(maxID, l.ID)
	}

	items := make(map[string]store.ClipItem, len(snap.ClipItems))
	for i := range snap.ClipItems {
		if err := store.ValidateText(snap.ClipItems[i].Text); err != nil {
			return fmt.Errorf("failed to replace store: invalid clip item at %d: %w", i, err)
		}
		if _, dup := items[snap.ClipItems[i].Text]; dup {
			return fmt.Errorf("failed to replace store: duplicate clip item %q", snap.ClipItems[i].Text)
		}
		item := withLabels(&snap.ClipItems[i], labels)
		items[item.Text] = item
	}

	m.mu.Lock()
	m.items = items
	m.labels = labels
	m.nextLabelID = maxID + 1
	m.mu.Unlock()

	m.notifier.Notify(store.Event{Entity: store.EntityAll, Change: store.ChangeReplaced})
	return nil
}

// sortedItems returns items newest first, ties broken by text.
// Caller must hold the lock.
func (m *MemoryStore) sortedItems() []store.ClipItem {
	items := slices.Collect(maps.Values(m.items))
	slices.SortFunc(items, func(a, b store.ClipItem) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return strings.Compare(a.Text, b.Text)
	})
	return items
}

// sortedLabels returns labels ordered by id. Caller must hold the lock.
func (m *MemoryStore) sortedLabels() []store.Label {
	labels := slices.Collect(maps.Values(m.labels))
	slices.SortFunc(labels, func(a, b store.Label) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return labels
}

// withLabels returns a copy of item whose label views are rebuilt from
// labels. Unknown ids are dropped.
func withLabels(item *store.ClipItem, labels map[uint]store.Label) store.ClipItem {
	ids := slices.Clone(item.LabelIDs)
	for _, l := range item.Labels {
		if !slices.Contains(ids, l.ID) {
			ids = append(ids, l.ID)
		}
	}

	out := item.Clone()
	out.Labels = nil
	out.LabelIDs = nil
	for _, id := range ids {
		if l, ok := labels[id]; ok {
			out.AddLabel(l)
		}
	}
	return out
}

// memoryClipStore implements store.ClipStore.
type memoryClipStore MemoryStore

// memoryTx stages a save against a copy of the item map.
type memoryTx struct {
	items    map[string]store.ClipItem
	labels   map[uint]store.Label
	maxItems int
	saved    store.ClipItem
}

func (t *memoryTx) Exists(text string) (bool, error) {
	_, ok := t.items[text]
	return ok, nil
}

func (t *memoryTx) Put(item *store.ClipItem) error {
	if _, ok := t.items[item.Text]; !ok && t.maxItems > 0 && len(t.items) >= t.maxItems {
		return fmt.Errorf("%w: item limit %d reached", store.ErrQuotaExceeded, t.maxItems)
	}
	t.saved = withLabels(item, t.labels)
	t.items[item.Text] = t.saved
	return nil
}

func (t *memoryTx) EvictOldest(except string) (*store.ClipItem, error) {
	oldest, ok := oldestNonFavorite(t.items, except)
	if !ok {
		return nil, store.ErrRemoveFailed
	}
	delete(t.items, oldest.Text)
	return &oldest, nil
}

func oldestNonFavorite(items map[string]store.ClipItem, except string) (store.ClipItem, bool) {
	var oldest store.ClipItem
	found := false
	for _, item := range items {
		if item.Favorite || item.Text == except {
			continue
		}
		if !found || item.Date.Before(oldest.Date) ||
			(item.Date.Equal(oldest.Date) && item.Text < oldest.Text) {
			oldest = item
			found = true
		}
	}
	return oldest, found
}

// Save upserts the item, evicting old items while the store is full.
func (c *memoryClipStore) Save(item *store.ClipItem) error {
	return c.save(item, false)
}

// Record upserts the item, keeping the marks of an existing item.
func (c *memoryClipStore) Record(item *store.ClipItem) error {
	return c.save(item, true)
}

func (c *memoryClipStore) save(item *store.ClipItem, keepMarks bool) error {
	if err := store.ValidateText(item.Text); err != nil {
		return err
	}

	c.mu.Lock()
	if existing, ok := c.items[item.Text]; ok && keepMarks {
		prev := existing.Clone()
		item.Favorite = prev.Favorite
		item.Labels = prev.Labels
		item.LabelIDs = prev.LabelIDs
	}
	tx := &memoryTx{
		items:    maps.Clone(c.items),
		labels:   c.labels,
		maxItems: c.maxItems,
	}
	result, err := store.SaveWithEviction(tx, item)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to save clip item: %w", err)
	}
	c.items = tx.items
	c.mu.Unlock()

	for _, evicted := range result.Evicted {
		c.notifier.Notify(store.Event{
			Entity: store.EntityClipItem,
			Change: store.ChangeDeleted,
			Texts:  []string{evicted.Text},
		})
	}
	change := store.ChangeUpdated
	if result.Created {
		change = store.ChangeCreated
	}
	saved := tx.saved.Clone()
	c.notifier.Notify(store.Event{Entity: store.EntityClipItem, Change: change, Item: &saved})
	return nil
}

// Exists reports whether an item with this text is stored.
func (c *memoryClipStore) Exists(text string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[text]
	return ok, nil
}

// Get retrieves a single item by text.
func (c *memoryClipStore) Get(text string) (*store.ClipItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[text]
	if !ok {
		return nil, fmt.Errorf("clip item %q: %w", text, store.ErrNotFound)
	}
	out := item.Clone()
	return &out, nil
}

// List returns items ordered by date (newest first).
func (c *memoryClipStore) List(opts store.ListOptions) ([]*store.ClipItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	query := strings.ToLower(opts.Query)
	var out []*store.ClipItem
	for _, item := range (*MemoryStore)(c).sortedItems() {
		if opts.FavoritesOnly && !item.Favorite {
			continue
		}
		if opts.LabelID != 0 && !item.HasLabel(opts.LabelID) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(item.Text), query) {
			continue
		}
		cp := item.Clone()
		out = append(out, &cp)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

// Delete removes items by text; missing keys are ignored.
func (c *memoryClipStore) Delete(texts ...string) error {
	c.mu.Lock()
	var deleted []string
	for _, text := range texts {
		if _, ok := c.items[text]; ok {
			delete(c.items, text)
			deleted = append(deleted, text)
		}
	}
	c.mu.Unlock()

	if len(deleted) > 0 {
		c.notifier.Notify(store.Event{Entity: store.EntityClipItem, Change: store.ChangeDeleted, Texts: deleted})
	}
	return nil
}

// DeleteOldestNonFavorite removes the oldest non-favorite item.
func (c *memoryClipStore) DeleteOldestNonFavorite() (*store.ClipItem, error) {
	c.mu.Lock()
	oldest, ok := oldestNonFavorite(c.items, "")
	if ok {
		delete(c.items, oldest.Text)
	}
	c.mu.Unlock()

	if !ok {
		return nil, store.ErrRemoveFailed
	}
	c.notifier.Notify(store.Event{
		Entity: store.EntityClipItem,
		Change: store.ChangeDeleted,
		Texts:  []string{oldest.Text},
	})
	return &oldest, nil
}

// DeleteOlderThan removes non-favorite items dated before t.
func (c *memoryClipStore) DeleteOlderThan(t time.Time) (bool, error) {
	c.mu.Lock()
	var deleted []string
	for text, item := range c.items {
		if !item.Favorite && item.Date.Before(t) {
			delete(c.items, text)
			deleted = append(deleted, text)
		}
	}
	c.mu.Unlock()

	if len(deleted) == 0 {
		return false, nil
	}
	slices.Sort(deleted)
	c.notifier.Notify(store.Event{Entity: store.EntityClipItem, Change: store.ChangeDeleted, Texts: deleted})
	return true, nil
}

// Count returns the total number of items.
func (c *memoryClipStore) Count() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items), nil
}

// memoryLabelStore implements store.LabelStore.
type memoryLabelStore MemoryStore

func (l *memoryLabelStore) findByName(name string) (store.Label, bool) {
	for _, label := range l.labels {
		if label.Name == name {
			return label, true
		}
	}
	return store.Label{}, false
}

// Add creates a new label.
func (l *memoryLabelStore) Add(name string) (*store.Label, error) {
	if err := store.ValidateText(name); err != nil {
		return nil, err
	}

	l.mu.Lock()
	if _, ok := l.findByName(name); ok {
		l.mu.Unlock()
		return nil, fmt.Errorf("label %q: %w", name, store.ErrLabelExists)
	}
	label := store.Label{ID: l.nextLabelID, Name: name}
	l.labels[label.ID] = label
	l.nextLabelID++
	l.mu.Unlock()

	l.notifier.Notify(store.Event{Entity: store.EntityLabel, Change: store.ChangeCreated, Label: &label})
	return &label, nil
}

// List returns all labels ordered by id.
func (l *memoryLabelStore) List() ([]store.Label, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return (*MemoryStore)(l).sortedLabels(), nil
}

// Get retrieves a label by id.
func (l *memoryLabelStore) Get(id uint) (*store.Label, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	label, ok := l.labels[id]
	if !ok {
		return nil, fmt.Errorf("label %d: %w", id, store.ErrNotFound)
	}
	return &label, nil
}

// GetByName retrieves a label by name.
func (l *memoryLabelStore) GetByName(name string) (*store.Label, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	label, ok := l.findByName(name)
	if !ok {
		return nil, fmt.Errorf("label %s: %w", name, store.ErrNotFound)
	}
	return &label, nil
}

// Rename changes the label name and cascades it into referencing items.
func (l *memoryLabelStore) Rename(label store.Label, newName string) (*store.Label, error) {
	if err := store.ValidateText(newName); err != nil {
		return nil, err
	}

	l.mu.Lock()
	current, ok := l.labels[label.ID]
	if !ok {
		l.mu.Unlock()
		return nil, fmt.Errorf("label %d: %w", label.ID, store.ErrNotFound)
	}
	if current.Name == newName {
		l.mu.Unlock()
		return &current, nil
	}
	if other, ok := l.findByName(newName); ok && other.ID != label.ID {
		l.mu.Unlock()
		return nil, fmt.Errorf("label %q: %w", newName, store.ErrLabelExists)
	}

	renamed := store.Label{ID: label.ID, Name: newName}
	l.labels[label.ID] = renamed
	for text, item := range l.items {
		if item.HasLabel(label.ID) {
			item = item.Clone()
			item.RenameLabel(label.ID, newName)
			l.items[text] = item
		}
	}
	l.mu.Unlock()

	l.notifier.Notify(store.Event{Entity: store.EntityLabel, Change: store.ChangeUpdated, Label: &renamed})
	return &renamed, nil
}

// Delete removes the label and detaches it from referencing items.
func (l *memoryLabelStore) Delete(label store.Label) error {
	l.mu.Lock()
	current, ok := l.labels[label.ID]
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("label %d: %w", label.ID, store.ErrNotFound)
	}

	delete(l.labels, label.ID)
	for text, item := range l.items {
		if item.HasLabel(label.ID) {
			item = item.Clone()
			item.RemoveLabel(label.ID)
			l.items[text] = item
		}
	}
	l.mu.Unlock()

	l.notifier.Notify(store.Event{Entity: store.EntityLabel, Change: store.ChangeDeleted, Label: &current})
	return nil
}

// memoryConfigStore implements store.ConfigStore.
type memoryConfigStore MemoryStore

// Get retrieves a configuration value by key.
func (c *memoryConfigStore) Get(key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.config[key]
	if !ok {
		return "", fmt.Errorf("config key %s: %w", key, store.ErrNotFound)
	}
	return value, nil
}

// Set stores a configuration value.
func (c *memoryConfigStore) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config[key] = value
	return nil
}

// List returns all configuration key-value pairs.
func (c *memoryConfigStore) List() (map[string]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.config), nil
}

// Delete removes a configuration key.
func (c *memoryConfigStore) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.config[key]; !ok {
		return fmt.Errorf("config key %s: %w", key, store.ErrNotFound)
	}
	delete(c.config, key)
	return nil
}
