package store

import (
	"slices"
	"strings"
	"time"
)

// ClipItem is a single captured clipboard entry.
// Text is the identity of the item: two items are the same iff their
// text matches, regardless of date or device.
type ClipItem struct {
	// Text is the clipboard content and the store key.
	Text string

	// Date is the capture time. Used for ordering, eviction and retention.
	Date time.Time

	// Favorite items are never evicted or swept by retention.
	Favorite bool

	// Remote is true when the item was received from another device.
	Remote bool

	// Device is the display name of the originating device.
	Device string

	// Labels holds snapshots of the labels attached to this item.
	Labels []Label

	// LabelIDs mirrors Labels by id. The store keeps both views in sync.
	LabelIDs []uint
}

// Label is a user-defined tag applicable to many clip items.
type Label struct {
	// ID is assigned by the store on first persistence. Zero means unsaved.
	ID uint

	// Name is unique across all labels.
	Name string
}

// Snapshot is a point-in-time export of every label and clip item.
// It is never persisted as its own entity.
type Snapshot struct {
	Labels    []Label
	ClipItems []ClipItem
}

// ListOptions filters ClipStore.List results.
type ListOptions struct {
	// Limit caps the number of results. Zero means no limit.
	Limit int

	// LabelID restricts results to items carrying this label.
	LabelID uint

	// FavoritesOnly restricts results to favorite items.
	FavoritesOnly bool

	// Query is a case-insensitive substring match on the text.
	Query string
}

// ValidateText rejects empty and whitespace-only text.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	return nil
}

// HasLabel reports whether the item references the label id.
func (c *ClipItem) HasLabel(id uint) bool {
	return slices.Contains(c.LabelIDs, id)
}

// AddLabel attaches a label to the item, keeping Labels and LabelIDs in sync.
// Adding a label that is already attached is a no-op.
func (c *ClipItem) AddLabel(l Label) {
	if c.HasLabel(l.ID) {
		return
	}
	c.Labels = append(c.Labels, l)
	c.LabelIDs = append(c.LabelIDs, l.ID)
}

// RemoveLabel detaches the label id from both label views.
// It reports whether anything was removed.
func (c *ClipItem) RemoveLabel(id uint) bool {
	before := len(c.LabelIDs) + len(c.Labels)
	c.Labels = slices.DeleteFunc(c.Labels, func(l Label) bool { return l.ID == id })
	c.LabelIDs = slices.DeleteFunc(c.LabelIDs, func(v uint) bool { return v == id })
	return len(c.LabelIDs)+len(c.Labels) != before
}

// RenameLabel updates the snapshot of label id in place.
// It reports whether the item referenced the label.
func (c *ClipItem) RenameLabel(id uint, name string) bool {
	changed := false
	for i := range c.Labels {
		if c.Labels[i].ID == id {
			c.Labels[i].Name = name
			changed = true
		}
	}
	return changed
}

// Clone returns a deep copy of the item.
func (c ClipItem) Clone() ClipItem {
	c.Labels = slices.Clone(c.Labels)
	c.LabelIDs = slices.Clone(c.LabelIDs)
	return c
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return &Snapshot{}
	}
	out := &Snapshot{
		Labels:    slices.Clone(s.Labels),
		ClipItems: make([]ClipItem, len(s.ClipItems)),
	}
	for i, item := range s.ClipItems {
		out.ClipItems[i] = item.Clone()
	}
	return out
}

// Empty reports whether both halves of the snapshot are empty.
func (s *Snapshot) Empty() bool {
	return s == nil || (len(s.Labels) == 0 && len(s.ClipItems) == 0)
}
