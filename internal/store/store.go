// Package store defines the storage interfaces for clipsync's persistence
// layer. It provides abstractions for clip items, labels and settings, plus
// the snapshot export/replace pair used by backup and sync.
package store

import "time"

// ClipStore manages clip item persistence.
type ClipStore interface {
	// Save inserts the item or updates the item with the same text in place.
	// Returns ErrEmptyText for blank text. When the backend runs out of
	// capacity the oldest non-favorite item is evicted and the write retried
	// inside the same transaction; ErrDatabaseFull is returned once nothing
	// is left to evict.
	Save(item *ClipItem) error

	// Record saves item like Save, except that an existing item with the
	// same text keeps its favorite flag and labels. The lookup and the
	// write share one transaction. item is updated to what was stored.
	Record(item *ClipItem) error

	// Exists reports whether an item with this text is stored.
	Exists(text string) (bool, error)

	// Get retrieves a single item by text.
	// Returns ErrNotFound if the item does not exist.
	Get(text string) (*ClipItem, error)

	// List returns items ordered by date, newest first.
	List(opts ListOptions) ([]*ClipItem, error)

	// Delete removes items by text. Missing keys are ignored.
	Delete(texts ...string) error

	// DeleteOldestNonFavorite removes the non-favorite item with the
	// smallest date and returns it. Returns ErrRemoveFailed if there is none.
	DeleteOldestNonFavorite() (*ClipItem, error)

	// DeleteOlderThan removes every non-favorite item dated before t.
	// It reports whether anything was deleted.
	DeleteOlderThan(t time.Time) (bool, error)

	// Count returns the total number of items.
	Count() (int, error)
}

// LabelStore manages labels. Renames and deletes cascade into every clip
// item referencing the label, inside one transaction.
type LabelStore interface {
	// Add creates a label and assigns its id.
	// Returns ErrEmptyText or ErrLabelExists.
	Add(name string) (*Label, error)

	// List returns all labels ordered by id.
	List() ([]Label, error)

	// Get retrieves a label by id.
	Get(id uint) (*Label, error)

	// GetByName retrieves a label by its unique name.
	GetByName(name string) (*Label, error)

	// Rename changes the label name and updates every referencing item.
	Rename(label Label, newName string) (*Label, error)

	// Delete removes the label and detaches it from every referencing item.
	Delete(label Label) error
}

// ConfigStore manages persisted settings as key-value pairs.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns ErrNotFound if the key does not exist.
	Get(key string) (string, error)

	// Set stores a configuration value, replacing any previous one.
	Set(key, value string) error

	// List returns all configuration key-value pairs.
	List() (map[string]string, error)

	// Delete removes a configuration key.
	Delete(key string) error
}

// Store combines the clip, label and config stores and owns their
// lifecycle as a single unit.
type Store interface {
	Clips() ClipStore
	Labels() LabelStore
	Config() ConfigStore

	// Export returns a snapshot of every label and clip item.
	Export() (*Snapshot, error)

	// Replace deletes every label and clip item and inserts the snapshot
	// content in one transaction. On failure nothing changes.
	Replace(snap *Snapshot) error

	// Close releases all resources.
	Close() error
}
