package store

import "errors"

// MaxSaveAttempts bounds the evict-and-retry loop of a single save.
const MaxSaveAttempts = 100

// SaveTx is the transaction-scoped view a backend hands to SaveWithEviction.
// All calls happen inside one transaction so evictions are never visible
// unless the save commits.
type SaveTx interface {
	// Exists reports whether text is already stored.
	Exists(text string) (bool, error)

	// Put writes the item. A capacity failure must be reported as
	// ErrQuotaExceeded and must leave the transaction usable.
	Put(item *ClipItem) error

	// EvictOldest deletes the oldest non-favorite item other than except.
	// Returns ErrRemoveFailed when there is none.
	EvictOldest(except string) (*ClipItem, error)
}

// SaveResult describes a successful save.
type SaveResult struct {
	// Created is false when an item with the same text was updated.
	Created bool

	// Evicted lists the items deleted to make room, oldest first.
	Evicted []ClipItem
}

// SaveWithEviction runs the bounded save protocol: write, and on a
// retryable capacity error evict the oldest non-favorite item and write
// again, at most MaxSaveAttempts times.
func SaveWithEviction(tx SaveTx, item *ClipItem) (*SaveResult, error) {
	if err := ValidateText(item.Text); err != nil {
		return nil, err
	}

	exists, err := tx.Exists(item.Text)
	if err != nil {
		return nil, err
	}
	result := &SaveResult{Created: !exists}

	for range MaxSaveAttempts {
		err := tx.Put(item)
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}

		evicted, err := tx.EvictOldest(item.Text)
		if errors.Is(err, ErrRemoveFailed) {
			return nil, ErrDatabaseFull
		}
		if err != nil {
			return nil, err
		}
		result.Evicted = append(result.Evicted, *evicted)
	}

	return nil, ErrDatabaseFull
}
