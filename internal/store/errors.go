package store

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyText is returned when a clip item text or label name is blank.
	ErrEmptyText = errors.New("text is empty")

	// ErrDatabaseFull is returned when a save keeps failing for lack of
	// capacity and no non-favorite item is left to evict.
	ErrDatabaseFull = errors.New("database is full")

	// ErrRemoveFailed is returned when there is no non-favorite item to delete.
	ErrRemoveFailed = errors.New("no removable item")

	// ErrLabelExists is returned when a label name is already taken.
	ErrLabelExists = errors.New("label already exists")

	// ErrNotFound is returned when a clip item or label does not exist.
	ErrNotFound = errors.New("not found")

	// ErrQuotaExceeded is reported by backends when a write fails for lack of
	// space. It is the only retryable error of the save protocol.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrParse matches every *ParseError via errors.Is.
	ErrParse = errors.New("parse failed")
)

// ParseError reports malformed persisted data met during a migration or a
// restore.
type ParseError struct {
	// Source names what was being parsed, e.g. "clips row" or "snapshot".
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrParse) true for any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// NewParseError wraps err as a ParseError for source.
func NewParseError(source string, err error) *ParseError {
	return &ParseError{Source: source, Err: err}
}

// IsRetryable reports whether err is a capacity failure that the save
// protocol may recover from by evicting an item.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}
