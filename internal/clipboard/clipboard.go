// Package clipboard defines the clipboard abstraction used to capture and
// restore clip text. Implementations live in sysboard (the system
// clipboard) and mockboard (tests).
package clipboard

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// ErrUnsupported is returned when no clipboard is available, e.g. on a
// headless machine.
var ErrUnsupported = errors.New("clipboard not supported")

// Clipboard reads, writes and watches text content.
type Clipboard interface {
	// Read returns the current text content. Empty content is not an error.
	Read() ([]byte, error)

	// Write replaces the clipboard content.
	Write(data []byte) error

	// Watch emits the new content on every change until ctx is done, then
	// closes the channel.
	Watch(ctx context.Context) (<-chan []byte, error)
}

// Follow watches board and calls handle for every change carrying
// non-blank text that differs from the previous one. Handler errors are
// logged and do not stop the loop. Follow returns when ctx is done.
func Follow(ctx context.Context, board Clipboard, logger *slog.Logger, handle func(text string) error) error {
	if logger == nil {
		logger = slog.Default()
	}

	changes, err := board.Watch(ctx)
	if err != nil {
		return err
	}

	var last string
	for data := range changes {
		text := string(data)
		if strings.TrimSpace(text) == "" || text == last {
			continue
		}
		last = text

		logger.Debug("Clipboard changed", "bytes", len(data))
		if err := handle(text); err != nil {
			logger.Warn("Failed to record clipboard change", "error", err)
		}
	}
	return ctx.Err()
}
