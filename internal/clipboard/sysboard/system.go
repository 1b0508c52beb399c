// Package sysboard implements the system clipboard on top of
// golang.design/x/clipboard. Only text content is handled.
package sysboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/yiblet/clipsync/internal/clipboard"
	xclipboard "golang.design/x/clipboard"
)

// SystemClipboard implements clipboard.Clipboard for the desktop
// clipboard. The underlying library is initialized on first use.
type SystemClipboard struct {
	once    sync.Once
	initErr error
}

var _ clipboard.Clipboard = (*SystemClipboard)(nil)

// New creates a SystemClipboard.
func New() *SystemClipboard {
	return &SystemClipboard{}
}

func (s *SystemClipboard) init() error {
	s.once.Do(func() {
		if err := xclipboard.Init(); err != nil {
			s.initErr = fmt.Errorf("%w: %v", clipboard.ErrUnsupported, err)
		}
	})
	return s.initErr
}

// IsSupported reports whether the system clipboard could be initialized.
func (s *SystemClipboard) IsSupported() bool {
	return s.init() == nil
}

// Read returns the current text content.
func (s *SystemClipboard) Read() ([]byte, error) {
	if err := s.init(); err != nil {
		return nil, err
	}
	return xclipboard.Read(xclipboard.FmtText), nil
}

// Write replaces the clipboard text.
func (s *SystemClipboard) Write(data []byte) error {
	if err := s.init(); err != nil {
		return err
	}
	xclipboard.Write(xclipboard.FmtText, data)
	return nil
}

// Watch emits text content on every change until ctx is done.
func (s *SystemClipboard) Watch(ctx context.Context) (<-chan []byte, error) {
	if err := s.init(); err != nil {
		return nil, err
	}
	return xclipboard.Watch(ctx, xclipboard.FmtText), nil
}
