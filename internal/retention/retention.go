// Package retention deletes non-favorite clip items older than the
// configured storage duration.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yiblet/clipsync/internal/store"
)

// Duration is how long non-favorite clip items are kept.
type Duration string

const (
	Day     Duration = "day"
	Week    Duration = "week"
	Month   Duration = "month"
	Year    Duration = "year"
	Forever Duration = "forever"
)

// DefaultDuration keeps everything until the user opts into a sweep.
const DefaultDuration = Forever

// DefaultInterval is the period between sweeps.
const DefaultInterval = 24 * time.Hour

// Durations lists every valid duration, shortest first.
var Durations = []Duration{Day, Week, Month, Year, Forever}

// ParseDuration validates s as a Duration.
func ParseDuration(s string) (Duration, error) {
	for _, d := range Durations {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("invalid storage duration %q (want day, week, month, year or forever)", s)
}

// Cutoff returns the timestamp below which items are swept. The second
// result is false for Forever, which never sweeps.
func (d Duration) Cutoff(now time.Time) (time.Time, bool) {
	switch d {
	case Day:
		return now.AddDate(0, 0, -1), true
	case Week:
		return now.AddDate(0, 0, -7), true
	case Month:
		return now.AddDate(0, -1, 0), true
	case Year:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// DurationSource supplies the configured storage duration.
type DurationSource interface {
	StorageDuration() (Duration, error)
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

// WithInterval sets the period between sweeps.
func WithInterval(d time.Duration) Option {
	return func(s *Sweeper) { s.interval = d }
}

// WithLogger sets the logger for background sweep failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sweeper) { s.logger = l }
}

// Sweeper applies the retention policy to a clip store.
type Sweeper struct {
	clips    store.ClipStore
	source   DurationSource
	now      func() time.Time
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a Sweeper over clips, reading the duration from source.
func NewSweeper(clips store.ClipStore, source DurationSource, opts ...Option) *Sweeper {
	s := &Sweeper{
		clips:    clips,
		source:   source,
		now:      time.Now,
		interval: DefaultInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep deletes every non-favorite item older than the configured
// duration. It reports whether anything was deleted.
func (s *Sweeper) Sweep() (bool, error) {
	d, err := s.source.StorageDuration()
	if err != nil {
		return false, fmt.Errorf("failed to read storage duration: %w", err)
	}

	cutoff, ok := d.Cutoff(s.now())
	if !ok {
		return false, nil
	}

	deleted, err := s.clips.DeleteOlderThan(cutoff)
	if err != nil {
		return false, fmt.Errorf("failed to sweep clip items: %w", err)
	}
	if deleted {
		s.logger.Info("Swept old clip items", "duration", d, "cutoff", cutoff)
	}
	return deleted, nil
}

// Run sweeps once, then again every interval until ctx is done. When the
// duration is Forever no timer is scheduled and Run returns immediately.
// Changing the duration takes effect on the next Run. Failed sweeps are
// logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	d, err := s.source.StorageDuration()
	if err != nil {
		return fmt.Errorf("failed to read storage duration: %w", err)
	}
	if d == Forever {
		return nil
	}

	s.sweepLogged()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweepLogged()
		}
	}
}

func (s *Sweeper) sweepLogged() {
	if _, err := s.Sweep(); err != nil {
		s.logger.Warn("Retention sweep failed", "error", err)
	}
}
