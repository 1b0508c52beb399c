// Package backup sequences backup, restore and sync of the clip store
// against a blob storage target.
//
// Every operation is all-or-nothing with respect to the local store:
// Restore and Sync only touch it through store.Store.Replace, which is
// atomic. Superseded remote blobs are deleted best-effort after the new
// blob is recorded.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/yiblet/clipsync/internal/blob"
	"github.com/yiblet/clipsync/internal/codec"
	"github.com/yiblet/clipsync/internal/merge"
	"github.com/yiblet/clipsync/internal/store"
)

// BlobName names every backup blob; it is also the List scope.
const BlobName = "clipsync-backup"

var (
	ErrNotSignedIn    = errors.New("not signed in")
	ErrBackupDisabled = errors.New("backup not enabled")
	ErrNoData         = errors.New("no data to back up")
	ErrNoBlobID       = errors.New("no backup id available")
	ErrInProgress     = errors.New("another backup operation is in progress")
)

// Settings is the subset of persisted settings the orchestrator reads
// and writes.
type Settings interface {
	SignedIn() (bool, error)
	AutoBackup() (bool, error)
	BackupBlobID() (string, error)
	SetBackupBlobID(id string) error
	DeviceSerial() (string, error)
}

// Device identifies this installation in blob metadata.
type Device struct {
	Model    string
	OS       string
	Serial   string
	Nickname string
}

// Tags returns the metadata tags written on upload.
func (d Device) Tags() map[string]string {
	return map[string]string{
		"model":    d.Model,
		"os":       d.OS,
		"serial":   d.Serial,
		"nickname": d.Nickname,
	}
}

// DeviceFromTags is the inverse of Device.Tags.
func DeviceFromTags(tags map[string]string) Device {
	return Device{
		Model:    tags["model"],
		OS:       tags["os"],
		Serial:   tags["serial"],
		Nickname: tags["nickname"],
	}
}

// Info describes a backup blob.
type Info struct {
	blob.Info
	Device Device

	// Mine is true when the backup was written by this device.
	Mine bool

	// Current is true for the blob recorded as this device's latest backup.
	Current bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDevice sets the device description. An empty Serial is filled from
// Settings.DeviceSerial.
func WithDevice(d Device) Option {
	return func(o *Orchestrator) { o.device = d }
}

// WithLogger sets the logger for best-effort failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// Orchestrator runs backup operations. At most one operation runs at a
// time; a concurrent call fails with ErrInProgress.
type Orchestrator struct {
	store    store.Store
	blobs    blob.Store
	codec    codec.Codec
	settings Settings
	device   Device
	logger   *slog.Logger

	mu sync.Mutex
}

// New creates an Orchestrator.
func New(st store.Store, blobs blob.Store, c codec.Codec, s Settings, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    st,
		blobs:    blobs,
		codec:    c,
		settings: s,
		device:   Device{Model: runtime.GOARCH, OS: runtime.GOOS},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// run serializes operations and prefixes errors with the operation name.
func (o *Orchestrator) run(op string, fn func() error) error {
	if !o.mu.TryLock() {
		return fmt.Errorf("failed to %s: %w", op, ErrInProgress)
	}
	defer o.mu.Unlock()

	if err := fn(); err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return nil
}

// Backup uploads a snapshot of the store and records it as the latest
// backup. The previous backup is deleted best-effort.
func (o *Orchestrator) Backup(ctx context.Context) (string, error) {
	var id string
	err := o.run("backup", func() error {
		var err error
		id, err = o.backup(ctx)
		return err
	})
	return id, err
}

// AutoBackup runs Backup when the auto_backup setting is on and fails with
// ErrBackupDisabled otherwise.
func (o *Orchestrator) AutoBackup(ctx context.Context) (string, error) {
	var id string
	err := o.run("backup", func() error {
		on, err := o.settings.AutoBackup()
		if err != nil {
			return err
		}
		if !on {
			return ErrBackupDisabled
		}
		id, err = o.backup(ctx)
		return err
	})
	return id, err
}

func (o *Orchestrator) backup(ctx context.Context) (string, error) {
	if err := o.requireSignedIn(); err != nil {
		return "", err
	}

	snap, err := o.store.Export()
	if err != nil {
		return "", err
	}
	if snap.Empty() {
		return "", ErrNoData
	}

	return o.upload(ctx, snap)
}

// Restore replaces the store content with backup id, or with the recorded
// latest backup when id is empty. Malformed payloads fail with a
// store.ParseError before the store is touched.
func (o *Orchestrator) Restore(ctx context.Context, id string) error {
	return o.run("restore", func() error {
		if err := o.requireSignedIn(); err != nil {
			return err
		}

		snap, err := o.download(ctx, id)
		if err != nil {
			return err
		}
		return o.store.Replace(snap)
	})
}

// Sync merges backup id (or the recorded latest backup when id is empty)
// into the store and uploads the merged result as the new latest backup.
//
// If the local replace fails nothing is uploaded. If the upload fails the
// local store keeps the merged content and the error is returned.
func (o *Orchestrator) Sync(ctx context.Context, id string) (string, error) {
	var newID string
	err := o.run("sync", func() error {
		if err := o.requireSignedIn(); err != nil {
			return err
		}

		remote, err := o.download(ctx, id)
		if err != nil {
			return err
		}
		local, err := o.store.Export()
		if err != nil {
			return err
		}

		merged := merge.Merge(local, remote)
		if merged.Empty() {
			return ErrNoData
		}
		if err := o.store.Replace(merged); err != nil {
			return err
		}

		newID, err = o.upload(ctx, merged)
		return err
	})
	return newID, err
}

// ListBackups returns every backup blob, newest first.
func (o *Orchestrator) ListBackups(ctx context.Context) ([]Info, error) {
	var infos []Info
	err := o.run("list backups", func() error {
		if err := o.requireSignedIn(); err != nil {
			return err
		}
		device, err := o.deviceInfo()
		if err != nil {
			return err
		}
		current, err := o.settings.BackupBlobID()
		if err != nil {
			return err
		}

		blobs, err := o.blobs.List(ctx, BlobName)
		if err != nil {
			return err
		}
		for _, b := range blobs {
			d := DeviceFromTags(b.Tags)
			infos = append(infos, Info{
				Info:    b,
				Device:  d,
				Mine:    d.Serial == device.Serial,
				Current: b.ID == current,
			})
		}
		return nil
	})
	return infos, err
}

func (o *Orchestrator) requireSignedIn() error {
	in, err := o.settings.SignedIn()
	if err != nil {
		return err
	}
	if !in {
		return ErrNotSignedIn
	}
	return nil
}

func (o *Orchestrator) deviceInfo() (Device, error) {
	d := o.device
	if d.Serial == "" {
		serial, err := o.settings.DeviceSerial()
		if err != nil {
			return d, err
		}
		d.Serial = serial
	}
	return d, nil
}

// download fetches and decodes a backup. An empty id means the recorded
// latest backup.
func (o *Orchestrator) download(ctx context.Context, id string) (*store.Snapshot, error) {
	if id == "" {
		recorded, err := o.settings.BackupBlobID()
		if err != nil {
			return nil, err
		}
		if recorded == "" {
			return nil, ErrNoBlobID
		}
		id = recorded
	}

	data, err := o.blobs.Download(ctx, id)
	if err != nil {
		return nil, err
	}
	raw, err := o.codec.Decompress(data)
	if err != nil {
		return nil, store.NewParseError("backup payload", err)
	}
	snap, err := codec.DecodeSnapshot(raw)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// upload encodes and stores snap, records it as the latest backup and
// deletes the previously recorded one.
func (o *Orchestrator) upload(ctx context.Context, snap *store.Snapshot) (string, error) {
	device, err := o.deviceInfo()
	if err != nil {
		return "", err
	}

	raw, err := codec.EncodeSnapshot(snap)
	if err != nil {
		return "", err
	}
	data, err := o.codec.Compress(raw)
	if err != nil {
		return "", fmt.Errorf("failed to compress snapshot: %w", err)
	}

	old, err := o.settings.BackupBlobID()
	if err != nil {
		return "", err
	}

	id, err := o.blobs.Upload(ctx, BlobName, device.Tags(), data)
	if err != nil {
		return "", err
	}
	if err := o.settings.SetBackupBlobID(id); err != nil {
		if derr := o.blobs.Delete(ctx, id); derr != nil {
			o.logger.Warn("Failed to delete unrecorded backup", "id", id, "error", derr)
		}
		return "", fmt.Errorf("failed to record backup id %s: %w", id, err)
	}

	if old != "" && old != id {
		if err := o.blobs.Delete(ctx, old); err != nil {
			o.logger.Warn("Failed to delete superseded backup", "id", old, "error", err)
		}
	}

	o.logger.Info("Uploaded backup", "id", id, "labels", len(snap.Labels), "items", len(snap.ClipItems))
	return id, nil
}
