// Package settings is a typed view over the user settings persisted in the
// store's config table.
package settings

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/google/uuid"
	"github.com/yiblet/clipsync/internal/retention"
	"github.com/yiblet/clipsync/internal/store"
)

// Setting keys.
const (
	KeyStorageDuration = "storage_duration"
	KeyAutoBackup      = "auto_backup"
	KeySignedIn        = "signed_in"
	KeyBackupBlobID    = "backup_blob_id"
	KeyDeviceSerial    = "device_serial"
)

// defaults for keys that have one. backup_blob_id and device_serial have
// none: the first is unset until a backup succeeds, the second is
// generated on first read.
var defaults = map[string]string{
	KeyStorageDuration: string(retention.DefaultDuration),
	KeyAutoBackup:      "false",
	KeySignedIn:        "false",
}

// validators check user-supplied values before they are stored.
var validators = map[string]func(string) error{
	KeyStorageDuration: func(v string) error {
		_, err := retention.ParseDuration(v)
		return err
	},
	KeyAutoBackup: validateBool,
	KeySignedIn:   validateBool,
	KeyBackupBlobID: func(string) error {
		return nil
	},
	KeyDeviceSerial: func(v string) error {
		if _, err := uuid.Parse(v); err != nil {
			return fmt.Errorf("invalid device serial %q: %w", v, err)
		}
		return nil
	},
}

func validateBool(v string) error {
	if _, err := strconv.ParseBool(v); err != nil {
		return fmt.Errorf("invalid boolean %q", v)
	}
	return nil
}

// Keys returns every known setting key, sorted.
func Keys() []string {
	return slices.Sorted(maps.Keys(validators))
}

// Settings reads and writes typed settings through a store.ConfigStore.
type Settings struct {
	cfg store.ConfigStore
}

// New wraps cfg.
func New(cfg store.ConfigStore) *Settings {
	return &Settings{cfg: cfg}
}

// Get returns the value of key, falling back to its default.
// Unknown keys are an error.
func (s *Settings) Get(key string) (string, error) {
	if _, ok := validators[key]; !ok {
		return "", fmt.Errorf("unknown setting: %s", key)
	}
	if key == KeyDeviceSerial {
		return s.DeviceSerial()
	}
	return s.get(key)
}

func (s *Settings) get(key string) (string, error) {
	v, err := s.cfg.Get(key)
	if errors.Is(err, store.ErrNotFound) {
		return defaults[key], nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return v, nil
}

// Set validates and stores value for key.
func (s *Settings) Set(key, value string) error {
	validate, ok := validators[key]
	if !ok {
		return fmt.Errorf("unknown setting: %s", key)
	}
	if err := validate(value); err != nil {
		return err
	}
	if err := s.cfg.Set(key, value); err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// List returns every known setting with defaults applied.
func (s *Settings) List() (map[string]string, error) {
	out := make(map[string]string, len(validators))
	for _, key := range Keys() {
		v, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// StorageDuration returns the retention duration.
func (s *Settings) StorageDuration() (retention.Duration, error) {
	v, err := s.get(KeyStorageDuration)
	if err != nil {
		return "", err
	}
	return retention.ParseDuration(v)
}

// SetStorageDuration stores the retention duration.
func (s *Settings) SetStorageDuration(d retention.Duration) error {
	return s.Set(KeyStorageDuration, string(d))
}

// AutoBackup reports whether automatic backups are enabled.
func (s *Settings) AutoBackup() (bool, error) {
	return s.getBool(KeyAutoBackup)
}

// SetAutoBackup enables or disables automatic backups.
func (s *Settings) SetAutoBackup(on bool) error {
	return s.Set(KeyAutoBackup, strconv.FormatBool(on))
}

// SignedIn reports whether the user is signed in to the backup target.
func (s *Settings) SignedIn() (bool, error) {
	return s.getBool(KeySignedIn)
}

// SetSignedIn records the sign-in state.
func (s *Settings) SetSignedIn(on bool) error {
	return s.Set(KeySignedIn, strconv.FormatBool(on))
}

// BackupBlobID returns the id of the latest backup, or "" if none.
func (s *Settings) BackupBlobID() (string, error) {
	return s.get(KeyBackupBlobID)
}

// SetBackupBlobID records the id of the latest backup.
func (s *Settings) SetBackupBlobID(id string) error {
	return s.Set(KeyBackupBlobID, id)
}

// DeviceSerial returns this installation's serial, generating and storing
// a new one on first use.
func (s *Settings) DeviceSerial() (string, error) {
	v, err := s.get(KeyDeviceSerial)
	if err != nil {
		return "", err
	}
	if v != "" {
		return v, nil
	}

	serial := uuid.NewString()
	if err := s.cfg.Set(KeyDeviceSerial, serial); err != nil {
		return "", fmt.Errorf("failed to write setting %s: %w", KeyDeviceSerial, err)
	}
	return serial, nil
}

func (s *Settings) getBool(key string) (bool, error) {
	v, err := s.get(key)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("setting %s: invalid boolean %q", key, v)
	}
	return b, nil
}
