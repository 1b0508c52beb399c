package settings

import (
	"testing"

	"github.com/google/uuid"
	"github.com/yiblet/clipsync/internal/retention"
	"github.com/yiblet/clipsync/internal/store/memstore"
)

func newSettings() *Settings {
	return New(memstore.NewMemoryStore().Config())
}

func TestDefaults(t *testing.T) {
	s := newSettings()

	d, err := s.StorageDuration()
	if err != nil {
		t.Fatalf("StorageDuration() error = %v", err)
	}
	if d != retention.Forever {
		t.Errorf("StorageDuration() = %v, want forever", d)
	}

	on, err := s.AutoBackup()
	if err != nil || on {
		t.Errorf("AutoBackup() = %v, %v, want false", on, err)
	}
	in, err := s.SignedIn()
	if err != nil || in {
		t.Errorf("SignedIn() = %v, %v, want false", in, err)
	}
	id, err := s.BackupBlobID()
	if err != nil || id != "" {
		t.Errorf("BackupBlobID() = %q, %v, want empty", id, err)
	}
}

func TestTypedSetters(t *testing.T) {
	s := newSettings()

	for name, set := range map[string]func() error{
		"duration":    func() error { return s.SetStorageDuration(retention.Week) },
		"auto backup": func() error { return s.SetAutoBackup(true) },
		"signed in":   func() error { return s.SetSignedIn(true) },
		"blob id":     func() error { return s.SetBackupBlobID("blob-1") },
	} {
		if err := set(); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}

	if d, _ := s.StorageDuration(); d != retention.Week {
		t.Errorf("StorageDuration() = %v, want week", d)
	}
	if on, _ := s.AutoBackup(); !on {
		t.Error("AutoBackup() = false, want true")
	}
	if in, _ := s.SignedIn(); !in {
		t.Error("SignedIn() = false, want true")
	}
	if id, _ := s.BackupBlobID(); id != "blob-1" {
		t.Errorf("BackupBlobID() = %q, want blob-1", id)
	}
}

func TestSetValidates(t *testing.T) {
	s := newSettings()

	tests := []struct {
		key, value string
		wantErr    bool
	}{
		{KeyStorageDuration, "month", false},
		{KeyStorageDuration, "decade", true},
		{KeyAutoBackup, "true", false},
		{KeyAutoBackup, "sometimes", true},
		{KeySignedIn, "0", false},
		{KeyDeviceSerial, "not-a-uuid", true},
		{KeyDeviceSerial, uuid.NewString(), false},
		{"theme", "dark", true},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := s.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Set(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestDeviceSerialIsStable(t *testing.T) {
	st := memstore.NewMemoryStore()

	first, err := New(st.Config()).DeviceSerial()
	if err != nil {
		t.Fatalf("DeviceSerial() error = %v", err)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Errorf("serial %q is not a uuid: %v", first, err)
	}

	second, err := New(st.Config()).DeviceSerial()
	if err != nil {
		t.Fatalf("DeviceSerial() error = %v", err)
	}
	if first != second {
		t.Errorf("serial changed from %q to %q", first, second)
	}
}

func TestList(t *testing.T) {
	s := newSettings()
	if err := s.SetAutoBackup(true); err != nil {
		t.Fatalf("SetAutoBackup() error = %v", err)
	}

	all, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != len(Keys()) {
		t.Errorf("List() has %d keys, want %d", len(all), len(Keys()))
	}
	if all[KeyAutoBackup] != "true" {
		t.Errorf("auto_backup = %q, want true", all[KeyAutoBackup])
	}
	if all[KeyStorageDuration] != "forever" {
		t.Errorf("storage_duration = %q, want forever", all[KeyStorageDuration])
	}
	if all[KeyDeviceSerial] == "" {
		t.Error("device_serial is empty")
	}

	if _, err := s.Get("unknown"); err == nil {
		t.Error("Get(unknown) expected error")
	}
}
