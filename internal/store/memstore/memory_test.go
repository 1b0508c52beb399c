package memstore

import (
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/yiblet/clipsync/internal/store"
)

var _ store.Store = (*MemoryStore)(nil)

var base = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return base.Add(time.Duration(minutes) * time.Minute)
}

func save(t *testing.T, s *MemoryStore, item store.ClipItem) {
	t.Helper()
	if err := s.Clips().Save(&item); err != nil {
		t.Fatalf("Save(%q) error: %v", item.Text, err)
	}
}

func listTexts(t *testing.T, s *MemoryStore, opts store.ListOptions) []string {
	t.Helper()
	items, err := s.Clips().List(opts)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Text
	}
	return out
}

// TestMemoryStore_Basic tests basic store creation.
func TestMemoryStore_Basic(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	if s.Clips() == nil || s.Labels() == nil || s.Config() == nil {
		t.Fatal("sub-store accessor returned nil")
	}
	if n, _ := s.Clips().Count(); n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}
}

func TestClipStore_SaveAndGet(t *testing.T) {
	s := NewMemoryStore()

	save(t, s, store.ClipItem{Text: "hello", Date: at(0), Device: "laptop"})
	save(t, s, store.ClipItem{Text: "hello", Date: at(1), Device: "phone", Favorite: true})

	if n, _ := s.Clips().Count(); n != 1 {
		t.Fatalf("Count() = %d, want 1", n)
	}
	item, err := s.Clips().Get("hello")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if item.Device != "phone" || !item.Favorite || !item.Date.Equal(at(1)) {
		t.Errorf("item = %+v", item)
	}

	// returned items are copies
	item.Text = "mutated"
	if ok, _ := s.Clips().Exists("hello"); !ok {
		t.Error("caller mutation leaked into the store")
	}

	if _, err := s.Clips().Get("missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(missing) error = %v", err)
	}
}

func TestClipStore_SaveEmptyText(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Clips().Save(&store.ClipItem{Text: " \n"}); !errors.Is(err, store.ErrEmptyText) {
		t.Errorf("Save() error = %v, want ErrEmptyText", err)
	}
}

func TestClipStore_Eviction(t *testing.T) {
	var events []store.Event
	s := NewMemoryStore(WithMaxItems(3), WithNotifier(store.NotifierFunc(func(e store.Event) {
		events = append(events, e)
	})))

	save(t, s, store.ClipItem{Text: "fav", Date: at(0), Favorite: true})
	save(t, s, store.ClipItem{Text: "old", Date: at(1)})
	save(t, s, store.ClipItem{Text: "new", Date: at(2)})
	save(t, s, store.ClipItem{Text: "incoming", Date: at(3)})

	if got := listTexts(t, s, store.ListOptions{}); !slices.Equal(got, []string{"incoming", "new", "fav"}) {
		t.Errorf("items = %v", got)
	}

	var deleted []string
	for _, e := range events {
		if e.Change == store.ChangeDeleted {
			deleted = append(deleted, e.Texts...)
		}
	}
	if !slices.Equal(deleted, []string{"old"}) {
		t.Errorf("evicted = %v, want [old]", deleted)
	}
}

func TestClipStore_DatabaseFullLeavesStoreUntouched(t *testing.T) {
	s := NewMemoryStore(WithMaxItems(2))
	save(t, s, store.ClipItem{Text: "f1", Date: at(0), Favorite: true})
	save(t, s, store.ClipItem{Text: "f2", Date: at(1), Favorite: true})

	err := s.Clips().Save(&store.ClipItem{Text: "x", Date: at(2)})
	if !errors.Is(err, store.ErrDatabaseFull) {
		t.Fatalf("Save() error = %v, want ErrDatabaseFull", err)
	}
	if got := listTexts(t, s, store.ListOptions{}); !slices.Equal(got, []string{"f2", "f1"}) {
		t.Errorf("items = %v", got)
	}
}

func TestClipStore_RecordKeepsMarks(t *testing.T) {
	s := NewMemoryStore()
	work, err := s.Labels().Add("work")
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	save(t, s, store.ClipItem{Text: "x", Date: at(0), Favorite: true, LabelIDs: []uint{work.ID}})

	item := store.ClipItem{Text: "x", Date: at(5), Device: "phone"}
	if err := s.Clips().Record(&item); err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	got, _ := s.Clips().Get("x")
	if !got.Favorite || !slices.Equal(got.LabelIDs, []uint{work.ID}) {
		t.Errorf("marks lost: %+v", got)
	}
	if !got.Date.Equal(at(5)) || got.Device != "phone" {
		t.Errorf("fields not updated: %+v", got)
	}

	// Save overwrites marks
	save(t, s, store.ClipItem{Text: "x", Date: at(6)})
	if got, _ := s.Clips().Get("x"); got.Favorite || len(got.LabelIDs) != 0 {
		t.Errorf("Save kept marks: %+v", got)
	}
}

func TestClipStore_ListFilters(t *testing.T) {
	s := NewMemoryStore()
	label, _ := s.Labels().Add("code")

	save(t, s, store.ClipItem{Text: "SELECT 1", Date: at(0), LabelIDs: []uint{label.ID}})
	save(t, s, store.ClipItem{Text: "hello", Date: at(1), Favorite: true})
	save(t, s, store.ClipItem{Text: "select me", Date: at(2)})

	tests := []struct {
		name string
		opts store.ListOptions
		want []string
	}{
		{"all", store.ListOptions{}, []string{"select me", "hello", "SELECT 1"}},
		{"limit", store.ListOptions{Limit: 1}, []string{"select me"}},
		{"favorites", store.ListOptions{FavoritesOnly: true}, []string{"hello"}},
		{"label", store.ListOptions{LabelID: label.ID}, []string{"SELECT 1"}},
		{"query", store.ListOptions{Query: "Select"}, []string{"select me", "SELECT 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := listTexts(t, s, tt.opts); !slices.Equal(got, tt.want) {
				t.Errorf("List() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClipStore_Deletes(t *testing.T) {
	s := NewMemoryStore()
	save(t, s, store.ClipItem{Text: "fav", Date: at(-100), Favorite: true})
	save(t, s, store.ClipItem{Text: "ancient", Date: at(-100)})
	save(t, s, store.ClipItem{Text: "older", Date: at(-50)})
	save(t, s, store.ClipItem{Text: "recent", Date: at(10)})

	removed, err := s.Clips().DeleteOldestNonFavorite()
	if err != nil || removed.Text != "ancient" {
		t.Fatalf("DeleteOldestNonFavorite() = %+v, %v", removed, err)
	}

	deleted, err := s.Clips().DeleteOlderThan(at(0))
	if err != nil || !deleted {
		t.Fatalf("DeleteOlderThan() = %v, %v", deleted, err)
	}
	if got := listTexts(t, s, store.ListOptions{}); !slices.Equal(got, []string{"recent", "fav"}) {
		t.Errorf("items = %v", got)
	}

	if err := s.Clips().Delete("recent", "recent", "missing"); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
	if _, err := s.Clips().DeleteOldestNonFavorite(); !errors.Is(err, store.ErrRemoveFailed) {
		t.Errorf("DeleteOldestNonFavorite() error = %v, want ErrRemoveFailed", err)
	}
}

func TestLabelStore_Cascades(t *testing.T) {
	s := NewMemoryStore()
	a, _ := s.Labels().Add("A")
	b, _ := s.Labels().Add("B")

	if _, err := s.Labels().Add("A"); !errors.Is(err, store.ErrLabelExists) {
		t.Errorf("duplicate Add() error = %v", err)
	}

	save(t, s, store.ClipItem{Text: "x", Date: at(0), LabelIDs: []uint{a.ID, b.ID}})

	snapBefore, _ := s.Export()

	if _, err := s.Labels().Rename(*a, "B"); !errors.Is(err, store.ErrLabelExists) {
		t.Errorf("clashing Rename() error = %v", err)
	}
	if _, err := s.Labels().Rename(*a, "Alpha"); err != nil {
		t.Fatalf("Rename() error: %v", err)
	}

	item, _ := s.Clips().Get("x")
	if item.Labels[0].Name != "Alpha" {
		t.Errorf("rename did not cascade: %+v", item.Labels)
	}
	if snapBefore.ClipItems[0].Labels[0].Name != "A" {
		t.Error("rename mutated an exported snapshot")
	}

	if err := s.Labels().Delete(*b); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	item, _ = s.Clips().Get("x")
	if !slices.Equal(item.LabelIDs, []uint{a.ID}) || len(item.Labels) != 1 {
		t.Errorf("delete did not cascade: %+v", item)
	}
	if err := s.Labels().Delete(*b); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestStore_ExportReplace(t *testing.T) {
	s := NewMemoryStore()
	save(t, s, store.ClipItem{Text: "old", Date: at(0)})

	snap := &store.Snapshot{
		Labels:    []store.Label{{ID: 5, Name: "work"}},
		ClipItems: []store.ClipItem{{Text: "new", Date: at(1), LabelIDs: []uint{5, 8}}},
	}
	if err := s.Replace(snap); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}

	out, _ := s.Export()
	if len(out.ClipItems) != 1 || out.ClipItems[0].Text != "new" {
		t.Fatalf("items = %+v", out.ClipItems)
	}
	if !slices.Equal(out.ClipItems[0].LabelIDs, []uint{5}) {
		t.Errorf("dangling label id kept: %v", out.ClipItems[0].LabelIDs)
	}

	next, _ := s.Labels().Add("home")
	if next.ID != 6 {
		t.Errorf("next label id = %d, want 6", next.ID)
	}

	// invalid snapshot leaves content untouched
	err := s.Replace(&store.Snapshot{ClipItems: []store.ClipItem{{Text: ""}}})
	if !errors.Is(err, store.ErrEmptyText) {
		t.Errorf("Replace(invalid) error = %v", err)
	}
	if ok, _ := s.Clips().Exists("new"); !ok {
		t.Error("failed replace modified the store")
	}
}

func TestStore_ReplaceRejectsDuplicates(t *testing.T) {
	tests := []struct {
		name string
		snap *store.Snapshot
	}{
		{
			name: "duplicate label id",
			snap: &store.Snapshot{Labels: []store.Label{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}}},
		},
		{
			name: "duplicate clip text",
			snap: &store.Snapshot{ClipItems: []store.ClipItem{
				{Text: "x", Date: at(1), Favorite: true},
				{Text: "x", Date: at(2)},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemoryStore()
			save(t, s, store.ClipItem{Text: "keep", Date: at(0)})
			if _, err := s.Labels().Add("home"); err != nil {
				t.Fatalf("Add() error: %v", err)
			}

			if err := s.Replace(tt.snap); err == nil {
				t.Fatal("Replace() succeeded, want error")
			}

			out, _ := s.Export()
			if len(out.ClipItems) != 1 || out.ClipItems[0].Text != "keep" {
				t.Errorf("items changed: %+v", out.ClipItems)
			}
			if len(out.Labels) != 1 || out.Labels[0].Name != "home" {
				t.Errorf("labels changed: %+v", out.Labels)
			}
		})
	}
}

func TestConfigStore(t *testing.T) {
	s := NewMemoryStore()
	c := s.Config()

	if err := c.Set("auto_backup", "true"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if v, _ := c.Get("auto_backup"); v != "true" {
		t.Errorf("Get() = %q", v)
	}
	all, _ := c.List()
	all["auto_backup"] = "false"
	if v, _ := c.Get("auto_backup"); v != "true" {
		t.Error("List() result aliases the store")
	}
	if err := c.Delete("auto_backup"); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
	if _, err := c.Get("auto_backup"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() after delete error = %v", err)
	}
}

// TestMemoryStore_Concurrent exercises the store from many goroutines; run with -race.
func TestMemoryStore_Concurrent(t *testing.T) {
	s := NewMemoryStore(WithMaxItems(50))

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				item := store.ClipItem{Text: string(rune('a'+g)) + string(rune('0'+i%10)), Date: at(i)}
				if err := s.Clips().Save(&item); err != nil {
					t.Errorf("Save() error: %v", err)
					return
				}
				s.Clips().List(store.ListOptions{Limit: 5})
			}
		}()
	}
	wg.Wait()

	if n, _ := s.Clips().Count(); n > 50 {
		t.Errorf("Count() = %d exceeds limit", n)
	}
}
