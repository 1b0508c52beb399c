package dbstore

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yiblet/clipsync/internal/store"
	"gorm.io/gorm"
)

// recorder collects store events for assertions
type recorder struct {
	mu     sync.Mutex
	events []store.Event
}

func (r *recorder) Notify(e store.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []store.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T, opts ...Option) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLiteStore(dbPath, opts...)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return baseTime.Add(time.Duration(minutes) * time.Minute)
}

func mustSave(t *testing.T, st store.Store, item store.ClipItem) {
	t.Helper()
	if err := st.Clips().Save(&item); err != nil {
		t.Fatalf("Save(%q) error = %v", item.Text, err)
	}
}

func texts(items []*store.ClipItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Text
	}
	return out
}

func TestNewSQLiteStore(t *testing.T) {
	st := setupTestDB(t)

	version, err := st.Config().Get("db_version")
	if err != nil {
		t.Fatalf("failed to get db_version: %v", err)
	}
	if version != "4" {
		t.Errorf("expected db_version=4, got %s", version)
	}

	count, err := st.Clips().Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty store, got %d items", count)
	}
}

func TestNewSQLiteStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	st, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	mustSave(t, st, store.ClipItem{Text: "kept", Date: at(0)})
	st.Close()

	st, err = NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer st.Close()

	if ok, _ := st.Clips().Exists("kept"); !ok {
		t.Error("expected item to survive reopen")
	}
}

func TestClipStore_SaveUpsertsByText(t *testing.T) {
	rec := &recorder{}
	st := setupTestDB(t, WithNotifier(rec))

	mustSave(t, st, store.ClipItem{Text: "hello", Date: at(0), Device: "laptop"})
	mustSave(t, st, store.ClipItem{Text: "hello", Date: at(5), Device: "phone", Remote: true, Favorite: true})

	count, _ := st.Clips().Count()
	if count != 1 {
		t.Fatalf("expected 1 item after re-save, got %d", count)
	}

	item, err := st.Clips().Get("hello")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !item.Date.Equal(at(5)) || item.Device != "phone" || !item.Remote || !item.Favorite {
		t.Errorf("item not updated in place: %+v", item)
	}

	events := rec.all()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Change != store.ChangeCreated || events[1].Change != store.ChangeUpdated {
		t.Errorf("unexpected change kinds: %s, %s", events[0].Change, events[1].Change)
	}
}

func TestClipStore_SaveRejectsBlankText(t *testing.T) {
	rec := &recorder{}
	st := setupTestDB(t, WithNotifier(rec))
	mustSave(t, st, store.ClipItem{Text: "existing", Date: at(0)})

	for _, text := range []string{"", "   ", "\n\t "} {
		err := st.Clips().Save(&store.ClipItem{Text: text, Date: at(1)})
		if !errors.Is(err, store.ErrEmptyText) {
			t.Errorf("Save(%q) error = %v, want ErrEmptyText", text, err)
		}
	}

	count, _ := st.Clips().Count()
	if count != 1 {
		t.Errorf("store modified by rejected saves: %d items", count)
	}
	if len(rec.all()) != 1 {
		t.Errorf("rejected saves emitted events")
	}
}

func TestClipStore_SaveEvictsOldestNonFavorite(t *testing.T) {
	rec := &recorder{}
	st := setupTestDB(t, WithMaxItems(3), WithNotifier(rec))

	mustSave(t, st, store.ClipItem{Text: "fav-oldest", Date: at(0), Favorite: true})
	mustSave(t, st, store.ClipItem{Text: "old", Date: at(1)})
	mustSave(t, st, store.ClipItem{Text: "new", Date: at(2)})

	mustSave(t, st, store.ClipItem{Text: "incoming", Date: at(3)})

	items, err := st.Clips().List(store.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	got := texts(items)
	want := []string{"incoming", "new", "fav-oldest"}
	if !slices.Equal(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}

	var deleted []string
	for _, e := range rec.all() {
		if e.Change == store.ChangeDeleted {
			deleted = append(deleted, e.Texts...)
		}
	}
	if !slices.Equal(deleted, []string{"old"}) {
		t.Errorf("evicted = %v, want [old]", deleted)
	}
}

func TestClipStore_SaveUpdateAtCapacityDoesNotEvict(t *testing.T) {
	st := setupTestDB(t, WithMaxItems(2))

	mustSave(t, st, store.ClipItem{Text: "a", Date: at(0)})
	mustSave(t, st, store.ClipItem{Text: "b", Date: at(1)})
	mustSave(t, st, store.ClipItem{Text: "a", Date: at(2)})

	count, _ := st.Clips().Count()
	if count != 2 {
		t.Errorf("expected 2 items, got %d", count)
	}
}

func TestClipStore_SaveDatabaseFull(t *testing.T) {
	st := setupTestDB(t, WithMaxItems(2))

	mustSave(t, st, store.ClipItem{Text: "fav1", Date: at(0), Favorite: true})
	mustSave(t, st, store.ClipItem{Text: "fav2", Date: at(1), Favorite: true})

	err := st.Clips().Save(&store.ClipItem{Text: "more", Date: at(2)})
	if !errors.Is(err, store.ErrDatabaseFull) {
		t.Fatalf("Save() error = %v, want ErrDatabaseFull", err)
	}

	items, _ := st.Clips().List(store.ListOptions{})
	if !slices.Equal(texts(items), []string{"fav2", "fav1"}) {
		t.Errorf("favorites were touched: %v", texts(items))
	}
}

func TestClipStore_SaveEvictsOnPageLimit(t *testing.T) {
	const maxPages = 40
	bulky := func(i int) string {
		return fmt.Sprintf("%04d ", i) + strings.Repeat("x", 3000)
	}

	st := setupTestDB(t, WithMaxPages(maxPages))
	mustSave(t, st, store.ClipItem{Text: "pinned", Date: at(0), Favorite: true})

	const saves = 200
	for i := 1; i <= saves; i++ {
		mustSave(t, st, store.ClipItem{Text: bulky(i), Date: at(i)})
	}

	count, err := st.Clips().Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count <= 1 || count >= maxPages {
		t.Errorf("count = %d, want bounded by the page limit", count)
	}
	if ok, _ := st.Clips().Exists("pinned"); !ok {
		t.Error("favorite was evicted")
	}
	if ok, _ := st.Clips().Exists(bulky(saves)); !ok {
		t.Error("newest item missing")
	}
	if ok, _ := st.Clips().Exists(bulky(1)); ok {
		t.Error("oldest item survived")
	}

	// with nothing evictable the store reports full
	favs := setupTestDB(t, WithMaxPages(maxPages))
	var saveErr error
	for i := 0; i < saves && saveErr == nil; i++ {
		saveErr = favs.Clips().Save(&store.ClipItem{Text: bulky(i), Date: at(i), Favorite: true})
	}
	if !errors.Is(saveErr, store.ErrDatabaseFull) {
		t.Fatalf("Save() error = %v, want ErrDatabaseFull", saveErr)
	}
}

func TestClipStore_SaveDropsUnknownLabels(t *testing.T) {
	st := setupTestDB(t)

	work, err := st.Labels().Add("work")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	mustSave(t, st, store.ClipItem{
		Text:     "tagged",
		Date:     at(0),
		LabelIDs: []uint{work.ID, 999},
	})

	item, _ := st.Clips().Get("tagged")
	if !slices.Equal(item.LabelIDs, []uint{work.ID}) {
		t.Errorf("LabelIDs = %v, want [%d]", item.LabelIDs, work.ID)
	}
	if len(item.Labels) != 1 || item.Labels[0].Name != "work" {
		t.Errorf("Labels = %+v", item.Labels)
	}
}

func TestClipStore_RecordKeepsMarks(t *testing.T) {
	st := setupTestDB(t)
	work, err := st.Labels().Add("work")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	mustSave(t, st, store.ClipItem{Text: "x", Date: at(0), Favorite: true, LabelIDs: []uint{work.ID}})

	item := store.ClipItem{Text: "x", Date: at(5), Device: "phone", Remote: true}
	if err := st.Clips().Record(&item); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if !item.Favorite || !slices.Equal(item.LabelIDs, []uint{work.ID}) {
		t.Errorf("Record() did not report kept marks: %+v", item)
	}

	got, err := st.Clips().Get("x")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Favorite || !slices.Equal(got.LabelIDs, []uint{work.ID}) {
		t.Errorf("marks lost: %+v", got)
	}
	if !got.Date.Equal(at(5)) || got.Device != "phone" || !got.Remote {
		t.Errorf("fields not updated: %+v", got)
	}

	// a new text is stored as given
	fresh := store.ClipItem{Text: "y", Date: at(6), Favorite: true}
	if err := st.Clips().Record(&fresh); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if got, _ := st.Clips().Get("y"); got == nil || !got.Favorite {
		t.Errorf("new item = %+v", got)
	}
}

func TestClipStore_GetNotFound(t *testing.T) {
	st := setupTestDB(t)

	if _, err := st.Clips().Get("missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	ok, err := st.Clips().Exists("missing")
	if err != nil || ok {
		t.Errorf("Exists() = %v, %v", ok, err)
	}
}

func TestClipStore_List(t *testing.T) {
	st := setupTestDB(t)
	label, _ := st.Labels().Add("code")

	mustSave(t, st, store.ClipItem{Text: "SELECT 1", Date: at(0), LabelIDs: []uint{label.ID}})
	mustSave(t, st, store.ClipItem{Text: "hello world", Date: at(1), Favorite: true})
	mustSave(t, st, store.ClipItem{Text: "100% done", Date: at(2)})
	mustSave(t, st, store.ClipItem{Text: "select me", Date: at(3)})

	tests := []struct {
		name string
		opts store.ListOptions
		want []string
	}{
		{name: "all newest first", opts: store.ListOptions{}, want: []string{"select me", "100% done", "hello world", "SELECT 1"}},
		{name: "limit", opts: store.ListOptions{Limit: 2}, want: []string{"select me", "100% done"}},
		{name: "favorites", opts: store.ListOptions{FavoritesOnly: true}, want: []string{"hello world"}},
		{name: "label", opts: store.ListOptions{LabelID: label.ID}, want: []string{"SELECT 1"}},
		{name: "query case insensitive", opts: store.ListOptions{Query: "select"}, want: []string{"select me", "SELECT 1"}},
		{name: "query escapes wildcards", opts: store.ListOptions{Query: "0%"}, want: []string{"100% done"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := st.Clips().List(tt.opts)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if got := texts(items); !slices.Equal(got, tt.want) {
				t.Errorf("List() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClipStore_DeleteIsIdempotent(t *testing.T) {
	rec := &recorder{}
	st := setupTestDB(t, WithNotifier(rec))
	mustSave(t, st, store.ClipItem{Text: "a", Date: at(0)})
	mustSave(t, st, store.ClipItem{Text: "b", Date: at(1)})

	if err := st.Clips().Delete("a", "missing"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := st.Clips().Delete("a"); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}

	items, _ := st.Clips().List(store.ListOptions{})
	if !slices.Equal(texts(items), []string{"b"}) {
		t.Errorf("items = %v", texts(items))
	}

	deletes := 0
	for _, e := range rec.all() {
		if e.Change == store.ChangeDeleted {
			deletes++
			if !slices.Equal(e.Texts, []string{"a"}) {
				t.Errorf("delete event texts = %v", e.Texts)
			}
		}
	}
	if deletes != 1 {
		t.Errorf("expected 1 delete event, got %d", deletes)
	}
}

func TestClipStore_DeleteOldestNonFavorite(t *testing.T) {
	st := setupTestDB(t)

	if _, err := st.Clips().DeleteOldestNonFavorite(); !errors.Is(err, store.ErrRemoveFailed) {
		t.Fatalf("empty store error = %v, want ErrRemoveFailed", err)
	}

	mustSave(t, st, store.ClipItem{Text: "fav", Date: at(0), Favorite: true})
	mustSave(t, st, store.ClipItem{Text: "older", Date: at(1)})
	mustSave(t, st, store.ClipItem{Text: "newer", Date: at(2)})

	removed, err := st.Clips().DeleteOldestNonFavorite()
	if err != nil {
		t.Fatalf("DeleteOldestNonFavorite() error = %v", err)
	}
	if removed.Text != "older" {
		t.Errorf("removed %q, want older", removed.Text)
	}

	st.Clips().Delete("newer")
	if _, err := st.Clips().DeleteOldestNonFavorite(); !errors.Is(err, store.ErrRemoveFailed) {
		t.Errorf("favorites only error = %v, want ErrRemoveFailed", err)
	}
}

func TestClipStore_DeleteOlderThanKeepsFavorites(t *testing.T) {
	st := setupTestDB(t)

	mustSave(t, st, store.ClipItem{Text: "ancient fav", Date: at(-1000), Favorite: true})
	mustSave(t, st, store.ClipItem{Text: "ancient", Date: at(-1000)})
	mustSave(t, st, store.ClipItem{Text: "recent", Date: at(10)})

	deleted, err := st.Clips().DeleteOlderThan(at(0))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if !deleted {
		t.Error("expected deletion")
	}

	items, _ := st.Clips().List(store.ListOptions{})
	if !slices.Equal(texts(items), []string{"recent", "ancient fav"}) {
		t.Errorf("items = %v", texts(items))
	}

	deleted, err = st.Clips().DeleteOlderThan(at(0))
	if err != nil || deleted {
		t.Errorf("second sweep = %v, %v; want false, nil", deleted, err)
	}
}

func TestLabelStore_Add(t *testing.T) {
	st := setupTestDB(t)

	first, err := st.Labels().Add("work")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if first.ID == 0 {
		t.Error("expected assigned id")
	}

	if _, err := st.Labels().Add("work"); !errors.Is(err, store.ErrLabelExists) {
		t.Errorf("duplicate Add() error = %v, want ErrLabelExists", err)
	}
	if _, err := st.Labels().Add("  "); !errors.Is(err, store.ErrEmptyText) {
		t.Errorf("blank Add() error = %v, want ErrEmptyText", err)
	}

	second, _ := st.Labels().Add("home")
	labels, _ := st.Labels().List()
	if len(labels) != 2 || labels[0].ID != first.ID || labels[1].ID != second.ID {
		t.Errorf("labels = %+v", labels)
	}

	byName, err := st.Labels().GetByName("home")
	if err != nil || byName.ID != second.ID {
		t.Errorf("GetByName() = %+v, %v", byName, err)
	}
}

func TestLabelStore_RenameCascades(t *testing.T) {
	st := setupTestDB(t)
	a, _ := st.Labels().Add("A")
	other, _ := st.Labels().Add("other")

	mustSave(t, st, store.ClipItem{Text: "one", Date: at(0), LabelIDs: []uint{a.ID, other.ID}})
	mustSave(t, st, store.ClipItem{Text: "two", Date: at(1), LabelIDs: []uint{a.ID}})
	mustSave(t, st, store.ClipItem{Text: "three", Date: at(2), LabelIDs: []uint{other.ID}})

	renamed, err := st.Labels().Rename(*a, "B")
	if err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if renamed.ID != a.ID || renamed.Name != "B" {
		t.Errorf("renamed = %+v", renamed)
	}

	one, _ := st.Clips().Get("one")
	want := []store.Label{{ID: a.ID, Name: "B"}, {ID: other.ID, Name: "other"}}
	if !slices.Equal(one.Labels, want) {
		t.Errorf("one.Labels = %+v, want %+v", one.Labels, want)
	}
	if !slices.Equal(one.LabelIDs, []uint{a.ID, other.ID}) {
		t.Errorf("one.LabelIDs = %v", one.LabelIDs)
	}

	two, _ := st.Clips().Get("two")
	if len(two.Labels) != 1 || two.Labels[0].Name != "B" {
		t.Errorf("two.Labels = %+v", two.Labels)
	}

	if _, err := st.Labels().Rename(*other, "B"); !errors.Is(err, store.ErrLabelExists) {
		t.Errorf("clashing Rename() error = %v, want ErrLabelExists", err)
	}
	if _, err := st.Labels().Rename(store.Label{ID: 999}, "x"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing Rename() error = %v, want ErrNotFound", err)
	}
}

func TestLabelStore_DeleteCascades(t *testing.T) {
	rec := &recorder{}
	st := setupTestDB(t, WithNotifier(rec))
	a, _ := st.Labels().Add("A")
	b, _ := st.Labels().Add("B")

	mustSave(t, st, store.ClipItem{Text: "both", Date: at(0), LabelIDs: []uint{a.ID, b.ID}})
	mustSave(t, st, store.ClipItem{Text: "only-a", Date: at(1), LabelIDs: []uint{a.ID}})

	if err := st.Labels().Delete(*a); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	for _, text := range []string{"both", "only-a"} {
		item, _ := st.Clips().Get(text)
		if item.HasLabel(a.ID) {
			t.Errorf("%s still references deleted label: %v", text, item.LabelIDs)
		}
		for _, l := range item.Labels {
			if l.ID == a.ID {
				t.Errorf("%s still has label snapshot %+v", text, l)
			}
		}
	}

	both, _ := st.Clips().Get("both")
	if !slices.Equal(both.LabelIDs, []uint{b.ID}) {
		t.Errorf("both.LabelIDs = %v, want [%d]", both.LabelIDs, b.ID)
	}

	if _, err := st.Labels().Get(a.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("deleted label still present: %v", err)
	}

	last := rec.all()[len(rec.all())-1]
	if last.Entity != store.EntityLabel || last.Change != store.ChangeDeleted || last.Label.Name != "A" {
		t.Errorf("last event = %+v", last)
	}
}

func TestStore_ExportReplace(t *testing.T) {
	st := setupTestDB(t)
	work, _ := st.Labels().Add("work")
	mustSave(t, st, store.ClipItem{Text: "old", Date: at(0)})

	snap := &store.Snapshot{
		Labels: []store.Label{{ID: 7, Name: "home"}, {ID: 9, Name: "work"}},
		ClipItems: []store.ClipItem{
			{Text: "x", Date: at(1), LabelIDs: []uint{7}},
			{Text: "y", Date: at(2), Favorite: true, Device: "phone", LabelIDs: []uint{9, 7}},
		},
	}
	if err := st.Replace(snap); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	out, err := st.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !slices.Equal(out.Labels, snap.Labels) {
		t.Errorf("labels = %+v, want %+v", out.Labels, snap.Labels)
	}
	if len(out.ClipItems) != 2 || out.ClipItems[0].Text != "y" || out.ClipItems[1].Text != "x" {
		t.Fatalf("clip items = %+v", out.ClipItems)
	}
	y := out.ClipItems[0]
	wantLabels := []store.Label{{ID: 9, Name: "work"}, {ID: 7, Name: "home"}}
	if !slices.Equal(y.Labels, wantLabels) || !y.Favorite || y.Device != "phone" {
		t.Errorf("y = %+v", y)
	}

	if byName, err := st.Labels().GetByName("work"); err != nil || byName.ID != 9 {
		t.Errorf("work label = %+v, %v; want id 9 (was %d)", byName, err, work.ID)
	}
}

func TestStore_ReplaceRollsBackOnFailure(t *testing.T) {
	st := setupTestDB(t)
	label, _ := st.Labels().Add("keep")
	mustSave(t, st, store.ClipItem{Text: "one", Date: at(0), LabelIDs: []uint{label.ID}})
	mustSave(t, st, store.ClipItem{Text: "two", Date: at(1), Favorite: true})

	before, err := st.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	failure := errors.New("simulated failure")
	err = st.db.Callback().Create().Before("gorm:create").Register("test:fail_clip_items", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "clip_items" {
			tx.AddError(failure)
		}
	})
	if err != nil {
		t.Fatalf("failed to register callback: %v", err)
	}

	err = st.Replace(&store.Snapshot{
		Labels:    []store.Label{{ID: 1, Name: "new"}},
		ClipItems: []store.ClipItem{{Text: "replacement", Date: at(5)}},
	})
	if !errors.Is(err, failure) {
		t.Fatalf("Replace() error = %v, want simulated failure", err)
	}

	st.db.Callback().Create().Remove("test:fail_clip_items")

	after, err := st.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !slices.Equal(after.Labels, before.Labels) {
		t.Errorf("labels changed: %+v -> %+v", before.Labels, after.Labels)
	}
	if len(after.ClipItems) != len(before.ClipItems) {
		t.Fatalf("clip items changed: %+v -> %+v", before.ClipItems, after.ClipItems)
	}
	for i := range before.ClipItems {
		if after.ClipItems[i].Text != before.ClipItems[i].Text {
			t.Errorf("item %d: %q -> %q", i, before.ClipItems[i].Text, after.ClipItems[i].Text)
		}
	}
}

func TestStore_ReplaceOverCapacity(t *testing.T) {
	st := setupTestDB(t, WithMaxItems(1))
	mustSave(t, st, store.ClipItem{Text: "keep", Date: at(0)})

	err := st.Replace(&store.Snapshot{ClipItems: []store.ClipItem{
		{Text: "a", Date: at(1)},
		{Text: "b", Date: at(2)},
	}})
	if !errors.Is(err, store.ErrQuotaExceeded) {
		t.Fatalf("Replace() error = %v, want ErrQuotaExceeded", err)
	}
	if ok, _ := st.Clips().Exists("keep"); !ok {
		t.Error("original content lost")
	}
}

func TestConfigStore(t *testing.T) {
	st := setupTestDB(t)
	cfg := st.Config()

	if _, err := cfg.Get("missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}

	if err := cfg.Set("storage_duration", "week"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cfg.Set("storage_duration", "month"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	value, err := cfg.Get("storage_duration")
	if err != nil || value != "month" {
		t.Errorf("Get() = %q, %v", value, err)
	}

	all, err := cfg.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if all["storage_duration"] != "month" || all["db_version"] != "4" {
		t.Errorf("List() = %v", all)
	}

	if err := cfg.Delete("storage_duration"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := cfg.Delete("storage_duration"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
