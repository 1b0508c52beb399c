package dbstore

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/yiblet/clipsync/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// batchSize bounds IN lists and batched inserts.
const batchSize = 500

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithMaxItems caps the number of stored clip items. Saving a new item
// beyond the cap fails with store.ErrQuotaExceeded, which triggers eviction.
func WithMaxItems(n int) Option {
	return func(s *SQLiteStore) { s.maxItems = n }
}

// WithMaxPages sets PRAGMA max_page_count. Writes beyond it fail with
// SQLITE_FULL, reported as store.ErrQuotaExceeded.
func WithMaxPages(n int) Option {
	return func(s *SQLiteStore) { s.maxPages = n }
}

// WithNotifier sets the receiver of structural-change events.
func WithNotifier(n store.Notifier) Option {
	return func(s *SQLiteStore) { s.notifier = n }
}

// WithLogger sets the logger used for migrations.
func WithLogger(l *slog.Logger) Option {
	return func(s *SQLiteStore) { s.logger = l }
}

// SQLiteStore is a SQLite-backed implementation of store.Store
type SQLiteStore struct {
	db       *gorm.DB
	dbPath   string
	maxItems int
	maxPages int
	notifier store.Notifier
	logger   *slog.Logger
}

// NewSQLiteStore opens (or creates) the store at dbPath and brings its
// schema up to date.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		dbPath:   dbPath,
		notifier: store.NopNotifier{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	// SQLite has a single writer; one connection keeps pragmas and
	// transactions on the same handle.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if s.maxPages > 0 {
		if err := db.Exec(fmt.Sprintf("PRAGMA max_page_count = %d", s.maxPages)).Error; err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to set page limit: %w", err)
		}
	}

	if err := s.migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return s, nil
}

// Clips returns the clip item store
func (s *SQLiteStore) Clips() store.ClipStore {
	return &sqliteClipStore{s: s}
}

// Labels returns the label store
func (s *SQLiteStore) Labels() store.LabelStore {
	return &sqliteLabelStore{s: s}
}

// Config returns the config store
func (s *SQLiteStore) Config() store.ConfigStore {
	return &sqliteConfigStore{db: s.db}
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Export returns every label (by id) and clip item (newest first).
func (s *SQLiteStore) Export() (*store.Snapshot, error) {
	snap := &store.Snapshot{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var labels []LabelModel
		if err := tx.Order("id ASC").Find(&labels).Error; err != nil {
			return fmt.Errorf("failed to read labels: %w", err)
		}
		var items []*ClipItemModel
		if err := tx.Order("date DESC").Order("text ASC").Find(&items).Error; err != nil {
			return fmt.Errorf("failed to read clip items: %w", err)
		}

		for _, l := range labels {
			snap.Labels = append(snap.Labels, l.ToLabel())
		}
		for _, m := range items {
			snap.ClipItems = append(snap.ClipItems, *m.ToClipItem())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to export snapshot: %w", err)
	}
	return snap, nil
}

// Replace swaps the whole store content for the snapshot in one transaction.
func (s *SQLiteStore) Replace(snap *store.Snapshot) error {
	if snap == nil {
		snap = &store.Snapshot{}
	}
	if s.maxItems > 0 && len(snap.ClipItems) > s.maxItems {
		return fmt.Errorf("failed to replace store: %w: %d items exceed limit %d",
			store.ErrQuotaExceeded, len(snap.ClipItems), s.maxItems)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&ClipItemModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear clip items: %w", err)
		}
		if err := all.Delete(&LabelModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear labels: %w", err)
		}
		return insertSnapshot(tx, snap.Labels, snap.ClipItems)
	})
	if err != nil {
		return fmt.Errorf("failed to replace store: %w", err)
	}

	s.notifier.Notify(store.Event{Entity: store.EntityAll, Change: store.ChangeReplaced})
	return nil
}

// insertSnapshot writes labels with their ids preserved, then clip items
// with label snapshots resolved against the inserted labels.
func insertSnapshot(tx *gorm.DB, labels []store.Label, items []store.ClipItem) error {
	labelModels := make([]LabelModel, 0, len(labels))
	for _, l := range labels {
		if err := store.ValidateText(l.Name); err != nil {
			return fmt.Errorf("invalid label %d: %w", l.ID, err)
		}
		labelModels = append(labelModels, LabelModel{ID: l.ID, Name: l.Name})
	}
	if len(labelModels) > 0 {
		if err := tx.CreateInBatches(labelModels, batchSize).Error; err != nil {
			return translateError(fmt.Errorf("failed to insert labels: %w", err))
		}
	}

	byID := make(map[uint]store.Label, len(labelModels))
	for _, m := range labelModels {
		byID[m.ID] = m.ToLabel()
	}

	itemModels := make([]*ClipItemModel, 0, len(items))
	for i := range items {
		if err := store.ValidateText(items[i].Text); err != nil {
			return fmt.Errorf("invalid clip item at %d: %w", i, err)
		}
		item := withLabels(&items[i], byID)
		itemModels = append(itemModels, newClipItemModel(item))
	}
	if len(itemModels) > 0 {
		if err := tx.CreateInBatches(itemModels, batchSize).Error; err != nil {
			return translateError(fmt.Errorf("failed to insert clip items: %w", err))
		}
	}
	return nil
}

// labelIDsOf returns the ids referenced by either label view of the item,
// LabelIDs first.
func labelIDsOf(item *store.ClipItem) []uint {
	ids := slices.Clone(item.LabelIDs)
	for _, l := range item.Labels {
		if !slices.Contains(ids, l.ID) {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// withLabels returns a copy of item whose label views are rebuilt from
// byID. Unknown ids are dropped.
func withLabels(item *store.ClipItem, byID map[uint]store.Label) *store.ClipItem {
	out := item.Clone()
	out.Labels = nil
	out.LabelIDs = nil
	for _, id := range labelIDsOf(item) {
		if l, ok := byID[id]; ok {
			out.AddLabel(l)
		}
	}
	return &out
}

// translateError maps SQLite capacity failures onto store.ErrQuotaExceeded.
func translateError(err error) error {
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) && sqErr.Code == sqlite3.ErrFull {
		return fmt.Errorf("%w: %v", store.ErrQuotaExceeded, err)
	}
	return err
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqErr sqlite3.Error
	return errors.As(err, &sqErr) && sqErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// sqliteClipStore implements store.ClipStore using SQLite
type sqliteClipStore struct {
	s *SQLiteStore
}

// Save upserts the item, evicting old items while the store is full.
func (c *sqliteClipStore) Save(item *store.ClipItem) error {
	return c.save(item, false)
}

// Record upserts the item, keeping the marks of an existing row.
func (c *sqliteClipStore) Record(item *store.ClipItem) error {
	return c.save(item, true)
}

func (c *sqliteClipStore) save(item *store.ClipItem, keepMarks bool) error {
	if err := store.ValidateText(item.Text); err != nil {
		return err
	}

	var result *store.SaveResult
	stx := &saveTx{maxItems: c.s.maxItems}
	err := c.s.db.Transaction(func(tx *gorm.DB) error {
		stx.tx = tx
		if keepMarks {
			var existing ClipItemModel
			err := tx.Limit(1).Find(&existing, "text = ?", item.Text).Error
			if err != nil {
				return err
			}
			if existing.Text != "" {
				prev := existing.ToClipItem()
				item.Favorite = prev.Favorite
				item.Labels = prev.Labels
				item.LabelIDs = prev.LabelIDs
			}
		}
		res, err := store.SaveWithEviction(stx, item)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save clip item: %w", err)
	}

	for _, evicted := range result.Evicted {
		c.s.notifier.Notify(store.Event{
			Entity: store.EntityClipItem,
			Change: store.ChangeDeleted,
			Texts:  []string{evicted.Text},
		})
	}
	change := store.ChangeUpdated
	if result.Created {
		change = store.ChangeCreated
	}
	c.s.notifier.Notify(store.Event{Entity: store.EntityClipItem, Change: change, Item: stx.saved})
	return nil
}

// saveTx is the transaction-scoped SaveTx of the SQLite backend.
type saveTx struct {
	tx       *gorm.DB
	maxItems int
	saved    *store.ClipItem
}

func (t *saveTx) Exists(text string) (bool, error) {
	return itemExists(t.tx, text)
}

func (t *saveTx) Put(item *store.ClipItem) error {
	if t.maxItems > 0 {
		exists, err := itemExists(t.tx, item.Text)
		if err != nil {
			return err
		}
		if !exists {
			var count int64
			if err := t.tx.Model(&ClipItemModel{}).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to count items: %w", err)
			}
			if count >= int64(t.maxItems) {
				return fmt.Errorf("%w: item limit %d reached", store.ErrQuotaExceeded, t.maxItems)
			}
		}
	}

	resolved, err := resolveLabels(t.tx, item)
	if err != nil {
		return err
	}

	// A failed statement must not poison the rest of the transaction.
	if err := t.tx.SavePoint("put_clip").Error; err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}
	err = t.tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "text"}},
		UpdateAll: true,
	}).Create(newClipItemModel(resolved)).Error
	if err != nil {
		t.tx.RollbackTo("put_clip")
		return translateError(fmt.Errorf("failed to write clip item: %w", err))
	}

	t.saved = resolved
	return nil
}

func (t *saveTx) EvictOldest(except string) (*store.ClipItem, error) {
	return deleteOldestNonFavorite(t.tx, except)
}

// resolveLabels rebuilds the label snapshots of item from the labels table.
func resolveLabels(tx *gorm.DB, item *store.ClipItem) (*store.ClipItem, error) {
	ids := labelIDsOf(item)
	byID := make(map[uint]store.Label, len(ids))
	if len(ids) > 0 {
		var labels []LabelModel
		if err := tx.Where("id IN ?", ids).Find(&labels).Error; err != nil {
			return nil, fmt.Errorf("failed to load labels: %w", err)
		}
		for _, l := range labels {
			byID[l.ID] = l.ToLabel()
		}
	}
	return withLabels(item, byID), nil
}

func itemExists(tx *gorm.DB, text string) (bool, error) {
	var count int64
	if err := tx.Model(&ClipItemModel{}).Where("text = ?", text).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check item: %w", err)
	}
	return count > 0, nil
}

func deleteOldestNonFavorite(tx *gorm.DB, except string) (*store.ClipItem, error) {
	query := tx.Where("fav = ?", false)
	if except != "" {
		query = query.Where("text <> ?", except)
	}

	var model ClipItemModel
	if err := query.Order("date ASC").Order("text ASC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrRemoveFailed
		}
		return nil, fmt.Errorf("failed to find oldest item: %w", err)
	}

	if err := tx.Delete(&ClipItemModel{}, "text = ?", model.Text).Error; err != nil {
		return nil, fmt.Errorf("failed to delete oldest item: %w", err)
	}
	return model.ToClipItem(), nil
}

// Exists reports whether an item with this text is stored
func (c *sqliteClipStore) Exists(text string) (bool, error) {
	return itemExists(c.s.db, text)
}

// Get retrieves a single item by text
func (c *sqliteClipStore) Get(text string) (*store.ClipItem, error) {
	var model ClipItemModel
	if err := c.s.db.First(&model, "text = ?", text).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("clip item %q: %w", text, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get clip item: %w", err)
	}
	return model.ToClipItem(), nil
}

// List returns items ordered by date (newest first)
func (c *sqliteClipStore) List(opts store.ListOptions) ([]*store.ClipItem, error) {
	query := c.s.db.Model(&ClipItemModel{}).Order("date DESC").Order("text ASC")

	if opts.FavoritesOnly {
		query = query.Where("fav = ?", true)
	}
	if opts.LabelID != 0 {
		query = query.Where(labelRefClause, opts.LabelID)
	}
	if opts.Query != "" {
		pattern := "%" + escapeLike(strings.ToLower(opts.Query)) + "%"
		query = query.Where(`LOWER(text) LIKE ? ESCAPE '\'`, pattern)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var models []*ClipItemModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list clip items: %w", err)
	}

	items := make([]*store.ClipItem, len(models))
	for i, m := range models {
		items[i] = m.ToClipItem()
	}
	return items, nil
}

// labelRefClause matches clip items whose label_ids contain the bound id.
const labelRefClause = "EXISTS (SELECT 1 FROM json_each(clip_items.label_ids) WHERE json_each.value = ?)"

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Delete removes items by text; missing keys are ignored
func (c *sqliteClipStore) Delete(texts ...string) error {
	if len(texts) == 0 {
		return nil
	}

	var deleted []string
	err := c.s.db.Transaction(func(tx *gorm.DB) error {
		for chunk := range slices.Chunk(texts, batchSize) {
			var found []string
			if err := tx.Model(&ClipItemModel{}).Where("text IN ?", chunk).Pluck("text", &found).Error; err != nil {
				return fmt.Errorf("failed to find items: %w", err)
			}
			if len(found) == 0 {
				continue
			}
			if err := tx.Delete(&ClipItemModel{}, "text IN ?", found).Error; err != nil {
				return fmt.Errorf("failed to delete items: %w", err)
			}
			deleted = append(deleted, found...)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(deleted) > 0 {
		c.s.notifier.Notify(store.Event{Entity: store.EntityClipItem, Change: store.ChangeDeleted, Texts: deleted})
	}
	return nil
}

// DeleteOldestNonFavorite removes the oldest non-favorite item
func (c *sqliteClipStore) DeleteOldestNonFavorite() (*store.ClipItem, error) {
	var removed *store.ClipItem
	err := c.s.db.Transaction(func(tx *gorm.DB) error {
		item, err := deleteOldestNonFavorite(tx, "")
		removed = item
		return err
	})
	if err != nil {
		return nil, err
	}

	c.s.notifier.Notify(store.Event{
		Entity: store.EntityClipItem,
		Change: store.ChangeDeleted,
		Texts:  []string{removed.Text},
	})
	return removed, nil
}

// DeleteOlderThan removes non-favorite items dated before t
func (c *sqliteClipStore) DeleteOlderThan(t time.Time) (bool, error) {
	var texts []string
	err := c.s.db.Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&ClipItemModel{}).Where("fav = ? AND date < ?", false, t.UnixMilli())
		if err := query.Pluck("text", &texts).Error; err != nil {
			return fmt.Errorf("failed to find old items: %w", err)
		}
		if len(texts) == 0 {
			return nil
		}
		if err := tx.Where("fav = ? AND date < ?", false, t.UnixMilli()).Delete(&ClipItemModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete old items: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if len(texts) == 0 {
		return false, nil
	}
	c.s.notifier.Notify(store.Event{Entity: store.EntityClipItem, Change: store.ChangeDeleted, Texts: texts})
	return true, nil
}

// Count returns the total number of items
func (c *sqliteClipStore) Count() (int, error) {
	var count int64
	if err := c.s.db.Model(&ClipItemModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return int(count), nil
}

// sqliteLabelStore implements store.LabelStore using SQLite
type sqliteLabelStore struct {
	s *SQLiteStore
}

// Add creates a new label
func (l *sqliteLabelStore) Add(name string) (*store.Label, error) {
	if err := store.ValidateText(name); err != nil {
		return nil, err
	}

	model := &LabelModel{Name: name}
	err := l.s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&LabelModel{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check label: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("label %q: %w", name, store.ErrLabelExists)
		}
		if err := tx.Create(model).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("label %q: %w", name, store.ErrLabelExists)
			}
			return translateError(fmt.Errorf("failed to create label: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	label := model.ToLabel()
	l.s.notifier.Notify(store.Event{Entity: store.EntityLabel, Change: store.ChangeCreated, Label: &label})
	return &label, nil
}

// List returns all labels ordered by id
func (l *sqliteLabelStore) List() ([]store.Label, error) {
	var models []LabelModel
	if err := l.s.db.Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	labels := make([]store.Label, len(models))
	for i, m := range models {
		labels[i] = m.ToLabel()
	}
	return labels, nil
}

// Get retrieves a label by id
func (l *sqliteLabelStore) Get(id uint) (*store.Label, error) {
	return findLabel(l.s.db, "id = ?", id)
}

// GetByName retrieves a label by name
func (l *sqliteLabelStore) GetByName(name string) (*store.Label, error) {
	return findLabel(l.s.db, "name = ?", name)
}

func findLabel(tx *gorm.DB, cond string, arg any) (*store.Label, error) {
	var model LabelModel
	if err := tx.First(&model, cond, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("label %v: %w", arg, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get label: %w", err)
	}
	label := model.ToLabel()
	return &label, nil
}

// Rename changes the label name and cascades it into referencing items
func (l *sqliteLabelStore) Rename(label store.Label, newName string) (*store.Label, error) {
	if err := store.ValidateText(newName); err != nil {
		return nil, err
	}

	var renamed *store.Label
	err := l.s.db.Transaction(func(tx *gorm.DB) error {
		current, err := findLabel(tx, "id = ?", label.ID)
		if err != nil {
			return err
		}
		if current.Name == newName {
			renamed = current
			return nil
		}

		var clash int64
		if err := tx.Model(&LabelModel{}).Where("name = ? AND id <> ?", newName, label.ID).Count(&clash).Error; err != nil {
			return fmt.Errorf("failed to check label: %w", err)
		}
		if clash > 0 {
			return fmt.Errorf("label %q: %w", newName, store.ErrLabelExists)
		}

		if err := tx.Model(&LabelModel{ID: label.ID}).Update("name", newName).Error; err != nil {
			return translateError(fmt.Errorf("failed to rename label: %w", err))
		}

		err = updateReferencingItems(tx, label.ID, func(item *store.ClipItem) {
			item.RenameLabel(label.ID, newName)
		})
		if err != nil {
			return err
		}

		renamed = &store.Label{ID: label.ID, Name: newName}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.s.notifier.Notify(store.Event{Entity: store.EntityLabel, Change: store.ChangeUpdated, Label: renamed})
	return renamed, nil
}

// Delete removes the label and detaches it from referencing items
func (l *sqliteLabelStore) Delete(label store.Label) error {
	var deleted *store.Label
	err := l.s.db.Transaction(func(tx *gorm.DB) error {
		current, err := findLabel(tx, "id = ?", label.ID)
		if err != nil {
			return err
		}

		err = updateReferencingItems(tx, label.ID, func(item *store.ClipItem) {
			item.RemoveLabel(label.ID)
		})
		if err != nil {
			return err
		}

		if err := tx.Delete(&LabelModel{}, label.ID).Error; err != nil {
			return fmt.Errorf("failed to delete label: %w", err)
		}
		deleted = current
		return nil
	})
	if err != nil {
		return err
	}

	l.s.notifier.Notify(store.Event{Entity: store.EntityLabel, Change: store.ChangeDeleted, Label: deleted})
	return nil
}

// updateReferencingItems applies fn to every item carrying labelID and
// writes back both label views.
func updateReferencingItems(tx *gorm.DB, labelID uint, fn func(*store.ClipItem)) error {
	var models []*ClipItemModel
	if err := tx.Where(labelRefClause, labelID).Find(&models).Error; err != nil {
		return fmt.Errorf("failed to find labelled items: %w", err)
	}

	for _, m := range models {
		item := m.ToClipItem()
		fn(item)
		updated := newClipItemModel(item)
		if err := tx.Model(updated).Select("labels", "label_ids").Updates(updated).Error; err != nil {
			return translateError(fmt.Errorf("failed to update item labels: %w", err))
		}
	}
	return nil
}

// sqliteConfigStore implements store.ConfigStore using SQLite
type sqliteConfigStore struct {
	db *gorm.DB
}

// Get retrieves a configuration value by key
func (s *sqliteConfigStore) Get(key string) (string, error) {
	var model ConfigItemModel
	if err := s.db.First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("config key %s: %w", key, store.ErrNotFound)
		}
		return "", fmt.Errorf("failed to get config: %w", err)
	}
	return model.Value, nil
}

// Set stores a configuration value (upsert)
func (s *sqliteConfigStore) Set(key, value string) error {
	if err := setConfig(s.db, key, value); err != nil {
		return fmt.Errorf("failed to set config: %w", err)
	}
	return nil
}

func setConfig(tx *gorm.DB, key, value string) error {
	model := &ConfigItemModel{Key: key, Value: value}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(model).Error
}

// List returns all configuration key-value pairs
func (s *sqliteConfigStore) List() (map[string]string, error) {
	var models []ConfigItemModel
	if err := s.db.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list config: %w", err)
	}

	result := make(map[string]string, len(models))
	for _, model := range models {
		result[model.Key] = model.Value
	}

	return result, nil
}

// Delete removes a configuration key
func (s *sqliteConfigStore) Delete(key string) error {
	result := s.db.Delete(&ConfigItemModel{}, "key = ?", key)
	if result.Error != nil {
		return fmt.Errorf("failed to delete config: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("config key %s: %w", key, store.ErrNotFound)
	}
	return nil
}
