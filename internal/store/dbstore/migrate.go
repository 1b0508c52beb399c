package dbstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/yiblet/clipsync/internal/store"
	"github.com/yiblet/clipsync/internal/store/schema"
	"gorm.io/gorm"
)

// versionKey is the config key holding the schema version.
const versionKey = "db_version"

// legacyTables are dropped before the current schema is recreated.
var legacyTables = []string{"clips", "clip_items", "labels"}

// migrate brings the database to schema.CurrentVersion. Stores already at
// the current version only get their tables and indexes ensured.
func (s *SQLiteStore) migrate() error {
	if err := s.db.AutoMigrate(&ConfigItemModel{}); err != nil {
		return fmt.Errorf("failed to create config table: %w", err)
	}

	version, err := detectVersion(s.db)
	if err != nil {
		return err
	}

	switch {
	case version > schema.CurrentVersion:
		return fmt.Errorf("database schema version %d is newer than supported version %d",
			version, schema.CurrentVersion)

	case version == schema.CurrentVersion:
		return s.db.AutoMigrate(&ClipItemModel{}, &LabelModel{})

	case version == 0:
		return s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&ClipItemModel{}, &LabelModel{}); err != nil {
				return err
			}
			return setConfig(tx, versionKey, strconv.Itoa(schema.CurrentVersion))
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		rows, err := exportRows(tx, version)
		if err != nil {
			return err
		}
		rows, err = schema.Apply(rows, schema.CurrentVersion)
		if err != nil {
			return err
		}

		for _, table := range legacyTables {
			if err := tx.Migrator().DropTable(table); err != nil {
				return fmt.Errorf("failed to drop %s: %w", table, err)
			}
		}
		if err := tx.AutoMigrate(&ClipItemModel{}, &LabelModel{}); err != nil {
			return err
		}
		if err := insertSnapshot(tx, rows.Labels, rows.Items); err != nil {
			return err
		}
		return setConfig(tx, versionKey, strconv.Itoa(schema.CurrentVersion))
	})
	if err != nil {
		return err
	}

	s.logger.Info("Migrated store schema", "from", version, "to", schema.CurrentVersion, "path", s.dbPath)
	return nil
}

// detectVersion reads the stored schema version. Databases without one
// are version 1 when the flat clips table exists and fresh (0) otherwise.
func detectVersion(db *gorm.DB) (int, error) {
	var model ConfigItemModel
	err := db.First(&model, "key = ?", versionKey).Error
	switch {
	case err == nil:
		v, err := strconv.Atoi(model.Value)
		if err != nil {
			return 0, store.NewParseError(versionKey, err)
		}
		return v, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}

	if db.Migrator().HasTable("clips") {
		return 1, nil
	}
	return 0, nil
}

// legacyItemRow is a clip_items row of schema version 2 or 3.
type legacyItemRow struct {
	Text     string
	Date     int64
	Fav      bool
	Remote   bool
	Device   sql.NullString
	Labels   sql.NullString
	LabelIDs sql.NullString `gorm:"column:label_ids"`
}

// exportRows reads the content of a version 1-3 database in that
// version's row shape.
func exportRows(tx *gorm.DB, version int) (schema.Rows, error) {
	rows := schema.Rows{Version: version}

	if version == 1 {
		if err := tx.Raw("SELECT key, value FROM clips").Scan(&rows.V1).Error; err != nil {
			return rows, fmt.Errorf("failed to read clips: %w", err)
		}
		return rows, nil
	}

	var labels []LabelModel
	if err := tx.Raw("SELECT id, name FROM labels ORDER BY id").Scan(&labels).Error; err != nil {
		return rows, fmt.Errorf("failed to read labels: %w", err)
	}
	for _, l := range labels {
		rows.Labels = append(rows.Labels, l.ToLabel())
	}

	column := "labels"
	if version == 3 {
		column = "label_ids"
	}
	var items []legacyItemRow
	query := fmt.Sprintf("SELECT text, date, fav, remote, device, %s FROM clip_items ORDER BY date DESC", column)
	if err := tx.Raw(query).Scan(&items).Error; err != nil {
		return rows, fmt.Errorf("failed to read clip items: %w", err)
	}

	for _, it := range items {
		switch version {
		case 2:
			var names []string
			if err := decodeJSONColumn(it.Labels, &names); err != nil {
				return rows, store.NewParseError(fmt.Sprintf("labels of %q", it.Text), err)
			}
			rows.V2Items = append(rows.V2Items, schema.V2Item{
				Text: it.Text, Date: it.Date, Favorite: it.Fav, Remote: it.Remote,
				Device: it.Device.String, Labels: names,
			})
		case 3:
			var ids []uint
			if err := decodeJSONColumn(it.LabelIDs, &ids); err != nil {
				return rows, store.NewParseError(fmt.Sprintf("label ids of %q", it.Text), err)
			}
			rows.V3Items = append(rows.V3Items, schema.V3Item{
				Text: it.Text, Date: it.Date, Favorite: it.Fav, Remote: it.Remote,
				Device: it.Device.String, LabelIDs: ids,
			})
		default:
			return rows, fmt.Errorf("unknown schema version %d", version)
		}
	}
	return rows, nil
}

func decodeJSONColumn(col sql.NullString, v any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), v)
}
