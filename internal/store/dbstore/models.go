package dbstore

import (
	"time"

	"github.com/yiblet/clipsync/internal/store"
)

// ClipItemModel represents a clip item in the database.
// Labels are denormalized onto the row as JSON snapshots plus a parallel
// id list; label lookups use json_each over label_ids.
type ClipItemModel struct {
	Text     string     `gorm:"primaryKey"`
	Date     int64      `gorm:"not null;index"` // Unix milliseconds
	Favorite bool       `gorm:"column:fav;not null;default:false;index"`
	Remote   bool       `gorm:"not null;default:false"`
	Device   string     `gorm:"not null;default:''"`
	Labels   []LabelRef `gorm:"serializer:json;type:text"`
	LabelIDs []uint     `gorm:"column:label_ids;serializer:json;type:text"`
}

// TableName returns the table name for ClipItemModel
func (ClipItemModel) TableName() string {
	return "clip_items"
}

// ToClipItem converts the GORM model to a store.ClipItem
func (m *ClipItemModel) ToClipItem() *store.ClipItem {
	item := &store.ClipItem{
		Text:     m.Text,
		Date:     time.UnixMilli(m.Date),
		Favorite: m.Favorite,
		Remote:   m.Remote,
		Device:   m.Device,
		LabelIDs: append([]uint(nil), m.LabelIDs...),
	}
	for _, l := range m.Labels {
		item.Labels = append(item.Labels, store.Label{ID: l.ID, Name: l.Name})
	}
	return item
}

func newClipItemModel(item *store.ClipItem) *ClipItemModel {
	m := &ClipItemModel{
		Text:     item.Text,
		Date:     item.Date.UnixMilli(),
		Favorite: item.Favorite,
		Remote:   item.Remote,
		Device:   item.Device,
		Labels:   []LabelRef{},
		LabelIDs: []uint{},
	}
	for _, l := range item.Labels {
		m.Labels = append(m.Labels, LabelRef{ID: l.ID, Name: l.Name})
		m.LabelIDs = append(m.LabelIDs, l.ID)
	}
	return m
}

// LabelRef is the label snapshot stored on each clip item row.
type LabelRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// LabelModel represents a label in the database.
type LabelModel struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"not null;uniqueIndex"`
}

// TableName returns the table name for LabelModel
func (LabelModel) TableName() string {
	return "labels"
}

// ToLabel converts the GORM model to a store.Label
func (m LabelModel) ToLabel() store.Label {
	return store.Label{ID: m.ID, Name: m.Name}
}

// ConfigItemModel represents a configuration key-value pair
type ConfigItemModel struct {
	Key       string    `gorm:"primaryKey;size:100"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for ConfigItemModel
func (ConfigItemModel) TableName() string {
	return "config"
}
