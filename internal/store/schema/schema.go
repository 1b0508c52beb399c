// Package schema holds the row shapes of every on-disk schema version and
// the ordered, pure migrations between them.
//
// Version history:
//
//	1  flat key/value table: clip text -> JSON attributes
//	2  separate labels table, items carry label names
//	3  items carry label id arrays
//	4  items carry label snapshots and label ids (current)
package schema

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/yiblet/clipsync/internal/store"
)

// CurrentVersion is the schema version written by this build.
const CurrentVersion = 4

// V1Row is a row of the version 1 key/value table.
type V1Row struct {
	Key   string
	Value string
}

// v1Value is the JSON document stored in V1Row.Value.
type v1Value struct {
	Date   int64  `json:"date"`
	Fav    bool   `json:"fav"`
	Remote bool   `json:"remote"`
	Device string `json:"device"`
}

// V2Item is a clip item row of version 2: labels are referenced by name.
type V2Item struct {
	Text     string
	Date     int64
	Favorite bool
	Remote   bool
	Device   string
	Labels   []string
}

// V3Item is a clip item row of version 3: labels are referenced by id.
type V3Item struct {
	Text     string
	Date     int64
	Favorite bool
	Remote   bool
	Device   string
	LabelIDs []uint
}

// Rows is the exported content of a store at a given version. Only the
// fields belonging to Version are populated.
type Rows struct {
	Version int

	V1      []V1Row
	V2Items []V2Item
	V3Items []V3Item

	// Labels is populated from version 2 onwards.
	Labels []store.Label

	// Items is the version 4 (current) content.
	Items []store.ClipItem
}

// Migration upgrades rows from Version-1 to Version.
type Migration struct {
	Version int
	Name    string
	Up      func(Rows) (Rows, error)
}

// Migrations is the ordered list of upgrade steps.
var Migrations = []Migration{
	{Version: 2, Name: "split labels table", Up: v1ToV2},
	{Version: 3, Name: "label id arrays", Up: v2ToV3},
	{Version: 4, Name: "label snapshots on clip items", Up: v3ToV4},
}

// Apply runs every migration above rows.Version up to target, in order.
// Rows already at target are returned unchanged. Downgrades are refused.
func Apply(rows Rows, target int) (Rows, error) {
	if rows.Version > target {
		return rows, fmt.Errorf("schema version %d is newer than supported version %d", rows.Version, target)
	}

	for _, m := range Migrations {
		if m.Version <= rows.Version || m.Version > target {
			continue
		}
		next, err := m.Up(rows)
		if err != nil {
			return rows, fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		next.Version = m.Version
		rows = next
	}

	return rows, nil
}

func v1ToV2(rows Rows) (Rows, error) {
	out := Rows{}
	for _, row := range rows.V1 {
		if strings.TrimSpace(row.Key) == "" {
			continue
		}
		var v v1Value
		if err := json.Unmarshal([]byte(row.Value), &v); err != nil {
			return out, store.NewParseError(fmt.Sprintf("clips row %q", row.Key), err)
		}
		out.V2Items = append(out.V2Items, V2Item{
			Text:     row.Key,
			Date:     v.Date,
			Favorite: v.Fav,
			Remote:   v.Remote,
			Device:   v.Device,
		})
	}
	return out, nil
}

func v2ToV3(rows Rows) (Rows, error) {
	labels := slices.Clone(rows.Labels)
	byName := make(map[string]uint, len(labels))
	var maxID uint
	for _, l := range labels {
		if _, ok := byName[l.Name]; !ok {
			byName[l.Name] = l.ID
		}
		maxID = max(maxID, l.ID)
	}

	out := Rows{}
	for _, item := range rows.V2Items {
		ids := []uint{}
		for _, name := range item.Labels {
			if strings.TrimSpace(name) == "" {
				continue
			}
			id, ok := byName[name]
			if !ok {
				// Names without a labels row become new labels.
				maxID++
				id = maxID
				byName[name] = id
				labels = append(labels, store.Label{ID: id, Name: name})
			}
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
		out.V3Items = append(out.V3Items, V3Item{
			Text:     item.Text,
			Date:     item.Date,
			Favorite: item.Favorite,
			Remote:   item.Remote,
			Device:   item.Device,
			LabelIDs: ids,
		})
	}
	out.Labels = labels
	return out, nil
}

func v3ToV4(rows Rows) (Rows, error) {
	byID := make(map[uint]store.Label, len(rows.Labels))
	for _, l := range rows.Labels {
		byID[l.ID] = l
	}

	out := Rows{Labels: slices.Clone(rows.Labels)}
	for _, item := range rows.V3Items {
		clip := store.ClipItem{
			Text:     item.Text,
			Date:     time.UnixMilli(item.Date),
			Favorite: item.Favorite,
			Remote:   item.Remote,
			Device:   item.Device,
		}
		for _, id := range item.LabelIDs {
			// Dangling ids are dropped.
			if l, ok := byID[id]; ok {
				clip.AddLabel(l)
			}
		}
		out.Items = append(out.Items, clip)
	}
	return out, nil
}
