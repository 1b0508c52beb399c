// Package merge reconciles a local snapshot with a remote one.
//
// Labels are matched by name, clip items by text. The result holds every
// distinct label and item of both sides; shared items are combined field by
// field. Merge is pure: it never touches storage and never mutates its
// inputs.
package merge

import (
	"github.com/yiblet/clipsync/internal/store"
)

// Merge combines local and remote into a new snapshot.
//
// Remote labels whose name is unknown locally get fresh ids starting at
// max(local ids)+1. Remote label references are rewritten through a single
// remote-to-local id map, so a rewritten id is never rewritten again.
//
// For an item present on both sides: favorite is the OR of both sides, the
// side with the later date supplies date, device and remote as a unit
// (local on a tie), and label references are the union with local order
// first.
func Merge(local, remote *store.Snapshot) *store.Snapshot {
	out := local.Clone()
	if remote == nil {
		return out
	}

	idMap := mergeLabels(out, remote.Labels)

	byID := make(map[uint]store.Label, len(out.Labels))
	for _, l := range out.Labels {
		if _, ok := byID[l.ID]; !ok {
			byID[l.ID] = l
		}
	}

	index := make(map[string]int, len(out.ClipItems))
	for i, item := range out.ClipItems {
		if _, ok := index[item.Text]; !ok {
			index[item.Text] = i
		}
	}

	for _, r := range remote.ClipItems {
		ids := remap(labelIDsOf(&r), idMap)

		i, shared := index[r.Text]
		if !shared {
			item := r.Clone()
			item.Labels = nil
			item.LabelIDs = nil
			addLabels(&item, ids, byID)
			index[item.Text] = len(out.ClipItems)
			out.ClipItems = append(out.ClipItems, item)
			continue
		}

		l := &out.ClipItems[i]
		l.Favorite = l.Favorite || r.Favorite
		if r.Date.After(l.Date) {
			l.Date = r.Date
			l.Device = r.Device
			l.Remote = r.Remote
		}
		addLabels(l, ids, byID)
	}

	return out
}

// mergeLabels appends remote labels unknown by name to out and returns the
// remote-to-local id map. The first label seen with a given name wins.
func mergeLabels(out *store.Snapshot, remote []store.Label) map[uint]uint {
	byName := make(map[string]uint, len(out.Labels))
	var nextID uint
	for _, l := range out.Labels {
		if _, ok := byName[l.Name]; !ok {
			byName[l.Name] = l.ID
		}
		nextID = max(nextID, l.ID)
	}
	nextID++

	idMap := make(map[uint]uint, len(remote))
	for _, r := range remote {
		if _, seen := idMap[r.ID]; seen {
			continue
		}
		id, ok := byName[r.Name]
		if !ok {
			id = nextID
			nextID++
			byName[r.Name] = id
			out.Labels = append(out.Labels, store.Label{ID: id, Name: r.Name})
		}
		idMap[r.ID] = id
	}
	return idMap
}

// labelIDsOf returns the ids referenced by either label view, LabelIDs first.
func labelIDsOf(item *store.ClipItem) []uint {
	ids := make([]uint, 0, len(item.LabelIDs))
	seen := make(map[uint]bool, len(item.LabelIDs))
	for _, id := range item.LabelIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, l := range item.Labels {
		if !seen[l.ID] {
			seen[l.ID] = true
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// remap translates remote ids to local ids, dropping ids without a remote
// label.
func remap(ids []uint, idMap map[uint]uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if local, ok := idMap[id]; ok {
			out = append(out, local)
		}
	}
	return out
}

func addLabels(item *store.ClipItem, ids []uint, byID map[uint]store.Label) {
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			item.AddLabel(l)
		}
	}
}
