package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yiblet/clipsync/internal/store"
)

// wireLabel is a label in the backup payload.
type wireLabel struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// wireClipItem is a clip item in the backup payload. Dates are Unix
// milliseconds.
type wireClipItem struct {
	Text     string      `json:"text"`
	Date     int64       `json:"date"`
	Favorite bool        `json:"fav"`
	Remote   bool        `json:"remote"`
	Device   string      `json:"device"`
	Labels   []wireLabel `json:"labels"`
	LabelIDs []uint      `json:"labelsId"`
}

type wireSnapshot struct {
	Labels    []wireLabel    `json:"labels"`
	ClipItems []wireClipItem `json:"clipItems"`
}

// EncodeSnapshot serializes snap to the backup JSON format.
func EncodeSnapshot(snap *store.Snapshot) ([]byte, error) {
	w := wireSnapshot{
		Labels:    make([]wireLabel, 0, len(snap.Labels)),
		ClipItems: make([]wireClipItem, 0, len(snap.ClipItems)),
	}
	for _, l := range snap.Labels {
		w.Labels = append(w.Labels, wireLabel(l))
	}
	for _, item := range snap.ClipItems {
		wi := wireClipItem{
			Text:     item.Text,
			Date:     item.Date.UnixMilli(),
			Favorite: item.Favorite,
			Remote:   item.Remote,
			Device:   item.Device,
			Labels:   make([]wireLabel, 0, len(item.Labels)),
			LabelIDs: append([]uint{}, item.LabelIDs...),
		}
		for _, l := range item.Labels {
			wi.Labels = append(wi.Labels, wireLabel(l))
		}
		w.ClipItems = append(w.ClipItems, wi)
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses the backup JSON format. Malformed input, including
// items with blank text or labels with blank names, is a *store.ParseError.
func DecodeSnapshot(data []byte) (*store.Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, store.NewParseError("snapshot", err)
	}

	snap := &store.Snapshot{
		Labels:    make([]store.Label, 0, len(w.Labels)),
		ClipItems: make([]store.ClipItem, 0, len(w.ClipItems)),
	}
	for i, l := range w.Labels {
		if store.ValidateText(l.Name) != nil {
			return nil, store.NewParseError(fmt.Sprintf("snapshot label %d", i), errors.New("blank name"))
		}
		snap.Labels = append(snap.Labels, store.Label(l))
	}
	for i, wi := range w.ClipItems {
		if store.ValidateText(wi.Text) != nil {
			return nil, store.NewParseError(fmt.Sprintf("snapshot clip item %d", i), errors.New("blank text"))
		}
		item := store.ClipItem{
			Text:     wi.Text,
			Date:     time.UnixMilli(wi.Date),
			Favorite: wi.Favorite,
			Remote:   wi.Remote,
			Device:   wi.Device,
			LabelIDs: append([]uint(nil), wi.LabelIDs...),
		}
		for _, l := range wi.Labels {
			item.Labels = append(item.Labels, store.Label(l))
		}
		snap.ClipItems = append(snap.ClipItems, item)
	}
	return snap, nil
}
