// Package winstate keeps the per-window zone assignment record. It is the
// single place the placement reconciler consults to decide whether a window
// is already known, without walking every zone.
package winstate

import (
	"sort"
	"time"

	"github.com/1broseidon/zonetile/internal/platform"
)

// Record is the assignment of one window. TileIdx is 1-based; 0 means none.
type Record struct {
	Window      platform.WindowID `json:"window"`
	Zone        string            `json:"zone,omitempty"`
	ZoneID      string            `json:"zone_id,omitempty"`
	ScreenKey   string            `json:"screen,omitempty"`
	TileIdx     int               `json:"tile_idx,omitempty"`
	LastUpdated time.Time         `json:"last_updated"`
}

// Tracker maps window ids to records. Not safe for concurrent use; it is
// owned by the dispatch loop.
type Tracker struct {
	records map[platform.WindowID]Record
	now     func() time.Time
}

// NewTracker creates an empty tracker. now stamps LastUpdated; nil uses
// time.Now.
func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		records: make(map[platform.WindowID]Record),
		now:     now,
	}
}

// Set stores rec, stamping LastUpdated.
func (t *Tracker) Set(rec Record) {
	rec.LastUpdated = t.now()
	t.records[rec.Window] = rec
}

// Touch refreshes LastUpdated of an existing record.
func (t *Tracker) Touch(id platform.WindowID) {
	if rec, ok := t.records[id]; ok {
		t.Set(rec)
	}
}

func (t *Tracker) Get(id platform.WindowID) (Record, bool) {
	rec, ok := t.records[id]
	return rec, ok
}

func (t *Tracker) Has(id platform.WindowID) bool {
	_, ok := t.records[id]
	return ok
}

// Remove deletes the record of id and reports whether one existed.
func (t *Tracker) Remove(id platform.WindowID) bool {
	if _, ok := t.records[id]; !ok {
		return false
	}
	delete(t.records, id)
	return true
}

func (t *Tracker) Len() int {
	return len(t.records)
}

// All returns every record ordered by window id.
func (t *Tracker) All() []Record {
	out := make([]Record, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Window < out[j].Window })
	return out
}

// Prune drops records for which alive reports false and returns their ids.
func (t *Tracker) Prune(alive func(platform.WindowID) bool) []platform.WindowID {
	var dropped []platform.WindowID
	for id := range t.records {
		if !alive(id) {
			dropped = append(dropped, id)
		}
	}
	sort.Slice(dropped, func(i, j int) bool { return dropped[i] < dropped[j] })
	for _, id := range dropped {
		delete(t.records, id)
	}
	return dropped
}
