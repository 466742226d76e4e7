// Package store persists remembered window positions, partitioned by
// screen. Each screen's positions are loaded and saved as a whole.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/tiling"
)

// ErrNotFound is returned by Load when nothing is stored for a screen.
var ErrNotFound = errors.New("no positions stored")

// Record is the remembered position of one application on one screen:
// either a zone and tile, or a bare frame.
type Record struct {
	Zone      string       `json:"zone,omitempty"`
	ZoneID    string       `json:"zone_id,omitempty"`
	TileIdx   int          `json:"tile_idx,omitempty"`
	Frame     *tiling.Rect `json:"frame,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// IsZone reports whether the record names a zone.
func (r Record) IsZone() bool {
	return r.ZoneID != "" || r.Zone != ""
}

// Positions maps application names to records for one screen.
type Positions map[string]Record

// Clone returns a copy of p; a nil map yields an empty one.
func (p Positions) Clone() Positions {
	out := make(Positions, len(p))
	for k, v := range p {
		if v.Frame != nil {
			f := *v.Frame
			v.Frame = &f
		}
		out[k] = v
	}
	return out
}

// Store loads and saves positions by screen key. Save replaces whatever was
// stored for the screen.
type Store interface {
	Load(ctx context.Context, screenKey string) (Positions, error)
	Save(ctx context.Context, screenKey string, positions Positions) error
}

// Open builds the store selected by cfg.
func Open(cfg config.StoreConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case config.StoreBackendMemory:
		return NewMemory(), nil
	case config.StoreBackendRedis:
		return NewRedis(cfg.Redis), nil
	case config.StoreBackendFile, "":
		dir := cfg.Dir
		if dir == "" {
			dir = filepath.Join(config.DefaultDataDir(), "positions")
		}
		return NewFileStore(dir, logger), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
