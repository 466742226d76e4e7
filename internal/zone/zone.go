// Package zone holds the zone registry: named groups of candidate tiles,
// instantiated per screen, and the window-to-tile assignments within them.
//
// A window is assigned to at most one zone at a time. Assignments are
// mirrored into the window-state tracker and, when the zone is bound to a
// screen, written through to remembered positions.
package zone

import (
	"errors"
	"fmt"
	"sort"

	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/tiling"
	"github.com/1broseidon/zonetile/internal/winstate"
)

// DefaultTile is the tile a window lands on when first added to a zone.
const DefaultTile = 1

// Key identifies a zone instance. Screen is empty for unbound zones.
type Key struct {
	Logical string
	Screen  string
}

// Qualified returns "logical_screen", or the logical id when unbound.
func (k Key) Qualified() string {
	if k.Screen == "" {
		return k.Logical
	}
	return k.Logical + "_" + k.Screen
}

func (k Key) String() string {
	return k.Qualified()
}

// Zone is a logical zone instantiated on one screen.
type Zone struct {
	key         Key
	screen      *platform.Display
	description string
	triggerKey  string
	tags        map[string]struct{}
	tiles       []*tiling.Tile
	windows     map[platform.WindowID]int

	registry *Registry
}

func (z *Zone) ID() string          { return z.key.Logical }
func (z *Zone) QualifiedID() string { return z.key.Qualified() }
func (z *Zone) Key() Key            { return z.key }
func (z *Zone) Description() string { return z.description }
func (z *Zone) TriggerKey() string  { return z.triggerKey }

// Screen returns the display the zone is bound to.
func (z *Zone) Screen() (platform.Display, bool) {
	if z.screen == nil {
		return platform.Display{}, false
	}
	return *z.screen, true
}

func (z *Zone) HasTag(tag string) bool {
	_, ok := z.tags[tag]
	return ok
}

// Tags returns the zone tags, sorted.
func (z *Zone) Tags() []string {
	out := make([]string, 0, len(z.tags))
	for t := range z.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (z *Zone) TileCount() int {
	return len(z.tiles)
}

// Tiles returns the tiles in cycle order.
func (z *Zone) Tiles() []*tiling.Tile {
	out := make([]*tiling.Tile, len(z.tiles))
	copy(out, z.tiles)
	return out
}

// Tile returns the tile at the 1-based index idx.
func (z *Zone) Tile(idx int) (*tiling.Tile, error) {
	if len(z.tiles) == 0 {
		return nil, fmt.Errorf("zone %s: %w", z.QualifiedID(), ErrNoTiles)
	}
	if idx < 1 || idx > len(z.tiles) {
		return nil, fmt.Errorf("zone %s: tile %d of %d: %w", z.QualifiedID(), idx, len(z.tiles), ErrInvalidTile)
	}
	return z.tiles[idx-1], nil
}

// TileIndex returns the tile win currently occupies.
func (z *Zone) TileIndex(win platform.WindowID) (int, bool) {
	idx, ok := z.windows[win]
	return idx, ok
}

// Windows lists assigned windows ordered by tile, then window id.
func (z *Zone) Windows() []platform.WindowID {
	out := make([]platform.WindowID, 0, len(z.windows))
	for w := range z.windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := z.windows[out[i]], z.windows[out[j]]
		if ti != tj {
			return ti < tj
		}
		return out[i] < out[j]
	})
	return out
}

// AddWindow assigns win to tile tileIdx, detaching it from any other zone
// first. The tracker is updated and, for screen-bound zones, the position
// is recorded for the window's application.
func (z *Zone) AddWindow(win platform.WindowID, tileIdx int) error {
	if _, err := z.Tile(tileIdx); err != nil {
		return err
	}
	z.registry.detachElsewhere(win, z)
	z.assign(win, tileIdx)
	return nil
}

// RemoveWindow unassigns win and drops its tracker record.
func (z *Zone) RemoveWindow(win platform.WindowID) error {
	if _, ok := z.windows[win]; !ok {
		return fmt.Errorf("window %d in zone %s: %w", win, z.QualifiedID(), ErrWindowNotAssigned)
	}
	delete(z.windows, win)
	z.registry.tracker.Remove(win)
	return nil
}

// CycleWindow moves win to the tile selected by dir and returns the new
// index. A window not yet in the zone is added at DefaultTile instead.
func (z *Zone) CycleWindow(win platform.WindowID, dir Direction) (int, error) {
	if len(z.tiles) == 0 {
		return 0, fmt.Errorf("zone %s: %w", z.QualifiedID(), ErrNoTiles)
	}
	current, ok := z.windows[win]
	if !ok {
		if err := z.AddWindow(win, DefaultTile); err != nil {
			return 0, err
		}
		return DefaultTile, nil
	}
	next := dir.Next(current, len(z.tiles))
	z.assign(win, next)
	return next, nil
}

// ResizeWindow applies win's assigned tile geometry through the backend,
// moving the window to the zone's screen first if needed.
func (z *Zone) ResizeWindow(win platform.WindowID) (tiling.Rect, error) {
	idx, ok := z.windows[win]
	if !ok {
		return tiling.Rect{}, fmt.Errorf("window %d in zone %s: %w", win, z.QualifiedID(), ErrWindowNotAssigned)
	}
	tile, err := z.Tile(idx)
	if err != nil {
		return tiling.Rect{}, err
	}
	rect := tile.Rect()

	backend := z.registry.backend
	w, err := backend.Window(win)
	if err != nil {
		return tiling.Rect{}, staleOr(win, err)
	}
	if z.screen != nil && w.DisplayID != z.screen.ID {
		if err := backend.MoveToScreen(win, *z.screen); err != nil {
			return tiling.Rect{}, staleOr(win, err)
		}
	}
	if err := backend.SetFrame(win, rect.Platform()); err != nil {
		return tiling.Rect{}, staleOr(win, err)
	}
	z.registry.tracker.Touch(win)
	return rect, nil
}

func (z *Zone) assign(win platform.WindowID, tileIdx int) {
	z.windows[win] = tileIdx
	z.registry.tracker.Set(winstate.Record{
		Window:    win,
		Zone:      z.key.Logical,
		ZoneID:    z.QualifiedID(),
		ScreenKey: z.key.Screen,
		TileIdx:   tileIdx,
	})
	if z.screen != nil && z.registry.recorder != nil {
		z.registry.recorder.RecordZone(win, z.key.Screen, z, tileIdx)
	}
}

func staleOr(win platform.WindowID, err error) error {
	if errors.Is(err, platform.ErrWindowNotFound) {
		return fmt.Errorf("window %d: %w", win, ErrStaleWindow)
	}
	return err
}
