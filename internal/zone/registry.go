package zone

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/tiling"
	"github.com/1broseidon/zonetile/internal/winstate"
)

// ReservedID is the logical id of the center zone that exists on every
// screen, configured or not.
const ReservedID = "0"

// reservedAlias is accepted in layouts as a name for ReservedID.
const reservedAlias = "center"

// PositionRecorder receives zone assignments of screen-bound zones so they
// can be remembered per application.
type PositionRecorder interface {
	RecordZone(win platform.WindowID, screenKey string, z *Zone, tileIdx int)
}

// Options configures a Registry.
type Options struct {
	Backend  platform.Backend
	Tracker  *winstate.Tracker
	Recorder PositionRecorder
	Logger   *slog.Logger
}

// ZoneOptions describes a zone created directly with NewZone.
type ZoneOptions struct {
	Key         Key
	Screen      *platform.Display
	Description string
	TriggerKey  string
	Tags        []string
	Tiles       []*tiling.Tile
}

// Registry owns every zone instance. Enumeration order is creation order:
// screens in the order given, zones in layout order, the reserved zone last.
type Registry struct {
	zones       map[Key]*Zone
	order       []*Zone
	byQualified map[string]*Zone
	byLogical   map[string][]*Zone

	backend  platform.Backend
	tracker  *winstate.Tracker
	recorder PositionRecorder
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracker == nil {
		opts.Tracker = winstate.NewTracker(nil)
	}
	r := &Registry{
		backend:  opts.Backend,
		tracker:  opts.Tracker,
		recorder: opts.Recorder,
		logger:   opts.Logger,
	}
	r.reset()
	return r
}

// SetRecorder replaces the position recorder.
func (r *Registry) SetRecorder(rec PositionRecorder) {
	r.recorder = rec
}

func (r *Registry) Tracker() *winstate.Tracker {
	return r.tracker
}

func (r *Registry) reset() {
	r.zones = make(map[Key]*Zone)
	r.order = nil
	r.byQualified = make(map[string]*Zone)
	r.byLogical = make(map[string][]*Zone)
}

// NewZone registers a zone. Zone keys are unique.
func (r *Registry) NewZone(opts ZoneOptions) (*Zone, error) {
	if opts.Key.Logical == "" {
		return nil, fmt.Errorf("zone key is required")
	}
	if _, exists := r.zones[opts.Key]; exists {
		return nil, fmt.Errorf("zone %s already exists", opts.Key)
	}
	z := &Zone{
		key:         opts.Key,
		description: opts.Description,
		triggerKey:  opts.TriggerKey,
		tags:        make(map[string]struct{}, len(opts.Tags)),
		tiles:       append([]*tiling.Tile(nil), opts.Tiles...),
		windows:     make(map[platform.WindowID]int),
		registry:    r,
	}
	if opts.Screen != nil {
		screen := *opts.Screen
		z.screen = &screen
	}
	if z.triggerKey == "" {
		z.triggerKey = opts.Key.Logical
	}
	for _, t := range opts.Tags {
		z.tags[t] = struct{}{}
	}

	r.zones[z.key] = z
	r.order = append(r.order, z)
	r.byQualified[z.QualifiedID()] = z
	r.byLogical[z.key.Logical] = append(r.byLogical[z.key.Logical], z)
	return z, nil
}

// CreateZonesForScreen instantiates the layout resolved for screen. A zone
// with no usable tiles gets one full-screen tile; the reserved zone is
// always created. When no layout resolves, nothing is created and the
// condition is logged.
func (r *Registry) CreateZonesForScreen(screen platform.Display, cfg *config.Config) []*Zone {
	log := r.logger.With("screen", screen.Key())

	canvas, err := tiling.NewCanvas(screen, cfg)
	if err != nil {
		log.Error("cannot build screen canvas", "error", err)
		return nil
	}
	layout, layoutKey, err := cfg.LayoutFor(screen.Key(), canvas.Grid)
	if err != nil {
		log.Error("no zones created", "error", fmt.Errorf("%w: %v", ErrConfigurationMissing, err))
		return nil
	}
	log.Debug("creating zones", "layout", layoutKey, "grid", canvas.Grid.String())

	var (
		created  []*Zone
		reserved *config.ZoneSpec
	)
	for i := range layout.Zones {
		spec := layout.Zones[i]
		if isReserved(spec.Key) {
			reserved = &layout.Zones[i]
			continue
		}
		tiles := r.tilesFor(log, spec, canvas)
		if len(tiles) == 0 {
			tiles = []*tiling.Tile{tiling.NewTile(canvas.Full(), "full")}
		}
		z, err := r.NewZone(ZoneOptions{
			Key:         Key{Logical: spec.Key, Screen: screen.Key()},
			Screen:      &screen,
			Description: spec.Description,
			TriggerKey:  spec.TriggerKey(),
			Tags:        spec.Tags,
			Tiles:       tiles,
		})
		if err != nil {
			log.Warn("skipping zone", "zone", spec.Key, "error", err)
			continue
		}
		created = append(created, z)
	}

	opts := ZoneOptions{
		Key:         Key{Logical: ReservedID, Screen: screen.Key()},
		Screen:      &screen,
		Description: "center",
		TriggerKey:  ReservedID,
	}
	if reserved != nil {
		opts.Tiles = r.tilesFor(log, *reserved, canvas)
		opts.Tags = reserved.Tags
		if reserved.Description != "" {
			opts.Description = reserved.Description
		}
		if reserved.Hotkey != "" {
			opts.TriggerKey = reserved.Hotkey
		}
	}
	if len(opts.Tiles) == 0 {
		opts.Tiles = []*tiling.Tile{
			tiling.NewTile(canvas.Centered(0.5, 0.5), "quarter"),
			tiling.NewTile(canvas.Centered(2.0/3, 2.0/3), "two-thirds"),
			tiling.NewTile(canvas.Full(), "full"),
		}
	}
	if z, err := r.NewZone(opts); err != nil {
		log.Warn("skipping reserved zone", "error", err)
	} else {
		created = append(created, z)
	}
	return created
}

func (r *Registry) tilesFor(log *slog.Logger, spec config.ZoneSpec, canvas tiling.Canvas) []*tiling.Tile {
	tiles := make([]*tiling.Tile, 0, len(spec.Tiles))
	for i, ts := range spec.Tiles {
		t, err := tiling.TileFromSpec(ts, canvas)
		if err != nil {
			log.Warn("skipping tile", "zone", spec.Key, "tile", i+1, "error", err)
			continue
		}
		tiles = append(tiles, t)
	}
	return tiles
}

// InitForAllScreens rebuilds every zone for the given screens. Window
// assignments survive when the same zone exists afterwards with the tile
// index still in range; the rest are dropped from the tracker.
func (r *Registry) InitForAllScreens(screens []platform.Display, cfg *config.Config) {
	type assignment struct {
		key Key
		idx int
	}
	previous := make(map[platform.WindowID]assignment)
	for _, z := range r.order {
		for w, idx := range z.windows {
			previous[w] = assignment{key: z.key, idx: idx}
		}
	}

	r.reset()
	for _, screen := range screens {
		r.CreateZonesForScreen(screen, cfg)
	}

	kept := 0
	for w, a := range previous {
		z, ok := r.zones[a.key]
		if !ok || a.idx > len(z.tiles) {
			r.tracker.Remove(w)
			continue
		}
		z.windows[w] = a.idx
		r.tracker.Touch(w)
		kept++
	}
	r.logger.Info("zones initialised",
		"screens", len(screens), "zones", len(r.order),
		"kept", kept, "dropped", len(previous)-kept)
}

// Get returns the zone with key k.
func (r *Registry) Get(k Key) (*Zone, bool) {
	z, ok := r.zones[k]
	return z, ok
}

// ByQualifiedID looks a zone up by "logical_screen".
func (r *Registry) ByQualifiedID(id string) (*Zone, bool) {
	z, ok := r.byQualified[id]
	return z, ok
}

// Find returns the instance of a logical zone on a screen. "center" is
// accepted for the reserved zone.
func (r *Registry) Find(logical, screenKey string) (*Zone, bool) {
	if isReserved(logical) {
		logical = ReservedID
	}
	return r.Get(Key{Logical: logical, Screen: screenKey})
}

// Logical returns every instance of a logical zone, in creation order.
func (r *Registry) Logical(id string) []*Zone {
	return append([]*Zone(nil), r.byLogical[id]...)
}

// ZonesOnScreen returns the zones bound to screenKey in creation order.
func (r *Registry) ZonesOnScreen(screenKey string) []*Zone {
	var out []*Zone
	for _, z := range r.order {
		if z.key.Screen == screenKey {
			out = append(out, z)
		}
	}
	return out
}

// All returns every zone in creation order.
func (r *Registry) All() []*Zone {
	return append([]*Zone(nil), r.order...)
}

func (r *Registry) Len() int {
	return len(r.order)
}

// ZoneOf returns the zone win is assigned to.
func (r *Registry) ZoneOf(win platform.WindowID) (*Zone, bool) {
	if rec, ok := r.tracker.Get(win); ok {
		if z, ok := r.byQualified[rec.ZoneID]; ok {
			if _, in := z.windows[win]; in {
				return z, true
			}
		}
	}
	for _, z := range r.order {
		if _, ok := z.windows[win]; ok {
			return z, true
		}
	}
	return nil, false
}

// Unassign removes win from whatever zone holds it.
func (r *Registry) Unassign(win platform.WindowID) error {
	z, ok := r.ZoneOf(win)
	if !ok {
		r.tracker.Remove(win)
		return fmt.Errorf("window %d: %w", win, ErrWindowNotAssigned)
	}
	return z.RemoveWindow(win)
}

func (r *Registry) detachElsewhere(win platform.WindowID, keep *Zone) {
	for _, z := range r.order {
		if z == keep {
			continue
		}
		delete(z.windows, win)
	}
}

func isReserved(key string) bool {
	return key == ReservedID || strings.EqualFold(key, reservedAlias)
}
