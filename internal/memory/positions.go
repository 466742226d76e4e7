// Package memory remembers where applications were placed and reconciles
// new and moving windows against that memory.
//
// Everything here runs on the dispatch loop and is not safe for concurrent
// use.
package memory

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/1broseidon/zonetile/internal/apps"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/store"
	"github.com/1broseidon/zonetile/internal/tiling"
	"github.com/1broseidon/zonetile/internal/zone"
)

const storeTimeout = 2 * time.Second

// Positions is a read-through cache over a store.Store, one entry per
// screen. Store failures never propagate: a failed load reads as a miss and
// a failed save is skipped.
type Positions struct {
	store    store.Store
	backend  platform.Backend
	resolver apps.Resolver
	metrics  Metrics
	logger   *slog.Logger
	now      func() time.Time

	ignore  []string
	screens map[string]store.Positions
}

var _ zone.PositionRecorder = (*Positions)(nil)

// PositionsOptions configures NewPositions.
type PositionsOptions struct {
	Store    store.Store
	Backend  platform.Backend
	Resolver apps.Resolver
	Metrics  Metrics
	Logger   *slog.Logger
	Now      func() time.Time
}

func NewPositions(opts PositionsOptions) *Positions {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NopMetrics{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Positions{
		store:    opts.Store,
		backend:  opts.Backend,
		resolver: opts.Resolver,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		now:      opts.Now,
		screens:  make(map[string]store.Positions),
	}
}

// load returns the cached positions for screenKey. ok is false when the
// store failed, in which case nothing may be written for the screen.
func (p *Positions) load(screenKey string) (store.Positions, bool) {
	if cached, ok := p.screens[screenKey]; ok {
		return cached, true
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	loaded, err := p.store.Load(ctx, screenKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		loaded = store.Positions{}
	case err != nil:
		p.metrics.StoreError("load")
		p.logger.Warn("remembered positions unavailable", "screen", screenKey, "error", err)
		return nil, false
	}
	p.screens[screenKey] = loaded
	return loaded, true
}

// Lookup returns the remembered record of app on screenKey.
func (p *Positions) Lookup(app, screenKey string) (store.Record, bool) {
	if app == "" {
		return store.Record{}, false
	}
	positions, ok := p.load(screenKey)
	if !ok {
		return store.Record{}, false
	}
	rec, ok := positions[app]
	return rec, ok
}

// PutZone remembers a zone and tile for app.
func (p *Positions) PutZone(app, screenKey string, z *zone.Zone, tileIdx int) {
	p.put(app, screenKey, store.Record{
		Zone:    z.ID(),
		ZoneID:  z.QualifiedID(),
		TileIdx: tileIdx,
	}, "zone")
}

// PutFrame remembers a bare frame for app.
func (p *Positions) PutFrame(app, screenKey string, frame tiling.Rect) {
	p.put(app, screenKey, store.Record{Frame: &frame}, "frame")
}

// The cache only takes the record once the store has accepted it.
func (p *Positions) put(app, screenKey string, rec store.Record, kind string) {
	if app == "" || screenKey == "" || p.Ignored(app) {
		return
	}
	cached, ok := p.load(screenKey)
	if !ok {
		p.logger.Warn("position save skipped", "app", app, "screen", screenKey)
		return
	}
	rec.Timestamp = p.now()
	positions := cached.Clone()
	positions[app] = rec

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := p.store.Save(ctx, screenKey, positions); err != nil {
		p.metrics.StoreError("save")
		p.logger.Warn("position save failed", "app", app, "screen", screenKey, "error", err)
		return
	}
	p.screens[screenKey] = positions
	p.metrics.Saved(kind)
	p.logger.Debug("position remembered", "app", app, "screen", screenKey, "kind", kind)
}

// RecordZone implements zone.PositionRecorder.
func (p *Positions) RecordZone(win platform.WindowID, screenKey string, z *zone.Zone, tileIdx int) {
	w, err := p.backend.Window(win)
	if err != nil {
		return
	}
	p.PutZone(p.resolver.AppName(w), screenKey, z, tileIdx)
}

// SetIgnoreApps replaces the apps that are never remembered. Names compare
// case-insensitively.
func (p *Positions) SetIgnoreApps(names []string) {
	p.ignore = append([]string(nil), names...)
}

// Ignored reports whether app is excluded from remembering.
func (p *Positions) Ignored(app string) bool {
	for _, name := range p.ignore {
		if strings.EqualFold(name, app) {
			return true
		}
	}
	return false
}

// Invalidate drops the cache so the next lookup reads the store again.
func (p *Positions) Invalidate() {
	p.screens = make(map[string]store.Positions)
}

// SetStore swaps the backing store and drops the cache.
func (p *Positions) SetStore(s store.Store) {
	p.store = s
	p.Invalidate()
}
