package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/1broseidon/zonetile/internal/ipc"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/zone"
)

// Status reports instance, screens and counts.
func (d *Daemon) Status(ctx context.Context) (ipc.StatusData, error) {
	var out ipc.StatusData
	err := d.loop.Do(ctx, func() error {
		displays, err := d.backend.Displays()
		if err != nil {
			return fmt.Errorf("list displays: %w", err)
		}
		out = ipc.StatusData{
			InstanceID:     d.id.String(),
			Version:        d.version,
			UptimeSeconds:  int64(time.Since(d.started).Seconds()),
			ConfigPath:     d.configPath,
			StoreBackend:   d.cfg.Store.Backend,
			Screens:        screenInfos(displays),
			Zones:          d.registry.Len(),
			TrackedWindows: d.tracker.Len(),
		}
		return nil
	})
	return out, err
}

// Zones lists zone instances in registry order, optionally for one screen.
func (d *Daemon) Zones(ctx context.Context, screen string) (ipc.ZonesData, error) {
	out := ipc.ZonesData{Zones: []ipc.ZoneInfo{}}
	err := d.loop.Do(ctx, func() error {
		zones := d.registry.All()
		if screen != "" {
			zones = d.registry.ZonesOnScreen(screen)
		}
		for _, z := range zones {
			out.Zones = append(out.Zones, zoneInfo(z))
		}
		return nil
	})
	return out, err
}

// Windows lists standard windows with their app and assignment.
func (d *Daemon) Windows(ctx context.Context) (ipc.WindowsData, error) {
	out := ipc.WindowsData{Windows: []ipc.WindowInfo{}}
	err := d.loop.Do(ctx, func() error {
		windows, err := d.backend.Windows()
		if err != nil {
			return fmt.Errorf("list windows: %w", err)
		}
		displays, err := d.backend.Displays()
		if err != nil {
			return fmt.Errorf("list displays: %w", err)
		}
		active, _ := d.backend.ActiveWindow()

		for _, w := range windows {
			if !w.Standard {
				continue
			}
			info := ipc.WindowInfo{
				Window: uint32(w.ID),
				App:    d.resolver.AppName(w),
				Title:  w.Title,
				Frame:  w.Bounds,
				Active: w.ID == active,
			}
			if disp, ok := platform.DisplayFor(displays, w.Bounds); ok {
				info.Screen = disp.Key()
			}
			if z, ok := d.registry.ZoneOf(w.ID); ok {
				info.ZoneID = z.QualifiedID()
				info.TileIdx, _ = z.TileIndex(w.ID)
			}
			out.Windows = append(out.Windows, info)
		}
		return nil
	})
	return out, err
}

// Cycle moves a window through a zone's tiles.
func (d *Daemon) Cycle(ctx context.Context, req ipc.CyclePayload) (ipc.CycleData, error) {
	dir, err := zone.ParseDirection(req.Direction)
	if err != nil {
		return ipc.CycleData{}, err
	}

	var out ipc.CycleData
	err = d.loop.Do(ctx, func() error {
		win, err := d.target(req.Window)
		if err != nil {
			return err
		}
		res, err := d.reconciler.Cycle(win, req.Zone, dir)
		if err != nil {
			return err
		}
		out = ipc.CycleData{
			Window:  uint32(res.Window),
			Zone:    res.Zone,
			ZoneID:  res.ZoneID,
			TileIdx: res.TileIdx,
			Frame:   res.Frame,
		}
		return nil
	})
	return out, err
}

// FocusNext focuses the next window in a zone.
func (d *Daemon) FocusNext(ctx context.Context, zoneID string) (ipc.FocusData, error) {
	var out ipc.FocusData
	err := d.loop.Do(ctx, func() error {
		win, err := d.reconciler.FocusNextInZone(zoneID)
		if err != nil {
			return err
		}
		out.Window = uint32(win)
		return nil
	})
	return out, err
}

// Match reports what the matcher would pick for a window.
func (d *Daemon) Match(ctx context.Context, window uint32) (ipc.MatchData, error) {
	var out ipc.MatchData
	err := d.loop.Do(ctx, func() error {
		win, err := d.target(window)
		if err != nil {
			return err
		}
		m, ok, err := d.reconciler.Match(win)
		if err != nil {
			return err
		}
		out = ipc.MatchData{Window: uint32(win), Matched: ok}
		if ok {
			out.ZoneID = m.Zone.QualifiedID()
			out.TileIdx = m.TileIdx
			out.Score = m.Score
		}
		return nil
	})
	return out, err
}

// Remember persists a window's current position.
func (d *Daemon) Remember(ctx context.Context, window uint32) (ipc.RememberData, error) {
	var out ipc.RememberData
	err := d.loop.Do(ctx, func() error {
		win, err := d.target(window)
		if err != nil {
			return err
		}
		kind, err := d.reconciler.Remember(win)
		if err != nil {
			return err
		}
		out = ipc.RememberData{Window: uint32(win), Kind: kind}
		return nil
	})
	return out, err
}

// Unassign removes a window from its zone.
func (d *Daemon) Unassign(ctx context.Context, window uint32) error {
	return d.loop.Do(ctx, func() error {
		win, err := d.target(window)
		if err != nil {
			return err
		}
		return d.reconciler.Unassign(win)
	})
}

// target resolves 0 to the focused window.
func (d *Daemon) target(window uint32) (platform.WindowID, error) {
	if window != 0 {
		return platform.WindowID(window), nil
	}
	win, err := d.backend.ActiveWindow()
	if err != nil {
		return 0, fmt.Errorf("no target window: %w", err)
	}
	return win, nil
}

func screenInfos(displays []platform.Display) []ipc.ScreenInfo {
	out := make([]ipc.ScreenInfo, 0, len(displays))
	for _, d := range displays {
		out = append(out, ipc.ScreenInfo{
			ID:     d.ID,
			Key:    d.Key(),
			Bounds: d.Bounds,
			Usable: d.Usable,
		})
	}
	return out
}

func zoneInfo(z *zone.Zone) ipc.ZoneInfo {
	info := ipc.ZoneInfo{
		ID:          z.ID(),
		QualifiedID: z.QualifiedID(),
		Screen:      z.Key().Screen,
		Description: z.Description(),
		TriggerKey:  z.TriggerKey(),
		Tiles:       make([]ipc.TileInfo, 0, z.TileCount()),
	}
	for i, t := range z.Tiles() {
		info.Tiles = append(info.Tiles, ipc.TileInfo{
			Index:       i + 1,
			Description: t.Description,
			Frame:       t.Rect().Platform(),
		})
	}
	for _, win := range z.Windows() {
		idx, _ := z.TileIndex(win)
		info.Windows = append(info.Windows, ipc.ZoneWindowInfo{Window: uint32(win), TileIdx: idx})
	}
	return info
}
