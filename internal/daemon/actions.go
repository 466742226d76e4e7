package daemon

import (
	"github.com/1broseidon/zonetile/internal/hotkeys"
	"github.com/1broseidon/zonetile/internal/platform"
)

// hotkeyActions forwards key presses from the X event goroutine to the
// dispatch loop. Failures are logged; there is nobody to return them to.
type hotkeyActions struct {
	d *Daemon
}

var _ hotkeys.Actions = (*hotkeyActions)(nil)

func (a *hotkeyActions) CycleOrAssign(zoneKey string) {
	a.withActive("cycle", func(win platform.WindowID) error {
		res, err := a.d.reconciler.CycleOrAssign(win, zoneKey)
		if err == nil {
			a.d.logger.Debug("cycled", "window", win, "zone", res.ZoneID, "tile", res.TileIdx)
		}
		return err
	})
}

func (a *hotkeyActions) FocusNext(zoneKey string) {
	a.d.loop.Post(func() {
		if _, err := a.d.reconciler.FocusNextInZone(zoneKey); err != nil {
			a.d.logger.Info("focus next failed", "zone", zoneKey, "error", err)
		}
	})
}

func (a *hotkeyActions) RememberActive() {
	a.withActive("remember", func(win platform.WindowID) error {
		kind, err := a.d.reconciler.Remember(win)
		if err == nil {
			a.d.logger.Info("position remembered", "window", win, "kind", kind)
		}
		return err
	})
}

func (a *hotkeyActions) UnassignActive() {
	a.withActive("unassign", a.d.reconciler.Unassign)
}

func (a *hotkeyActions) withActive(action string, fn func(platform.WindowID) error) {
	a.d.loop.Post(func() {
		win, err := a.d.backend.ActiveWindow()
		if err != nil {
			a.d.logger.Info("no active window", "action", action, "error", err)
			return
		}
		if err := fn(win); err != nil {
			a.d.logger.Info("hotkey action failed", "action", action, "window", win, "error", err)
		}
	})
}
