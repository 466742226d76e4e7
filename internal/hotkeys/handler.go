// Package hotkeys binds global key sequences to zone actions through
// xgbutil's keybind.
package hotkeys

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/platform"
)

// Actions are the callbacks behind the bindings. They are invoked on the X
// event goroutine; implementations hand the work to the dispatch loop.
type Actions interface {
	CycleOrAssign(zoneKey string)
	FocusNext(zoneKey string)
	RememberActive()
	UnassignActive()
}

// Action names a binding's purpose.
type Action string

const (
	ActionCycle    Action = "cycle"
	ActionFocus    Action = "focus"
	ActionRemember Action = "remember"
	ActionUnassign Action = "unassign"
)

// Binding is one key sequence and what it triggers.
type Binding struct {
	Keys   string
	Action Action
	Zone   string
}

// Bindings derives every binding from cfg, ordered by key sequence.
func Bindings(cfg *config.Config) []Binding {
	var out []Binding
	for sym, zoneKey := range cfg.TriggerKeys() {
		out = append(out,
			Binding{Keys: join(cfg.CycleModifier, sym), Action: ActionCycle, Zone: zoneKey},
			Binding{Keys: join(cfg.FocusModifier, sym), Action: ActionFocus, Zone: zoneKey},
		)
	}
	if cfg.RememberHotkey != "" {
		out = append(out, Binding{Keys: cfg.RememberHotkey, Action: ActionRemember})
	}
	if cfg.UnassignHotkey != "" {
		out = append(out, Binding{Keys: cfg.UnassignHotkey, Action: ActionUnassign})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Keys < out[j].Keys })
	return out
}

func join(modifier, sym string) string {
	modifier = strings.Trim(strings.TrimSpace(modifier), "-")
	if modifier == "" {
		return sym
	}
	return modifier + "-" + sym
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	actions Actions
	logger  *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler. The backend must expose X11
// internals.
func NewHandler(backend platform.Backend, actions Actions, logger *slog.Logger) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok {
		return nil, fmt.Errorf("hotkeys require an X11 backend")
	}
	if logger == nil {
		logger = slog.Default()
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:      xu,
		root:    accessor.RootWindow(),
		actions: actions,
		logger:  logger,
	}, nil
}

// Apply replaces all grabs with the bindings of cfg. A sequence that cannot
// be grabbed is logged and skipped; the count of bound sequences is returned.
func (h *Handler) Apply(cfg *config.Config) int {
	keybind.Detach(h.xu, h.root)

	bound := 0
	for _, b := range Bindings(cfg) {
		if err := h.RegisterFunc(b.Keys, h.callback(b)); err != nil {
			h.logger.Warn("hotkey not bound", "keys", b.Keys, "action", b.Action, "zone", b.Zone, "error", err)
			continue
		}
		bound++
	}
	h.logger.Info("hotkeys bound", "count", bound)
	return bound
}

func (h *Handler) callback(b Binding) func() {
	switch b.Action {
	case ActionCycle:
		return func() { h.actions.CycleOrAssign(b.Zone) }
	case ActionFocus:
		return func() { h.actions.FocusNext(b.Zone) }
	case ActionRemember:
		return h.actions.RememberActive
	default:
		return h.actions.UnassignActive
	}
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
