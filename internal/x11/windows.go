package x11

import (
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WindowState summarises the _NET_WM_STATE flags zonetile cares about.
type WindowState struct {
	Hidden     bool
	Fullscreen bool
	Maximized  bool
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Best effort: some windows refuse state changes.
	_ = c.unmaximizeWindow(windowID)

	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// ForceMoveResizeWindow bypasses the window manager request path and
// configures the window directly. Used when a WM ignored the EWMH request.
func (c *Connection) ForceMoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	_ = c.unmaximizeWindow(windowID)
	xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	return ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height)
}

func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	state, err := c.GetWindowState(windowID)
	if err != nil {
		return err
	}
	if !state.Maximized {
		return nil
	}
	if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, "_NET_WM_STATE_MAXIMIZED_HORZ"); err != nil {
		return err
	}
	return ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, "_NET_WM_STATE_MAXIMIZED_VERT")
}

// GetWindowState reads _NET_WM_STATE for a window.
func (c *Connection) GetWindowState(windowID xproto.Window) (WindowState, error) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return WindowState{}, err
	}
	var ws WindowState
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_HIDDEN":
			ws.Hidden = true
		case "_NET_WM_STATE_FULLSCREEN":
			ws.Fullscreen = true
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			ws.Maximized = true
		}
	}
	return ws, nil
}

// GetWindowGeometry returns the root-relative client geometry of a window.
func (c *Connection) GetWindowGeometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_DIALOG",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	return len(types) == 0
}

func (c *Connection) hasWindowType(windowID xproto.Window, want string) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

// GetActiveWindow returns the window holding input focus per _NET_ACTIVE_WINDOW.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// GetClientList returns the managed top-level windows.
func (c *Connection) GetClientList() ([]xproto.Window, error) {
	return ewmh.ClientListGet(c.XUtil)
}

// GetWindowClass returns the WM_CLASS class name, or "" when unset.
func (c *Connection) GetWindowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

// GetWindowTitle prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) GetWindowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// GetWindowPID returns _NET_WM_PID, or 0 when unset.
func (c *Connection) GetWindowPID(windowID xproto.Window) int {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0
	}
	return int(pid)
}
