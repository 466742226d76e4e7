//go:build linux

package platform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/1broseidon/zonetile/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection

	mu       sync.Mutex
	handlers map[int]EventHandler
	nextSub  int
	frames   map[WindowID]Rect
	watcher  *x11.ClientWatcher
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{
		conn:     conn,
		handlers: make(map[int]EventHandler),
		frames:   make(map[WindowID]Rect),
	}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn), nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// StopEventLoop makes a running EventLoop return.
func (b *LinuxBackend) StopEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays with their usable work areas.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: monitorRect(m),
			Usable: monitorRect(conn.UsableArea(m)),
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// Windows lists all managed top-level windows.
func (b *LinuxBackend) Windows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.GetClientList()
	if err != nil {
		return nil, err
	}
	displays, err := b.Displays()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, id := range clients {
		w, err := b.describe(conn, displays, id)
		if err != nil {
			continue
		}
		windows = append(windows, w)
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].ID < windows[j].ID
	})
	return windows, nil
}

// Window describes a single window. ErrWindowNotFound is returned once the
// window has been destroyed.
func (b *LinuxBackend) Window(id WindowID) (Window, error) {
	conn, err := b.connection()
	if err != nil {
		return Window{}, err
	}
	displays, err := b.Displays()
	if err != nil {
		return Window{}, err
	}
	return b.describe(conn, displays, xproto.Window(id))
}

// SetFrame moves and resizes a window to the specified bounds.
func (b *LinuxBackend) SetFrame(id WindowID, frame Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MoveResizeWindow(xproto.Window(id), frame.X, frame.Y, frame.Width, frame.Height)
}

// MoveToScreen moves a window onto display, keeping its size where it fits
// and its offset relative to the usable area origin.
func (b *LinuxBackend) MoveToScreen(id WindowID, display Display) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	x, y, w, h, err := conn.GetWindowGeometry(xproto.Window(id))
	if err != nil {
		return fmt.Errorf("%w: %d", ErrWindowNotFound, id)
	}

	target := display.Usable
	if current, ok := b.displayContaining(Rect{X: x, Y: y, Width: w, Height: h}); ok && current.ID == display.ID {
		return nil
	}

	w = min(w, target.Width)
	h = min(h, target.Height)
	return conn.ForceMoveResizeWindow(xproto.Window(id), target.X, target.Y, w, h)
}

// Focus activates and raises a window.
func (b *LinuxBackend) Focus(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.FocusWindow(xproto.Window(id))
}

// Subscribe registers handler for window-system notifications. The first
// subscription starts watching the X client list; if that fails the handler
// is dropped and the error returned.
func (b *LinuxBackend) Subscribe(handler EventHandler) (func(), error) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.handlers[id] = handler
	needWatch := b.watcher == nil
	b.mu.Unlock()

	if needWatch {
		if err := b.startWatching(); err != nil {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
			return nil, fmt.Errorf("failed to watch X client list: %w", err)
		}
	}

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}, nil
}

func (b *LinuxBackend) startWatching() error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	watcher, err := conn.WatchClients(x11.ClientCallbacks{
		Created: func(win xproto.Window) {
			b.rememberFrame(conn, win)
			b.emit(Event{Kind: EventWindowCreated, Window: WindowID(win)})
		},
		Configured: b.onConfigured,
		Destroyed: func(win xproto.Window) {
			b.mu.Lock()
			delete(b.frames, WindowID(win))
			b.mu.Unlock()
			b.emit(Event{Kind: EventWindowDestroyed, Window: WindowID(win)})
		},
		ScreensChanged: func() {
			b.emit(Event{Kind: EventScreensChanged})
		},
	})
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.watcher = watcher
	b.mu.Unlock()
	return nil
}

func (b *LinuxBackend) onConfigured(win xproto.Window) {
	x, y, w, h, err := b.conn.GetWindowGeometry(win)
	if err != nil {
		return
	}
	frame := Rect{X: x, Y: y, Width: w, Height: h}

	b.mu.Lock()
	prev, seen := b.frames[WindowID(win)]
	b.frames[WindowID(win)] = frame
	b.mu.Unlock()

	switch {
	case seen && prev == frame:
		return
	case seen && (prev.Width != frame.Width || prev.Height != frame.Height):
		b.emit(Event{Kind: EventWindowResized, Window: WindowID(win), Frame: frame})
	default:
		b.emit(Event{Kind: EventWindowMoved, Window: WindowID(win), Frame: frame})
	}
}

func (b *LinuxBackend) rememberFrame(conn *x11.Connection, win xproto.Window) {
	x, y, w, h, err := conn.GetWindowGeometry(win)
	if err != nil {
		return
	}
	b.mu.Lock()
	b.frames[WindowID(win)] = Rect{X: x, Y: y, Width: w, Height: h}
	b.mu.Unlock()
}

func (b *LinuxBackend) emit(ev Event) {
	b.mu.Lock()
	handlers := make([]EventHandler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

func (b *LinuxBackend) describe(conn *x11.Connection, displays []Display, id xproto.Window) (Window, error) {
	x, y, w, h, err := conn.GetWindowGeometry(id)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %d", ErrWindowNotFound, id)
	}
	bounds := Rect{X: x, Y: y, Width: w, Height: h}

	state, _ := conn.GetWindowState(id)
	displayID := -1
	if d, ok := DisplayFor(displays, bounds); ok {
		displayID = d.ID
	}

	return Window{
		ID:         WindowID(id),
		PID:        conn.GetWindowPID(id),
		AppID:      conn.GetWindowClass(id),
		Title:      conn.GetWindowTitle(id),
		Bounds:     bounds,
		DisplayID:  displayID,
		Standard:   conn.IsNormalWindow(id),
		Minimized:  state.Hidden,
		Fullscreen: state.Fullscreen,
	}, nil
}

func (b *LinuxBackend) displayContaining(r Rect) (Display, bool) {
	displays, err := b.Displays()
	if err != nil {
		return Display{}, false
	}
	return DisplayFor(displays, r)
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func monitorRect(m x11.Monitor) Rect {
	return Rect{
		X:      m.X,
		Y:      m.Y,
		Width:  m.Width,
		Height: m.Height,
	}
}
