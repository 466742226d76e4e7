// Package platformtest provides an in-memory window system for tests.
package platformtest

import (
	"fmt"
	"sort"
	"sync"

	"github.com/1broseidon/zonetile/internal/platform"
)

// FrameCall records a SetFrame request.
type FrameCall struct {
	Window  platform.WindowID
	Frame   platform.Rect
	Ignored bool
}

// Backend is a fake platform.Backend. SetFrame applies geometry immediately
// unless IgnoreSetFrames has queued ignores for the window.
type Backend struct {
	mu       sync.Mutex
	displays []platform.Display
	windows  map[platform.WindowID]platform.Window
	active   platform.WindowID
	ignore   map[platform.WindowID]int
	handlers map[int]platform.EventHandler
	nextSub  int

	FrameCalls  []FrameCall
	ScreenMoves []platform.WindowID
	Focused     []platform.WindowID

	// SubscribeErr, when set, fails Subscribe.
	SubscribeErr error
}

var _ platform.Backend = (*Backend)(nil)

// New returns a fake backend with the given displays.
func New(displays ...platform.Display) *Backend {
	return &Backend{
		displays: displays,
		windows:  make(map[platform.WindowID]platform.Window),
		ignore:   make(map[platform.WindowID]int),
		handlers: make(map[int]platform.EventHandler),
	}
}

// Screen builds a display whose bounds and usable area are identical.
func Screen(id int, name string, x, y, w, h int) platform.Display {
	r := platform.Rect{X: x, Y: y, Width: w, Height: h}
	return platform.Display{ID: id, Name: name, Bounds: r, Usable: r}
}

// AddWindow registers a window and resolves its display from its bounds.
func (b *Backend) AddWindow(w platform.Window) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w.DisplayID = b.displayIDLocked(w.Bounds)
	b.windows[w.ID] = w
}

// NormalWindow is a convenience constructor for a standard window.
func NormalWindow(id platform.WindowID, app string, x, y, w, h int) platform.Window {
	return platform.Window{
		ID:       id,
		AppID:    app,
		Title:    app,
		Bounds:   platform.Rect{X: x, Y: y, Width: w, Height: h},
		Standard: true,
	}
}

// RemoveWindow deletes a window as if it had been closed.
func (b *Backend) RemoveWindow(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.windows, id)
}

// SetDisplays replaces the display topology.
func (b *Backend) SetDisplays(displays ...platform.Display) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.displays = displays
	for id, w := range b.windows {
		w.DisplayID = b.displayIDLocked(w.Bounds)
		b.windows[id] = w
	}
}

// SetActive sets the focused window.
func (b *Backend) SetActive(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = id
}

// IgnoreSetFrames makes the next n SetFrame calls for id no-ops.
func (b *Backend) IgnoreSetFrames(id platform.WindowID, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ignore[id] = n
}

// Frame returns the current frame of a window.
func (b *Backend) Frame(id platform.WindowID) platform.Rect {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.windows[id].Bounds
}

// MoveWindow changes a window's frame without recording a call, as a user
// drag would.
func (b *Backend) MoveWindow(id platform.WindowID, frame platform.Rect) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[id]
	if !ok {
		return
	}
	w.Bounds = frame
	w.DisplayID = b.displayIDLocked(frame)
	b.windows[id] = w
}

// Emit delivers ev to all subscribers synchronously.
func (b *Backend) Emit(ev platform.Event) {
	b.mu.Lock()
	ids := make([]int, 0, len(b.handlers))
	for id := range b.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]platform.EventHandler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

func (b *Backend) Displays() ([]platform.Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]platform.Display, len(b.displays))
	copy(out, b.displays)
	return out, nil
}

func (b *Backend) ActiveWindow() (platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == 0 {
		return 0, fmt.Errorf("no active window")
	}
	return b.active, nil
}

func (b *Backend) Windows() ([]platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]platform.Window, 0, len(b.windows))
	for _, w := range b.windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (b *Backend) Window(id platform.WindowID) (platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[id]
	if !ok {
		return platform.Window{}, fmt.Errorf("%w: %d", platform.ErrWindowNotFound, id)
	}
	return w, nil
}

func (b *Backend) SetFrame(id platform.WindowID, frame platform.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[id]
	if !ok {
		return fmt.Errorf("%w: %d", platform.ErrWindowNotFound, id)
	}
	if b.ignore[id] > 0 {
		b.ignore[id]--
		b.FrameCalls = append(b.FrameCalls, FrameCall{Window: id, Frame: frame, Ignored: true})
		return nil
	}
	b.FrameCalls = append(b.FrameCalls, FrameCall{Window: id, Frame: frame})
	w.Bounds = frame
	w.DisplayID = b.displayIDLocked(frame)
	b.windows[id] = w
	return nil
}

func (b *Backend) MoveToScreen(id platform.WindowID, display platform.Display) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[id]
	if !ok {
		return fmt.Errorf("%w: %d", platform.ErrWindowNotFound, id)
	}
	b.ScreenMoves = append(b.ScreenMoves, id)
	if w.DisplayID == display.ID {
		return nil
	}
	w.Bounds.X = display.Usable.X
	w.Bounds.Y = display.Usable.Y
	w.Bounds.Width = min(w.Bounds.Width, display.Usable.Width)
	w.Bounds.Height = min(w.Bounds.Height, display.Usable.Height)
	w.DisplayID = display.ID
	b.windows[id] = w
	return nil
}

func (b *Backend) Focus(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.windows[id]; !ok {
		return fmt.Errorf("%w: %d", platform.ErrWindowNotFound, id)
	}
	b.active = id
	b.Focused = append(b.Focused, id)
	return nil
}

func (b *Backend) Subscribe(handler platform.EventHandler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SubscribeErr != nil {
		return nil, b.SubscribeErr
	}
	id := b.nextSub
	b.nextSub++
	b.handlers[id] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}, nil
}

// SetFrameCount returns how many SetFrame calls targeted id.
func (b *Backend) SetFrameCount(id platform.WindowID) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.FrameCalls {
		if c.Window == id {
			n++
		}
	}
	return n
}

func (b *Backend) displayIDLocked(r platform.Rect) int {
	if d, ok := platform.DisplayFor(b.displays, r); ok {
		return d.ID
	}
	return -1
}
