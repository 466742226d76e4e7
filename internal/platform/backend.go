package platform

import (
	"errors"
	"fmt"
)

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// ErrWindowNotFound is returned when a window no longer exists.
var ErrWindowNotFound = errors.New("window not found")

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the integer center point of r.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// Key returns the stable identifier used to partition zones and remembered
// positions by screen.
func (d Display) Key() string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("screen%d", d.ID)
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID         WindowID
	PID        int
	AppID      string
	Title      string
	Bounds     Rect
	DisplayID  int
	Standard   bool
	Minimized  bool
	Fullscreen bool
}

// EventKind identifies a window-system notification.
type EventKind int

const (
	EventWindowCreated EventKind = iota
	EventWindowMoved
	EventWindowResized
	EventWindowDestroyed
	EventScreensChanged
)

func (k EventKind) String() string {
	switch k {
	case EventWindowCreated:
		return "created"
	case EventWindowMoved:
		return "moved"
	case EventWindowResized:
		return "resized"
	case EventWindowDestroyed:
		return "destroyed"
	case EventScreensChanged:
		return "screens-changed"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is delivered to subscribers. Frame is set for move and resize events.
type Event struct {
	Kind   EventKind
	Window WindowID
	Frame  Rect
}

// EventHandler receives window-system notifications.
type EventHandler func(Event)

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	ActiveWindow() (WindowID, error)
	Windows() ([]Window, error)
	Window(id WindowID) (Window, error)
	SetFrame(id WindowID, frame Rect) error
	MoveToScreen(id WindowID, display Display) error
	Focus(id WindowID) error
	Subscribe(handler EventHandler) (unsubscribe func(), err error)
}

// DisplayFor returns the display whose bounds contain the center of r.
func DisplayFor(displays []Display, r Rect) (Display, bool) {
	cx, cy := r.Center()
	for _, d := range displays {
		if d.Bounds.Contains(cx, cy) {
			return d, true
		}
	}
	return Display{}, false
}

// DisplayByID looks a display up by its numeric id.
func DisplayByID(displays []Display, id int) (Display, bool) {
	for _, d := range displays {
		if d.ID == id {
			return d, true
		}
	}
	return Display{}, false
}

// DisplayByKey looks a display up by its screen key.
func DisplayByKey(displays []Display, key string) (Display, bool) {
	for _, d := range displays {
		if d.Key() == key {
			return d, true
		}
	}
	return Display{}, false
}
