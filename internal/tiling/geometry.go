package tiling

import (
	"math"

	"github.com/1broseidon/zonetile/internal/platform"
)

// Rect is a rectangle in screen coordinates. Tiles keep fractional
// geometry; frames are rounded when handed to the window system.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Point is a location in screen coordinates.
type Point struct {
	X float64
	Y float64
}

// RectFromPlatform converts a window-system rect.
func RectFromPlatform(r platform.Rect) Rect {
	return Rect{X: float64(r.X), Y: float64(r.Y), Width: float64(r.Width), Height: float64(r.Height)}
}

// Platform rounds r to whole pixels, never below 1x1.
func (r Rect) Platform() platform.Rect {
	x := int(math.Round(r.X))
	y := int(math.Round(r.Y))
	right := int(math.Round(r.X + r.Width))
	bottom := int(math.Round(r.Y + r.Height))
	return platform.Rect{
		X:      x,
		Y:      y,
		Width:  max(1, right-x),
		Height: max(1, bottom-y),
	}
}

// Area returns width*height, or 0 for degenerate rects.
func (r Rect) Area() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Diagonal returns the length of r's diagonal.
func (r Rect) Diagonal() float64 {
	return math.Hypot(r.Width, r.Height)
}

// Intersect returns the overlap of r and o; the zero Rect when disjoint.
func (r Rect) Intersect(o Rect) Rect {
	x1 := math.Max(r.X, o.X)
	y1 := math.Max(r.Y, o.Y)
	x2 := math.Min(r.X+r.Width, o.X+o.Width)
	y2 := math.Min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Inset shrinks r by d on every edge.
func (r Rect) Inset(d float64) Rect {
	out := Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
	if out.Width < 1 {
		out.Width = 1
	}
	if out.Height < 1 {
		out.Height = 1
	}
	return out
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// WithinTolerance reports whether every edge of r is within tol of o.
func (r Rect) WithinTolerance(o Rect, tol float64) bool {
	return math.Abs(r.X-o.X) <= tol &&
		math.Abs(r.Y-o.Y) <= tol &&
		math.Abs((r.X+r.Width)-(o.X+o.Width)) <= tol &&
		math.Abs((r.Y+r.Height)-(o.Y+o.Height)) <= tol
}
