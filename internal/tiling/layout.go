package tiling

import (
	"fmt"
	"strings"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/platform"
)

// Canvas is the usable area of one screen partitioned into a cell grid.
// Every tile, preset or cell range, is a fraction of Bounds; the gap is
// split so neighbouring tiles are separated by exactly one gap.
type Canvas struct {
	Bounds Rect
	Grid   config.GridSize
	Gap    float64
}

// NewCanvas builds the canvas for display from its usable area, the
// configured screen padding, gap and grid.
func NewCanvas(display platform.Display, cfg *config.Config) (Canvas, error) {
	bounds := display.Usable
	if bounds.Width <= 0 || bounds.Height <= 0 {
		bounds = display.Bounds
	}

	padding := cfg.ScreenPadding
	bounds.X += padding.Left
	bounds.Y += padding.Top
	bounds.Width -= padding.Left + padding.Right
	bounds.Height -= padding.Top + padding.Bottom
	if bounds.Width < 1 || bounds.Height < 1 {
		return Canvas{}, fmt.Errorf(
			"screen_padding leaves no usable space on %s: %dx%d at %d,%d",
			display.Key(), bounds.Width, bounds.Height, bounds.X, bounds.Y,
		)
	}

	return Canvas{
		Bounds: RectFromPlatform(bounds),
		Grid:   cfg.GridFor(display.Name, display.Bounds.Width, display.Bounds.Height),
		Gap:    float64(cfg.GapSize),
	}, nil
}

// Fraction maps a rectangle given in fractions of the canvas (0..1) to
// screen coordinates, applying half the gap on each side.
func (c Canvas) Fraction(fx, fy, fw, fh float64) Rect {
	half := c.Gap / 2
	area := c.Bounds
	if c.Gap > 0 {
		area = area.Inset(half)
	}
	r := Rect{
		X:      area.X + area.Width*fx,
		Y:      area.Y + area.Height*fy,
		Width:  area.Width * fw,
		Height: area.Height * fh,
	}
	if c.Gap > 0 {
		r = r.Inset(half)
	}
	return r
}

// Full returns the whole canvas.
func (c Canvas) Full() Rect {
	return c.Fraction(0, 0, 1, 1)
}

// Region resolves a named preset.
func (c Canvas) Region(name config.RegionType) (Rect, bool) {
	const third = 1.0 / 3
	switch name {
	case config.RegionFull:
		return c.Fraction(0, 0, 1, 1), true
	case config.RegionLeftHalf:
		return c.Fraction(0, 0, 0.5, 1), true
	case config.RegionRightHalf:
		return c.Fraction(0.5, 0, 0.5, 1), true
	case config.RegionTopHalf:
		return c.Fraction(0, 0, 1, 0.5), true
	case config.RegionBottomHalf:
		return c.Fraction(0, 0.5, 1, 0.5), true
	case config.RegionLeftThird:
		return c.Fraction(0, 0, third, 1), true
	case config.RegionCenterThird:
		return c.Fraction(third, 0, third, 1), true
	case config.RegionRightThird:
		return c.Fraction(2*third, 0, third, 1), true
	case config.RegionLeftTwoThirds:
		return c.Fraction(0, 0, 2*third, 1), true
	case config.RegionRightTwoThirds:
		return c.Fraction(third, 0, 2*third, 1), true
	case config.RegionTopLeft:
		return c.Fraction(0, 0, 0.5, 0.5), true
	case config.RegionTopRight:
		return c.Fraction(0.5, 0, 0.5, 0.5), true
	case config.RegionBottomLeft:
		return c.Fraction(0, 0.5, 0.5, 0.5), true
	case config.RegionBottomRight:
		return c.Fraction(0.5, 0.5, 0.5, 0.5), true
	case config.RegionCenter:
		return c.Fraction(0.25, 0.25, 0.5, 0.5), true
	case config.RegionCenterTwoThirds:
		return c.Fraction(third/2, third/2, 2*third, 2*third), true
	case config.RegionCenterWide:
		return c.Fraction(third/2, 0, 2*third, 1), true
	}
	return Rect{}, false
}

// Cells resolves an inclusive block of grid cells.
func (c Canvas) Cells(cr config.CellRange) (Rect, error) {
	if !cr.Fits(c.Grid) {
		return Rect{}, fmt.Errorf("cell range exceeds %s grid", c.Grid)
	}
	cols := float64(c.Grid.Cols)
	rows := float64(c.Grid.Rows)
	return c.Fraction(
		float64(cr.Col0)/cols,
		float64(cr.Row0)/rows,
		float64(cr.Col1-cr.Col0+1)/cols,
		float64(cr.Row1-cr.Row0+1)/rows,
	), nil
}

// Resolve turns a tile spec into screen coordinates.
func (c Canvas) Resolve(spec config.TileSpec) (Rect, error) {
	if p := spec.Percent; p != nil {
		return c.Fraction(p.X/100, p.Y/100, p.Width/100, p.Height/100), nil
	}

	name := strings.ToLower(strings.TrimSpace(spec.Region))
	if r, ok := c.Region(config.RegionType(name)); ok {
		return r, nil
	}
	cr, err := config.ParseCellRange(name)
	if err != nil {
		return Rect{}, fmt.Errorf("unknown region %q: %w", spec.Region, err)
	}
	return c.Cells(cr)
}

// TileFromSpec converts a configured tile record into a Tile resolved on canvas.
func TileFromSpec(spec config.TileSpec, canvas Canvas) (*Tile, error) {
	rect, err := canvas.Resolve(spec)
	if err != nil {
		return nil, err
	}
	description := spec.Description
	if description == "" {
		description = spec.Region
	}
	t := NewTile(rect, description, spec.Tags...)
	if spec.Region != "" {
		t.Metadata["region"] = spec.Region
	}
	return t, nil
}

// Centered returns a rect of the given fraction of the canvas, centered.
func (c Canvas) Centered(fw, fh float64) Rect {
	return c.Fraction((1-fw)/2, (1-fh)/2, fw, fh)
}
