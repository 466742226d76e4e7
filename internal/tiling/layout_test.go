package tiling

import (
	"math"
	"testing"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/platform"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func rectApprox(a, b Rect) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Width, b.Width) && approx(a.Height, b.Height)
}

func TestCanvas_PresetsWithoutGap(t *testing.T) {
	c := Canvas{Bounds: Rect{X: 0, Y: 0, Width: 1200, Height: 800}, Grid: config.GridSize{Cols: 3, Rows: 2}}

	cases := []struct {
		region config.RegionType
		want   Rect
	}{
		{config.RegionFull, Rect{0, 0, 1200, 800}},
		{config.RegionLeftHalf, Rect{0, 0, 600, 800}},
		{config.RegionRightHalf, Rect{600, 0, 600, 800}},
		{config.RegionBottomRight, Rect{600, 400, 600, 400}},
		{config.RegionRightThird, Rect{800, 0, 400, 800}},
		{config.RegionCenter, Rect{300, 200, 600, 400}},
	}
	for _, tc := range cases {
		got, ok := c.Region(tc.region)
		if !ok {
			t.Fatalf("%s: expected preset to resolve", tc.region)
		}
		if !rectApprox(got, tc.want) {
			t.Fatalf("%s: expected %+v, got %+v", tc.region, tc.want, got)
		}
	}
}

func TestCanvas_GapSeparatesNeighboursByOneGap(t *testing.T) {
	c := Canvas{Bounds: Rect{X: 0, Y: 0, Width: 1200, Height: 800}, Grid: config.GridSize{Cols: 3, Rows: 2}, Gap: 10}

	full := c.Full()
	if !rectApprox(full, Rect{10, 10, 1180, 780}) {
		t.Fatalf("expected full to be inset by one gap, got %+v", full)
	}

	left, _ := c.Region(config.RegionLeftHalf)
	right, _ := c.Region(config.RegionRightHalf)
	if !rectApprox(left, Rect{10, 10, 585, 780}) {
		t.Fatalf("unexpected left half %+v", left)
	}
	if gap := right.X - (left.X + left.Width); !approx(gap, 10) {
		t.Fatalf("expected 10px between halves, got %v", gap)
	}
}

func TestCanvas_CellRanges(t *testing.T) {
	c := Canvas{Bounds: Rect{X: 100, Y: 0, Width: 1200, Height: 800}, Grid: config.GridSize{Cols: 3, Rows: 2}}

	got, err := c.Resolve(config.TileSpec{Region: "a1:b2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rectApprox(got, Rect{100, 0, 800, 800}) {
		t.Fatalf("expected two left columns, got %+v", got)
	}

	got, err = c.Resolve(config.TileSpec{Region: "c2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rectApprox(got, Rect{900, 400, 400, 400}) {
		t.Fatalf("expected bottom-right cell, got %+v", got)
	}

	if _, err := c.Resolve(config.TileSpec{Region: "d1"}); err == nil {
		t.Fatalf("expected error for a cell outside the grid")
	}
}

func TestCanvas_PercentSpec(t *testing.T) {
	c := Canvas{Bounds: Rect{X: 0, Y: 0, Width: 1000, Height: 500}, Grid: config.GridSize{Cols: 2, Rows: 2}}

	got, err := c.Resolve(config.TileSpec{Percent: &config.PercentRect{X: 10, Y: 20, Width: 50, Height: 50}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rectApprox(got, Rect{100, 100, 500, 250}) {
		t.Fatalf("unexpected percent rect %+v", got)
	}
}

func TestNewCanvas_AppliesPaddingAndUsableArea(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.GapSize = 0
	cfg.ScreenPadding = config.Margins{Top: 10, Left: 20}
	display := platform.Display{
		ID:     0,
		Name:   "DP-1",
		Bounds: platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
		Usable: platform.Rect{X: 0, Y: 30, Width: 1920, Height: 1050},
	}

	c, err := NewCanvas(display, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rectApprox(c.Bounds, Rect{20, 40, 1900, 1040}) {
		t.Fatalf("unexpected canvas bounds %+v", c.Bounds)
	}
	if c.Grid != cfg.DefaultGrid {
		t.Fatalf("expected default grid, got %s", c.Grid)
	}
}

func TestNewCanvas_PaddingLeavingNoSpaceErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ScreenPadding = config.Margins{Left: 600, Right: 600}
	display := platform.Display{Bounds: platform.Rect{Width: 1000, Height: 800}, Usable: platform.Rect{Width: 1000, Height: 800}}

	if _, err := NewCanvas(display, cfg); err == nil {
		t.Fatalf("expected error for padding wider than the screen")
	}
}

func TestRect_PlatformRoundsEdges(t *testing.T) {
	r := Rect{X: 10.4, Y: 10.6, Width: 99.8, Height: 0.2}
	got := r.Platform()
	if got.X != 10 || got.Y != 11 || got.Width != 100 || got.Height != 1 {
		t.Fatalf("unexpected rounding %+v", got)
	}
}

func TestRect_WithinTolerance(t *testing.T) {
	a := Rect{0, 0, 100, 100}
	if !a.WithinTolerance(Rect{10, -10, 90, 120}, 10) {
		t.Fatalf("expected edges within 10px to match")
	}
	if a.WithinTolerance(Rect{11, 0, 89, 100}, 10) {
		t.Fatalf("expected 11px offset to fail")
	}
}

func TestTileFromSpec_CarriesMetadata(t *testing.T) {
	c := Canvas{Bounds: Rect{0, 0, 1200, 800}, Grid: config.GridSize{Cols: 3, Rows: 2}}

	tile, err := TileFromSpec(config.TileSpec{Region: "left-half", Tags: []string{"code"}}, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tile.Description != "left-half" {
		t.Fatalf("expected description to default to region, got %q", tile.Description)
	}
	if !tile.HasTag("code") {
		t.Fatalf("expected tag to be kept")
	}
	if tile.Metadata["region"] != "left-half" {
		t.Fatalf("expected region metadata, got %v", tile.Metadata)
	}

	moved := tile.WithRect(Rect{1200, 0, 600, 800})
	if moved.Rect() == tile.Rect() {
		t.Fatalf("expected new geometry")
	}
	if tile.Rect() != (Rect{0, 0, 600, 800}) {
		t.Fatalf("expected original tile unchanged, got %+v", tile.Rect())
	}
	if moved.Description != tile.Description || !moved.HasTag("code") || moved.Metadata["region"] != "left-half" {
		t.Fatalf("expected metadata to carry over, got %+v", moved)
	}

	if _, err := TileFromSpec(config.TileSpec{Region: "nowhere"}, c); err == nil {
		t.Fatalf("expected error for unknown region")
	}
}
