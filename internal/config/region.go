package config

import (
	"fmt"
	"strconv"
	"strings"
)

// RegionType names a tile preset.
type RegionType string

const (
	RegionFull            RegionType = "full"
	RegionLeftHalf        RegionType = "left-half"
	RegionRightHalf       RegionType = "right-half"
	RegionTopHalf         RegionType = "top-half"
	RegionBottomHalf      RegionType = "bottom-half"
	RegionLeftThird       RegionType = "left-third"
	RegionCenterThird     RegionType = "center-third"
	RegionRightThird      RegionType = "right-third"
	RegionLeftTwoThirds   RegionType = "left-two-thirds"
	RegionRightTwoThirds  RegionType = "right-two-thirds"
	RegionTopLeft         RegionType = "top-left"
	RegionTopRight        RegionType = "top-right"
	RegionBottomLeft      RegionType = "bottom-left"
	RegionBottomRight     RegionType = "bottom-right"
	RegionCenter          RegionType = "center"            // half width, half height
	RegionCenterTwoThirds RegionType = "center-two-thirds" // two thirds each way
	RegionCenterWide      RegionType = "center-wide"       // two thirds wide, full height
)

var regionPresets = map[RegionType]struct{}{
	RegionFull: {}, RegionLeftHalf: {}, RegionRightHalf: {}, RegionTopHalf: {},
	RegionBottomHalf: {}, RegionLeftThird: {}, RegionCenterThird: {}, RegionRightThird: {},
	RegionLeftTwoThirds: {}, RegionRightTwoThirds: {}, RegionTopLeft: {}, RegionTopRight: {},
	RegionBottomLeft: {}, RegionBottomRight: {}, RegionCenter: {}, RegionCenterTwoThirds: {},
	RegionCenterWide: {},
}

// IsRegionPreset reports whether name is a known preset.
func IsRegionPreset(name string) bool {
	_, ok := regionPresets[RegionType(strings.ToLower(strings.TrimSpace(name)))]
	return ok
}

// maxGridCols bounds grids to single-letter column names.
const maxGridCols = 26

// CellRange is an inclusive, zero-based block of grid cells.
type CellRange struct {
	Col0, Row0 int
	Col1, Row1 int
}

// ParseCellRange parses "b1" or "a1:c2". Columns are letters starting at
// 'a', rows are numbers starting at 1. Corners may be given in any order.
func ParseCellRange(s string) (CellRange, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CellRange{}, fmt.Errorf("empty cell range")
	}

	first, second, hasSecond := strings.Cut(s, ":")
	c0, r0, err := parseCell(first)
	if err != nil {
		return CellRange{}, err
	}
	c1, r1 := c0, r0
	if hasSecond {
		c1, r1, err = parseCell(second)
		if err != nil {
			return CellRange{}, err
		}
	}

	return CellRange{
		Col0: min(c0, c1),
		Row0: min(r0, r1),
		Col1: max(c0, c1),
		Row1: max(r0, r1),
	}, nil
}

func parseCell(s string) (col, row int, err error) {
	if len(s) < 2 {
		return 0, 0, fmt.Errorf("invalid cell %q", s)
	}
	letter := s[0]
	if letter < 'a' || letter > 'z' {
		return 0, 0, fmt.Errorf("invalid column in cell %q", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 1 {
		return 0, 0, fmt.Errorf("invalid row in cell %q", s)
	}
	return int(letter - 'a'), n - 1, nil
}

// Fits reports whether the range lies inside grid g.
func (r CellRange) Fits(g GridSize) bool {
	return r.Col1 < g.Cols && r.Row1 < g.Rows
}
