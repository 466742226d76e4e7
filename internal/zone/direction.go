package zone

import (
	"fmt"
	"strconv"
	"strings"
)

type directionKind int

const (
	dirForward directionKind = iota
	dirBackward
	dirFirst
	dirLast
	dirIndex
)

// Direction selects the next tile when cycling a window through a zone.
type Direction struct {
	kind  directionKind
	index int
}

var (
	Forward  = Direction{kind: dirForward}
	Backward = Direction{kind: dirBackward}
	First    = Direction{kind: dirFirst}
	Last     = Direction{kind: dirLast}
)

// Index jumps to tile d. Out-of-range values wrap into 1..N.
func Index(d int) Direction {
	return Direction{kind: dirIndex, index: d}
}

// ParseDirection accepts forward|next, backward|prev|previous, first, last
// or a tile number.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "forward", "next":
		return Forward, nil
	case "backward", "prev", "previous":
		return Backward, nil
	case "first":
		return First, nil
	case "last":
		return Last, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return Direction{}, fmt.Errorf("invalid direction %q", s)
	}
	return Index(n), nil
}

// Next returns the tile that follows current (1-based) in a zone of n tiles.
// n must be positive.
func (d Direction) Next(current, n int) int {
	switch d.kind {
	case dirBackward:
		return mod(current-2, n) + 1
	case dirFirst:
		return 1
	case dirLast:
		return n
	case dirIndex:
		return mod(d.index-1, n) + 1
	default:
		return mod(current, n) + 1
	}
}

func (d Direction) String() string {
	switch d.kind {
	case dirBackward:
		return "backward"
	case dirFirst:
		return "first"
	case dirLast:
		return "last"
	case dirIndex:
		return strconv.Itoa(d.index)
	default:
		return "forward"
	}
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}
