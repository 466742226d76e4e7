package tiling

import "sort"

// Tile is one candidate rectangle of a zone. Its geometry never changes;
// retargeting to another screen produces a new Tile via WithRect.
type Tile struct {
	rect        Rect
	Description string
	Tags        map[string]struct{}
	Metadata    map[string]any
}

// NewTile is the only Tile constructor.
func NewTile(rect Rect, description string, tags ...string) *Tile {
	t := &Tile{
		rect:        rect,
		Description: description,
		Tags:        make(map[string]struct{}, len(tags)),
		Metadata:    make(map[string]any),
	}
	for _, tag := range tags {
		t.Tags[tag] = struct{}{}
	}
	return t
}

// Rect returns the tile geometry.
func (t *Tile) Rect() Rect {
	return t.rect
}

// WithRect returns a copy of t with different geometry.
func (t *Tile) WithRect(r Rect) *Tile {
	out := NewTile(r, t.Description, t.TagList()...)
	for k, v := range t.Metadata {
		out.Metadata[k] = v
	}
	return out
}

// OverlapPercentage is the fraction of r's area covered by the tile. It is
// normalized by r, not by the tile, so a window fully inside a larger tile
// scores 1.
func (t *Tile) OverlapPercentage(r Rect) float64 {
	area := r.Area()
	if area == 0 {
		return 0
	}
	overlap := t.rect.Intersect(r).Area() / area
	if overlap > 1 {
		return 1
	}
	return overlap
}

// DistanceFromCenter is the distance between the tile center and p.
func (t *Tile) DistanceFromCenter(p Point) float64 {
	return t.rect.Center().Distance(p)
}

// SizeSimilarity averages the width ratio and height ratio (smaller over
// larger) of the tile and r.
func (t *Tile) SizeSimilarity(r Rect) float64 {
	return (ratio(t.rect.Width, r.Width) + ratio(t.rect.Height, r.Height)) / 2
}

// CenterProximity is 1 minus the center distance to r over diagonal,
// clamped to [0,1].
func (t *Tile) CenterProximity(r Rect, diagonal float64) float64 {
	if diagonal <= 0 {
		return 0
	}
	p := 1 - t.DistanceFromCenter(r.Center())/diagonal
	return min(1, max(0, p))
}

// HasTag reports whether the tile carries tag.
func (t *Tile) HasTag(tag string) bool {
	_, ok := t.Tags[tag]
	return ok
}

// TagList returns the tags sorted.
func (t *Tile) TagList() []string {
	out := make([]string, 0, len(t.Tags))
	for tag := range t.Tags {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

func ratio(a, b float64) float64 {
	lo, hi := min(a, b), max(a, b)
	if hi <= 0 || lo <= 0 {
		return 0
	}
	return lo / hi
}
