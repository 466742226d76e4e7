// Package placement infers the most plausible zone and tile for an
// arbitrary window rectangle.
package placement

import (
	"github.com/1broseidon/zonetile/internal/tiling"
	"github.com/1broseidon/zonetile/internal/zone"
)

// Scoring weights and the acceptance floor. These are tuned values; keep
// them stable so remembered layouts keep matching the same way.
const (
	OverlapWeight   = 0.5
	SizeWeight      = 0.3
	ProximityWeight = 0.2
	MinScore        = 0.4
)

// Match is a matcher hit. TileIdx is 1-based.
type Match struct {
	Zone    *zone.Zone
	TileIdx int
	Score   float64
}

// Matcher scores zones of a registry.
type Matcher struct {
	registry *zone.Registry
}

func NewMatcher(registry *zone.Registry) *Matcher {
	return &Matcher{registry: registry}
}

// FindBestZoneForWindow considers only zones bound to screenKey and returns
// the highest scoring tile. The first candidate wins ties, in registry then
// tile order. Scores at or below MinScore are rejected.
func (m *Matcher) FindBestZoneForWindow(window tiling.Rect, screenKey string) (Match, bool) {
	var (
		best  Match
		found bool
	)
	for _, z := range m.registry.ZonesOnScreen(screenKey) {
		screen, ok := z.Screen()
		if !ok {
			continue
		}
		diagonal := tiling.RectFromPlatform(screen.Bounds).Diagonal()
		for i, tile := range z.Tiles() {
			s := Score(tile, window, diagonal)
			if !found || s > best.Score {
				best = Match{Zone: z, TileIdx: i + 1, Score: s}
				found = true
			}
		}
	}
	if !found || best.Score <= MinScore {
		return Match{}, false
	}
	return best, true
}

// Score rates how well window fits tile on a screen with the given
// diagonal, in [0,1].
func Score(tile *tiling.Tile, window tiling.Rect, diagonal float64) float64 {
	s := OverlapWeight*tile.OverlapPercentage(window) +
		SizeWeight*tile.SizeSimilarity(window) +
		ProximityWeight*tile.CenterProximity(window, diagonal)
	return min(1, max(0, s))
}
