package memory

import (
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/tiling"
)

func tilingRect(r platform.Rect) *tiling.Rect {
	out := tiling.RectFromPlatform(r)
	return &out
}
