package config

// BuiltinLayouts returns the built-in layout library.
//
// The "default" layout is always available; user files may replace it or
// add layouts keyed by screen name or "colsxrows".
func BuiltinLayouts() map[string]Layout {
	return map[string]Layout{
		DefaultLayoutName: {
			Zones: []ZoneSpec{
				{
					Key:         "1",
					Description: "left",
					Tiles: []TileSpec{
						{Region: string(RegionLeftHalf)},
						{Region: string(RegionLeftThird)},
						{Region: string(RegionLeftTwoThirds)},
					},
				},
				{
					Key:         "2",
					Description: "center",
					Tiles: []TileSpec{
						{Region: string(RegionCenterThird)},
						{Region: string(RegionCenterWide)},
					},
				},
				{
					Key:         "3",
					Description: "right",
					Tiles: []TileSpec{
						{Region: string(RegionRightHalf)},
						{Region: string(RegionRightThird)},
						{Region: string(RegionRightTwoThirds)},
					},
				},
				{
					Key:         "4",
					Description: "top",
					Tiles: []TileSpec{
						{Region: string(RegionTopHalf)},
						{Region: string(RegionTopLeft)},
						{Region: string(RegionTopRight)},
					},
				},
				{
					Key:         "5",
					Description: "bottom",
					Tiles: []TileSpec{
						{Region: string(RegionBottomHalf)},
						{Region: string(RegionBottomLeft)},
						{Region: string(RegionBottomRight)},
					},
				},
				{
					Key:         "9",
					Description: "maximized",
					Tiles: []TileSpec{
						{Region: string(RegionFull)},
					},
				},
			},
		},
		"4x2": {
			Zones: []ZoneSpec{
				{Key: "1", Description: "left column", Tiles: []TileSpec{{Region: "a1:a2"}, {Region: "a1:b2"}}},
				{Key: "2", Description: "center", Tiles: []TileSpec{{Region: "b1:c2"}, {Region: "b1:b2"}, {Region: "c1:c2"}}},
				{Key: "3", Description: "right column", Tiles: []TileSpec{{Region: "d1:d2"}, {Region: "c1:d2"}}},
				{Key: "9", Description: "maximized", Tiles: []TileSpec{{Region: string(RegionFull)}}},
			},
		},
	}
}
