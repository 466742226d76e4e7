package zone

import (
	"testing"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/platform/platformtest"
	"github.com/1broseidon/zonetile/internal/tiling"
	"github.com/1broseidon/zonetile/internal/winstate"
	"github.com/stretchr/testify/require"
)

type recordedZone struct {
	win    platform.WindowID
	screen string
	zone   string
	tile   int
}

type fakeRecorder struct {
	calls []recordedZone
}

func (f *fakeRecorder) RecordZone(win platform.WindowID, screenKey string, z *Zone, tileIdx int) {
	f.calls = append(f.calls, recordedZone{win: win, screen: screenKey, zone: z.QualifiedID(), tile: tileIdx})
}

type fixture struct {
	backend  *platformtest.Backend
	tracker  *winstate.Tracker
	recorder *fakeRecorder
	registry *Registry
	screen   platform.Display
	cfg      *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	screen := platformtest.Screen(1, "DP-1", 0, 0, 1920, 1080)
	f := &fixture{
		backend:  platformtest.New(screen),
		tracker:  winstate.NewTracker(nil),
		recorder: &fakeRecorder{},
		screen:   screen,
		cfg:      config.DefaultConfig(),
	}
	f.cfg.GapSize = 0
	f.cfg.ScreenPadding = config.Margins{}
	f.registry = NewRegistry(Options{
		Backend:  f.backend,
		Tracker:  f.tracker,
		Recorder: f.recorder,
	})
	return f
}

func (f *fixture) threeTileZone(t *testing.T) *Zone {
	t.Helper()
	screen := f.screen
	z, err := f.registry.NewZone(ZoneOptions{
		Key:    Key{Logical: "left", Screen: screen.Key()},
		Screen: &screen,
		Tiles: []*tiling.Tile{
			tiling.NewTile(tiling.Rect{X: 0, Y: 0, Width: 960, Height: 1080}, "half"),
			tiling.NewTile(tiling.Rect{X: 0, Y: 0, Width: 640, Height: 1080}, "third"),
			tiling.NewTile(tiling.Rect{X: 0, Y: 0, Width: 1280, Height: 1080}, "two-thirds"),
		},
	})
	require.NoError(t, err)
	return z
}

func TestDirection_Next(t *testing.T) {
	cases := []struct {
		dir     Direction
		current int
		n       int
		want    int
	}{
		{Forward, 1, 3, 2},
		{Forward, 3, 3, 1},
		{Backward, 1, 3, 3},
		{Backward, 2, 3, 1},
		{First, 3, 3, 1},
		{Last, 1, 3, 3},
		{Index(2), 1, 3, 2},
		{Index(5), 1, 3, 2},
		{Index(0), 1, 3, 3},
		{Index(-1), 1, 3, 2},
		{Forward, 1, 1, 1},
		{Backward, 1, 1, 1},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.dir.Next(tc.current, tc.n), "%s from %d of %d", tc.dir, tc.current, tc.n)
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{
		"":         Forward,
		"next":     Forward,
		"Backward": Backward,
		"prev":     Backward,
		"first":    First,
		"last":     Last,
		"3":        Index(3),
	} {
		got, err := ParseDirection(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseDirection("sideways")
	require.Error(t, err)
}

func TestKey_Qualified(t *testing.T) {
	require.Equal(t, "left_DP-1", Key{Logical: "left", Screen: "DP-1"}.Qualified())
	require.Equal(t, "left", Key{Logical: "left"}.Qualified())
}

func TestZone_CycleWrapsAround(t *testing.T) {
	f := newFixture(t)
	z := f.threeTileZone(t)

	var got []int
	for i := 0; i < 4; i++ {
		idx, err := z.CycleWindow(42, Forward)
		require.NoError(t, err)
		got = append(got, idx)
	}
	require.Equal(t, []int{1, 2, 3, 1}, got)

	idx, err := z.CycleWindow(42, Backward)
	require.NoError(t, err)
	require.Equal(t, 3, idx)

	rec, ok := f.tracker.Get(42)
	require.True(t, ok)
	require.Equal(t, "left_DP-1", rec.ZoneID)
	require.Equal(t, 3, rec.TileIdx)
}

func TestZone_CycleFullCircleReturnsToStart(t *testing.T) {
	f := newFixture(t)
	z := f.threeTileZone(t)
	require.NoError(t, z.AddWindow(7, 2))

	for _, dir := range []Direction{Forward, Backward} {
		for i := 0; i < z.TileCount(); i++ {
			_, err := z.CycleWindow(7, dir)
			require.NoError(t, err)
		}
		idx, _ := z.TileIndex(7)
		require.Equal(t, 2, idx, dir.String())
	}
}

func TestZone_AddWindowDetachesFromOtherZones(t *testing.T) {
	f := newFixture(t)
	a := f.threeTileZone(t)
	screen := f.screen
	b, err := f.registry.NewZone(ZoneOptions{
		Key:    Key{Logical: "right", Screen: screen.Key()},
		Screen: &screen,
		Tiles:  []*tiling.Tile{tiling.NewTile(tiling.Rect{X: 960, Y: 0, Width: 960, Height: 1080}, "half")},
	})
	require.NoError(t, err)

	require.NoError(t, a.AddWindow(5, 2))
	require.NoError(t, b.AddWindow(5, 1))

	_, inA := a.TileIndex(5)
	require.False(t, inA)
	z, ok := f.registry.ZoneOf(5)
	require.True(t, ok)
	require.Same(t, b, z)

	rec, _ := f.tracker.Get(5)
	require.Equal(t, "right", rec.Zone)
	require.Len(t, f.recorder.calls, 2)
	require.Equal(t, recordedZone{win: 5, screen: "DP-1", zone: "right_DP-1", tile: 1}, f.recorder.calls[1])
}

func TestZone_InvalidTileAndEmptyZone(t *testing.T) {
	f := newFixture(t)
	z := f.threeTileZone(t)
	require.ErrorIs(t, z.AddWindow(1, 0), ErrInvalidTile)
	require.ErrorIs(t, z.AddWindow(1, 4), ErrInvalidTile)
	require.False(t, f.tracker.Has(1))

	empty, err := f.registry.NewZone(ZoneOptions{Key: Key{Logical: "empty"}})
	require.NoError(t, err)
	_, err = empty.CycleWindow(1, Forward)
	require.ErrorIs(t, err, ErrNoTiles)
}

func TestZone_UnboundZoneDoesNotRecord(t *testing.T) {
	f := newFixture(t)
	z, err := f.registry.NewZone(ZoneOptions{
		Key:   Key{Logical: "scratch"},
		Tiles: []*tiling.Tile{tiling.NewTile(tiling.Rect{Width: 100, Height: 100}, "small")},
	})
	require.NoError(t, err)
	require.NoError(t, z.AddWindow(3, 1))
	require.Empty(t, f.recorder.calls)
	require.True(t, f.tracker.Has(3))
}

func TestZone_RemoveWindow(t *testing.T) {
	f := newFixture(t)
	z := f.threeTileZone(t)
	require.NoError(t, z.AddWindow(9, 1))
	require.NoError(t, z.RemoveWindow(9))
	require.False(t, f.tracker.Has(9))
	require.ErrorIs(t, z.RemoveWindow(9), ErrWindowNotAssigned)
}

func TestZone_WindowsOrderedByTile(t *testing.T) {
	f := newFixture(t)
	z := f.threeTileZone(t)
	require.NoError(t, z.AddWindow(30, 1))
	require.NoError(t, z.AddWindow(10, 2))
	require.NoError(t, z.AddWindow(20, 1))
	require.Equal(t, []platform.WindowID{20, 30, 10}, z.Windows())
}

func TestZone_ResizeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	z := f.threeTileZone(t)
	f.backend.AddWindow(platformtest.NormalWindow(11, "term", 100, 100, 400, 300))
	require.NoError(t, z.AddWindow(11, 2))

	want := platform.Rect{X: 0, Y: 0, Width: 640, Height: 1080}
	for i := 0; i < 2; i++ {
		rect, err := z.ResizeWindow(11)
		require.NoError(t, err)
		require.Equal(t, want, rect.Platform())
		require.Equal(t, want, f.backend.Frame(11))
	}
	require.Equal(t, 2, f.backend.SetFrameCount(11))
	require.Empty(t, f.backend.ScreenMoves)
}

func TestZone_ResizeMovesAcrossScreens(t *testing.T) {
	f := newFixture(t)
	second := platformtest.Screen(2, "HDMI-1", 1920, 0, 1920, 1080)
	f.backend.SetDisplays(f.screen, second)
	z := f.threeTileZone(t)

	f.backend.AddWindow(platformtest.NormalWindow(12, "term", 2000, 100, 400, 300))
	require.NoError(t, z.AddWindow(12, 1))
	_, err := z.ResizeWindow(12)
	require.NoError(t, err)
	require.Equal(t, []platform.WindowID{12}, f.backend.ScreenMoves)
	require.Equal(t, platform.Rect{X: 0, Y: 0, Width: 960, Height: 1080}, f.backend.Frame(12))
}

func TestZone_ResizeErrors(t *testing.T) {
	f := newFixture(t)
	z := f.threeTileZone(t)

	_, err := z.ResizeWindow(13)
	require.ErrorIs(t, err, ErrWindowNotAssigned)

	require.NoError(t, z.AddWindow(13, 1))
	_, err = z.ResizeWindow(13)
	require.ErrorIs(t, err, ErrStaleWindow)
}
