package winstate

import (
	"testing"
	"time"

	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/stretchr/testify/require"
)

func TestTracker_SetStampsAndOverwrites(t *testing.T) {
	now := time.Unix(100, 0)
	tr := NewTracker(func() time.Time { return now })

	tr.Set(Record{Window: 7, Zone: "left", ZoneID: "left_DP-1", ScreenKey: "DP-1", TileIdx: 1})
	rec, ok := tr.Get(7)
	require.True(t, ok)
	require.Equal(t, now, rec.LastUpdated)

	now = now.Add(time.Second)
	tr.Set(Record{Window: 7, Zone: "right", ZoneID: "right_DP-1", ScreenKey: "DP-1", TileIdx: 2})
	rec, _ = tr.Get(7)
	require.Equal(t, "right", rec.Zone)
	require.Equal(t, 2, rec.TileIdx)
	require.Equal(t, now, rec.LastUpdated)
	require.Equal(t, 1, tr.Len())
}

func TestTracker_RemoveAndPrune(t *testing.T) {
	tr := NewTracker(nil)
	for _, id := range []platform.WindowID{3, 1, 2} {
		tr.Set(Record{Window: id, Zone: "z", TileIdx: 1})
	}

	require.True(t, tr.Remove(2))
	require.False(t, tr.Remove(2))

	all := tr.All()
	require.Len(t, all, 2)
	require.Equal(t, platform.WindowID(1), all[0].Window)

	dropped := tr.Prune(func(id platform.WindowID) bool { return id != 3 })
	require.Equal(t, []platform.WindowID{3}, dropped)
	require.True(t, tr.Has(1))
	require.False(t, tr.Has(3))
}
