package ipc

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/zonetile/internal/platform"
)

type fakeService struct {
	mu       sync.Mutex
	cycles   []CyclePayload
	reloads  int
	unassign []uint32
}

func (f *fakeService) Status(context.Context) (StatusData, error) {
	return StatusData{
		InstanceID: "abc",
		Version:    "test",
		Screens:    []ScreenInfo{{ID: 0, Key: "DP-1", Bounds: platform.Rect{Width: 1920, Height: 1080}}},
		Zones:      7,
	}, nil
}

func (f *fakeService) Zones(_ context.Context, screen string) (ZonesData, error) {
	return ZonesData{Zones: []ZoneInfo{{ID: "1", QualifiedID: "1_" + screen, Screen: screen}}}, nil
}

func (f *fakeService) Windows(context.Context) (WindowsData, error) {
	return WindowsData{Windows: []WindowInfo{{Window: 42, App: "kitty", ZoneID: "1_DP-1", TileIdx: 2}}}, nil
}

func (f *fakeService) Cycle(_ context.Context, req CyclePayload) (CycleData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cycles = append(f.cycles, req)
	return CycleData{Window: 42, Zone: req.Zone, ZoneID: req.Zone + "_DP-1", TileIdx: 2}, nil
}

func (f *fakeService) FocusNext(_ context.Context, zone string) (FocusData, error) {
	if zone == "9" {
		return FocusData{}, errors.New("zone 9 holds no windows")
	}
	return FocusData{Window: 7}, nil
}

func (f *fakeService) Match(_ context.Context, window uint32) (MatchData, error) {
	return MatchData{Window: window, Matched: true, ZoneID: "2_DP-1", TileIdx: 1, Score: 0.9}, nil
}

func (f *fakeService) Remember(_ context.Context, window uint32) (RememberData, error) {
	return RememberData{Window: window, Kind: "zone"}, nil
}

func (f *fakeService) Unassign(_ context.Context, window uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unassign = append(f.unassign, window)
	return nil
}

func (f *fakeService) Reload(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return nil
}

func startServer(t *testing.T) (*fakeService, *Client, string) {
	t.Helper()

	// Unix socket paths are length limited; keep the directory short.
	dir, err := os.MkdirTemp("", "zt")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "s.sock")
	svc := &fakeService{}
	srv := NewServer(path, svc, nil)
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)

	return svc, NewClientAt(path), path
}

func TestServer_SocketPermissions(t *testing.T) {
	_, _, path := startServer(t)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestClient_Status(t *testing.T) {
	_, client, _ := startServer(t)

	status, err := client.Status()
	require.NoError(t, err)
	assert.Equal(t, "abc", status.InstanceID)
	assert.Equal(t, 7, status.Zones)
	require.Len(t, status.Screens, 1)
	assert.Equal(t, "DP-1", status.Screens[0].Key)
}

func TestClient_ZonesAndWindows(t *testing.T) {
	_, client, _ := startServer(t)

	zones, err := client.Zones("HDMI-1")
	require.NoError(t, err)
	require.Len(t, zones.Zones, 1)
	assert.Equal(t, "1_HDMI-1", zones.Zones[0].QualifiedID)

	windows, err := client.Windows()
	require.NoError(t, err)
	require.Len(t, windows.Windows, 1)
	assert.Equal(t, uint32(42), windows.Windows[0].Window)
	assert.Equal(t, 2, windows.Windows[0].TileIdx)
}

func TestClient_CyclePassesPayload(t *testing.T) {
	svc, client, _ := startServer(t)

	data, err := client.Cycle(0, "3", "backward")
	require.NoError(t, err)
	assert.Equal(t, "3_DP-1", data.ZoneID)

	require.Len(t, svc.cycles, 1)
	assert.Equal(t, CyclePayload{Zone: "3", Direction: "backward"}, svc.cycles[0])
}

func TestClient_CycleRequiresZone(t *testing.T) {
	svc, client, _ := startServer(t)

	_, err := client.Cycle(0, "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zone is required")
	assert.Empty(t, svc.cycles)
}

func TestClient_ServiceErrorsSurface(t *testing.T) {
	_, client, _ := startServer(t)

	_, err := client.FocusNext("9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daemon error: zone 9 holds no windows")

	focus, err := client.FocusNext("1")
	require.NoError(t, err)
	assert.Equal(t, uint32(7), focus.Window)
}

func TestClient_WindowCommands(t *testing.T) {
	svc, client, _ := startServer(t)

	match, err := client.Match(5)
	require.NoError(t, err)
	assert.True(t, match.Matched)
	assert.InDelta(t, 0.9, match.Score, 1e-9)

	remembered, err := client.Remember(5)
	require.NoError(t, err)
	assert.Equal(t, "zone", remembered.Kind)

	require.NoError(t, client.Unassign(5))
	require.NoError(t, client.Reload())
	assert.Equal(t, []uint32{5}, svc.unassign)
	assert.Equal(t, 1, svc.reloads)
}

func TestServer_RejectsUnknownAndMalformed(t *testing.T) {
	_, client, path := startServer(t)

	err := client.call(CommandType("NOPE"), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown command: NOPE")

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("not json\n"))
	require.NoError(t, err)
	buf := make([]byte, 512)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), `"status":"ERROR"`)
	assert.Contains(t, string(buf[:n]), "Invalid request")
}

func TestClient_NoDaemon(t *testing.T) {
	client := NewClientAt(filepath.Join(os.TempDir(), "zonetile-missing.sock"))
	_, err := client.Status()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is the daemon running?")
}
