package mcp

import (
	"context"
	"errors"
	"sort"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/zonetile/internal/ipc"
)

type cycleCall struct {
	window    uint32
	zone      string
	direction string
}

type fakeClient struct {
	cycles    []cycleCall
	unassigns []uint32
	reloads   int
	err       error
}

func (f *fakeClient) Status() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.StatusData{InstanceID: "id-1", Screens: []ipc.ScreenInfo{}, Zones: 7}, nil
}

func (f *fakeClient) Zones(screen string) (*ipc.ZonesData, error) {
	return &ipc.ZonesData{Zones: []ipc.ZoneInfo{{ID: "1", QualifiedID: "1_" + screen, Screen: screen, Tiles: []ipc.TileInfo{}}}}, nil
}

func (f *fakeClient) Windows() (*ipc.WindowsData, error) {
	return &ipc.WindowsData{Windows: []ipc.WindowInfo{{Window: 3, App: "kitty"}}}, nil
}

func (f *fakeClient) Cycle(window uint32, zone, direction string) (*ipc.CycleData, error) {
	f.cycles = append(f.cycles, cycleCall{window, zone, direction})
	return &ipc.CycleData{Window: 3, Zone: zone, ZoneID: zone + "_DP-1", TileIdx: 2}, nil
}

func (f *fakeClient) FocusNext(zone string) (*ipc.FocusData, error) {
	return &ipc.FocusData{Window: 9}, nil
}

func (f *fakeClient) Match(window uint32) (*ipc.MatchData, error) {
	return &ipc.MatchData{Window: window, Matched: true, ZoneID: "3_DP-1", TileIdx: 1, Score: 0.8}, nil
}

func (f *fakeClient) Remember(window uint32) (*ipc.RememberData, error) {
	return &ipc.RememberData{Window: window, Kind: "frame"}, nil
}

func (f *fakeClient) Unassign(window uint32) error {
	f.unassigns = append(f.unassigns, window)
	return f.err
}

func (f *fakeClient) Reload() error {
	f.reloads++
	return f.err
}

func TestHandleCycleWindow_TrimsAndForwards(t *testing.T) {
	client := &fakeClient{}
	s := NewServer(client, "test", nil)

	_, out, err := s.handleCycleWindow(context.Background(), nil, CycleWindowInput{Zone: " 2 ", Window: 3, Direction: "last"})
	require.NoError(t, err)
	assert.Equal(t, "2_DP-1", out.ZoneID)
	assert.Equal(t, []cycleCall{{3, "2", "last"}}, client.cycles)
}

func TestHandleCycleWindow_RequiresZone(t *testing.T) {
	client := &fakeClient{}
	s := NewServer(client, "test", nil)

	_, _, err := s.handleCycleWindow(context.Background(), nil, CycleWindowInput{})
	require.Error(t, err)
	assert.Empty(t, client.cycles)

	_, _, err = s.handleFocusNext(context.Background(), nil, FocusNextInput{Zone: "  "})
	require.Error(t, err)
}

func TestHandlers_PassThrough(t *testing.T) {
	client := &fakeClient{}
	s := NewServer(client, "test", nil)
	ctx := context.Background()

	_, status, err := s.handleStatus(ctx, nil, StatusInput{})
	require.NoError(t, err)
	assert.Equal(t, 7, status.Zones)

	_, zones, err := s.handleListZones(ctx, nil, ListZonesInput{Screen: "HDMI-1"})
	require.NoError(t, err)
	assert.Equal(t, "1_HDMI-1", zones.Zones[0].QualifiedID)

	_, windows, err := s.handleListWindows(ctx, nil, ListWindowsInput{})
	require.NoError(t, err)
	assert.Equal(t, "kitty", windows.Windows[0].App)

	_, focus, err := s.handleFocusNext(ctx, nil, FocusNextInput{Zone: "1"})
	require.NoError(t, err)
	assert.Equal(t, uint32(9), focus.Window)

	_, match, err := s.handleMatchWindow(ctx, nil, WindowInput{Window: 4})
	require.NoError(t, err)
	assert.True(t, match.Matched)

	_, remembered, err := s.handleRememberWindow(ctx, nil, WindowInput{Window: 4})
	require.NoError(t, err)
	assert.Equal(t, "frame", remembered.Kind)

	_, ack, err := s.handleUnassignWindow(ctx, nil, WindowInput{Window: 4})
	require.NoError(t, err)
	assert.True(t, ack.OK)
	assert.Equal(t, []uint32{4}, client.unassigns)

	_, ack, err = s.handleReloadConfig(ctx, nil, ReloadConfigInput{})
	require.NoError(t, err)
	assert.True(t, ack.OK)
	assert.Equal(t, 1, client.reloads)
}

func TestHandlers_DaemonErrors(t *testing.T) {
	client := &fakeClient{err: errors.New("failed to connect to daemon")}
	s := NewServer(client, "test", nil)

	_, _, err := s.handleStatus(context.Background(), nil, StatusInput{})
	require.Error(t, err)
	_, ack, err := s.handleReloadConfig(context.Background(), nil, ReloadConfigInput{})
	require.Error(t, err)
	assert.False(t, ack.OK)
}

func TestServer_ListsTools(t *testing.T) {
	ctx := context.Background()
	s := NewServer(&fakeClient{}, "test", nil)

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	serverSession, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "v0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	res, err := session.ListTools(ctx, &mcpsdk.ListToolsParams{})
	require.NoError(t, err)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"cycle_window", "focus_next", "list_windows", "list_zones", "match_window",
		"reload_config", "remember_window", "status", "unassign_window",
	}, names)

	call, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "cycle_window",
		Arguments: map[string]any{"zone": "1"},
	})
	require.NoError(t, err)
	assert.False(t, call.IsError)
}
