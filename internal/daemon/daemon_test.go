package daemon

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/ipc"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/platform/platformtest"
)

type appIDResolver struct{}

func (appIDResolver) AppName(w platform.Window) string { return w.AppID }

type harness struct {
	daemon  *Daemon
	backend *platformtest.Backend
	client  *ipc.Client
	level   *slog.LevelVar
	cancel  context.CancelFunc
	done    chan error
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Store.Backend = config.StoreBackendMemory
	cfg.GapSize = 0
	cfg.Placement.SettleDelay = 0
	cfg.Placement.VerifyDelay = 5 * time.Millisecond
	cfg.Placement.DebounceDelay = 5 * time.Millisecond
	cfg.Placement.IgnoreApps = []string{"kitty"}
	return cfg
}

func startDaemon(t *testing.T, configPath string, tweak ...func(*Options)) *harness {
	t.Helper()

	dir, err := os.MkdirTemp("", "ztd")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	backend := platformtest.New(platformtest.Screen(0, "DP-1", 0, 0, 1920, 1080))
	backend.AddWindow(platformtest.NormalWindow(10, "kitty", 100, 100, 400, 300))
	backend.SetActive(10)

	level := new(slog.LevelVar)
	socket := filepath.Join(dir, "d.sock")
	opts := Options{
		Config:          testConfig(),
		ConfigPath:      configPath,
		Backend:         backend,
		SocketPath:      socket,
		Version:         "test",
		Level:           level,
		Resolver:        appIDResolver{},
		JanitorInterval: time.Hour,
	}
	for _, fn := range tweak {
		fn(&opts)
	}
	d, err := New(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{
		daemon:  d,
		backend: backend,
		client:  ipc.NewClientAt(socket),
		level:   level,
		cancel:  cancel,
		done:    make(chan error, 1),
	}
	go func() { h.done <- d.Run(ctx) }()
	t.Cleanup(h.stop)

	require.Eventually(t, func() bool {
		_, err := h.client.Status()
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	return h
}

func (h *harness) stop() {
	h.cancel()
	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	_, err = New(Options{Config: testConfig(), Backend: platformtest.New()})
	require.Error(t, err)
}

func TestDaemon_RunFailsWithoutWindowEvents(t *testing.T) {
	dir, err := os.MkdirTemp("", "ztd")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	backend := platformtest.New(platformtest.Screen(0, "DP-1", 0, 0, 1920, 1080))
	backend.SubscribeErr = errors.New("no client list")
	d, err := New(Options{
		Config:     testConfig(),
		Backend:    backend,
		SocketPath: filepath.Join(dir, "d.sock"),
		Resolver:   appIDResolver{},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = d.Run(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no client list")
	require.NoError(t, ctx.Err())
}

func TestDaemon_Status(t *testing.T) {
	h := startDaemon(t, "")

	status, err := h.client.Status()
	require.NoError(t, err)
	assert.Equal(t, h.daemon.ID().String(), status.InstanceID)
	assert.Equal(t, "test", status.Version)
	assert.Equal(t, config.StoreBackendMemory, status.StoreBackend)
	require.Len(t, status.Screens, 1)
	assert.Equal(t, "DP-1", status.Screens[0].Key)
	assert.Equal(t, 7, status.Zones)
	assert.Equal(t, 0, status.TrackedWindows, "ignored apps are not adopted")
}

func TestDaemon_ZonesListing(t *testing.T) {
	h := startDaemon(t, "")

	zones, err := h.client.Zones("DP-1")
	require.NoError(t, err)
	require.Len(t, zones.Zones, 7)
	first := zones.Zones[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "1_DP-1", first.QualifiedID)
	require.Len(t, first.Tiles, 3)
	assert.Equal(t, platform.Rect{X: 0, Y: 0, Width: 960, Height: 1080}, first.Tiles[0].Frame)

	none, err := h.client.Zones("HDMI-9")
	require.NoError(t, err)
	assert.Empty(t, none.Zones)
}

func TestDaemon_CycleFocusedWindow(t *testing.T) {
	h := startDaemon(t, "")

	res, err := h.client.Cycle(0, "1", "")
	require.NoError(t, err)
	assert.Equal(t, uint32(10), res.Window)
	assert.Equal(t, "1_DP-1", res.ZoneID)
	assert.Equal(t, 1, res.TileIdx)
	assert.Equal(t, res.Frame, h.backend.Frame(10))

	res, err = h.client.Cycle(10, "1", "forward")
	require.NoError(t, err)
	assert.Equal(t, 2, res.TileIdx)

	res, err = h.client.Cycle(10, "1", "backward")
	require.NoError(t, err)
	assert.Equal(t, 1, res.TileIdx)

	windows, err := h.client.Windows()
	require.NoError(t, err)
	require.Len(t, windows.Windows, 1)
	w := windows.Windows[0]
	assert.Equal(t, "kitty", w.App)
	assert.Equal(t, "DP-1", w.Screen)
	assert.Equal(t, "1_DP-1", w.ZoneID)
	assert.Equal(t, 1, w.TileIdx)
	assert.True(t, w.Active)

	_, err = h.client.Cycle(10, "1", "sideways")
	require.Error(t, err)
	_, err = h.client.Cycle(10, "42", "")
	require.Error(t, err)
}

func TestDaemon_MatchRememberUnassign(t *testing.T) {
	h := startDaemon(t, "")
	// Added after startup, so never adopted.
	h.backend.AddWindow(platformtest.NormalWindow(12, "firefox", 200, 200, 800, 600))
	h.backend.SetActive(12)

	_, err := h.client.Cycle(12, "3", "first")
	require.NoError(t, err)

	match, err := h.client.Match(12)
	require.NoError(t, err)
	assert.True(t, match.Matched)
	assert.Equal(t, "3_DP-1", match.ZoneID)
	assert.Equal(t, 1, match.TileIdx)
	assert.InDelta(t, 1.0, match.Score, 1e-9)

	remembered, err := h.client.Remember(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(12), remembered.Window)
	assert.Equal(t, "zone", remembered.Kind)

	_, err = h.client.Remember(10)
	require.Error(t, err, "ignored apps are never remembered")

	require.NoError(t, h.client.Unassign(12))
	require.Error(t, h.client.Unassign(12), "second unassign has nothing to remove")

	status, err := h.client.Status()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TrackedWindows)
}

func TestDaemon_FocusNext(t *testing.T) {
	h := startDaemon(t, "")
	h.backend.AddWindow(platformtest.NormalWindow(11, "kitty", 0, 0, 300, 300))

	_, err := h.client.Cycle(10, "1", "")
	require.NoError(t, err)
	_, err = h.client.Cycle(11, "1", "")
	require.NoError(t, err)

	focus, err := h.client.FocusNext("1")
	require.NoError(t, err)
	assert.Equal(t, uint32(11), focus.Window)

	_, err = h.client.FocusNext("5")
	require.Error(t, err, "empty zone")
}

func TestDaemon_DestroyEventForgetsWindow(t *testing.T) {
	h := startDaemon(t, "")

	_, err := h.client.Cycle(10, "1", "")
	require.NoError(t, err)

	h.backend.RemoveWindow(10)
	h.backend.Emit(platform.Event{Kind: platform.EventWindowDestroyed, Window: 10})

	require.Eventually(t, func() bool {
		status, err := h.client.Status()
		return err == nil && status.TrackedWindows == 0
	}, time.Second, 10*time.Millisecond)
}

func TestDaemon_JanitorPrunesClosedWindows(t *testing.T) {
	h := startDaemon(t, "")

	_, err := h.client.Cycle(10, "1", "")
	require.NoError(t, err)

	h.backend.RemoveWindow(10)
	require.NoError(t, h.daemon.sweep(context.Background()))

	status, err := h.client.Status()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TrackedWindows)
}

func TestDaemon_ScreensChangedRebuildsZones(t *testing.T) {
	h := startDaemon(t, "")

	h.backend.SetDisplays(
		platformtest.Screen(0, "DP-1", 0, 0, 1920, 1080),
		platformtest.Screen(1, "HDMI-1", 1920, 0, 1920, 1080),
	)
	h.backend.Emit(platform.Event{Kind: platform.EventScreensChanged})

	require.Eventually(t, func() bool {
		status, err := h.client.Status()
		return err == nil && status.Zones == 14
	}, time.Second, 10*time.Millisecond)
}

func TestDaemon_ReloadWithoutConfigFile(t *testing.T) {
	h := startDaemon(t, "")
	require.Error(t, h.client.Reload())
}

func TestDaemon_ReloadAppliesConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nstore:\n  backend: memory\n"), 0o644))

	h := startDaemon(t, path)
	require.NoError(t, h.client.Reload())
	assert.Equal(t, slog.LevelDebug, h.level.Level())

	require.NoError(t, os.WriteFile(path, []byte("log_level: [\n"), 0o644))
	require.Error(t, h.client.Reload())
}

func TestDaemon_ReloadKeepsPinnedLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\nstore:\n  backend: memory\n"), 0o644))

	h := startDaemon(t, path, func(o *Options) {
		o.Level.Set(slog.LevelDebug)
		o.LevelPinned = true
	})
	require.NoError(t, h.client.Reload())
	assert.Equal(t, slog.LevelDebug, h.level.Level())
}

func TestJanitor_RecoversFromPanic(t *testing.T) {
	calls := 0
	j := NewJanitor(JanitorConfig{}, func(context.Context) error {
		calls++
		panic("boom")
	})
	assert.NotPanics(t, func() { j.SweepNow(context.Background()) })
	assert.Equal(t, 1, calls)
}
