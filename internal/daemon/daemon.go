// Package daemon wires the placement core to the window system, the IPC
// socket, hotkeys, config reloads and metrics.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/zonetile/internal/apps"
	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/dispatch"
	"github.com/1broseidon/zonetile/internal/hotkeys"
	"github.com/1broseidon/zonetile/internal/ipc"
	"github.com/1broseidon/zonetile/internal/memory"
	"github.com/1broseidon/zonetile/internal/metrics"
	"github.com/1broseidon/zonetile/internal/placement"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/store"
	"github.com/1broseidon/zonetile/internal/winstate"
	"github.com/1broseidon/zonetile/internal/zone"
)

// Options configures a Daemon.
type Options struct {
	Config     *config.Config
	ConfigPath string // watched for changes when set
	Backend    platform.Backend
	SocketPath string
	Version    string
	Resolver   apps.Resolver
	Logger     *slog.Logger

	// Level, when set, follows the log_level of reloaded configs.
	Level *slog.LevelVar

	// LevelPinned keeps Level as it is across reloads, as --verbose does.
	LevelPinned bool

	// JanitorInterval overrides the closed-window sweep period.
	JanitorInterval time.Duration
}

// eventLooper is implemented by backends that need a blocking event pump.
type eventLooper interface {
	EventLoop()
	StopEventLoop()
}

// Daemon owns every long-lived component. All placement state is touched
// only from the dispatch loop.
type Daemon struct {
	id         uuid.UUID
	version    string
	configPath string
	socketPath string
	backend    platform.Backend
	resolver   apps.Resolver
	level      *slog.LevelVar
	pinned     bool
	logger     *slog.Logger

	loop       *dispatch.Loop
	collector  *metrics.Collector
	tracker    *winstate.Tracker
	registry   *zone.Registry
	positions  *memory.Positions
	reconciler *memory.Reconciler
	janitor    *Janitor

	hotkeysMu sync.Mutex
	hotkeys   *hotkeys.Handler

	// loop-owned
	cfg     *config.Config
	store   store.Store
	started time.Time
}

var _ ipc.Service = (*Daemon)(nil)

// New builds a daemon from opts. Nothing runs until Run is called.
func New(opts Options) (*Daemon, error) {
	if opts.Config == nil {
		return nil, errors.New("daemon: config is required")
	}
	if opts.Backend == nil {
		return nil, errors.New("daemon: backend is required")
	}
	if opts.SocketPath == "" {
		return nil, errors.New("daemon: socket path is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = apps.NewProcessResolver(nil)
	}

	st, err := store.Open(opts.Config.Store, logger.With("component", "store"))
	if err != nil {
		return nil, fmt.Errorf("open position store: %w", err)
	}

	d := &Daemon{
		id:         uuid.New(),
		version:    opts.Version,
		configPath: opts.ConfigPath,
		socketPath: opts.SocketPath,
		backend:    opts.Backend,
		resolver:   resolver,
		level:      opts.Level,
		pinned:     opts.LevelPinned,
		logger:     logger,
		cfg:        opts.Config,
		store:      st,
	}

	d.loop = dispatch.NewLoop(logger.With("component", "dispatch"))
	d.collector = metrics.NewCollector()
	d.tracker = winstate.NewTracker(nil)
	d.positions = memory.NewPositions(memory.PositionsOptions{
		Store:    st,
		Backend:  opts.Backend,
		Resolver: resolver,
		Metrics:  d.collector,
		Logger:   logger.With("component", "positions"),
	})
	d.registry = zone.NewRegistry(zone.Options{
		Backend:  opts.Backend,
		Tracker:  d.tracker,
		Recorder: d.positions,
		Logger:   logger.With("component", "zones"),
	})
	d.reconciler = memory.NewReconciler(memory.Options{
		Backend:   opts.Backend,
		Registry:  d.registry,
		Matcher:   placement.NewMatcher(d.registry),
		Positions: d.positions,
		Resolver:  resolver,
		Scheduler: d.loop,
		Placement: opts.Config.Placement,
		Metrics:   d.collector,
		Logger:    logger.With("component", "reconciler"),
	})
	d.janitor = NewJanitor(JanitorConfig{
		Interval: opts.JanitorInterval,
		Logger:   logger.With("component", "janitor"),
	}, d.sweep)

	return d, nil
}

// ID identifies this daemon instance in status output and logs.
func (d *Daemon) ID() uuid.UUID {
	return d.id
}

// Collector exposes the metrics collector.
func (d *Daemon) Collector() *metrics.Collector {
	return d.collector
}

// Run starts every component and blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.logger.Info("zonetile daemon starting", "instance", d.id, "version", d.version)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = d.loop.Run(ctx)
	}()

	if err := d.loop.Do(ctx, d.start); err != nil {
		cancel()
		wg.Wait()
		return err
	}

	unsubscribe, err := d.backend.Subscribe(func(ev platform.Event) {
		d.loop.Post(func() { d.handleEvent(ev) })
	})
	if err != nil {
		cancel()
		wg.Wait()
		return fmt.Errorf("subscribe to window events: %w", err)
	}
	defer unsubscribe()

	d.bindHotkeys(d.cfg)

	server := ipc.NewServer(d.socketPath, d, d.logger)
	if err := server.Start(); err != nil {
		cancel()
		wg.Wait()
		return err
	}

	if d.configPath != "" {
		watcher := config.NewWatcher(d.configPath, d.logger.With("component", "config"), func(cfg *config.Config) {
			d.loop.Post(func() { d.applyConfig(cfg) })
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := watcher.Run(ctx); err != nil {
				d.logger.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	if addr := d.cfg.MetricsAddr; addr != "" {
		srv := metrics.NewServer(addr, d.collector, d.logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(ctx); err != nil {
				d.logger.Error("metrics server failed", "addr", addr, "error", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		d.janitor.Run(ctx)
	}()

	if el, ok := d.backend.(eventLooper); ok {
		go el.EventLoop()
		defer el.StopEventLoop()
	}

	d.logger.Info("zonetile daemon running", "socket", d.socketPath)
	<-ctx.Done()
	d.logger.Info("shutting down zonetile daemon")

	server.Stop()
	wg.Wait()
	d.closeStore(d.store)
	return nil
}

// start runs on the loop: build zones and adopt the windows already open.
func (d *Daemon) start() error {
	d.started = time.Now()
	if err := d.reconciler.RebuildZones(d.cfg); err != nil {
		return fmt.Errorf("build zones: %w", err)
	}
	d.reconciler.AdoptExisting()
	d.updateGauges()
	d.logger.Info("zones ready", "zones", d.registry.Len())
	return nil
}

func (d *Daemon) handleEvent(ev platform.Event) {
	if ev.Kind == platform.EventScreensChanged {
		d.logger.Info("screen layout changed, rebuilding zones")
		if err := d.reconciler.RebuildZones(d.cfg); err != nil {
			d.logger.Warn("zone rebuild failed", "error", err)
		}
		d.positions.Invalidate()
		d.updateGauges()
		return
	}
	d.reconciler.HandleEvent(ev)
}

// Reload re-reads the configuration file and applies it.
func (d *Daemon) Reload(ctx context.Context) error {
	if d.configPath == "" {
		return errors.New("daemon has no config file to reload")
	}
	res, err := config.LoadFromPath(d.configPath)
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	return d.loop.Do(ctx, func() error {
		d.applyConfig(res.Config)
		return nil
	})
}

// applyConfig runs on the loop.
func (d *Daemon) applyConfig(cfg *config.Config) {
	prev := d.cfg
	d.cfg = cfg

	if d.level != nil && !d.pinned {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
			d.level.Set(lvl)
		}
	}

	d.reconciler.SetPlacement(cfg.Placement)

	if cfg.Store != prev.Store {
		st, err := store.Open(cfg.Store, d.logger.With("component", "store"))
		if err != nil {
			d.logger.Warn("keeping previous position store", "error", err)
		} else {
			old := d.store
			d.store = st
			d.positions.SetStore(st)
			d.closeStore(old)
			d.logger.Info("position store switched", "backend", cfg.Store.Backend)
		}
	}

	if err := d.reconciler.RebuildZones(cfg); err != nil {
		d.logger.Warn("zone rebuild failed", "error", err)
	}
	d.updateGauges()
	d.bindHotkeys(cfg)

	if cfg.MetricsAddr != prev.MetricsAddr {
		d.logger.Warn("metrics_addr changes take effect after restart", "addr", cfg.MetricsAddr)
	}
	d.logger.Info("config applied", "zones", d.registry.Len())
}

func (d *Daemon) bindHotkeys(cfg *config.Config) {
	d.hotkeysMu.Lock()
	defer d.hotkeysMu.Unlock()

	if d.hotkeys == nil {
		h, err := hotkeys.NewHandler(d.backend, &hotkeyActions{d: d}, d.logger.With("component", "hotkeys"))
		if err != nil {
			d.logger.Info("hotkeys disabled", "reason", err)
			return
		}
		d.hotkeys = h
	}
	d.hotkeys.Apply(cfg)
}

// sweep is the janitor pass: forget closed windows and refresh gauges.
func (d *Daemon) sweep(ctx context.Context) error {
	return d.loop.Do(ctx, func() error {
		if pruned := d.reconciler.PruneClosed(); len(pruned) > 0 {
			d.logger.Info("forgot closed windows", "count", len(pruned))
		}
		d.updateGauges()
		return nil
	})
}

func (d *Daemon) updateGauges() {
	screens := 0
	if displays, err := d.backend.Displays(); err == nil {
		screens = len(displays)
	}
	d.collector.SetState(screens, d.registry.Len(), d.tracker.Len())
}

func (d *Daemon) closeStore(st store.Store) {
	if c, ok := st.(io.Closer); ok {
		if err := c.Close(); err != nil {
			d.logger.Warn("closing position store", "error", err)
		}
	}
}
