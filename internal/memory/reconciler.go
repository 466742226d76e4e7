package memory

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/zonetile/internal/apps"
	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/dispatch"
	"github.com/1broseidon/zonetile/internal/placement"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/tiling"
	"github.com/1broseidon/zonetile/internal/zone"
)

// Placement sources, as reported to metrics and logs.
const (
	SourceRememberedZone  = "remembered-zone"
	SourceRememberedFrame = "remembered-frame"
	SourceMatcher         = "matcher"
	SourceFallback        = "fallback"
	SourceHotkey          = "hotkey"
)

// ErrIgnoredApp is returned when remembering a window whose application is
// listed in placement.ignore_apps.
var ErrIgnoredApp = errors.New("application is listed in placement.ignore_apps")

// Options wires a Reconciler.
type Options struct {
	Backend   platform.Backend
	Registry  *zone.Registry
	Matcher   *placement.Matcher
	Positions *Positions
	Resolver  apps.Resolver
	Scheduler dispatch.Scheduler
	Placement config.Placement
	Metrics   Metrics
	Logger    *slog.Logger
}

// Reconciler places new windows, remembers where windows are moved to, and
// implements the hotkey actions.
type Reconciler struct {
	backend   platform.Backend
	registry  *zone.Registry
	matcher   *placement.Matcher
	positions *Positions
	resolver  apps.Resolver
	sched     dispatch.Scheduler
	cfg       config.Placement
	metrics   Metrics
	logger    *slog.Logger

	debouncer *Debouncer
	settling  map[platform.WindowID]dispatch.Timer
	sessions  map[platform.WindowID]*pendingSession
}

type pendingSession struct {
	session *ApplySession
	timer   dispatch.Timer
}

func NewReconciler(opts Options) *Reconciler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NopMetrics{}
	}
	if opts.Matcher == nil {
		opts.Matcher = placement.NewMatcher(opts.Registry)
	}
	if opts.Positions != nil {
		opts.Positions.SetIgnoreApps(opts.Placement.IgnoreApps)
	}
	return &Reconciler{
		backend:   opts.Backend,
		registry:  opts.Registry,
		matcher:   opts.Matcher,
		positions: opts.Positions,
		resolver:  opts.Resolver,
		sched:     opts.Scheduler,
		cfg:       opts.Placement,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		debouncer: NewDebouncer(opts.Scheduler, opts.Placement.DebounceDelay),
		settling:  make(map[platform.WindowID]dispatch.Timer),
		sessions:  make(map[platform.WindowID]*pendingSession),
	}
}

// SetPlacement applies new tuning. Pending timers keep their old delays.
func (r *Reconciler) SetPlacement(cfg config.Placement) {
	r.cfg = cfg
	r.debouncer.SetDelay(cfg.DebounceDelay)
	r.positions.SetIgnoreApps(cfg.IgnoreApps)
}

// HandleEvent dispatches a window-system notification.
func (r *Reconciler) HandleEvent(ev platform.Event) {
	switch ev.Kind {
	case platform.EventWindowCreated:
		r.OnWindowCreated(ev.Window)
	case platform.EventWindowMoved, platform.EventWindowResized:
		r.OnWindowMoved(ev.Window, ev.Frame)
	case platform.EventWindowDestroyed:
		r.OnWindowDestroyed(ev.Window)
	}
}

// OnWindowCreated schedules placement of a new window after its settle
// delay. Non-standard, fullscreen, ignored and already tracked windows are
// left alone.
func (r *Reconciler) OnWindowCreated(win platform.WindowID) {
	w, err := r.backend.Window(win)
	if err != nil {
		r.logger.Debug("created window vanished", "window", win, "error", err)
		return
	}
	if !w.Standard || w.Fullscreen {
		return
	}
	if r.registry.Tracker().Has(win) {
		return
	}
	if _, ok := r.settling[win]; ok {
		return
	}
	app := r.resolver.AppName(w)
	if r.cfg.IsIgnored(app) {
		r.logger.Debug("ignoring window", "window", win, "app", app)
		return
	}

	delay := r.cfg.SettleDelay
	if r.cfg.IsProblemApp(app) {
		delay = r.cfg.ProblemAppSettleDelay
	}
	r.settling[win] = r.sched.AfterFunc(delay, func() {
		delete(r.settling, win)
		r.place(win)
	})
}

// AdoptExisting treats every current window as newly created.
func (r *Reconciler) AdoptExisting() {
	windows, err := r.backend.Windows()
	if err != nil {
		r.logger.Warn("cannot list windows", "error", err)
		return
	}
	for _, w := range windows {
		r.OnWindowCreated(w.ID)
	}
}

func (r *Reconciler) place(win platform.WindowID) {
	w, err := r.backend.Window(win)
	if err != nil {
		r.logger.Debug("window vanished before placement", "window", win)
		return
	}
	if r.registry.Tracker().Has(win) {
		return
	}
	display, ok := r.displayOf(w)
	if !ok {
		return
	}
	screenKey := display.Key()
	app := r.resolver.AppName(w)
	log := r.logger.With("window", win, "app", app, "screen", screenKey)

	if rec, ok := r.positions.Lookup(app, screenKey); ok {
		if rec.IsZone() {
			if z, ok := r.resolveZone(rec.ZoneID, rec.Zone, screenKey); ok {
				idx := rec.TileIdx
				if idx < 1 || idx > z.TileCount() {
					idx = zone.DefaultTile
				}
				log.Info("restoring remembered zone", "zone", z.QualifiedID(), "tile", idx)
				r.assignAndApply(win, z, idx, SourceRememberedZone)
				return
			}
			log.Debug("remembered zone no longer exists", "zone", rec.ZoneID)
		} else if rec.Frame != nil {
			log.Info("restoring remembered frame")
			r.applyFrame(win, display, rec.Frame.Platform(), SourceRememberedFrame)
			return
		}
	}

	if m, ok := r.matcher.FindBestZoneForWindow(tiling.RectFromPlatform(w.Bounds), screenKey); ok {
		r.metrics.MatchScore(m.Score)
		log.Info("matched zone", "zone", m.Zone.QualifiedID(), "tile", m.TileIdx, "score", m.Score)
		r.assignAndApply(win, m.Zone, m.TileIdx, SourceMatcher)
		return
	}

	if r.cfg.AutoTile {
		z, ok := r.registry.Find(r.cfg.FallbackZone, screenKey)
		if !ok {
			log.Warn("fallback zone missing", "zone", r.cfg.FallbackZone)
			return
		}
		idx := r.cfg.FallbackTile
		if idx < 1 || idx > z.TileCount() {
			idx = zone.DefaultTile
		}
		r.assignAndApply(win, z, idx, SourceFallback)
		return
	}
	log.Debug("window left unplaced")
}

// resolveZone finds a remembered zone: by qualified id first, then by
// logical id on the screen.
func (r *Reconciler) resolveZone(zoneID, logical, screenKey string) (*zone.Zone, bool) {
	if zoneID != "" {
		if z, ok := r.registry.ByQualifiedID(zoneID); ok {
			return z, true
		}
	}
	if logical != "" {
		return r.registry.Find(logical, screenKey)
	}
	return nil, false
}

func (r *Reconciler) assignAndApply(win platform.WindowID, z *zone.Zone, idx int, source string) {
	if err := z.AddWindow(win, idx); err != nil {
		r.logger.Warn("assign failed", "window", win, "zone", z.QualifiedID(), "error", err)
		return
	}
	if _, err := r.apply(win, z, source); err != nil && !errors.Is(err, zone.ErrStaleWindow) {
		r.logger.Warn("apply failed", "window", win, "zone", z.QualifiedID(), "error", err)
	}
}

func (r *Reconciler) apply(win platform.WindowID, z *zone.Zone, source string) (tiling.Rect, error) {
	rect, err := z.ResizeWindow(win)
	if err != nil {
		return tiling.Rect{}, err
	}
	r.metrics.Placed(source)
	var screen *platform.Display
	if d, ok := z.Screen(); ok {
		screen = &d
	}
	r.verifyLater(win, rect.Platform(), screen, source)
	return rect, nil
}

func (r *Reconciler) applyFrame(win platform.WindowID, display platform.Display, frame platform.Rect, source string) {
	if err := r.backend.SetFrame(win, frame); err != nil {
		r.logger.Debug("frame apply failed", "window", win, "error", err)
		return
	}
	r.metrics.Placed(source)
	r.verifyLater(win, frame, &display, source)
}

func (r *Reconciler) verifyLater(win platform.WindowID, target platform.Rect, screen *platform.Display, source string) {
	r.cancelSession(win)
	s := NewApplySession(win, target, screen, source, r.cfg.Tolerance)
	p := &pendingSession{session: s}
	r.sessions[win] = p
	p.timer = r.sched.AfterFunc(r.cfg.VerifyDelay, func() { r.verify(p) })
}

func (r *Reconciler) verify(p *pendingSession) {
	s := p.session
	if r.sessions[s.Window] != p {
		return
	}
	s.BeginVerify()
	log := r.logger.With("window", s.Window, "session", s.ID.String(), "source", s.Source)

	w, err := r.backend.Window(s.Window)
	if err != nil {
		s.Abandon()
		delete(r.sessions, s.Window)
		log.Debug("window vanished before verification")
		return
	}

	outcome := s.Observe(w.Bounds)
	r.metrics.Verified(outcome.String())
	switch outcome {
	case OutcomeAccepted:
		delete(r.sessions, s.Window)
	case OutcomeReapply:
		log.Debug("frame not honored, forcing", "want", s.Target, "got", w.Bounds)
		if s.Screen != nil {
			if err := r.backend.MoveToScreen(s.Window, *s.Screen); err != nil {
				log.Debug("forced screen move failed", "error", err)
			}
		}
		if err := r.backend.SetFrame(s.Window, s.Target); err != nil {
			s.Abandon()
			delete(r.sessions, s.Window)
			log.Debug("forced apply failed", "error", err)
			return
		}
		p.timer = r.sched.AfterFunc(r.cfg.VerifyDelay, func() { r.verify(p) })
	case OutcomeMismatch:
		delete(r.sessions, s.Window)
		log.Warn("window did not accept frame", "want", s.Target, "got", w.Bounds)
	}
}

func (r *Reconciler) cancelSession(win platform.WindowID) {
	if p, ok := r.sessions[win]; ok {
		if p.timer != nil {
			p.timer.Stop()
		}
		p.session.Abandon()
		delete(r.sessions, win)
	}
}

// Session returns the in-flight apply session for win.
func (r *Reconciler) Session(win platform.WindowID) (*ApplySession, bool) {
	p, ok := r.sessions[win]
	if !ok {
		return nil, false
	}
	return p.session, true
}

// OnWindowMoved debounces frame changes; only the last frame of a burst is
// remembered.
func (r *Reconciler) OnWindowMoved(win platform.WindowID, frame platform.Rect) {
	r.debouncer.Trigger(win, func() { r.recordMove(win, frame) })
}

func (r *Reconciler) recordMove(win platform.WindowID, frame platform.Rect) {
	if _, busy := r.sessions[win]; busy {
		return
	}
	if _, settling := r.settling[win]; settling {
		return
	}
	w, err := r.backend.Window(win)
	if err != nil || !w.Standard || w.Fullscreen {
		return
	}
	w.Bounds = frame
	r.persist(w)
}

// persist remembers w at its current bounds: its assigned zone if it still
// sits on the tile, else a matching zone, else the bare frame.
func (r *Reconciler) persist(w platform.Window) string {
	display, ok := r.displayOf(w)
	if !ok {
		return ""
	}
	screenKey := display.Key()
	app := r.resolver.AppName(w)
	if app == "" || r.cfg.IsIgnored(app) {
		return ""
	}
	rect := tiling.RectFromPlatform(w.Bounds)

	if z, ok := r.registry.ZoneOf(w.ID); ok && z.Key().Screen == screenKey {
		idx, _ := z.TileIndex(w.ID)
		if tile, err := z.Tile(idx); err == nil && tile.Rect().WithinTolerance(rect, float64(r.cfg.Tolerance)) {
			r.positions.PutZone(app, screenKey, z, idx)
			return "zone"
		}
	}
	if m, ok := r.matcher.FindBestZoneForWindow(rect, screenKey); ok {
		r.positions.PutZone(app, screenKey, m.Zone, m.TileIdx)
		return "zone"
	}
	r.positions.PutFrame(app, screenKey, rect)
	return "frame"
}

// Remember persists win's current position immediately and returns the
// record kind written ("zone" or "frame").
func (r *Reconciler) Remember(win platform.WindowID) (string, error) {
	w, err := r.backend.Window(win)
	if err != nil {
		return "", fmt.Errorf("window %d: %w", win, zone.ErrStaleWindow)
	}
	r.debouncer.Cancel(win)
	if app := r.resolver.AppName(w); app != "" && r.cfg.IsIgnored(app) {
		return "", fmt.Errorf("window %d (%s): %w", win, app, ErrIgnoredApp)
	}
	kind := r.persist(w)
	if kind == "" {
		return "", fmt.Errorf("window %d has no application name or screen", win)
	}
	return kind, nil
}

// OnWindowDestroyed drops every pending action and assignment for win.
func (r *Reconciler) OnWindowDestroyed(win platform.WindowID) {
	r.debouncer.Cancel(win)
	if t, ok := r.settling[win]; ok {
		t.Stop()
		delete(r.settling, win)
	}
	r.cancelSession(win)
	_ = r.registry.Unassign(win)
}

// CycleResult describes where a hotkey action put a window.
type CycleResult struct {
	Window  platform.WindowID `json:"window"`
	Zone    string            `json:"zone"`
	ZoneID  string            `json:"zone_id"`
	TileIdx int               `json:"tile_idx"`
	Frame   platform.Rect     `json:"frame"`
}

// CycleOrAssign is the cycle hotkey body: it cycles win forward through the
// logical zone on the window's screen, assigning it first if needed.
func (r *Reconciler) CycleOrAssign(win platform.WindowID, logical string) (CycleResult, error) {
	return r.Cycle(win, logical, zone.Forward)
}

// Cycle moves win to the tile selected by dir within logical on the
// window's current screen and applies it.
func (r *Reconciler) Cycle(win platform.WindowID, logical string, dir zone.Direction) (CycleResult, error) {
	w, err := r.backend.Window(win)
	if err != nil {
		return CycleResult{}, fmt.Errorf("window %d: %w", win, zone.ErrStaleWindow)
	}
	display, ok := r.displayOf(w)
	if !ok {
		return CycleResult{}, fmt.Errorf("window %d is on no known screen", win)
	}
	z, ok := r.registry.Find(logical, display.Key())
	if !ok {
		return CycleResult{}, fmt.Errorf("zone %q on %s: %w", logical, display.Key(), zone.ErrUnknownZone)
	}
	r.debouncer.Cancel(win)

	idx, err := z.CycleWindow(win, dir)
	if err != nil {
		return CycleResult{}, err
	}
	rect, err := r.apply(win, z, SourceHotkey)
	if err != nil {
		return CycleResult{}, err
	}
	return CycleResult{
		Window:  win,
		Zone:    z.ID(),
		ZoneID:  z.QualifiedID(),
		TileIdx: idx,
		Frame:   rect.Platform(),
	}, nil
}

// FocusNextInZone focuses the window after the focused one in the zone,
// wrapping around; the first window when focus is outside the zone. zoneID
// is a qualified id, or a logical id resolved on the focused window's
// screen.
func (r *Reconciler) FocusNextInZone(zoneID string) (platform.WindowID, error) {
	z, ok := r.zoneForFocus(zoneID)
	if !ok {
		return 0, fmt.Errorf("zone %q: %w", zoneID, zone.ErrUnknownZone)
	}

	var windows []platform.WindowID
	for _, win := range z.Windows() {
		if _, err := r.backend.Window(win); err != nil {
			_ = z.RemoveWindow(win)
			continue
		}
		windows = append(windows, win)
	}
	if len(windows) == 0 {
		return 0, fmt.Errorf("zone %s has no windows: %w", z.QualifiedID(), zone.ErrWindowNotAssigned)
	}

	next := windows[0]
	if active, err := r.backend.ActiveWindow(); err == nil {
		for i, win := range windows {
			if win == active {
				next = windows[(i+1)%len(windows)]
				break
			}
		}
	}
	if err := r.backend.Focus(next); err != nil {
		return 0, err
	}
	return next, nil
}

func (r *Reconciler) zoneForFocus(zoneID string) (*zone.Zone, bool) {
	if z, ok := r.registry.ByQualifiedID(zoneID); ok {
		return z, true
	}
	if active, err := r.backend.ActiveWindow(); err == nil {
		if w, err := r.backend.Window(active); err == nil {
			if d, ok := r.displayOf(w); ok {
				if z, ok := r.registry.Find(zoneID, d.Key()); ok {
					return z, true
				}
			}
		}
	}
	if zones := r.registry.Logical(zoneID); len(zones) > 0 {
		return zones[0], true
	}
	return nil, false
}

// Unassign removes win from its zone.
func (r *Reconciler) Unassign(win platform.WindowID) error {
	r.cancelSession(win)
	return r.registry.Unassign(win)
}

// Match runs the matcher for win without changing anything.
func (r *Reconciler) Match(win platform.WindowID) (placement.Match, bool, error) {
	w, err := r.backend.Window(win)
	if err != nil {
		return placement.Match{}, false, fmt.Errorf("window %d: %w", win, zone.ErrStaleWindow)
	}
	display, ok := r.displayOf(w)
	if !ok {
		return placement.Match{}, false, fmt.Errorf("window %d is on no known screen", win)
	}
	m, ok := r.matcher.FindBestZoneForWindow(tiling.RectFromPlatform(w.Bounds), display.Key())
	return m, ok, nil
}

// RebuildZones re-creates zones for the current screens.
func (r *Reconciler) RebuildZones(cfg *config.Config) error {
	displays, err := r.backend.Displays()
	if err != nil {
		return fmt.Errorf("list displays: %w", err)
	}
	r.registry.InitForAllScreens(displays, cfg)
	return nil
}

// PruneClosed forgets windows that no longer exist and returns their ids.
func (r *Reconciler) PruneClosed() []platform.WindowID {
	windows, err := r.backend.Windows()
	if err != nil {
		r.logger.Warn("cannot list windows", "error", err)
		return nil
	}
	alive := make(map[platform.WindowID]struct{}, len(windows))
	for _, w := range windows {
		alive[w.ID] = struct{}{}
	}
	var pruned []platform.WindowID
	for _, rec := range r.registry.Tracker().All() {
		if _, ok := alive[rec.Window]; ok {
			continue
		}
		r.OnWindowDestroyed(rec.Window)
		r.registry.Tracker().Remove(rec.Window)
		pruned = append(pruned, rec.Window)
	}
	return pruned
}

func (r *Reconciler) displayOf(w platform.Window) (platform.Display, bool) {
	displays, err := r.backend.Displays()
	if err != nil {
		r.logger.Warn("cannot list displays", "error", err)
		return platform.Display{}, false
	}
	if d, ok := platform.DisplayFor(displays, w.Bounds); ok {
		return d, true
	}
	return platform.DisplayByID(displays, w.DisplayID)
}
