package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoLayout is returned when no layout applies to a screen.
var ErrNoLayout = errors.New("no layout configured")

// DefaultLayoutName is the layout used when neither the screen name nor its
// grid dimensions have a dedicated entry.
const DefaultLayoutName = "default"

// Margins represents padding applied to each screen edge.
type Margins struct {
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
}

// GridSize is the cell partition of a screen used by cell-range tiles.
type GridSize struct {
	Cols int `yaml:"cols"`
	Rows int `yaml:"rows"`
}

// String renders the grid as "colsxrows", the form used as a layout key.
func (g GridSize) String() string {
	return fmt.Sprintf("%dx%d", g.Cols, g.Rows)
}

// PercentRect is a tile rectangle expressed in percent of the usable area.
type PercentRect struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// TileSpec describes one candidate rectangle of a zone. Exactly one of
// Region or Percent must be set. Region is either a preset name such as
// "left-half" or a cell range such as "a1:b2".
type TileSpec struct {
	Region      string       `yaml:"region,omitempty"`
	Percent     *PercentRect `yaml:"percent,omitempty"`
	Description string       `yaml:"description,omitempty"`
	Tags        []string     `yaml:"tags,omitempty"`
}

// ZoneSpec is one logical zone of a layout. Tiles are listed in cycle order.
type ZoneSpec struct {
	Key         string     `yaml:"key"`
	Hotkey      string     `yaml:"hotkey,omitempty"` // defaults to Key
	Description string     `yaml:"description,omitempty"`
	Tags        []string   `yaml:"tags,omitempty"`
	Tiles       []TileSpec `yaml:"tiles"`
}

// TriggerKey returns the key symbol bound to this zone's hotkeys.
func (z ZoneSpec) TriggerKey() string {
	if z.Hotkey != "" {
		return z.Hotkey
	}
	return z.Key
}

// Layout is an ordered set of zones. Zone order fixes registry enumeration
// order and therefore match tie-breaking.
type Layout struct {
	Zones []ZoneSpec `yaml:"zones"`
}

// Zone returns the zone spec with the given key.
func (l *Layout) Zone(key string) (ZoneSpec, bool) {
	for _, z := range l.Zones {
		if z.Key == key {
			return z, true
		}
	}
	return ZoneSpec{}, false
}

// Placement tunes the window placement reconciler.
type Placement struct {
	SettleDelay           time.Duration `yaml:"settle_delay"`
	ProblemAppSettleDelay time.Duration `yaml:"problem_app_settle_delay"`
	VerifyDelay           time.Duration `yaml:"verify_delay"`
	DebounceDelay         time.Duration `yaml:"debounce_delay"`
	Tolerance             int           `yaml:"tolerance"` // pixels per edge
	ProblemApps           []string      `yaml:"problem_apps,omitempty"`
	IgnoreApps            []string      `yaml:"ignore_apps,omitempty"`
	AutoTile              bool          `yaml:"auto_tile"`
	FallbackZone          string        `yaml:"fallback_zone,omitempty"`
	FallbackTile          int           `yaml:"fallback_tile,omitempty"`
}

// IsProblemApp reports whether app needs the longer settle delay.
func (p Placement) IsProblemApp(app string) bool {
	return containsFold(p.ProblemApps, app)
}

// IsIgnored reports whether app is excluded from automatic placement.
func (p Placement) IsIgnored(app string) bool {
	return containsFold(p.IgnoreApps, app)
}

// RedisConfig configures the redis remembered-position store.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	Timeout  time.Duration `yaml:"timeout"`
}

// StoreConfig selects where remembered positions are persisted.
type StoreConfig struct {
	Backend string      `yaml:"backend"` // file, redis or memory
	Dir     string      `yaml:"dir,omitempty"`
	Redis   RedisConfig `yaml:"redis"`
}

const (
	StoreBackendFile   = "file"
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"
)

// Config is the effective zonetile configuration.
type Config struct {
	Include        IncludeList         `yaml:"include,omitempty"`
	LogLevel       string              `yaml:"log_level"`
	CycleModifier  string              `yaml:"cycle_modifier"`
	FocusModifier  string              `yaml:"focus_modifier"`
	RememberHotkey string              `yaml:"remember_hotkey,omitempty"`
	UnassignHotkey string              `yaml:"unassign_hotkey,omitempty"`
	GapSize        int                 `yaml:"gap_size"`
	ScreenPadding  Margins             `yaml:"screen_padding"`
	DefaultGrid    GridSize            `yaml:"default_grid"`
	UltrawideGrid  GridSize            `yaml:"ultrawide_grid"`
	UltrawideRatio float64             `yaml:"ultrawide_ratio"`
	ScreenGrids    map[string]GridSize `yaml:"screen_grids,omitempty"`
	Layouts        map[string]Layout   `yaml:"layouts"`
	Placement      Placement           `yaml:"placement"`
	Store          StoreConfig         `yaml:"store"`
	MetricsAddr    string              `yaml:"metrics_addr,omitempty"`
}

// IncludeList accepts either a single path or a list of paths.
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*l = IncludeList{value.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("include must be a string or a list of strings")
	}
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		CycleModifier:  "Mod4-Mod1",       // Super+Alt+<zone key> cycles
		FocusModifier:  "Mod4-Mod1-Shift", // Super+Alt+Shift+<zone key> focuses
		RememberHotkey: "Mod4-Mod1-m",
		UnassignHotkey: "Mod4-Mod1-u",
		GapSize:        8,
		DefaultGrid:    GridSize{Cols: 3, Rows: 2},
		UltrawideGrid:  GridSize{Cols: 4, Rows: 2},
		UltrawideRatio: 2.1,
		ScreenGrids:    make(map[string]GridSize),
		Layouts:        BuiltinLayouts(),
		Placement: Placement{
			SettleDelay:           300 * time.Millisecond,
			ProblemAppSettleDelay: time.Second,
			VerifyDelay:           400 * time.Millisecond,
			DebounceDelay:         500 * time.Millisecond,
			Tolerance:             10,
			AutoTile:              false,
			FallbackZone:          "0",
			FallbackTile:          1,
		},
		Store: StoreConfig{
			Backend: StoreBackendFile,
			Redis: RedisConfig{
				Addr:    "127.0.0.1:6379",
				Prefix:  "zonetile",
				Timeout: 2 * time.Second,
			},
		},
	}
}

// GridFor picks the cell grid for a screen: a per-screen override, then the
// ultrawide grid for very wide screens, then the default grid.
func (c *Config) GridFor(screenName string, width, height int) GridSize {
	if g, ok := c.ScreenGrids[screenName]; ok {
		return g
	}
	if height > 0 && c.UltrawideRatio > 0 && float64(width)/float64(height) >= c.UltrawideRatio {
		return c.UltrawideGrid
	}
	return c.DefaultGrid
}

// LayoutFor resolves the layout for a screen by exact screen name, then by
// "colsxrows" of its grid, then the default layout. The matched key is
// returned alongside.
func (c *Config) LayoutFor(screenName string, grid GridSize) (*Layout, string, error) {
	for _, key := range []string{screenName, grid.String(), DefaultLayoutName} {
		if key == "" {
			continue
		}
		if layout, ok := c.Layouts[key]; ok {
			return &layout, key, nil
		}
	}
	return nil, "", fmt.Errorf("%w for screen %q (grid %s)", ErrNoLayout, screenName, grid)
}

// ZoneKeys returns every zone key across all layouts, sorted.
func (c *Config) ZoneKeys() []string {
	seen := make(map[string]struct{})
	for _, layout := range c.Layouts {
		for _, z := range layout.Zones {
			seen[z.Key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TriggerKeys maps each hotkey symbol to the zone key it triggers, across
// all layouts. The first layout (by name) wins for conflicting symbols.
func (c *Config) TriggerKeys() map[string]string {
	names := make([]string, 0, len(c.Layouts))
	for name := range c.Layouts {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]string)
	for _, name := range names {
		for _, z := range c.Layouts[name].Zones {
			sym := z.TriggerKey()
			if _, taken := out[sym]; !taken {
				out[sym] = z.Key
			}
		}
	}
	return out
}

// Save writes the configuration to path.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	save := *c
	save.Include = nil
	data, err := yaml.Marshal(&save)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if strings.TrimSpace(c.CycleModifier) == "" {
		return &ValidationError{Path: "cycle_modifier", Err: fmt.Errorf("cycle_modifier is required")}
	}
	if strings.TrimSpace(c.FocusModifier) == "" {
		return &ValidationError{Path: "focus_modifier", Err: fmt.Errorf("focus_modifier is required")}
	}
	if c.CycleModifier == c.FocusModifier {
		return &ValidationError{Path: "focus_modifier", Err: fmt.Errorf("focus_modifier must differ from cycle_modifier")}
	}
	if c.GapSize < 0 {
		return &ValidationError{Path: "gap_size", Err: fmt.Errorf("gap_size must be >= 0")}
	}
	if c.ScreenPadding.Top < 0 || c.ScreenPadding.Bottom < 0 || c.ScreenPadding.Left < 0 || c.ScreenPadding.Right < 0 {
		return &ValidationError{Path: "screen_padding", Err: fmt.Errorf("screen_padding values must be >= 0")}
	}
	if err := validateGrid(c.DefaultGrid); err != nil {
		return &ValidationError{Path: "default_grid", Err: err}
	}
	if err := validateGrid(c.UltrawideGrid); err != nil {
		return &ValidationError{Path: "ultrawide_grid", Err: err}
	}
	for name, g := range c.ScreenGrids {
		if err := validateGrid(g); err != nil {
			return &ValidationError{Path: "screen_grids." + name, Err: err}
		}
	}

	if len(c.Layouts) == 0 {
		return &ValidationError{Path: "layouts", Err: fmt.Errorf("layouts must not be empty")}
	}
	for name, layout := range c.Layouts {
		if err := validateLayout(&layout); err != nil {
			return &ValidationError{Path: "layouts." + name, Err: err}
		}
	}

	if err := validatePlacement(c.Placement); err != nil {
		return err
	}

	switch c.Store.Backend {
	case StoreBackendFile, StoreBackendMemory:
	case StoreBackendRedis:
		if strings.TrimSpace(c.Store.Redis.Addr) == "" {
			return &ValidationError{Path: "store.redis.addr", Err: fmt.Errorf("addr is required for the redis backend")}
		}
	default:
		return &ValidationError{Path: "store.backend", Err: fmt.Errorf("backend must be one of: file, redis, memory")}
	}

	return nil
}

func validatePlacement(p Placement) error {
	durations := []struct {
		path string
		d    time.Duration
	}{
		{"placement.settle_delay", p.SettleDelay},
		{"placement.problem_app_settle_delay", p.ProblemAppSettleDelay},
		{"placement.verify_delay", p.VerifyDelay},
		{"placement.debounce_delay", p.DebounceDelay},
	}
	for _, d := range durations {
		if d.d < 0 {
			return &ValidationError{Path: d.path, Err: fmt.Errorf("must be >= 0")}
		}
	}
	if p.Tolerance < 0 {
		return &ValidationError{Path: "placement.tolerance", Err: fmt.Errorf("tolerance must be >= 0")}
	}
	if p.FallbackTile < 0 {
		return &ValidationError{Path: "placement.fallback_tile", Err: fmt.Errorf("fallback_tile must be >= 0")}
	}
	return nil
}

func validateGrid(g GridSize) error {
	if g.Cols <= 0 || g.Rows <= 0 {
		return fmt.Errorf("cols and rows must be positive")
	}
	if g.Cols > maxGridCols {
		return fmt.Errorf("cols must be <= %d", maxGridCols)
	}
	return nil
}

// validateLayout checks zone keys and tile specs.
func validateLayout(layout *Layout) error {
	seen := make(map[string]struct{}, len(layout.Zones))
	for i, z := range layout.Zones {
		key := strings.TrimSpace(z.Key)
		if key == "" {
			return fmt.Errorf("zones[%d]: key is required", i)
		}
		if strings.Contains(key, "_") {
			return fmt.Errorf("zones[%d]: key %q must not contain '_'", i, key)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("zones[%d]: duplicate key %q", i, key)
		}
		seen[key] = struct{}{}

		for j, tile := range z.Tiles {
			if err := validateTileSpec(tile); err != nil {
				return fmt.Errorf("zones[%d].tiles[%d]: %w", i, j, err)
			}
		}
	}
	return nil
}

func validateTileSpec(t TileSpec) error {
	hasRegion := strings.TrimSpace(t.Region) != ""
	hasPercent := t.Percent != nil
	switch {
	case hasRegion && hasPercent:
		return fmt.Errorf("region and percent are mutually exclusive")
	case !hasRegion && !hasPercent:
		return fmt.Errorf("one of region or percent is required")
	case hasPercent:
		p := t.Percent
		if p.X < 0 || p.Y < 0 || p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("percent values must be positive")
		}
		if p.X+p.Width > 100 || p.Y+p.Height > 100 {
			return fmt.Errorf("percent rectangle exceeds 100%%")
		}
		return nil
	}

	if IsRegionPreset(t.Region) {
		return nil
	}
	if _, err := ParseCellRange(t.Region); err != nil {
		return fmt.Errorf("region %q is neither a preset nor a cell range: %w", t.Region, err)
	}
	return nil
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
