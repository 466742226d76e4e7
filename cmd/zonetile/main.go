package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/ipc"
	"github.com/1broseidon/zonetile/internal/runtimepath"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newApp().root().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds flags and state shared by every command.
type app struct {
	configPath string
	socketPath string
	jsonOut    bool
	verbose    bool

	level  *slog.LevelVar
	logger *slog.Logger
}

func newApp() *app {
	level := new(slog.LevelVar)
	return &app{
		level:  level,
		logger: slog.New(newLogHandler(os.Stderr, level)),
	}
}

func (a *app) root() *cobra.Command {
	root := &cobra.Command{
		Use:           "zonetile",
		Short:         "Zone-based window placement for X11",
		Long:          `zonetile places windows into configurable screen zones, cycles them through each zone's tiles with hotkeys, and remembers where every application was last put.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.verbose {
				a.level.Set(slog.LevelDebug)
			}
			slog.SetDefault(a.logger)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/zonetile/config.yaml)")
	flags.StringVar(&a.socketPath, "socket", "", "daemon socket (default: $XDG_RUNTIME_DIR/zonetile.sock)")
	flags.BoolVar(&a.jsonOut, "json", false, "print JSON even on a terminal")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.daemonCommand(),
		a.statusCommand(),
		a.zonesCommand(),
		a.windowsCommand(),
		a.cycleCommand(),
		a.focusNextCommand(),
		a.matchCommand(),
		a.rememberCommand(),
		a.unassignCommand(),
		a.reloadCommand(),
		a.configCommand(),
		a.mcpCommand(),
	)
	return root
}

func (a *app) resolveConfigPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.DefaultConfigPath()
}

func (a *app) resolveSocketPath() (string, error) {
	if a.socketPath != "" {
		return a.socketPath, nil
	}
	return runtimepath.SocketPath()
}

func (a *app) client() (*ipc.Client, error) {
	path, err := a.resolveSocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return ipc.NewClientAt(path), nil
}

func (a *app) setLogLevel(name string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(name)); err == nil && !a.verbose {
		a.level.Set(lvl)
	}
}

// newLogHandler renders slog records through charmbracelet/log. Filtering
// happens against level so it can change at runtime.
func newLogHandler(w *os.File, level *slog.LevelVar) slog.Handler {
	logger := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           charmlog.DebugLevel,
		Prefix:          "zonetile",
	})
	return &levelHandler{level: level, Handler: logger}
}

type levelHandler struct {
	level *slog.LevelVar
	slog.Handler
}

func (h *levelHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.level.Level() && h.Handler.Enabled(ctx, l)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{level: h.level, Handler: h.Handler.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{level: h.level, Handler: h.Handler.WithGroup(name)}
}
