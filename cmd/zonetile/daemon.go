package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/daemon"
	"github.com/1broseidon/zonetile/internal/platform"
)

func (a *app) daemonCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the placement daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDaemon(cmd.Context())
		},
	}
}

func (a *app) runDaemon(ctx context.Context) error {
	configPath, err := a.resolveConfigPath()
	if err != nil {
		return err
	}
	res, err := config.LoadFromPath(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.setLogLevel(res.Config.LogLevel)
	a.logger.Info("configuration loaded", "path", configPath, "files", len(res.Files))

	socketPath, err := a.resolveSocketPath()
	if err != nil {
		return fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer backend.Disconnect()

	d, err := daemon.New(daemon.Options{
		Config:      res.Config,
		ConfigPath:  configPath,
		Backend:     backend,
		SocketPath:  socketPath,
		Version:     version,
		Level:       a.level,
		LevelPinned: a.verbose,
		Logger:      a.logger,
	})
	if err != nil {
		return err
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				a.logger.Info("received SIGHUP, reloading config")
				if err := d.Reload(ctx); err != nil {
					a.logger.Error("config reload failed", "error", err)
				}
			}
		}
	}()

	return d.Run(ctx)
}
