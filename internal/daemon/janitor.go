package daemon

import (
	"context"
	"log/slog"
	"time"
)

// JanitorConfig holds configuration for the janitor.
type JanitorConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Janitor periodically drops state for windows that closed without a
// destroy notification reaching us.
type Janitor struct {
	interval time.Duration
	sweep    func(context.Context) error
	logger   *slog.Logger
}

// NewJanitor creates a janitor that calls sweep every interval
// (default 30s).
func NewJanitor(cfg JanitorConfig, sweep func(context.Context) error) *Janitor {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Janitor{
		interval: interval,
		sweep:    sweep,
		logger:   logger,
	}
}

// Run starts the sweep loop. Blocks until context is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Debug("janitor started", "interval", j.interval)

	for {
		select {
		case <-ctx.Done():
			j.logger.Debug("janitor stopped")
			return
		case <-ticker.C:
			j.SweepNow(ctx)
		}
	}
}

// SweepNow performs a single pass.
func (j *Janitor) SweepNow(ctx context.Context) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			j.logger.Error("janitor panic recovered", "error", err)
		}
	}()

	if err := j.sweep(ctx); err != nil && ctx.Err() == nil {
		j.logger.Warn("janitor sweep failed", "error", err)
	}
}
