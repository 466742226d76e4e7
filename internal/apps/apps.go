// Package apps resolves the application name used to key remembered
// positions.
package apps

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/1broseidon/zonetile/internal/platform"
)

// Resolver names the application owning a window.
type Resolver interface {
	AppName(w platform.Window) string
}

// ProcessLookup returns the executable name of a process.
type ProcessLookup func(ctx context.Context, pid int) (string, error)

// ProcessResolver prefers the window's class (AppID), falling back to the
// name of the owning process. PIDs are reused, so names are not cached.
type ProcessResolver struct {
	lookup  ProcessLookup
	timeout time.Duration
}

// NewProcessResolver uses gopsutil when lookup is nil.
func NewProcessResolver(lookup ProcessLookup) *ProcessResolver {
	if lookup == nil {
		lookup = processName
	}
	return &ProcessResolver{lookup: lookup, timeout: 500 * time.Millisecond}
}

// AppName returns "" when nothing identifies the window.
func (r *ProcessResolver) AppName(w platform.Window) string {
	if name := strings.TrimSpace(w.AppID); name != "" {
		return name
	}
	if w.PID <= 0 {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	name, err := r.lookup(ctx, w.PID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(filepath.Base(name))
}

func processName(ctx context.Context, pid int) (string, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return "", err
	}
	return p.NameWithContext(ctx)
}
