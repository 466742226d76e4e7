package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the configuration when the file (or any file it includes)
// changes on disk. Editors that replace files atomically are handled by
// watching parent directories.
type Watcher struct {
	path     string
	logger   *slog.Logger
	debounce time.Duration
	onChange func(*Config)
}

// NewWatcher creates a watcher for path. onChange receives each successfully
// loaded configuration; invalid files are logged and ignored.
func NewWatcher(path string, logger *slog.Logger, onChange func(*Config)) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     path,
		logger:   logger,
		debounce: 250 * time.Millisecond,
		onChange: onChange,
	}
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	watched := w.watchSet()
	for dir := range watched {
		if err := fw.Add(dir); err != nil {
			w.logger.Warn("config watch failed", "dir", dir, "error", err)
		}
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-fire:
			fire = nil
			res, err := LoadFromPath(w.path)
			if err != nil {
				w.logger.Error("config reload failed", "path", w.path, "error", err)
				continue
			}
			w.logger.Info("config reloaded", "path", w.path, "files", len(res.Files))
			for dir := range w.watchSetFrom(res.Files) {
				if _, ok := watched[dir]; !ok {
					watched[dir] = struct{}{}
					_ = fw.Add(dir)
				}
			}
			w.onChange(res.Config)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	ext := filepath.Ext(ev.Name)
	return ext == ".yaml" || ext == ".yml"
}

func (w *Watcher) watchSet() map[string]struct{} {
	files := []string{w.path}
	if res, err := LoadFromPath(w.path); err == nil {
		files = append(files, res.Files...)
	}
	return w.watchSetFrom(files)
}

func (w *Watcher) watchSetFrom(files []string) map[string]struct{} {
	dirs := make(map[string]struct{}, len(files))
	for _, f := range files {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	return dirs
}
