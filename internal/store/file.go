package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one JSON file per screen under dir.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{dir: dir, logger: logger}
}

// Dir returns the directory holding the position files.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(screenKey string) (string, error) {
	name := strings.TrimSpace(screenKey)
	if name == "" {
		return "", fmt.Errorf("screen key is required")
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '-'
		}
		return r
	}, name)
	if name == "." || name == ".." {
		return "", fmt.Errorf("invalid screen key %q", screenKey)
	}
	return filepath.Join(s.dir, name+".json"), nil
}

func (s *FileStore) Load(ctx context.Context, screenKey string) (Positions, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(screenKey)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("screen %q: %w", screenKey, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read positions for %q: %w", screenKey, err)
	}
	var positions Positions
	if err := json.Unmarshal(data, &positions); err != nil {
		return nil, fmt.Errorf("failed to parse positions for %q: %w", screenKey, err)
	}
	if positions == nil {
		positions = Positions{}
	}
	return positions, nil
}

// Save writes through a temp file and rename so readers never see a
// partial file.
func (s *FileStore) Save(ctx context.Context, screenKey string, positions Positions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(screenKey)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create positions directory: %w", err)
	}
	if positions == nil {
		positions = Positions{}
	}
	data, err := json.MarshalIndent(positions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode positions: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".positions-*.json")
	if err != nil {
		return fmt.Errorf("failed to write positions for %q: %w", screenKey, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write positions for %q: %w", screenKey, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write positions for %q: %w", screenKey, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to write positions for %q: %w", screenKey, err)
	}
	s.logger.Debug("positions saved", "screen", screenKey, "apps", len(positions), "path", path)
	return nil
}
