package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Store. Saved positions are copied, so callers may
// keep mutating their maps.
type Memory struct {
	mu      sync.Mutex
	screens map[string]Positions

	// LoadErr and SaveErr, when set, are returned instead of doing the work.
	LoadErr error
	SaveErr error
	Saves   int
}

func NewMemory() *Memory {
	return &Memory{screens: make(map[string]Positions)}
}

func (m *Memory) Load(ctx context.Context, screenKey string) (Positions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	p, ok := m.screens[screenKey]
	if !ok {
		return nil, fmt.Errorf("screen %q: %w", screenKey, ErrNotFound)
	}
	return p.Clone(), nil
}

func (m *Memory) Save(ctx context.Context, screenKey string, positions Positions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.screens[screenKey] = positions.Clone()
	m.Saves++
	return nil
}
