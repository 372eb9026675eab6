package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Manager drives several test components together.
type Manager struct {
	ctx        context.Context
	components []TestComponent
	mu         sync.RWMutex
}

// NewManager creates a manager whose lifecycle calls use ctx.
func NewManager(ctx context.Context) *Manager {
	return &Manager{ctx: ctx}
}

// Add registers a component. Components start in the order added.
func (m *Manager) Add(c TestComponent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, c)
}

// Get returns the component named name, or nil.
func (m *Manager) Get(name string) TestComponent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// StartAll starts every component in order. On failure the components
// already started are stopped again.
func (m *Manager) StartAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i, c := range m.components {
		if err := c.Start(m.ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = m.components[j].Stop(m.ctx)
			}
			return fmt.Errorf("failed to start component %s: %w", c.Name(), err)
		}
	}
	return nil
}

// StopAll stops every component in reverse order and joins the errors.
func (m *Manager) StopAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	for i := len(m.components) - 1; i >= 0; i-- {
		c := m.components[i]
		if err := c.Stop(m.ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop component %s: %w", c.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// ResetAll resets every component, stopping at the first failure.
func (m *Manager) ResetAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.components {
		if err := c.Reset(m.ctx); err != nil {
			return fmt.Errorf("failed to reset component %s: %w", c.Name(), err)
		}
	}
	return nil
}

// SnapshotAll captures every component's state keyed by name.
func (m *Manager) SnapshotAll() (map[string]interface{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snaps := make(map[string]interface{}, len(m.components))
	for _, c := range m.components {
		snap, err := c.Snapshot(m.ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot component %s: %w", c.Name(), err)
		}
		snaps[c.Name()] = snap
	}
	return snaps, nil
}

// RestoreAll restores the components named in snaps.
func (m *Manager) RestoreAll(snaps map[string]interface{}) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.components {
		snap, ok := snaps[c.Name()]
		if !ok {
			continue
		}
		if err := c.Restore(m.ctx, snap); err != nil {
			return fmt.Errorf("failed to restore component %s: %w", c.Name(), err)
		}
	}
	return nil
}
