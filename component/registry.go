package component

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/filekit/logger"
)

// componentEntry holds a component and its started state.
type componentEntry struct {
	component Component
	started   bool
}

// Registry manages component lifecycle with deterministic ordering.
// Components are started in registration order and stopped in reverse order.
type Registry struct {
	entries     []*componentEntry
	lookup      map[string]*componentEntry
	mu          sync.RWMutex
	stopTimeout time.Duration
}

// NewRegistry creates a new component registry.
func NewRegistry() *Registry {
	return &Registry{
		entries:     make([]*componentEntry, 0),
		lookup:      make(map[string]*componentEntry),
		stopTimeout: 10 * time.Second,
	}
}

// Register adds a component to the registry. Register dependencies first.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.lookup[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}

	entry := &componentEntry{component: c}
	r.entries = append(r.entries, entry)
	r.lookup[name] = entry

	logger.Debug("component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// StartAll starts all components in registration order. Components that
// started before a failure are stopped again before the error is returned.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range r.entries {
		name := entry.component.Name()
		if err := entry.component.Start(ctx); err != nil {
			logger.Error("component start failed", logger.Fields(logger.FieldComponent, name, logger.FieldError, err))
			r.stopStarted(ctx)
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		entry.started = true

		fields := logger.Fields(logger.FieldComponent, name)
		if d, ok := entry.component.(Describable); ok {
			desc := d.Describe()
			fields["type"] = desc.Type
			fields["details"] = desc.Details
		}
		logger.Info("component started", fields)
	}
	return nil
}

// StopAll gracefully stops all started components in reverse order.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if errs := r.stopStarted(ctx); len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

func (r *Registry) stopStarted(ctx context.Context) []error {
	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if !entry.started {
			continue
		}

		name := entry.component.Name()
		stopCtx, cancel := context.WithTimeout(ctx, r.stopTimeout)
		if err := entry.component.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
			logger.Error("component stop failed", logger.Fields(logger.FieldComponent, name, logger.FieldError, err))
		} else {
			logger.Info("component stopped", logger.Fields(logger.FieldComponent, name))
		}
		entry.started = false
		cancel()
	}
	return errs
}

// HealthAll returns health status for all registered components.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]Health, 0, len(r.entries))
	for _, entry := range r.entries {
		results = append(results, entry.component.Health(ctx))
	}
	return results
}

// Descriptions returns a Description for every registered component in
// registration order. Components that are not Describable get their name
// only.
func (r *Registry) Descriptions() []Description {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Description, 0, len(r.entries))
	for _, entry := range r.entries {
		var desc Description
		if d, ok := entry.component.(Describable); ok {
			desc = d.Describe()
		}
		if desc.Name == "" {
			desc.Name = entry.component.Name()
		}
		out = append(out, desc)
	}
	return out
}

// Report is the aggregated health of a process.
type Report struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// Report aggregates component health. One unhealthy component makes the
// whole report unhealthy; a degraded one degrades it.
func (r *Registry) Report(ctx context.Context, service, version string) Report {
	rep := Report{Service: service, Version: version, Status: StatusHealthy}
	for _, h := range r.HealthAll(ctx) {
		rep.Components = append(rep.Components, h)
		switch h.Status {
		case StatusUnhealthy:
			rep.Status = StatusUnhealthy
		case StatusDegraded:
			if rep.Status != StatusUnhealthy {
				rep.Status = StatusDegraded
			}
		}
	}
	return rep
}

// Get returns a registered component by name, or nil if not found.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, exists := r.lookup[name]; exists {
		return entry.component
	}
	return nil
}

// All returns all registered components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Component, 0, len(r.entries))
	for _, entry := range r.entries {
		result = append(result, entry.component)
	}
	return result
}
