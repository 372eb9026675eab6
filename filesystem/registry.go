package filesystem

import (
	"sync"

	"github.com/kbukum/filekit/errors"
)

// DriverFactory builds a driver for disk from its merged options.
type DriverFactory func(disk string, opts Options) (Driver, error)

// Registry maps driver names to factories. Entries are additive only.
type Registry struct {
	mu        sync.RWMutex
	names     []string
	factories map[string]DriverFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]DriverFactory)}
}

// Register adds factory under name. A name can be registered only once.
func (r *Registry) Register(name string, factory DriverFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return errors.AlreadyRegistered(name)
	}
	r.factories[name] = factory
	r.names = append(r.names, name)
	return nil
}

// MustRegister is Register for static setup; it panics on duplicates.
func (r *Registry) MustRegister(name string, factory DriverFactory) *Registry {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
	return r
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Resolve returns the factory registered under name.
func (r *Registry) Resolve(name string) (DriverFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[name]
	if !ok {
		return nil, errors.UnknownDriver(name)
	}
	return f, nil
}
