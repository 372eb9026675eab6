package filesystem

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/filekit/component"
	"github.com/kbukum/filekit/logger"
)

// healthProbePath is checked on every health report. Its absence is fine;
// only a backend error marks the disk unhealthy.
const healthProbePath = ".filekit-health"

// Component wraps a Storage for lifecycle management.
type Component struct {
	source ConfigSource
	opts   []Option
	log    *logger.Logger

	mu      sync.RWMutex
	storage *Storage
}

// ensure Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// NewComponent creates a storage component. The Storage is built on Start.
func NewComponent(source ConfigSource, opts ...Option) *Component {
	return &Component{
		source: source,
		opts:   opts,
		log:    logger.Get("filesystem"),
	}
}

// Storage returns the underlying Storage, or nil if not started.
func (c *Component) Storage() *Storage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.storage
}

// Name returns the component name.
func (c *Component) Name() string { return "filesystem" }

// Start binds the default disk.
func (c *Component) Start(_ context.Context) error {
	s, err := New(c.source, c.opts...)
	if err != nil {
		return fmt.Errorf("filesystem start: %w", err)
	}
	c.mu.Lock()
	c.storage = s
	c.mu.Unlock()
	return nil
}

// Stop releases the bound driver.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	s := c.storage
	c.storage = nil
	c.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Close()
}

// Health probes the bound disk with an existence check.
func (c *Component) Health(ctx context.Context) component.Health {
	s := c.Storage()
	if s == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "storage not initialized",
		}
	}

	details := map[string]string{"disk": s.CurrentDisk(), "driver": s.CurrentDriver()}
	if _, err := s.Driver().Exists(ctx, healthProbePath); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("health probe failed: %v", err),
			Details: details,
		}
	}

	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Details: details,
	}
}

// Describe returns summary info for the startup log.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("default=%s", c.source.DefaultDisk())
	if s := c.Storage(); s != nil {
		details = fmt.Sprintf("disk=%s driver=%s drivers=%v", s.CurrentDisk(), s.CurrentDriver(), s.DriverNames())
	}
	return component.Description{
		Name:    "Filesystem",
		Type:    "storage",
		Details: details,
	}
}
