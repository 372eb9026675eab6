package server

import (
	"context"
	"fmt"

	"github.com/kbukum/filekit/component"
)

const componentName = "http-server"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component wraps Server for the component registry.
type Component struct {
	server *Server
}

// NewComponent returns a component backed by s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

// Name returns the component name used for registration.
func (c *Component) Name() string { return componentName }

// Start starts the underlying HTTP server.
func (c *Component) Start(ctx context.Context) error {
	return c.server.Start(ctx)
}

// Stop gracefully shuts down the underlying HTTP server.
func (c *Component) Stop(ctx context.Context) error {
	return c.server.Stop(ctx)
}

// Health reports healthy once the server is listening.
func (c *Component) Health(_ context.Context) component.Health {
	c.server.mu.RLock()
	listening := c.server.listener != nil
	c.server.mu.RUnlock()

	if !listening {
		return component.Health{
			Name:    componentName,
			Status:  component.StatusUnhealthy,
			Message: "HTTP server not started",
		}
	}
	return component.Health{
		Name:    componentName,
		Status:  component.StatusHealthy,
		Details: map[string]string{"addr": c.server.Addr()},
	}
}

// Describe returns summary info for the startup log.
func (c *Component) Describe() component.Description {
	cfg := c.server.config
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("%s:%d%s", cfg.Host, cfg.Port, cfg.Prefix),
		Port:    cfg.Port,
	}
}
