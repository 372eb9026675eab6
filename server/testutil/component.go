package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/filekit/component"
	"github.com/kbukum/filekit/filesystem"
	"github.com/kbukum/filekit/logger"
	"github.com/kbukum/filekit/server"
	"github.com/kbukum/filekit/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Component serves a Storage's disks through an httptest.Server.
type Component struct {
	storage *filesystem.Storage
	cfg     server.Config
	log     *logger.Logger

	mu      sync.RWMutex
	srv     *server.Server
	ts      *httptest.Server
	started bool
}

var _ component.Component = (*Component)(nil)
var _ testutil.TestComponent = (*Component)(nil)

// NewComponent creates a file server component over storage. The disks
// argument restricts the served disks as server.Config.Disks does.
func NewComponent(storage *filesystem.Storage, disks ...string) *Component {
	cfg := server.Config{Host: "127.0.0.1", Disks: disks}
	cfg.ApplyDefaults()
	return &Component{storage: storage, cfg: cfg, log: logger.Nop()}
}

// Server returns the current *server.Server, or nil before Start.
func (c *Component) Server() *server.Server {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.srv
}

// BaseURL returns the test server's base URL, or "" if not started.
func (c *Component) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ts == nil {
		return ""
	}
	return c.ts.URL
}

// FileURL returns the URL serving p from disk.
func (c *Component) FileURL(disk, p string) string {
	return c.BaseURL() + c.cfg.Prefix + "/" + disk + "/" + p
}

func (c *Component) Name() string { return "server-test" }

func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return fmt.Errorf("component already started")
	}
	c.serve()
	c.started = true
	return nil
}

// serve builds a fresh server; callers hold mu.
func (c *Component) serve() {
	c.srv = server.New(c.cfg, c.storage, c.log)
	c.srv.ApplyDefaults("filekit-test", func(context.Context) component.Report {
		return component.Report{Service: "filekit-test", Status: component.StatusHealthy}
	})
	c.ts = httptest.NewServer(c.srv.Handler())
}

func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return nil
	}
	c.ts.Close()
	err := c.srv.CloseSessions()
	c.ts = nil
	c.srv = nil
	c.started = false
	return err
}

func (c *Component) Health(_ context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.started {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Reset replaces the server, dropping its cached disk sessions. The base
// URL changes.
func (c *Component) Reset(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return fmt.Errorf("component not started")
	}
	c.ts.Close()
	err := c.srv.CloseSessions()
	c.serve()
	return err
}

// Snapshot is a no-op; the server holds no state worth restoring.
func (c *Component) Snapshot(_ context.Context) (interface{}, error) {
	return nil, nil
}

// Restore is a no-op.
func (c *Component) Restore(_ context.Context, _ interface{}) error {
	return nil
}
