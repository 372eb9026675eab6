package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/filekit/filesystem"
	"github.com/kbukum/filekit/logger"
	"github.com/kbukum/filekit/observability"
	"github.com/kbukum/filekit/server/endpoint"
	"github.com/kbukum/filekit/server/middleware"
)

// Server serves disk contents over HTTP through gin, with h2c so HTTP/2
// clients work without TLS.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	log        *logger.Logger
	metrics    *observability.Metrics

	storage     *filesystem.Storage
	defaultDisk string

	mu       sync.RWMutex
	sessions map[string]*filesystem.Storage
	listener net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records HTTP request metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New creates a Server over storage. Disks are read through scoped sessions
// so serving never changes storage's binding. No middleware or routes are
// registered until ApplyDefaults (or the individual Register calls).
func New(cfg Config, storage *filesystem.Storage, log *logger.Logger, opts ...Option) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      h2c.NewHandler(engine, h2s),
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		},
		engine:      engine,
		config:      cfg,
		log:         log.WithComponent("server"),
		storage:     storage,
		defaultDisk: storage.CurrentDisk(),
		sessions:    make(map[string]*filesystem.Storage),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GinEngine returns the underlying gin engine.
func (s *Server) GinEngine() *gin.Engine { return s.engine }

// Handler returns the root handler, including h2c.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// ApplyMiddleware installs recovery, request id, CORS and request logging.
func (s *Server) ApplyMiddleware() {
	s.engine.Use(middleware.Recovery(s.log))
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.CORS(s.config.CORS))
	s.engine.Use(middleware.RequestLogger(s.log, s.metrics))
}

// RegisterFileRoutes registers GET and HEAD {prefix}/:disk/*path.
func (s *Server) RegisterFileRoutes() {
	route := s.config.Prefix + "/:disk/*path"
	s.engine.GET(route, s.serveFile)
	s.engine.HEAD(route, s.serveFile)
}

// RegisterDefaultEndpoints registers /health, /alive, /ready and /info.
func (s *Server) RegisterDefaultEndpoints(serviceName string, checker endpoint.HealthChecker) {
	s.engine.GET("/health", endpoint.Health(checker))
	s.engine.GET("/alive", endpoint.Liveness(serviceName))
	s.engine.GET("/ready", endpoint.Readiness(checker))
	s.engine.GET("/info", endpoint.Info(serviceName))
}

// ApplyDefaults applies the middleware stack and registers every route.
func (s *Server) ApplyDefaults(serviceName string, checker endpoint.HealthChecker) {
	s.ApplyMiddleware()
	s.RegisterFileRoutes()
	s.RegisterDefaultEndpoints(serviceName, checker)
}

// Start binds the port and serves in a goroutine, over TLS when a
// certificate is configured. It returns once the listener is bound.
func (s *Server) Start(_ context.Context) error {
	tlsConfig, err := s.config.TLS.ServerConfig()
	if err != nil {
		return err
	}
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	serve := func() error { return s.httpServer.Serve(listener) }
	if tlsConfig != nil {
		s.httpServer.TLSConfig = tlsConfig
		serve = func() error { return s.httpServer.ServeTLS(listener, "", "") }
	}
	go func() {
		if err := serve(); err != nil && err != http.ErrServerClosed {
			s.log.Error("server error", logger.Fields(logger.FieldError, err))
		}
	}()

	s.log.Info("HTTP server started", map[string]interface{}{
		"addr":   listener.Addr().String(),
		"prefix": s.config.Prefix,
		"tls":    tlsConfig != nil,
	})
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return s.CloseSessions()
}

// CloseSessions releases the per-disk sessions built while serving. The
// next request builds them again.
func (s *Server) CloseSessions() error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*filesystem.Storage)
	s.mu.Unlock()

	var errs []error
	for disk, sess := range sessions {
		if err := sess.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close session %s: %w", disk, err))
		}
	}
	return errors.Join(errs...)
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}
