package filesystem

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/filekit/errors"
	"github.com/kbukum/filekit/logger"
	"github.com/kbukum/filekit/observability"
)

// binding is an immutable snapshot of the active disk. inflight counts
// calls still running on impl; a replaced driver is closed once it drains.
type binding struct {
	disk    string
	driver  string
	impl    Driver
	runtime Options

	inflight sync.WaitGroup
}

// Storage is the façade callers use. It is bound to one disk at a time.
type Storage struct {
	registry *Registry
	source   ConfigSource
	temp     TempProvider
	log      *logger.Logger
	metrics  *observability.Metrics

	mu      sync.RWMutex
	current *binding
}

// Option configures a Storage.
type Option func(*Storage, *Options)

// WithRegistry sets the driver registry. Without it the Storage starts
// with an empty registry.
func WithRegistry(r *Registry) Option {
	return func(s *Storage, _ *Options) { s.registry = r }
}

// WithRuntimeConfig seeds the runtime configuration override.
func WithRuntimeConfig(values map[string]any) Option {
	return func(_ *Storage, rt *Options) { *rt = MergeOptions(values) }
}

// WithTempProvider sets where PutFile stages content.
func WithTempProvider(p TempProvider) Option {
	return func(s *Storage, _ *Options) { s.temp = p }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Storage, _ *Options) { s.log = l }
}

// WithMetrics enables operation metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Storage, _ *Options) { s.metrics = m }
}

// New builds a Storage bound to source's default disk.
func New(source ConfigSource, opts ...Option) (*Storage, error) {
	s := &Storage{source: source}
	runtime := Options{}
	for _, opt := range opts {
		opt(s, &runtime)
	}
	if s.registry == nil {
		s.registry = NewRegistry()
	}
	if s.temp == nil {
		s.temp = OSTempProvider{}
	}
	if s.log == nil {
		s.log = logger.Get("filesystem")
	}

	b, err := s.bind(source.DefaultDisk(), runtime)
	if err != nil {
		return nil, err
	}
	s.current = b
	return s, nil
}

// bind builds a driver for disk with runtime layered over its static
// configuration. It does not touch s.current.
func (s *Storage) bind(disk string, runtime Options) (*binding, error) {
	cfg, ok := s.source.Disk(disk)
	if !ok {
		return nil, errors.UnconfiguredDisk(disk)
	}
	if cfg.Driver == "" {
		return nil, errors.InvalidConfig(disk, "driver is required")
	}
	factory, err := s.registry.Resolve(cfg.Driver)
	if err != nil {
		return nil, err
	}

	impl, err := factory(disk, MergeOptions(cfg.Values, runtime))
	if err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return nil, err
		}
		return nil, errors.InvalidConfig(disk, err.Error()).WithCause(err)
	}
	if impl == nil {
		return nil, errors.InvalidConfig(disk, "factory returned no driver")
	}

	if s.metrics != nil {
		s.metrics.RecordBinding(context.Background(), disk, cfg.Driver)
	}
	s.log.Info("disk bound", logger.Fields(logger.FieldDisk, disk, logger.FieldDriver, cfg.Driver))
	return &binding{disk: disk, driver: cfg.Driver, impl: impl, runtime: runtime}, nil
}

// swap installs next. The previous driver is closed in the background
// after the calls still running on it return.
func (s *Storage) swap(next *binding) {
	s.mu.Lock()
	prev := s.current
	s.current = next
	s.mu.Unlock()
	if prev != nil {
		go s.release(prev)
	}
}

func (s *Storage) release(b *binding) {
	b.inflight.Wait()
	if c, ok := b.impl.(Closer); ok {
		if err := c.Close(); err != nil {
			s.log.Warn("failed to close replaced driver", logger.Fields(logger.FieldDisk, b.disk, logger.FieldError, err))
		}
	}
}

func (s *Storage) snapshot() *binding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// acquire returns the current binding with one more call counted on it.
// The count is taken under the read lock so swap never waits on a binding
// that can still gain calls.
func (s *Storage) acquire() *binding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.current.inflight.Add(1)
	return s.current
}

// rebind re-runs driver construction for the current disk with the runtime
// configuration produced by edit. Nothing changes if construction fails.
func (s *Storage) rebind(edit func(Options) Options) error {
	cur := s.snapshot()
	next, err := s.bind(cur.disk, edit(cur.runtime.Clone()))
	if err != nil {
		return err
	}
	s.swap(next)
	return nil
}

// Disk switches the Storage to name for all subsequent calls. A passed
// override replaces the runtime configuration wholesale; an empty map
// clears it. On error the previous disk stays active.
func (s *Storage) Disk(name string, override ...map[string]any) (*Storage, error) {
	runtime := s.snapshot().runtime.Clone()
	if len(override) > 0 {
		runtime = MergeOptions(override...)
	}
	next, err := s.bind(name, runtime)
	if err != nil {
		return s, err
	}
	s.swap(next)
	return s, nil
}

// WithDisk returns an independent Storage bound to name. It shares the
// registry, source and temp provider; the receiver is not changed.
func (s *Storage) WithDisk(name string, override ...map[string]any) (*Storage, error) {
	runtime := s.snapshot().runtime.Clone()
	if len(override) > 0 {
		runtime = MergeOptions(override...)
	}
	session := &Storage{
		registry: s.registry,
		source:   s.source,
		temp:     s.temp,
		log:      s.log,
		metrics:  s.metrics,
	}
	b, err := session.bind(name, runtime)
	if err != nil {
		return nil, err
	}
	session.current = b
	return session, nil
}

// AddConfig sets one runtime key and rebinds.
func (s *Storage) AddConfig(key string, value any) error {
	return s.rebind(func(o Options) Options {
		return MergeOptions(o, map[string]any{key: value})
	})
}

// RemoveConfig drops one runtime key and rebinds.
func (s *Storage) RemoveConfig(key string) error {
	return s.rebind(func(o Options) Options {
		delete(o, key)
		return o
	})
}

// ResetConfig clears the runtime configuration and rebinds.
func (s *Storage) ResetConfig() error {
	return s.rebind(func(Options) Options { return Options{} })
}

// CurrentDisk returns the bound disk name.
func (s *Storage) CurrentDisk() string { return s.snapshot().disk }

// CurrentDriver returns the bound driver name.
func (s *Storage) CurrentDriver() string { return s.snapshot().driver }

// Driver returns the bound driver instance.
func (s *Storage) Driver() Driver { return s.snapshot().impl }

// RuntimeConfig returns a copy of the runtime configuration.
func (s *Storage) RuntimeConfig() Options { return s.snapshot().runtime.Clone() }

// RegisterDriver adds a driver factory to the owned registry.
func (s *Storage) RegisterDriver(name string, factory DriverFactory) error {
	return s.registry.Register(name, factory)
}

// DriverNames lists registered drivers in registration order.
func (s *Storage) DriverNames() []string { return s.registry.Names() }

// Close waits for running calls on the bound driver and releases it.
func (s *Storage) Close() error {
	b := s.snapshot()
	b.inflight.Wait()
	if c, ok := b.impl.(Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Storage) start(ctx context.Context, op, path string) (context.Context, *binding, *observability.Operation) {
	b := s.acquire()
	ctx, o := observability.StartOperation(ctx, s.metrics, op, b.disk, b.driver, path)
	return ctx, b, o
}

func (s *Storage) finish(ctx context.Context, b *binding, o *observability.Operation, path string, err error) error {
	defer b.inflight.Done()
	fields := logger.OperationFields(o.Name, o.Disk, path, o.Duration())
	if err != nil {
		s.log.WithContext(ctx).Debug("operation failed", logger.MergeWithError(fields, err))
	} else {
		s.log.WithContext(ctx).Debug("operation completed", fields)
	}
	return o.End(err)
}

// Put stores content at path.
func (s *Storage) Put(ctx context.Context, path string, content []byte) error {
	ctx, b, o := s.start(ctx, "put", path)
	err := CheckPath(path)
	if err == nil {
		err = b.impl.Put(ctx, path, content)
	}
	return s.finish(ctx, b, o, path, err)
}

// PutString stores text at path as UTF-8.
func (s *Storage) PutString(ctx context.Context, path, content string) error {
	return s.Put(ctx, path, []byte(content))
}

// PutFile stages content as a temporary artifact with extension, hands it
// to the driver and removes it on every exit path. It returns the path the
// driver chose.
func (s *Storage) PutFile(ctx context.Context, folder string, content []byte, extension string) (stored string, err error) {
	ctx, b, o := s.start(ctx, "put_file", folder)
	defer func() { err = s.finish(ctx, b, o, folder, err) }()

	if err = CheckPath(folder); err != nil {
		return "", err
	}
	artifact, err := s.temp.Stage(ctx, content, extension)
	if err != nil {
		return "", errors.Internal(err)
	}
	defer func() {
		if rmErr := artifact.Remove(); rmErr != nil {
			s.log.Warn("failed to remove staged artifact", logger.Fields(logger.FieldPath, artifact.Name(), logger.FieldError, rmErr))
		}
	}()

	return b.impl.PutFile(ctx, folder, artifact)
}

// Exists reports whether path exists on the bound disk.
func (s *Storage) Exists(ctx context.Context, path string) (ok bool, err error) {
	ctx, b, o := s.start(ctx, "exists", path)
	defer func() { err = s.finish(ctx, b, o, path, err) }()

	if err = CheckPath(path); err != nil {
		return false, err
	}
	return b.impl.Exists(ctx, path)
}

// Missing is the complement of Exists.
func (s *Storage) Missing(ctx context.Context, path string) (missing bool, err error) {
	ctx, b, o := s.start(ctx, "missing", path)
	defer func() { err = s.finish(ctx, b, o, path, err) }()

	if err = CheckPath(path); err != nil {
		return false, err
	}
	return b.impl.Missing(ctx, path)
}

// Get returns the content at path.
func (s *Storage) Get(ctx context.Context, path string) (content []byte, err error) {
	ctx, b, o := s.start(ctx, "get", path)
	defer func() { err = s.finish(ctx, b, o, path, err) }()

	if err = CheckPath(path); err != nil {
		return nil, err
	}
	return b.impl.Get(ctx, path)
}

// URL returns a locator for path.
func (s *Storage) URL(ctx context.Context, path string) (url string, err error) {
	ctx, b, o := s.start(ctx, "url", path)
	defer func() { err = s.finish(ctx, b, o, path, err) }()

	if err = CheckPath(path); err != nil {
		return "", err
	}
	return b.impl.URL(ctx, path)
}

// TemporaryURL returns a locator that expires after ttl. A non-positive
// ttl means DefaultTemporaryURLTTL.
func (s *Storage) TemporaryURL(ctx context.Context, path string, ttl time.Duration) (url string, err error) {
	ctx, b, o := s.start(ctx, "temporary_url", path)
	defer func() { err = s.finish(ctx, b, o, path, err) }()

	if err = CheckPath(path); err != nil {
		return "", err
	}
	return b.impl.TemporaryURL(ctx, path, NormalizeTTL(ttl))
}

// Delete removes path. With force an absent path is not an error.
func (s *Storage) Delete(ctx context.Context, path string, force bool) (err error) {
	ctx, b, o := s.start(ctx, "delete", path)
	defer func() { err = s.finish(ctx, b, o, path, err) }()

	if err = CheckPath(path); err != nil {
		return err
	}
	return b.impl.Delete(ctx, path, force)
}

// Copy duplicates src to dst.
func (s *Storage) Copy(ctx context.Context, src, dst string) (err error) {
	ctx, b, o := s.start(ctx, "copy", src)
	o.SetTarget(dst)
	defer func() { err = s.finish(ctx, b, o, src, err) }()

	if err = CheckPaths(src, dst); err != nil {
		return err
	}
	return b.impl.Copy(ctx, src, dst)
}

// Move copies src to dst and deletes src. It is not atomic: when the
// delete fails both paths exist and that error is returned.
func (s *Storage) Move(ctx context.Context, src, dst string) (err error) {
	ctx, b, o := s.start(ctx, "move", src)
	o.SetTarget(dst)
	defer func() { err = s.finish(ctx, b, o, src, err) }()

	if err = CheckPaths(src, dst); err != nil {
		return err
	}
	return b.impl.Move(ctx, src, dst)
}
