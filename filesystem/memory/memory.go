package memory

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/filekit/errors"
	"github.com/kbukum/filekit/filesystem"
	"github.com/kbukum/filekit/resilience"
	"github.com/kbukum/filekit/validation"
)

// DriverName is the registry key of this driver.
const DriverName = "memory"

// Config holds memory disk configuration.
type Config struct {
	// Namespace selects the shared Store. Defaults to the disk name.
	Namespace string `mapstructure:"namespace"`
	// URL is the base of generated locators. Defaults to memory://<namespace>.
	URL string `mapstructure:"url"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults(disk string) {
	if c.Namespace == "" {
		c.Namespace = disk
	}
	if c.URL == "" {
		c.URL = "memory://" + c.Namespace
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.New().Required("namespace", c.Namespace).Validate()
}

// NewFactory returns a DriverFactory whose disks share stores.
func NewFactory(stores *Stores) filesystem.DriverFactory {
	return func(disk string, opts filesystem.Options) (filesystem.Driver, error) {
		var cfg Config
		if err := opts.Decode(&cfg); err != nil {
			return nil, errors.InvalidConfig(disk, err.Error()).WithCause(err)
		}
		cfg.ApplyDefaults(disk)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return New(stores.Get(cfg.Namespace), cfg.URL), nil
	}
}

// Driver implements filesystem.Driver over a Store.
type Driver struct {
	store *Store
	base  string
}

// compile-time check
var _ filesystem.Driver = (*Driver)(nil)

// New returns a driver over store whose URLs start with base.
func New(store *Store, base string) *Driver {
	return &Driver{store: store, base: base}
}

// Store returns the backing store.
func (d *Driver) Store() *Store { return d.store }

func clean(p string) string {
	return path.Clean("/" + p)[1:]
}

func (d *Driver) Put(_ context.Context, p string, content []byte) error {
	if !d.store.create(clean(p), content) {
		return errors.AlreadyExists(p)
	}
	return nil
}

func (d *Driver) PutFile(ctx context.Context, folder string, artifact filesystem.Artifact) (string, error) {
	data, err := filesystem.ReadArtifact(artifact)
	if err != nil {
		return "", errors.Internal(err)
	}
	target := clean(path.Join(folder, artifact.Name()))
	return resilience.Retry(ctx, filesystem.CollisionRetry(), func() (string, error) {
		if !d.store.create(target, data) {
			taken := target
			target = clean(path.Join(folder, uuid.NewString()+artifact.Extension()))
			return "", errors.AlreadyExists(taken)
		}
		return target, nil
	})
}

func (d *Driver) Exists(_ context.Context, p string) (bool, error) {
	return d.store.has(clean(p)), nil
}

func (d *Driver) Missing(ctx context.Context, p string) (bool, error) {
	ok, err := d.Exists(ctx, p)
	return !ok, err
}

func (d *Driver) Get(_ context.Context, p string) ([]byte, error) {
	data, ok := d.store.get(clean(p))
	if !ok {
		return nil, errors.NotFound(p)
	}
	return data, nil
}

func (d *Driver) URL(_ context.Context, p string) (string, error) {
	if !d.store.has(clean(p)) {
		return "", errors.NotFound(p)
	}
	return d.base + "/" + (&url.URL{Path: clean(p)}).EscapedPath(), nil
}

// TemporaryURL appends the expiry as a unix timestamp.
func (d *Driver) TemporaryURL(ctx context.Context, p string, ttl time.Duration) (string, error) {
	u, err := d.URL(ctx, p)
	if err != nil {
		return "", err
	}
	expires := time.Now().Add(filesystem.NormalizeTTL(ttl)).Unix()
	return fmt.Sprintf("%s?expires=%s", u, strconv.FormatInt(expires, 10)), nil
}

func (d *Driver) Delete(_ context.Context, p string, force bool) error {
	if !d.store.remove(clean(p)) && !force {
		return errors.NotFound(p)
	}
	return nil
}

func (d *Driver) Copy(_ context.Context, src, dst string) error {
	data, ok := d.store.get(clean(src))
	if !ok {
		return errors.NotFound(src)
	}
	d.store.set(clean(dst), data)
	return nil
}

func (d *Driver) Move(ctx context.Context, src, dst string) error {
	if err := d.Copy(ctx, src, dst); err != nil {
		return err
	}
	if clean(src) == clean(dst) {
		return nil
	}
	return d.Delete(ctx, src, false)
}
