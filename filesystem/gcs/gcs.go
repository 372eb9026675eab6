package gcs

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	apperrors "github.com/kbukum/filekit/errors"
	"github.com/kbukum/filekit/filesystem"
	"github.com/kbukum/filekit/resilience"
)

// DriverName is the registry key of this driver.
const DriverName = "gcs"

// PublicHost is the default base of URL.
const PublicHost = "https://storage.googleapis.com"

// MaxSignedTTL is the longest lifetime a V4 signed URL accepts.
const MaxSignedTTL = 7 * 24 * time.Hour

// NewFactory returns the DriverFactory for GCS disks.
func NewFactory() filesystem.DriverFactory {
	return func(disk string, opts filesystem.Options) (filesystem.Driver, error) {
		var cfg Config
		if err := opts.Decode(&cfg); err != nil {
			return nil, apperrors.InvalidConfig(disk, err.Error()).WithCause(err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return New(context.Background(), disk, &cfg)
	}
}

// Driver implements filesystem.Driver on a GCS bucket.
type Driver struct {
	client  *storage.Client
	bucket  bucket
	baseURL string
}

// compile-time checks
var (
	_ filesystem.Driver = (*Driver)(nil)
	_ filesystem.Closer = (*Driver)(nil)
)

// New creates a storage client from cfg.
func New(ctx context.Context, disk string, cfg *Config) (*Driver, error) {
	var opts []option.ClientOption
	if cfg.Secret != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Secret))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
		if cfg.Secret == "" {
			opts = append(opts, option.WithoutAuthentication())
		}
	}
	if cfg.Project != "" {
		opts = append(opts, option.WithQuotaProject(cfg.Project))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, apperrors.InvalidConfig(disk, "create gcs client").WithCause(err)
	}
	d := newDriver(handle{h: client.Bucket(cfg.Bucket)}, cfg)
	d.client = client
	return d, nil
}

func newDriver(b bucket, cfg *Config) *Driver {
	base := strings.TrimRight(cfg.URL, "/")
	if base == "" {
		base = PublicHost + "/" + cfg.Bucket
	}
	return &Driver{bucket: b, baseURL: base}
}

// Close releases the client.
func (d *Driver) Close() error {
	if d.client == nil {
		return nil
	}
	return d.client.Close()
}

func object(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

func (d *Driver) Put(ctx context.Context, p string, content []byte) error {
	return fromGCS("put", p, d.bucket.Write(ctx, object(p), content, true))
}

func (d *Driver) PutFile(ctx context.Context, folder string, artifact filesystem.Artifact) (string, error) {
	content, err := filesystem.ReadArtifact(artifact)
	if err != nil {
		return "", apperrors.Internal(err)
	}

	target := object(path.Join(folder, artifact.Name()))
	return resilience.Retry(ctx, filesystem.CollisionRetry(), func() (string, error) {
		if err := fromGCS("put_file", target, d.bucket.Write(ctx, target, content, true)); err != nil {
			target = object(path.Join(folder, uuid.NewString()+artifact.Extension()))
			return "", err
		}
		return target, nil
	})
}

func (d *Driver) stat(ctx context.Context, p string) error {
	return fromGCS("stat", p, d.bucket.Attrs(ctx, object(p)))
}

func (d *Driver) Exists(ctx context.Context, p string) (bool, error) {
	err := d.stat(ctx, p)
	if err == nil {
		return true, nil
	}
	if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		return false, nil
	}
	return false, err
}

func (d *Driver) Missing(ctx context.Context, p string) (bool, error) {
	ok, err := d.Exists(ctx, p)
	return !ok, err
}

func (d *Driver) Get(ctx context.Context, p string) ([]byte, error) {
	data, err := d.bucket.Read(ctx, object(p))
	if err != nil {
		return nil, fromGCS("get", p, err)
	}
	return data, nil
}

// URL returns the public URL of p.
func (d *Driver) URL(ctx context.Context, p string) (string, error) {
	if err := d.stat(ctx, p); err != nil {
		return "", err
	}
	return d.baseURL + (&url.URL{Path: "/" + object(p)}).EscapedPath(), nil
}

// TemporaryURL returns a V4 signed GET URL valid for ttl, capped at
// MaxSignedTTL.
func (d *Driver) TemporaryURL(ctx context.Context, p string, ttl time.Duration) (string, error) {
	if err := d.stat(ctx, p); err != nil {
		return "", err
	}
	ttl = filesystem.NormalizeTTL(ttl)
	if ttl > MaxSignedTTL {
		ttl = MaxSignedTTL
	}
	u, err := d.bucket.SignedURL(object(p), ttl)
	if err != nil {
		return "", apperrors.Backend("sign", err)
	}
	return u, nil
}

func (d *Driver) Delete(ctx context.Context, p string, force bool) error {
	err := fromGCS("delete", p, d.bucket.Delete(ctx, object(p)))
	if force && apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		return nil
	}
	return err
}

func (d *Driver) Copy(ctx context.Context, src, dst string) error {
	return fromGCS("copy", src, d.bucket.Copy(ctx, object(src), object(dst)))
}

// Move copies then deletes. If the delete fails both objects exist.
func (d *Driver) Move(ctx context.Context, src, dst string) error {
	if object(src) == object(dst) {
		return d.stat(ctx, src)
	}
	if err := d.Copy(ctx, src, dst); err != nil {
		return err
	}
	if err := d.Delete(ctx, src, true); err != nil {
		return apperrors.Backend("move", fmt.Errorf("delete source: %w", err)).WithDetail("destination", dst)
	}
	return nil
}
