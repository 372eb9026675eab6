package local

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/kbukum/filekit/errors"
	"github.com/kbukum/filekit/filesystem"
	"github.com/kbukum/filekit/filesystem/urlsign"
	"github.com/kbukum/filekit/logger"
	"github.com/kbukum/filekit/resilience"
)

// DriverName is the registry key of this driver.
const DriverName = "local"

// NewFactory returns the DriverFactory for local disks.
func NewFactory() filesystem.DriverFactory {
	return func(disk string, opts filesystem.Options) (filesystem.Driver, error) {
		var cfg Config
		if err := opts.Decode(&cfg); err != nil {
			return nil, errors.InvalidConfig(disk, err.Error()).WithCause(err)
		}
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return New(disk, cfg)
	}
}

// Driver implements filesystem.Driver on a local directory.
type Driver struct {
	disk   string
	root   string
	cfg    Config
	signer *urlsign.Signer
	log    *logger.Logger

	// pending counts temporary copies whose deletion has not fired yet.
	pending atomic.Int64
}

// compile-time check
var _ filesystem.Driver = (*Driver)(nil)

// New creates the root directory if needed and returns a driver for it.
func New(disk string, cfg Config) (*Driver, error) {
	cfg.ApplyDefaults()
	abs, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, errors.InvalidConfig(disk, "resolve root").WithCause(err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, errors.InvalidConfig(disk, "create root directory").WithCause(err)
	}

	d := &Driver{
		disk: disk,
		root: abs,
		cfg:  cfg,
		log:  logger.Get("filesystem.local").WithFields(logger.Fields(logger.FieldDisk, disk)),
	}
	if cfg.SigningKey != "" {
		if d.signer, err = urlsign.New(cfg.SigningKey); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Root returns the absolute root directory.
func (d *Driver) Root() string { return d.root }

// Pending returns how many temporary copies are still scheduled for deletion.
func (d *Driver) Pending() int64 { return d.pending.Load() }

// resolveDir maps a disk path to a host path, rejecting anything outside
// root. The root itself is allowed.
func (d *Driver) resolveDir(p string) (string, error) {
	full := filepath.Join(d.root, filepath.FromSlash(p))
	rel, err := filepath.Rel(d.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.EscapesRoot(p)
	}
	return full, nil
}

// resolve is resolveDir for file paths: "", "." and "a/.." name the root
// and are rejected.
func (d *Driver) resolve(p string) (string, error) {
	full, err := d.resolveDir(p)
	if err != nil {
		return "", err
	}
	if full == d.root {
		return "", errors.NamesRoot(p)
	}
	return full, nil
}

func (d *Driver) Put(_ context.Context, p string, content []byte) error {
	full, err := d.resolve(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return errors.Backend("put", err)
	}
	return writeExclusive(full, p, func(w io.Writer) error {
		_, err := w.Write(content)
		return err
	})
}

// PutFile stores artifact as folder/<artifact name>, choosing a fresh uuid
// name with the same extension when that name is taken.
func (d *Driver) PutFile(ctx context.Context, folder string, artifact filesystem.Artifact) (string, error) {
	dir, err := d.resolveDir(folder)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", errors.Backend("put_file", err)
	}

	name := artifact.Name()
	return resilience.Retry(ctx, filesystem.CollisionRetry(), func() (string, error) {
		stored := path.Join(filepath.ToSlash(folder), name)
		if err := d.storeArtifact(filepath.Join(dir, name), stored, artifact); err != nil {
			name = uuid.NewString() + artifact.Extension()
			return "", err
		}
		return stored, nil
	})
}

// storeArtifact hard-links file-backed artifacts and copies the rest.
func (d *Driver) storeArtifact(target, stored string, artifact filesystem.Artifact) error {
	if fa, ok := artifact.(filesystem.FileArtifact); ok {
		err := os.Link(fa.Path(), target)
		if err == nil {
			// the link shares the staged file's 0600 mode
			if err := os.Chmod(target, 0o640); err != nil {
				return errors.Backend("put_file", err)
			}
			return nil
		}
		if os.IsExist(err) {
			return errors.AlreadyExists(stored)
		}
		d.log.Debug("hard link failed, copying artifact", logger.Fields(logger.FieldPath, stored, logger.FieldError, err))
	}

	rc, err := artifact.Open()
	if err != nil {
		return errors.Internal(err)
	}
	defer rc.Close() //nolint:errcheck // read side

	return writeExclusive(target, stored, func(w io.Writer) error {
		_, err := io.Copy(w, rc)
		return err
	})
}

func writeExclusive(full, p string, write func(io.Writer) error) error {
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		if os.IsExist(err) {
			return errors.AlreadyExists(p)
		}
		return errors.Backend("put", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return errors.Backend("put", err)
	}
	if err := f.Close(); err != nil {
		return errors.Backend("put", err)
	}
	return nil
}

func (d *Driver) Exists(_ context.Context, p string) (bool, error) {
	full, err := d.resolve(p)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Backend("exists", err)
	}
	return true, nil
}

func (d *Driver) Missing(ctx context.Context, p string) (bool, error) {
	ok, err := d.Exists(ctx, p)
	return !ok, err
}

func (d *Driver) Get(_ context.Context, p string) ([]byte, error) {
	full, err := d.resolve(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(p)
		}
		return nil, errors.Backend("get", err)
	}
	return data, nil
}

// URL returns url/<path>, or a file:// URL when no url is configured.
func (d *Driver) URL(ctx context.Context, p string) (string, error) {
	full, err := d.stat(p)
	if err != nil {
		return "", err
	}
	return d.locate(p, full), nil
}

func (d *Driver) locate(p, full string) string {
	if d.cfg.URL == "" {
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(full)}).String()
	}
	rel := path.Clean("/" + filepath.ToSlash(p))
	return strings.TrimRight(d.cfg.URL, "/") + (&url.URL{Path: rel}).EscapedPath()
}

func (d *Driver) stat(p string) (string, error) {
	full, err := d.resolve(p)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return "", errors.NotFound(p)
		}
		return "", errors.Backend("stat", err)
	}
	return full, nil
}

// TemporaryURL copies p into the temp dir under a fresh name and deletes the
// copy after ttl. The deletion cannot be cancelled, and a copy whose timer
// has not fired when the process exits stays on disk.
func (d *Driver) TemporaryURL(_ context.Context, p string, ttl time.Duration) (string, error) {
	src, err := d.stat(p)
	if err != nil {
		return "", err
	}
	ttl = filesystem.NormalizeTTL(ttl)

	rel := path.Join(filepath.ToSlash(d.cfg.TempDir), uuid.NewString()+path.Ext(filepath.ToSlash(p)))
	dst, err := d.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := copyFile(src, dst); err != nil {
		return "", errors.Backend("temporary_url", err)
	}
	d.expire(dst, rel, ttl)

	locator := d.locate(rel, dst)
	if d.signer != nil {
		token, err := d.signer.Sign(d.disk, rel, ttl)
		if err != nil {
			return "", err
		}
		locator += "?" + urlsign.QueryParam + "=" + url.QueryEscape(token)
	}
	return locator, nil
}

// expiryRetry covers transient failures such as a reader still holding the
// copy open on Windows.
var expiryRetry = resilience.RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: 500 * time.Millisecond,
	BackoffFactor:  2,
}

func (d *Driver) expire(full, rel string, ttl time.Duration) {
	d.pending.Inc()
	time.AfterFunc(ttl, func() {
		defer d.pending.Dec()
		err := resilience.RetryFunc(context.Background(), expiryRetry, func() error {
			if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
				return err
			}
			return nil
		})
		if err != nil {
			d.log.Warn("failed to delete expired temporary copy", logger.Fields(logger.FieldPath, rel, logger.FieldError, err))
			return
		}
		d.log.Debug("expired temporary copy deleted", logger.Fields(logger.FieldPath, rel))
	})
}

// RequiresSignature reports whether reads of p need a valid signature: the
// disk has a signing key and p lies under the temp dir.
func (d *Driver) RequiresSignature(p string) bool {
	if d.signer == nil {
		return false
	}
	clean := path.Clean(filepath.ToSlash(p))
	prefix := path.Clean(filepath.ToSlash(d.cfg.TempDir)) + "/"
	return strings.HasPrefix(clean, prefix)
}

// VerifySignature checks a temporary URL token for p.
func (d *Driver) VerifySignature(p, token string) error {
	if d.signer == nil {
		return nil
	}
	if token == "" {
		return errors.Unauthorized("")
	}
	return d.signer.Verify(token, d.disk, path.Clean(filepath.ToSlash(p)))
}

func (d *Driver) Delete(_ context.Context, p string, force bool) error {
	full, err := d.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			if force {
				return nil
			}
			return errors.NotFound(p)
		}
		return errors.Backend("delete", err)
	}
	return nil
}

// Copy duplicates src to dst, replacing dst if it exists.
func (d *Driver) Copy(_ context.Context, src, dst string) error {
	from, err := d.stat(src)
	if err != nil {
		return err
	}
	to, err := d.resolve(dst)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}
	if err := copyFile(from, to); err != nil {
		return errors.Backend("copy", err)
	}
	return nil
}

// Move renames src to dst. When the rename fails, for example across
// devices, it copies and then deletes src.
func (d *Driver) Move(ctx context.Context, src, dst string) error {
	from, err := d.stat(src)
	if err != nil {
		return err
	}
	to, err := d.resolve(dst)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(to), 0o750); err != nil {
		return errors.Backend("move", err)
	}
	err = os.Rename(from, to)
	if err == nil {
		return nil
	}
	d.log.Debug("rename failed, copying", logger.Fields(logger.FieldPath, src, logger.FieldTarget, dst, logger.FieldError, err))

	if err := copyFile(from, to); err != nil {
		return errors.Backend("move", err)
	}
	if err := os.Remove(from); err != nil {
		return errors.Backend("move", fmt.Errorf("delete source: %w", err)).WithDetail("destination", dst)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // read side

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
