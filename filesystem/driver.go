package filesystem

import (
	"context"
	"io"
	"time"

	"github.com/kbukum/filekit/errors"
	"github.com/kbukum/filekit/resilience"
)

// DefaultTemporaryURLTTL is used when TemporaryURL receives a non-positive ttl.
const DefaultTemporaryURLTTL = 15 * time.Minute

// PutFileAttempts bounds how many names PutFile tries before failing with
// errors.ErrAlreadyExists.
const PutFileAttempts = 5

// CollisionRetry retries immediately while the error is
// errors.ErrAlreadyExists. Drivers pick a fresh name between attempts.
func CollisionRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts: PutFileAttempts,
		RetryIf: func(err error) bool {
			return errors.IsCode(err, errors.ErrCodeAlreadyExists)
		},
	}
}

// Driver is the operation set every backend implements. Paths are relative
// to the disk root and have already been checked by the façade.
type Driver interface {
	// Put stores content at path. Drivers may treat this as create-only and
	// fail with errors.ErrAlreadyExists.
	Put(ctx context.Context, path string, content []byte) error

	// PutFile stores artifact under folder and returns the path it chose,
	// which may differ from the artifact name to avoid collisions.
	PutFile(ctx context.Context, folder string, artifact Artifact) (string, error)

	// Exists and Missing are exact complements. The error is reserved for
	// backend failures.
	Exists(ctx context.Context, path string) (bool, error)
	Missing(ctx context.Context, path string) (bool, error)

	// Get returns the full content at path or errors.ErrNotFound.
	Get(ctx context.Context, path string) ([]byte, error)

	// URL returns a locator for path or errors.ErrNotFound.
	URL(ctx context.Context, path string) (string, error)

	// TemporaryURL returns a locator valid for ttl or errors.ErrNotFound.
	TemporaryURL(ctx context.Context, path string, ttl time.Duration) (string, error)

	// Delete removes path. Without force an absent path is errors.ErrNotFound;
	// with force it is a no-op.
	Delete(ctx context.Context, path string, force bool) error

	// Copy duplicates src to dst or fails with errors.ErrNotFound.
	Copy(ctx context.Context, src, dst string) error

	// Move is Copy followed by deleting src. It is not atomic: if the delete
	// fails both objects exist and the delete error is returned.
	Move(ctx context.Context, src, dst string) error
}

// Closer is optionally implemented by drivers holding clients that need
// releasing when the binding is replaced.
type Closer interface {
	Close() error
}

// Artifact is a staged file handed to Driver.PutFile.
type Artifact interface {
	// Name is the base name including extension, e.g. "3f1c….png".
	Name() string
	// Extension is the extension including the dot, or "".
	Extension() string
	// Size is the content length in bytes.
	Size() int64
	// Open returns a fresh reader over the content.
	Open() (io.ReadCloser, error)
}

// ReadArtifact returns the whole content of a.
func ReadArtifact(a Artifact) ([]byte, error) {
	rc, err := a.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck // read-only
	return io.ReadAll(rc)
}

// NormalizeTTL maps a non-positive ttl onto DefaultTemporaryURLTTL.
func NormalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTemporaryURLTTL
	}
	return ttl
}
