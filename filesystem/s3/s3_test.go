package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/filekit/errors"
	"github.com/kbukum/filekit/filesystem"
)

// fakeS3 serves the path-style subset of the S3 API the driver uses.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte

	// conflicts answers that many conditional puts with 412, as if another
	// writer created the key between our calls.
	conflicts int
	// deleteStatus, when set, is returned for every DELETE.
	deleteStatus int
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := strings.TrimPrefix(r.URL.Path, "/")
	switch r.Method {
	case http.MethodHead:
		if _, ok := f.objects[name]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := f.objects[name]
		if !ok {
			noSuchKey(w)
			return
		}
		_, _ = w.Write(data)
	case http.MethodPut:
		if src := r.Header.Get("X-Amz-Copy-Source"); src != "" {
			src, _ = url.PathUnescape(strings.TrimPrefix(src, "/"))
			data, ok := f.objects[src]
			if !ok {
				noSuchKey(w)
				return
			}
			f.objects[name] = data
			w.Header().Set("Content-Type", "application/xml")
			_, _ = io.WriteString(w, `<CopyObjectResult><ETag>"etag"</ETag></CopyObjectResult>`)
			return
		}
		if r.Header.Get("If-None-Match") == "*" {
			_, taken := f.objects[name]
			if taken || f.conflicts > 0 {
				if !taken {
					f.conflicts--
				}
				s3Error(w, http.StatusPreconditionFailed, "PreconditionFailed")
				return
			}
		}
		data, _ := io.ReadAll(r.Body)
		f.objects[name] = data
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		if f.deleteStatus != 0 {
			s3Error(w, f.deleteStatus, "AccessDenied")
			return
		}
		delete(f.objects, name)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func noSuchKey(w http.ResponseWriter) {
	s3Error(w, http.StatusNotFound, "NoSuchKey")
}

func s3Error(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, "<Error><Code>"+code+"</Code><Message>"+code+"</Message></Error>")
}

func newDriver(t *testing.T, extra map[string]any) (*Driver, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	opts := filesystem.MergeOptions(map[string]any{
		"bucket":   "media",
		"key":      "AKIDEXAMPLE",
		"secret":   "secret",
		"endpoint": srv.URL,
	}, extra)
	drv, err := NewFactory()("s3", opts)
	require.NoError(t, err)
	return drv.(*Driver), fake
}

func TestFactoryValidation(t *testing.T) {
	_, err := NewFactory()("s3", filesystem.Options{})
	assert.ErrorIs(t, err, errors.ErrInvalidConfig, "bucket is required")

	_, err = NewFactory()("s3", filesystem.Options{"bucket": "b", "key": "only-key"})
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)

	d, err := NewFactory()("s3", filesystem.Options{"bucket": "b"})
	require.NoError(t, err)
	assert.Equal(t, DefaultRegion, d.(*Driver).Client().Options().Region)
}

func TestPutGetExists(t *testing.T) {
	d, fake := newDriver(t, nil)
	ctx := context.Background()

	require.NoError(t, d.Put(ctx, "docs/a.txt", []byte("hello")))
	assert.Equal(t, []byte("hello"), fake.objects["media/docs/a.txt"])
	assert.ErrorIs(t, d.Put(ctx, "docs/a.txt", []byte("again")), errors.ErrAlreadyExists)

	got, err := d.Get(ctx, "docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	_, err = d.Get(ctx, "docs/none.txt")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	ok, err := d.Exists(ctx, "docs/a.txt")
	require.NoError(t, err)
	assert.True(t, ok)
	missing, err := d.Missing(ctx, "docs/none.txt")
	require.NoError(t, err)
	assert.True(t, missing)
}

func TestPutFileAvoidsCollision(t *testing.T) {
	d, _ := newDriver(t, nil)
	ctx := context.Background()

	a := filesystem.NewArtifact("pic.png", []byte("png"))
	first, err := d.PutFile(ctx, "uploads", a)
	require.NoError(t, err)
	assert.Equal(t, "uploads/pic.png", first)

	second, err := d.PutFile(ctx, "uploads", a)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(second, ".png"))
}

func TestPutLosesToConcurrentWriter(t *testing.T) {
	d, fake := newDriver(t, map[string]any{"url": "https://cdn.test"})
	ctx := context.Background()

	fake.conflicts = 1
	err := d.Put(ctx, "race.txt", []byte("mine"))
	assert.ErrorIs(t, err, errors.ErrAlreadyExists, "412 from the conditional put")
	assert.NotContains(t, fake.objects, "media/race.txt")

	fake.conflicts = 1
	stored, err := d.PutFile(ctx, "uploads", filesystem.NewArtifact("pic.png", []byte("png")))
	require.NoError(t, err)
	assert.NotEqual(t, "uploads/pic.png", stored, "a lost race picks a new name")
	assert.Equal(t, []byte("png"), fake.objects["media/"+stored])
}

func TestMoveKeepsDestinationWhenDeleteFails(t *testing.T) {
	d, fake := newDriver(t, nil)
	ctx := context.Background()
	require.NoError(t, d.Put(ctx, "src.txt", []byte("data")))

	fake.deleteStatus = http.StatusForbidden
	err := d.Move(ctx, "src.txt", "dst.txt")
	require.ErrorIs(t, err, errors.ErrBackend)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "dst.txt", appErr.Details["destination"])

	assert.Equal(t, []byte("data"), fake.objects["media/src.txt"])
	assert.Equal(t, []byte("data"), fake.objects["media/dst.txt"])
}

func TestDeleteCopyMove(t *testing.T) {
	d, fake := newDriver(t, nil)
	ctx := context.Background()
	require.NoError(t, d.Put(ctx, "a", []byte("1")))

	assert.ErrorIs(t, d.Delete(ctx, "none", false), errors.ErrNotFound)
	assert.NoError(t, d.Delete(ctx, "none", true))

	require.NoError(t, d.Copy(ctx, "a", "dir/b c"))
	assert.Equal(t, []byte("1"), fake.objects["media/dir/b c"])

	require.NoError(t, d.Move(ctx, "dir/b c", "moved"))
	assert.NotContains(t, fake.objects, "media/dir/b c")
	assert.Contains(t, fake.objects, "media/moved")

	assert.ErrorIs(t, d.Copy(ctx, "none", "x"), errors.ErrNotFound)
	require.NoError(t, d.Delete(ctx, "a", false))
	assert.NotContains(t, fake.objects, "media/a")
}

func TestURLs(t *testing.T) {
	d, _ := newDriver(t, map[string]any{"url": "https://cdn.test/media/"})
	ctx := context.Background()
	require.NoError(t, d.Put(ctx, "a b.txt", []byte("x")))

	u, err := d.URL(ctx, "a b.txt")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/media/a%20b.txt", u)

	raw, err := d.TemporaryURL(ctx, "a b.txt", time.Minute)
	require.NoError(t, err)
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "60", parsed.Query().Get("X-Amz-Expires"))

	raw, err = d.TemporaryURL(ctx, "a b.txt", 30*24*time.Hour)
	require.NoError(t, err)
	parsed, _ = url.Parse(raw)
	assert.Equal(t, "604800", parsed.Query().Get("X-Amz-Expires"), "capped at seven days")

	_, err = d.URL(ctx, "none")
	assert.ErrorIs(t, err, errors.ErrNotFound)
	_, err = d.TemporaryURL(ctx, "none", time.Minute)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestURLWithoutBasePresigns(t *testing.T) {
	d, _ := newDriver(t, nil)
	ctx := context.Background()
	require.NoError(t, d.Put(ctx, "a.txt", []byte("x")))

	raw, err := d.URL(ctx, "a.txt")
	require.NoError(t, err)
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/media/a.txt", parsed.Path)
	assert.Equal(t, "604800", parsed.Query().Get("X-Amz-Expires"))
}
