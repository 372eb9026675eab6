package local

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/filekit/errors"
	"github.com/kbukum/filekit/filesystem"
	"github.com/kbukum/filekit/filesystem/urlsign"
)

func newDriver(t *testing.T, opts filesystem.Options) *Driver {
	t.Helper()
	merged := filesystem.MergeOptions(map[string]any{"root": t.TempDir()}, opts)
	drv, err := NewFactory()("local", merged)
	require.NoError(t, err)
	return drv.(*Driver)
}

func TestFactoryValidation(t *testing.T) {
	_, err := NewFactory()("local", filesystem.Options{})
	assert.ErrorIs(t, err, errors.ErrInvalidConfig, "root is required")

	_, err = NewFactory()("local", filesystem.Options{"root": t.TempDir(), "temp_dir": "../out"})
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)

	_, err = NewFactory()("local", filesystem.Options{"root": t.TempDir(), "url": "not a url"})
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)

	root := filepath.Join(t.TempDir(), "nested", "root")
	d, err := NewFactory()("local", filesystem.Options{"root": root})
	require.NoError(t, err)
	assert.DirExists(t, root)
	assert.Equal(t, DefaultTempDir, d.(*Driver).cfg.TempDir)
}

func TestPutGetAndExclusiveCreate(t *testing.T) {
	d := newDriver(t, nil)
	ctx := context.Background()

	require.NoError(t, d.Put(ctx, "a/b/c.txt", []byte("hello")))
	got, err := d.Get(ctx, "a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	assert.ErrorIs(t, d.Put(ctx, "a/b/c.txt", []byte("again")), errors.ErrAlreadyExists)
	got, _ = d.Get(ctx, "a/b/c.txt")
	assert.Equal(t, "hello", string(got), "existing content untouched")

	_, err = d.Get(ctx, "none")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestRootEscapeRejected(t *testing.T) {
	d := newDriver(t, nil)
	ctx := context.Background()

	assert.ErrorIs(t, d.Put(ctx, "../escape.txt", []byte("x")), errors.ErrInvalidPath)
	_, err := d.Get(ctx, "a/../../x")
	assert.ErrorIs(t, err, errors.ErrInvalidPath)
	assert.ErrorIs(t, d.Copy(ctx, "a", "../b"), errors.ErrInvalidPath)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(d.Root()), "escape.txt"))
}

func TestRootPathRejected(t *testing.T) {
	d := newDriver(t, nil)
	ctx := context.Background()

	for _, p := range []string{"", ".", "a/.."} {
		assert.ErrorIs(t, d.Put(ctx, p, []byte("x")), errors.ErrInvalidPath, p)
		assert.ErrorIs(t, d.Delete(ctx, p, true), errors.ErrInvalidPath, p)
		_, err := d.Get(ctx, p)
		assert.ErrorIs(t, err, errors.ErrInvalidPath, p)
	}
	assert.DirExists(t, d.Root())

	stored, err := d.PutFile(ctx, "", filesystem.NewArtifact("top.txt", []byte("x")))
	require.NoError(t, err, "the root is a valid folder")
	assert.Equal(t, "top.txt", stored)
}

func TestExistsMissingDelete(t *testing.T) {
	d := newDriver(t, nil)
	ctx := context.Background()
	require.NoError(t, d.Put(ctx, "x", []byte("1")))

	ok, err := d.Exists(ctx, "x")
	require.NoError(t, err)
	assert.True(t, ok)
	missing, err := d.Missing(ctx, "y")
	require.NoError(t, err)
	assert.True(t, missing)

	require.NoError(t, d.Delete(ctx, "x", false))
	assert.ErrorIs(t, d.Delete(ctx, "x", false), errors.ErrNotFound)
	assert.NoError(t, d.Delete(ctx, "x", true))
}

func TestPutFileCollisions(t *testing.T) {
	d := newDriver(t, nil)
	ctx := context.Background()

	p := filesystem.OSTempProvider{Dir: t.TempDir()}
	staged, err := p.Stage(ctx, []byte("img"), "png")
	require.NoError(t, err)
	defer staged.Remove() //nolint:errcheck

	first, err := d.PutFile(ctx, "uploads", staged)
	require.NoError(t, err)
	assert.Equal(t, "uploads/"+staged.Name(), first)

	second, err := d.PutFile(ctx, "uploads", staged)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(second, ".png"), second)

	memory, err := d.PutFile(ctx, "uploads", filesystem.NewArtifact("doc.txt", []byte("text")))
	require.NoError(t, err)
	got, err := d.Get(ctx, memory)
	require.NoError(t, err)
	assert.Equal(t, "text", string(got))

	info, err := os.Stat(filepath.Join(d.Root(), filepath.FromSlash(first)))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm(), "linked files get the same mode as Put")

	// the stored file outlives the staged one
	require.NoError(t, staged.Remove())
	got, err = d.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "img", string(got))
}

func TestCopyMove(t *testing.T) {
	d := newDriver(t, nil)
	ctx := context.Background()
	require.NoError(t, d.Put(ctx, "src.txt", []byte("data")))

	require.NoError(t, d.Copy(ctx, "src.txt", "dir/copy.txt"))
	require.NoError(t, d.Copy(ctx, "src.txt", "src.txt"))
	got, _ := d.Get(ctx, "src.txt")
	assert.Equal(t, "data", string(got), "self copy keeps content")

	require.NoError(t, d.Move(ctx, "dir/copy.txt", "other/moved.txt"))
	ok, _ := d.Exists(ctx, "dir/copy.txt")
	assert.False(t, ok)
	got, err := d.Get(ctx, "other/moved.txt")
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))

	assert.ErrorIs(t, d.Copy(ctx, "none", "x"), errors.ErrNotFound)
	assert.ErrorIs(t, d.Move(ctx, "none", "x"), errors.ErrNotFound)
}

func TestURL(t *testing.T) {
	ctx := context.Background()

	d := newDriver(t, filesystem.Options{"url": "http://cdn.test/files/"})
	require.NoError(t, d.Put(ctx, "a dir/b.txt", []byte("x")))
	u, err := d.URL(ctx, "a dir/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.test/files/a%20dir/b.txt", u)

	_, err = d.URL(ctx, "none")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	bare := newDriver(t, nil)
	require.NoError(t, bare.Put(ctx, "b.txt", []byte("x")))
	u, err = bare.URL(ctx, "b.txt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "file://"), u)
}

func TestTemporaryURLExpires(t *testing.T) {
	d := newDriver(t, filesystem.Options{"url": "http://cdn.test"})
	ctx := context.Background()
	require.NoError(t, d.Put(ctx, "photo.jpg", []byte("jpg")))

	u, err := d.TemporaryURL(ctx, "photo.jpg", 50*time.Millisecond)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(u, "http://cdn.test/.temp/"), u)
	assert.True(t, strings.HasSuffix(u, ".jpg"), u)

	rel := strings.TrimPrefix(u, "http://cdn.test/")
	copyPath := filepath.Join(d.Root(), filepath.FromSlash(rel))
	assert.FileExists(t, copyPath)
	assert.Equal(t, int64(1), d.Pending())

	assert.Eventually(t, func() bool {
		_, err := os.Stat(copyPath)
		return os.IsNotExist(err) && d.Pending() == 0
	}, 2*time.Second, 10*time.Millisecond)

	ok, _ := d.Exists(ctx, "photo.jpg")
	assert.True(t, ok, "original is untouched")

	_, err = d.TemporaryURL(ctx, "none.jpg", time.Second)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestSignedTemporaryURL(t *testing.T) {
	d := newDriver(t, filesystem.Options{"url": "http://cdn.test", "signing_key": "k", "temp_dir": "tmp"})
	ctx := context.Background()
	require.NoError(t, d.Put(ctx, "a.txt", []byte("x")))

	raw, err := d.TemporaryURL(ctx, "a.txt", time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	token := u.Query().Get(urlsign.QueryParam)
	require.NotEmpty(t, token)

	rel := strings.TrimPrefix(u.Path, "/")
	assert.True(t, d.RequiresSignature(rel))
	assert.False(t, d.RequiresSignature("a.txt"))
	assert.NoError(t, d.VerifySignature(rel, token))
	assert.ErrorIs(t, d.VerifySignature(rel, ""), errors.ErrUnauthorized)
	assert.ErrorIs(t, d.VerifySignature("tmp/other.txt", token), errors.ErrUnauthorized)
}
