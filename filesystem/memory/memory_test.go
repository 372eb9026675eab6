package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/filekit/errors"
	"github.com/kbukum/filekit/filesystem"
)

func newDriver(t *testing.T) *Driver {
	t.Helper()
	d, err := NewFactory(NewStores())("scratch", filesystem.Options{})
	require.NoError(t, err)
	return d.(*Driver)
}

func TestFactoryDefaultsAndSharing(t *testing.T) {
	stores := NewStores()
	factory := NewFactory(stores)

	a, err := factory("one", filesystem.Options{"namespace": "shared"})
	require.NoError(t, err)
	b, err := factory("two", filesystem.Options{"namespace": "shared"})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Put(ctx, "x.txt", []byte("x")))
	ok, err := b.Exists(ctx, "x.txt")
	require.NoError(t, err)
	assert.True(t, ok, "same namespace must share objects")

	c, err := factory("three", filesystem.Options{})
	require.NoError(t, err)
	ok, _ = c.Exists(ctx, "x.txt")
	assert.False(t, ok, "namespace defaults to the disk name")

	u, err := a.URL(ctx, "x.txt")
	require.NoError(t, err)
	assert.Equal(t, "memory://shared/x.txt", u)
}

func TestPutIsCreateOnly(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()

	require.NoError(t, d.Put(ctx, "a.txt", []byte("1")))
	err := d.Put(ctx, "a.txt", []byte("2"))
	assert.ErrorIs(t, err, errors.ErrAlreadyExists)

	got, err := d.Get(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)
}

func TestPutFileAvoidsCollisions(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()
	artifact := filesystem.NewArtifact("report.pdf", []byte("pdf"))

	first, err := d.PutFile(ctx, "docs", artifact)
	require.NoError(t, err)
	assert.Equal(t, "docs/report.pdf", first)

	second, err := d.PutFile(ctx, "docs", artifact)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(second, "docs/"))
	assert.True(t, strings.HasSuffix(second, ".pdf"))
}

func TestDeleteForce(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()

	assert.ErrorIs(t, d.Delete(ctx, "none", false), errors.ErrNotFound)
	assert.NoError(t, d.Delete(ctx, "none", true))
}

func TestCopyMoveAndMissing(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()
	require.NoError(t, d.Put(ctx, "a", []byte("data")))

	require.NoError(t, d.Copy(ctx, "a", "b"))
	require.NoError(t, d.Move(ctx, "b", "c"))

	for p, want := range map[string]bool{"a": true, "b": false, "c": true} {
		exists, _ := d.Exists(ctx, p)
		missing, _ := d.Missing(ctx, p)
		assert.Equal(t, want, exists, p)
		assert.Equal(t, !want, missing, p)
	}

	assert.ErrorIs(t, d.Copy(ctx, "nope", "x"), errors.ErrNotFound)
	assert.ErrorIs(t, d.Move(ctx, "nope", "x"), errors.ErrNotFound)
	require.NoError(t, d.Move(ctx, "c", "./c"))
	exists, _ := d.Exists(ctx, "c")
	assert.True(t, exists, "moving onto itself keeps the object")
}

func TestURLs(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()

	_, err := d.URL(ctx, "none")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	require.NoError(t, d.Put(ctx, "dir/a b.txt", []byte("x")))
	u, err := d.URL(ctx, "dir/a b.txt")
	require.NoError(t, err)
	assert.Equal(t, "memory://scratch/dir/a%20b.txt", u)

	tu, err := d.TemporaryURL(ctx, "dir/a b.txt", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tu, u+"?expires="), tu)
}

func TestStoreSnapshotRestore(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()
	require.NoError(t, d.Put(ctx, "keep", []byte("1")))

	snap := d.Store().Snapshot()
	require.NoError(t, d.Put(ctx, "extra", []byte("2")))
	assert.Equal(t, 2, d.Store().Len())

	require.NoError(t, d.Store().Restore(snap))
	assert.Equal(t, []string{"keep"}, d.Store().Paths())

	d.Store().Reset()
	assert.Equal(t, 0, d.Store().Len())

	assert.Error(t, d.Store().Restore("bad"))
}
