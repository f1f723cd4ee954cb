package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateName(t *testing.T) {
	a := GenerateName("house.JPG")
	b := GenerateName("house.JPG")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".JPG"))
	assert.Len(t, a, 36+len(".JPG"))

	assert.Len(t, GenerateName("README"), 36)
	assert.Len(t, GenerateName(""), 36)
	assert.Len(t, GenerateName("trailing."), 36)
	assert.True(t, strings.HasSuffix(GenerateName(".hidden"), ".hidden"))
	assert.True(t, strings.HasSuffix(GenerateName("archive.tar.Gz"), ".Gz"))
	assert.True(t, strings.HasSuffix(GenerateName(`C:\photos\front.png`), ".png"))
	assert.NoError(t, ValidateName(GenerateName("../../etc/passwd.gif")))
	assert.NoError(t, ValidateName(GenerateName(".hidden")))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("abc.png"))
	for _, bad := range []string{"", ".", "..", "a/b.png", `a\b.png`, "../x.png", "x..png"} {
		assert.ErrorIs(t, ValidateName(bad), ErrInvalidName, bad)
	}
}

func newLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "images"))
	require.NoError(t, err)
	return store
}

func TestLocalStore_StoreOpenDelete(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t)

	n, err := store.Store(ctx, "a.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.EqualValues(t, 9, n)

	rc, info, err := store.Open(ctx, "a.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.EqualValues(t, 9, info.Size)

	// Overwrite silently
	_, err = store.Store(ctx, "a.png", strings.NewReader("v2"))
	require.NoError(t, err)
	rc, _, err = store.Open(ctx, "a.png")
	require.NoError(t, err)
	data, _ = io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "v2", string(data))

	require.NoError(t, store.Delete(ctx, "a.png"))
	_, err = os.Stat(filepath.Join(store.Dir(), "a.png"))
	assert.True(t, os.IsNotExist(err))

	// Deleting an absent blob succeeds
	assert.NoError(t, store.Delete(ctx, "a.png"))

	_, _, err = store.Open(ctx, "a.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t)

	_, err := store.Store(ctx, "../escape.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
	_, _, err = store.Open(ctx, "../escape.png")
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.ErrorIs(t, store.Delete(ctx, ""), ErrInvalidName)
}

func TestLocalStore_ListAndDescribe(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t)

	for _, name := range []string{"b.png", "a.jpg"} {
		_, err := store.Store(ctx, name, strings.NewReader(name))
		require.NoError(t, err)
	}
	require.NoError(t, os.Mkdir(filepath.Join(store.Dir(), "sub"), 0o755))

	blobs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, blobs, 2)
	assert.Equal(t, "a.jpg", blobs[0].Name)
	assert.Equal(t, "b.png", blobs[1].Name)

	d := store.Describe(ctx)
	assert.Equal(t, "local", d.Type)
	assert.Equal(t, store.Dir(), d.Location)
	assert.True(t, d.Exists)
	assert.True(t, d.CanRead)
	assert.True(t, d.CanWrite)

	// The write probe leaves nothing behind
	blobs, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, blobs, 2)
}
