package durability

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberarian/rekama-sys/pkg/seal"
)

func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, err := b.Load(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, b.Save(ctx, []byte("one")))
	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)

	require.NoError(t, b.Save(ctx, []byte("two")))
	got, err = b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)

	require.NoError(t, b.Reset(ctx))
	_, err = b.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, b.Reset(ctx), "reset is idempotent")
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	exerciseBackend(t, m)
	assert.Equal(t, 2, m.Saves())
}

func TestMemoryCopiesImage(t *testing.T) {
	m := NewMemory()
	image := []byte("abc")
	require.NoError(t, m.Save(context.Background(), image))
	image[0] = 'z'

	got, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestMemoryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewMemory().Save(ctx, []byte("x")), context.Canceled)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rekama.snapshot")
	exerciseBackend(t, NewFile(path))
}

func TestFileLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(filepath.Join(dir, "rekama.snapshot"))
	require.NoError(t, f.Save(context.Background(), []byte("x")))
	require.NoError(t, f.Save(context.Background(), []byte("y")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "rekama.snapshot", entries[0].Name())

	info, err := os.Stat(f.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSealed(t *testing.T) {
	key := make([]byte, seal.KeySize)
	c, err := seal.New(key)
	require.NoError(t, err)

	inner := NewMemory()
	s := NewSealed(inner, c)
	exerciseBackend(t, s)

	require.NoError(t, s.Save(context.Background(), []byte("plain image")))
	raw, err := inner.Load(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "plain image")
}

func TestSealedRejectsForeignKey(t *testing.T) {
	a, err := seal.New(make([]byte, seal.KeySize))
	require.NoError(t, err)
	other := make([]byte, seal.KeySize)
	other[0] = 1
	b, err := seal.New(other)
	require.NoError(t, err)

	inner := NewMemory()
	require.NoError(t, NewSealed(inner, a).Save(context.Background(), []byte("image")))

	_, err = NewSealed(inner, b).Load(context.Background())
	assert.Error(t, err)
}
