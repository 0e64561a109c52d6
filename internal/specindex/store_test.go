package specindex

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "emb.db"))
	require.NoError(t, err)
	defer store.Close()

	ids := []string{"p1:0", "p1:650", "p2:0"}
	vectors := [][]float32{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}

	require.NoError(t, store.Save("hash-a", ids, vectors))

	got, ok, err := store.Load("hash-a", ids)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, vectors, got)
}

func TestStore_PartialHitIsMiss(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "emb.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save("hash-a", []string{"p1:0"}, [][]float32{{1}}))

	_, ok, err := store.Load("hash-a", []string{"p1:0", "p2:0"})
	require.NoError(t, err)
	assert.False(t, ok, "a missing chunk invalidates the whole corpus")
}

func TestStore_UnknownHash(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "emb.db"))
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Load("nope", []string{"p1:0"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_CountMismatch(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "emb.db"))
	require.NoError(t, err)
	defer store.Close()

	assert.Error(t, store.Save("h", []string{"a", "b"}, [][]float32{{1}}))
}
