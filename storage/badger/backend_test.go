package badger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_PathIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := OpenBackend(path, false)
	assert.Error(t, err)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestBackendUpdate_CommitsAndDiscards(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.Update(func(tx *badger.Txn) error {
		return tx.Set([]byte("k1"), []byte("v1"))
	})
	require.NoError(t, err)

	err = backend.Update(func(tx *badger.Txn) error {
		if err := tx.Set([]byte("k2"), []byte("v2")); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	err = backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get([]byte("k1"))
		require.NoError(t, err)
		_, err = tx.Get([]byte("k2"))
		assert.ErrorIs(t, err, badger.ErrKeyNotFound)
		return nil
	}, false)
	require.NoError(t, err)
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	assert.InDelta(t, 1.0, cosineSimilarity(a, []float32{2, 0, 0}, norm(a)), 1e-6)
	assert.InDelta(t, 0.0, cosineSimilarity(a, []float32{0, 1, 0}, norm(a)), 1e-6)
	assert.InDelta(t, -1.0, cosineSimilarity(a, []float32{-1, 0, 0}, norm(a)), 1e-6)
	assert.Equal(t, float32(0), cosineSimilarity(a, []float32{0, 0, 0}, norm(a)))
	assert.Equal(t, float32(0), cosineSimilarity([]float32{0, 0}, a, 0))
	assert.Equal(t, float32(0), cosineSimilarity(a, []float32{1, 0}, norm(a)))
	assert.Equal(t, float32(0), cosineSimilarity(a, []float32{1, 0, 0, 0}, norm(a)))
}

func TestKeyOrdering(t *testing.T) {
	// BigEndian IDs keep iteration in insertion order
	k1 := makeIngredientKey(1)
	k2 := makeIngredientKey(256)
	assert.Less(t, string(k1), string(k2))

	assert.Equal(t, 8, len(k1)-len(ingredientRecordPrefix))
	assert.Equal(t, uint64(256), uint64(idFromKeySuffix(k2)))

	// Category keys for "Dairy" must not share a prefix with "Dairy & Eggs"
	assert.NotEqual(t,
		string(makePartialCategoryKey("Dairy")),
		string(makePartialCategoryKey("Dairy & Eggs"))[:len(makePartialCategoryKey("Dairy"))])
}
