package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set(KeyCart, []byte(`[{"product_id":1}]`)))

	data, err := store.Get(KeyCart)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"product_id":1}]`, string(data))

	require.NoError(t, store.Delete(KeyCart))
	_, err = store.Get(KeyCart)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreMissingKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get("customerInfo")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreDeleteMissingKeyIsNoop(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(KeyCart))
}

func TestFileStoreRejectsPathTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set("../outside", []byte("x")))
	_, err = store.Get("a/b")
	assert.Error(t, err)
}
