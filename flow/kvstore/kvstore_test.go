package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreGetSetDelete(t *testing.T) {
	testStoreGetSetDelete(t, NewMemStore())
}

func TestSQLiteStoreGetSetDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "kv.db"))
	require.NoError(t, err)
	defer s.Close()
	testStoreGetSetDelete(t, s)
}

func testStoreGetSetDelete(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "aggregator", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "aggregator", "total", []byte("42")))
	v, err := s.Get(ctx, "aggregator", "total")
	require.NoError(t, err)
	assert.Equal(t, []byte("42"), v)

	require.NoError(t, s.Set(ctx, "aggregator", "total", []byte("43")))
	v, err = s.Get(ctx, "aggregator", "total")
	require.NoError(t, err)
	assert.Equal(t, []byte("43"), v)

	require.NoError(t, s.Set(ctx, "aggregator", "count", []byte("1")))
	keys, err := s.Keys(ctx, "aggregator")
	require.NoError(t, err)
	assert.Equal(t, []string{"count", "total"}, keys)

	require.NoError(t, s.Delete(ctx, "aggregator", "total"))
	_, err = s.Get(ctx, "aggregator", "total")
	assert.ErrorIs(t, err, ErrNotFound)
}
