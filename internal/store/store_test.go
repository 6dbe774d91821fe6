package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseKV runs the behaviour every backend shares.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "weatherApp_savedLocations", []byte(`[{"id":"a"}]`)))
	got, err := kv.Get(ctx, "weatherApp_savedLocations")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a"}]`, string(got))

	require.NoError(t, kv.Set(ctx, "weatherApp_savedLocations", []byte(`[]`)))
	got, err = kv.Get(ctx, "weatherApp_savedLocations")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(got))

	require.NoError(t, kv.Delete(ctx, "weatherApp_savedLocations"))
	_, err = kv.Get(ctx, "weatherApp_savedLocations")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, kv.Delete(ctx, "never-set"))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	exerciseKV(t, s)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	buf := []byte(`"abc"`)
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[1] = 'z'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, string(got))

	got[1] = 'q'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, `"abc"`, string(again))
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	exerciseKV(t, s)
}

func TestFileStore_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	first, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "weatherApp_recentSearches", []byte(`[{"place_id":1}]`)))

	second, err := NewFileStore(path)
	require.NoError(t, err)
	got, err := second.Get(ctx, "weatherApp_recentSearches")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"place_id":1}]`, string(got))
}

func TestFileStore_CorruptDocumentStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_RejectsNonJSON(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Set(context.Background(), "k", []byte("plain")), ErrNotJSON)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer s.Close()

	exerciseKV(t, s)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	s, err := NewRedisStore(addr, os.Getenv("REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	defer s.Close()

	exerciseKV(t, s)
}

func TestOpen(t *testing.T) {
	kv, err := Open(Options{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, kv)

	kv, err = Open(Options{Driver: "FILE", Path: filepath.Join(t.TempDir(), "s.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, kv)

	_, err = Open(Options{Driver: "etcd"})
	assert.Error(t, err)
}
