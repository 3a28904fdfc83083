package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/s3fs-fuse/dirstore/internal/storage/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `docs/`, escapeLike("docs/"))
	assert.Equal(t, `a\_b/`, escapeLike("a_b/"))
	assert.Equal(t, `100\%/`, escapeLike("100%/"))
	assert.Equal(t, `x\\y`, escapeLike(`x\y`))
}

func TestNewStoreRejectsTableName(t *testing.T) {
	_, err := NewStore(context.Background(), "postgres://unused", "objects; DROP TABLE x", "b")
	require.Error(t, err)
}

// setupPostgres requires DIRSTORE_TEST_POSTGRES_DSN to point at a database.
func setupPostgres(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("DIRSTORE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("DIRSTORE_TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bucket := fmt.Sprintf("it-%d", time.Now().UnixNano())
	store, err := NewStore(ctx, dsn, "dirstore_objects", bucket)
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	t.Cleanup(func() {
		_, _ = store.db.Exec("DELETE FROM dirstore_objects WHERE bucket = $1", bucket)
		store.Close()
	})
	return store
}

func TestStore_Integration(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a_b/x", []byte("1")))
	require.NoError(t, store.Put(ctx, "axb/y", []byte("2")))

	keys, err := store.List(ctx, "a_b/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b/x"}, keys)

	require.NoError(t, store.Copy(ctx, "a_b/x", "c"))
	ok, err := store.Exists(ctx, "c")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Error(t, store.Copy(ctx, "missing", "d"))

	require.NoError(t, store.Delete(ctx, "c"))
	require.NoError(t, store.Delete(ctx, "c"))
	ok, err = store.Exists(ctx, "c")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_DirectoryMove(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()
	backend := object.New(store)

	require.NoError(t, backend.MakeDirs(ctx, "docs/sub"))
	require.NoError(t, store.Put(ctx, "docs/sub/f", []byte("x")))
	require.NoError(t, backend.Move(ctx, "docs", "archive", false))

	keys, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"archive/.folder", "archive/sub/.folder", "archive/sub/f"}, keys)
}
