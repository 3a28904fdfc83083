package minio

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/s3fs-fuse/dirstore/internal/credentials"
	"github.com/s3fs-fuse/dirstore/internal/storage/object"
	"github.com/s3fs-fuse/dirstore/internal/storage/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMinio requires a running MinIO instance on localhost:9000.
func setupMinio(t *testing.T) *Store {
	t.Helper()
	creds := credentials.NewCredentials()
	creds.AccessKeyID = "minioadmin"
	creds.SecretAccessKey = "minioadmin"

	store, err := Dial("localhost:9000", "test-dirstore", "us-east-1", false, creds)
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := store.client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	require.NoError(t, store.EnsureBucket(ctx, "us-east-1"))
	return store
}

func TestMinioStore_Integration(t *testing.T) {
	store := setupMinio(t)
	ctx := context.Background()
	prefix := fmt.Sprintf("it-%d/", time.Now().UnixNano())

	require.NoError(t, store.Put(ctx, prefix+"a.txt", []byte("hello")))

	ok, err := store.Exists(ctx, prefix+"a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, prefix+"missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Copy(ctx, prefix+"a.txt", prefix+"b.txt"))
	keys, err := store.List(ctx, prefix)
	require.NoError(t, err)
	assert.Equal(t, []string{prefix + "a.txt", prefix + "b.txt"}, keys)

	require.NoError(t, store.Delete(ctx, prefix+"a.txt"))
	require.NoError(t, store.Delete(ctx, prefix+"b.txt"))
	require.NoError(t, store.Delete(ctx, prefix+"never-existed"))
}

func TestMinioStore_DirectorySemantics(t *testing.T) {
	store := setupMinio(t)
	ctx := context.Background()
	backend := object.New(store)
	root := fmt.Sprintf("it-dirs-%d", time.Now().UnixNano())
	defer backend.RemoveTree(ctx, root)

	require.NoError(t, backend.MakeDirs(ctx, root+"/a/b"))
	isDir, err := backend.IsDir(ctx, root+"/a/b")
	require.NoError(t, err)
	assert.True(t, isDir)

	require.NoError(t, store.Put(ctx, root+"/a/b/f", []byte("x")))
	err = backend.MakeDirs(ctx, root+"/a/b/f/g")
	assert.ErrorIs(t, err, types.ErrPathIsFile)

	require.NoError(t, backend.Move(ctx, root+"/a", root+"/z", false))
	keys, err := store.List(ctx, root+"/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		root + "/z/.folder",
		root + "/z/b/.folder",
		root + "/z/b/f",
	}, keys)
}
