package types

import (
	"context"
)

// Backend is the capability contract shared by every storage backend.
// Names are slash-separated and relative to the backend root; the empty
// name denotes the root itself.
type Backend interface {
	// IsDir reports whether name exists and is a directory.
	IsDir(ctx context.Context, name string) (bool, error)

	// IsFile reports whether name exists and is a regular file.
	IsFile(ctx context.Context, name string) (bool, error)

	// Move relocates a file or a directory subtree. If dst exists and
	// allowOverwrite is false it fails with *DestinationExistsError.
	Move(ctx context.Context, src, dst string, allowOverwrite bool) error

	// MakeDirs creates name and any missing ancestors, like os.MkdirAll.
	MakeDirs(ctx context.Context, name string) error

	// RemoveTree deletes name and everything it contains, like os.RemoveAll.
	RemoveTree(ctx context.Context, name string) error
}

// ObjectStore is a flat key space. It is the client collaborator the
// object backend builds directory semantics on.
type ObjectStore interface {
	// Exists reports whether an object is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	// List returns every key starting with prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Copy duplicates srcKey to dstKey. A nil error means the copy succeeded.
	Copy(ctx context.Context, srcKey, dstKey string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Put stores data under key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte) error
}

// Exists reports whether name is either a file or a directory on b.
func Exists(ctx context.Context, b Backend, name string) (bool, error) {
	isFile, err := b.IsFile(ctx, name)
	if err != nil || isFile {
		return isFile, err
	}
	return b.IsDir(ctx, name)
}
