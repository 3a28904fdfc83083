// Package object emulates directories on top of a flat object store.
//
// A directory exists when a zero-length marker object is stored at
// "<dir>/.folder". Moves and recursive deletes are sequences of per-key
// copy and delete calls; they are not atomic and a failure part way leaves
// the subtree split between old and new locations.
package object

import (
	"context"
	"fmt"
	"io"

	"github.com/s3fs-fuse/dirstore/internal/storage/types"
)

// Backend implements types.Backend over a types.ObjectStore.
type Backend struct {
	store       types.ObjectStore
	impliedDirs bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithImpliedDirs makes IsDir also accept directories that have no marker
// but contain at least one object.
func WithImpliedDirs() Option {
	return func(b *Backend) {
		b.impliedDirs = true
	}
}

// New returns a Backend that stores everything in store.
func New(store types.ObjectStore, opts ...Option) *Backend {
	b := &Backend{store: store}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// IsFile reports whether an object other than a directory marker is stored
// under name.
func (b *Backend) IsFile(ctx context.Context, name string) (bool, error) {
	name, err := types.Clean(name)
	if err != nil {
		return false, err
	}
	return b.isFile(ctx, name)
}

func (b *Backend) isFile(ctx context.Context, name string) (bool, error) {
	if name == "" || types.Base(name) == types.MarkerName {
		return false, nil
	}
	ok, err := b.store.Exists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("object: stat %s: %w", name, err)
	}
	return ok, nil
}

// IsDir reports whether name is a directory. The root always is. A file
// object under name takes precedence over any marker.
func (b *Backend) IsDir(ctx context.Context, name string) (bool, error) {
	name, err := types.Clean(name)
	if err != nil {
		return false, err
	}
	return b.isDir(ctx, name)
}

func (b *Backend) isDir(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return true, nil
	}
	isFile, err := b.isFile(ctx, name)
	if err != nil || isFile {
		return false, err
	}
	ok, err := b.store.Exists(ctx, types.MarkerKey(name))
	if err != nil {
		return false, fmt.Errorf("object: stat %s: %w", types.MarkerKey(name), err)
	}
	if ok || !b.impliedDirs {
		return ok, nil
	}
	keys, err := b.store.List(ctx, types.DirPrefix(name))
	if err != nil {
		return false, fmt.Errorf("object: list %s: %w", name, err)
	}
	return len(keys) > 0, nil
}

// Move relocates a file or a whole directory subtree from src to dst.
// Without allowOverwrite an existing dst always fails the move with
// *types.DestinationExistsError, before any other check.
func (b *Backend) Move(ctx context.Context, src, dst string, allowOverwrite bool) error {
	src, err := types.Clean(src)
	if err != nil {
		return err
	}
	dst, err = types.Clean(dst)
	if err != nil {
		return err
	}

	dstFile, dstDir, err := b.kind(ctx, dst)
	if err != nil {
		return err
	}
	if (dstFile || dstDir) && !allowOverwrite {
		return &types.DestinationExistsError{Path: dst}
	}

	// Source and destination trees must not overlap.
	if src == "" || types.Within(src, dst) || types.Within(dst, src) {
		return &types.InvalidMoveError{Source: src, Destination: dst}
	}

	srcFile, srcDir, err := b.kind(ctx, src)
	if err != nil {
		return err
	}
	if !srcFile && !srcDir {
		return &types.NotFoundError{Path: src}
	}

	switch {
	case dstFile:
		if err := b.store.Delete(ctx, dst); err != nil {
			return fmt.Errorf("object: delete %s: %w", dst, err)
		}
	case dstDir:
		if err := b.removeTree(ctx, dst); err != nil {
			return err
		}
	}

	if srcFile {
		return b.moveKey(ctx, src, dst)
	}
	return b.moveTree(ctx, src, dst)
}

// kind reports whether name is a file or a directory. File wins.
func (b *Backend) kind(ctx context.Context, name string) (isFile, isDir bool, err error) {
	if isFile, err = b.isFile(ctx, name); err != nil || isFile {
		return isFile, false, err
	}
	isDir, err = b.isDir(ctx, name)
	return false, isDir, err
}

func (b *Backend) moveKey(ctx context.Context, srcKey, dstKey string) error {
	if err := b.store.Copy(ctx, srcKey, dstKey); err != nil {
		return types.NewCopyFailedError(srcKey, dstKey, err)
	}
	if err := b.store.Delete(ctx, srcKey); err != nil {
		return fmt.Errorf("object: delete %s: %w", srcKey, err)
	}
	return nil
}

// moveTree copies and deletes every key under src one at a time, in
// listing order, stopping at the first failure.
func (b *Backend) moveTree(ctx context.Context, src, dst string) error {
	keys, err := b.store.List(ctx, types.DirPrefix(src))
	if err != nil {
		return fmt.Errorf("object: list %s: %w", src, err)
	}
	for _, key := range keys {
		newKey, ok := types.Rebase(key, src, dst)
		if !ok {
			continue
		}
		if err := b.moveKey(ctx, key, newKey); err != nil {
			return err
		}
	}
	return nil
}

// MakeDirs creates markers for name and every missing ancestor, root first.
func (b *Backend) MakeDirs(ctx context.Context, name string) error {
	name, err := types.Clean(name)
	if err != nil {
		return err
	}
	for _, dir := range types.Ancestors(name) {
		isFile, err := b.isFile(ctx, dir)
		if err != nil {
			return err
		}
		if isFile {
			return &types.PathIsFileError{Path: dir}
		}
		isDir, err := b.isDir(ctx, dir)
		if err != nil {
			return err
		}
		if isDir {
			continue
		}
		if err := b.store.Put(ctx, types.MarkerKey(dir), []byte{}); err != nil {
			return fmt.Errorf("object: create marker for %s: %w", dir, err)
		}
	}
	return nil
}

// RemoveTree deletes name and every key beneath it. There is no rollback:
// a failure leaves the subtree partially deleted.
func (b *Backend) RemoveTree(ctx context.Context, name string) error {
	name, err := types.Clean(name)
	if err != nil {
		return err
	}
	isFile, err := b.isFile(ctx, name)
	if err != nil {
		return err
	}
	if isFile {
		if err := b.store.Delete(ctx, name); err != nil {
			return fmt.Errorf("object: delete %s: %w", name, err)
		}
	}
	return b.removeTree(ctx, name)
}

func (b *Backend) removeTree(ctx context.Context, name string) error {
	keys, err := b.store.List(ctx, types.DirPrefix(name))
	if err != nil {
		return fmt.Errorf("object: list %s: %w", name, err)
	}
	for _, key := range keys {
		if err := b.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("object: delete %s: %w", key, err)
		}
	}
	return nil
}

// Close releases the underlying store if it holds resources.
func (b *Backend) Close() error {
	if c, ok := b.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var _ types.Backend = (*Backend)(nil)
