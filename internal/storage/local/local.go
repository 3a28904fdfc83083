// Package local implements the storage contract on the host filesystem.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/s3fs-fuse/dirstore/internal/storage/types"
)

// Backend maps contract operations onto a directory tree rooted at root.
type Backend struct {
	root string
}

// New creates a Backend rooted at root. The root directory is created by
// the first MakeDirs or Move, not here.
func New(root string) (*Backend, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("local: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("local: stat root: %w", err)
	}
	if info != nil && !info.IsDir() {
		return nil, fmt.Errorf("local: root %q is not a directory", root)
	}
	return &Backend{root: abs}, nil
}

// Root returns the absolute root directory.
func (b *Backend) Root() string {
	return b.root
}

// safePath resolves a contract name to a filesystem path under root.
func (b *Backend) safePath(name string) (string, string, error) {
	cleaned, err := types.Clean(name)
	if err != nil {
		return "", "", err
	}
	abs := filepath.Join(b.root, filepath.FromSlash(cleaned))
	if abs != b.root && !strings.HasPrefix(abs, b.root+string(os.PathSeparator)) {
		return "", "", fmt.Errorf("%w: %q escapes the root", types.ErrInvalidPath, name)
	}
	return cleaned, abs, nil
}

func (b *Backend) stat(abs string) (fs.FileInfo, error) {
	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("local: stat: %w", err)
	}
	return info, nil
}

// IsDir reports whether name is an existing directory. The root always is.
func (b *Backend) IsDir(ctx context.Context, name string) (bool, error) {
	cleaned, abs, err := b.safePath(name)
	if err != nil {
		return false, err
	}
	if cleaned == "" {
		return true, nil
	}
	info, err := b.stat(abs)
	if err != nil || info == nil {
		return false, err
	}
	return info.IsDir(), nil
}

// IsFile reports whether name is an existing regular file.
func (b *Backend) IsFile(ctx context.Context, name string) (bool, error) {
	_, abs, err := b.safePath(name)
	if err != nil {
		return false, err
	}
	info, err := b.stat(abs)
	if err != nil || info == nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Move renames src to dst, copying across devices when a rename is not
// possible. Without allowOverwrite an existing dst always fails the move
// with *types.DestinationExistsError, before any other check.
func (b *Backend) Move(ctx context.Context, src, dst string, allowOverwrite bool) error {
	srcName, srcAbs, err := b.safePath(src)
	if err != nil {
		return err
	}
	dstName, dstAbs, err := b.safePath(dst)
	if err != nil {
		return err
	}
	dstInfo, err := b.stat(dstAbs)
	if err != nil {
		return err
	}
	dstExists := dstInfo != nil || dstName == ""
	if dstExists && !allowOverwrite {
		return &types.DestinationExistsError{Path: dstName}
	}

	if srcName == "" || types.Within(srcName, dstName) || types.Within(dstName, srcName) {
		return &types.InvalidMoveError{Source: srcName, Destination: dstName}
	}

	srcInfo, err := b.stat(srcAbs)
	if err != nil {
		return err
	}
	if srcInfo == nil {
		return &types.NotFoundError{Path: srcName}
	}

	if dstExists {
		if err := os.RemoveAll(dstAbs); err != nil {
			return fmt.Errorf("local: remove destination %s: %w", dstName, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(dstAbs), 0o755); err != nil {
		return fmt.Errorf("local: mkdir for move: %w", err)
	}

	err = os.Rename(srcAbs, dstAbs)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("local: move %s: %w", srcName, err)
	}

	if err := copyTree(srcAbs, dstAbs); err != nil {
		return fmt.Errorf("local: copy %s across devices: %w", srcName, err)
	}
	if err := os.RemoveAll(srcAbs); err != nil {
		return fmt.Errorf("local: remove %s after copy: %w", srcName, err)
	}
	return nil
}

// MakeDirs creates name and its missing parents.
func (b *Backend) MakeDirs(ctx context.Context, name string) error {
	cleaned, abs, err := b.safePath(name)
	if err != nil {
		return err
	}
	for _, dir := range types.Ancestors(cleaned) {
		info, err := b.stat(filepath.Join(b.root, filepath.FromSlash(dir)))
		if err != nil {
			return err
		}
		if info == nil {
			break
		}
		if !info.IsDir() {
			return &types.PathIsFileError{Path: dir}
		}
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("local: mkdir %s: %w", cleaned, err)
	}
	return nil
}

// RemoveTree deletes name and everything below it. For the root, only its
// contents are removed.
func (b *Backend) RemoveTree(ctx context.Context, name string) error {
	cleaned, abs, err := b.safePath(name)
	if err != nil {
		return err
	}
	if cleaned != "" {
		if err := os.RemoveAll(abs); err != nil {
			return fmt.Errorf("local: remove %s: %w", cleaned, err)
		}
		return nil
	}

	entries, err := os.ReadDir(b.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("local: read root: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(b.root, entry.Name())); err != nil {
			return fmt.Errorf("local: remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// copyTree copies a file or directory tree from src to dst, preserving
// permission bits.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm())
		}
		return copyFile(p, target, info.Mode().Perm())
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

var _ types.Backend = (*Backend)(nil)
