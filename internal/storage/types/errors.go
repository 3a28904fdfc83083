package types

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrDestinationExists is matched by *DestinationExistsError.
	ErrDestinationExists = errors.New("destination exists")
	// ErrPathIsFile is matched by *PathIsFileError.
	ErrPathIsFile = errors.New("path is a file")
	// ErrCopyFailed is matched by *CopyFailedError.
	ErrCopyFailed = errors.New("copy failed")
	// ErrNotFound is matched by *NotFoundError.
	ErrNotFound = errors.New("no such file or directory")
	// ErrInvalidMove is matched by *InvalidMoveError.
	ErrInvalidMove = errors.New("invalid move")
	// ErrInvalidPath is returned for names that escape the backend root.
	ErrInvalidPath = errors.New("invalid path")
)

// DestinationExistsError is returned by Move when the destination exists
// and overwriting was not allowed.
type DestinationExistsError struct {
	Path string
}

func (e *DestinationExistsError) Error() string {
	return fmt.Sprintf("destination %q exists and overwrite is not allowed", e.Path)
}

func (e *DestinationExistsError) Is(target error) bool {
	return target == ErrDestinationExists || target == fs.ErrExist
}

// PathIsFileError is returned by MakeDirs when a segment of the requested
// directory path is already a file.
type PathIsFileError struct {
	Path string
}

func (e *PathIsFileError) Error() string {
	return fmt.Sprintf("file exists: %q", e.Path)
}

func (e *PathIsFileError) Is(target error) bool {
	return target == ErrPathIsFile || target == fs.ErrExist
}

// CopyFailedError is returned when the underlying store did not copy an
// object. The store's own error, if any, is available through errors.Unwrap.
type CopyFailedError struct {
	Source      string
	Destination string
	cause       error
}

// NewCopyFailedError wraps cause as a failed copy from src to dst.
func NewCopyFailedError(src, dst string, cause error) *CopyFailedError {
	return &CopyFailedError{Source: src, Destination: dst, cause: cause}
}

func (e *CopyFailedError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("couldn't copy %q to %q", e.Source, e.Destination)
	}
	return fmt.Sprintf("couldn't copy %q to %q: %v", e.Source, e.Destination, e.cause)
}

func (e *CopyFailedError) Is(target error) bool { return target == ErrCopyFailed }

func (e *CopyFailedError) Unwrap() error { return e.cause }

// NotFoundError is returned when the source of an operation does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%q: no such file or directory", e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound || target == fs.ErrNotExist
}

// InvalidMoveError is returned when a directory would be moved onto itself
// or into its own subtree.
type InvalidMoveError struct {
	Source      string
	Destination string
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("cannot move %q into %q", e.Source, e.Destination)
}

func (e *InvalidMoveError) Is(target error) bool { return target == ErrInvalidMove }
