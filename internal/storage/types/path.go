package types

import (
	"fmt"
	"path"
	"strings"
)

// MarkerName is the base name of the zero-length object that marks an
// otherwise empty directory in an object store.
const MarkerName = ".folder"

// Clean returns the normalized form of name: no leading or trailing slash,
// no empty or "." segments. The root is "". Names that climb above the root
// are rejected with ErrInvalidPath.
func Clean(name string) (string, error) {
	trimmed := strings.TrimLeft(name, "/")
	if trimmed == "" {
		return "", nil
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." {
		return "", nil
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q escapes the root", ErrInvalidPath, name)
	}
	return cleaned, nil
}

// Base returns the last element of a cleaned name, or "" for the root.
func Base(name string) string {
	if name == "" {
		return ""
	}
	return path.Base(name)
}

// Ancestors returns the directory chain of a cleaned name from the root
// down to name itself: "a/b/c" yields ["a", "a/b", "a/b/c"].
func Ancestors(name string) []string {
	if name == "" {
		return nil
	}
	parts := strings.Split(name, "/")
	chain := make([]string, 0, len(parts))
	for i := range parts {
		chain = append(chain, strings.Join(parts[:i+1], "/"))
	}
	return chain
}

// DirPrefix returns the key prefix shared by everything inside dir.
func DirPrefix(dir string) string {
	if dir == "" {
		return ""
	}
	return dir + "/"
}

// MarkerKey returns the key of the marker object for dir.
func MarkerKey(dir string) string {
	return DirPrefix(dir) + MarkerName
}

// Within reports whether name is root or lies beneath it.
func Within(root, name string) bool {
	if root == "" {
		return true
	}
	return name == root || strings.HasPrefix(name, root+"/")
}

// Rebase moves key from beneath src to the same relative position
// beneath dst. ok is false when key is not inside src.
func Rebase(key, src, dst string) (string, bool) {
	prefix := DirPrefix(src)
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}
	return DirPrefix(dst) + strings.TrimPrefix(key, prefix), true
}
