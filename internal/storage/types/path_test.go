package types

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{".", ""},
		{"docs", "docs"},
		{"/docs/", "docs"},
		{"//a//b///c/", "a/b/c"},
		{"a/./b", "a/b"},
		{"a/b/../c", "a/c"},
	}
	for _, tt := range tests {
		got, err := Clean(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, "Clean(%q)", tt.in)
	}
}

func TestCleanRejectsEscape(t *testing.T) {
	for _, in := range []string{"..", "../x", "a/../../b"} {
		_, err := Clean(in)
		assert.ErrorIs(t, err, ErrInvalidPath, in)
	}
}

func TestAncestors(t *testing.T) {
	assert.Nil(t, Ancestors(""))
	assert.Equal(t, []string{"a"}, Ancestors("a"))
	assert.Equal(t, []string{"a", "a/b", "a/b/c"}, Ancestors("a/b/c"))
}

func TestMarkerKey(t *testing.T) {
	assert.Equal(t, ".folder", MarkerKey(""))
	assert.Equal(t, "docs/.folder", MarkerKey("docs"))
	assert.Equal(t, "a/b/.folder", MarkerKey("a/b"))
}

func TestWithin(t *testing.T) {
	assert.True(t, Within("", "anything"))
	assert.True(t, Within("docs", "docs"))
	assert.True(t, Within("docs", "docs/a.txt"))
	assert.False(t, Within("docs", "docs2"))
	assert.False(t, Within("docs", "doc"))
}

func TestRebase(t *testing.T) {
	got, ok := Rebase("docs/sub/b.txt", "docs", "archive")
	require.True(t, ok)
	assert.Equal(t, "archive/sub/b.txt", got)

	got, ok = Rebase("docs/.folder", "docs", "a/b")
	require.True(t, ok)
	assert.Equal(t, "a/b/.folder", got)

	_, ok = Rebase("docs2/x", "docs", "archive")
	assert.False(t, ok)
}

func TestErrorKinds(t *testing.T) {
	var err error = &DestinationExistsError{Path: "x"}
	assert.ErrorIs(t, err, ErrDestinationExists)
	assert.ErrorIs(t, err, fs.ErrExist)

	err = fmt.Errorf("mkdir: %w", &PathIsFileError{Path: "a/b"})
	assert.ErrorIs(t, err, ErrPathIsFile)
	var pathErr *PathIsFileError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "a/b", pathErr.Path)

	cause := errors.New("access denied")
	err = NewCopyFailedError("a", "b", cause)
	assert.ErrorIs(t, err, ErrCopyFailed)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "access denied")

	err = &NotFoundError{Path: "gone"}
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NotErrorIs(t, err, ErrCopyFailed)
}
