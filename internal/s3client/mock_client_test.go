package s3client

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMockClientListIsSortedAndPrefixed(t *testing.T) {
	m := NewMockClient("test-bucket")
	ctx := context.Background()

	for _, key := range []string{"b/2", "a", "b/1", "bb"} {
		if err := m.Put(ctx, key, nil); err != nil {
			t.Fatalf("Put(%s): %v", key, err)
		}
	}

	keys, err := m.List(ctx, "b/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 2 || keys[0] != "b/1" || keys[1] != "b/2" {
		t.Errorf("unexpected listing: %v", keys)
	}
}

func TestMockClientCopyHook(t *testing.T) {
	m := NewMockClient("test-bucket")
	ctx := context.Background()
	_ = m.Put(ctx, "src", []byte("x"))

	m.CopyHook = func(src, dst string) error { return errors.New("denied") }
	if err := m.Copy(ctx, "src", "dst"); err == nil {
		t.Fatal("expected copy to fail")
	}
	if ok, _ := m.Exists(ctx, "dst"); ok {
		t.Error("failed copy must not create the destination")
	}

	m.CopyHook = nil
	if err := m.Copy(ctx, "src", "dst"); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	data, err := m.GetObject(ctx, "dst")
	if err != nil || string(data) != "x" {
		t.Errorf("GetObject(dst) = %q, %v", data, err)
	}
}

func TestMockClientCopyMissingSource(t *testing.T) {
	m := NewMockClient("test-bucket")
	err := m.Copy(context.Background(), "nope", "dst")
	if err == nil {
		t.Fatal("expected error copying a missing key")
	}
	if !strings.Contains(err.Error(), "s3://test-bucket/nope") {
		t.Errorf("error should name the bucket and key, got %v", err)
	}
}
