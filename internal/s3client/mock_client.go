package s3client

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockClient is an in-memory object store for unit tests. It lists keys in
// lexical order like S3 does.
type MockClient struct {
	bucket  string
	objects map[string]*MockObject
	mu      sync.RWMutex

	// CopyHook, when set, is consulted before every copy. A non-nil
	// return value makes the copy fail without touching the store.
	CopyHook func(srcKey, dstKey string) error

	calls []string
}

// MockObject represents a stored object
type MockObject struct {
	Key          string
	Data         []byte
	Size         int64
	LastModified time.Time
}

// NewMockClient creates a new mock object store for bucket
func NewMockClient(bucket string) *MockClient {
	return &MockClient{
		bucket:  bucket,
		objects: make(map[string]*MockObject),
	}
}

func (m *MockClient) record(op, key string) {
	m.calls = append(m.calls, op+" "+key)
}

// Calls returns the operations performed so far, as "op key" strings.
func (m *MockClient) Calls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// Keys returns every stored key in lexical order.
func (m *MockClient) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Exists reports whether key is stored
func (m *MockClient) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("exists", key)
	_, ok := m.objects[key]
	return ok, nil
}

// List lists keys with the given prefix
func (m *MockClient) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("list", prefix)
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// GetObject retrieves an object's content
func (m *MockClient) GetObject(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, exists := m.objects[key]
	if !exists {
		return nil, fmt.Errorf("object not found: s3://%s/%s", m.bucket, key)
	}

	data := make([]byte, len(obj.Data))
	copy(data, obj.Data)
	return data, nil
}

// Put stores an object
func (m *MockClient) Put(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("put", key)
	objData := make([]byte, len(data))
	copy(objData, data)

	m.objects[key] = &MockObject{
		Key:          key,
		Data:         objData,
		Size:         int64(len(data)),
		LastModified: time.Now(),
	}
	return nil
}

// Copy copies an object
func (m *MockClient) Copy(ctx context.Context, srcKey, dstKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("copy", srcKey+" "+dstKey)
	if m.CopyHook != nil {
		if err := m.CopyHook(srcKey, dstKey); err != nil {
			return err
		}
	}

	src, exists := m.objects[srcKey]
	if !exists {
		return fmt.Errorf("source object not found: s3://%s/%s", m.bucket, srcKey)
	}

	data := make([]byte, len(src.Data))
	copy(data, src.Data)
	m.objects[dstKey] = &MockObject{
		Key:          dstKey,
		Data:         data,
		Size:         src.Size,
		LastModified: time.Now(),
	}
	return nil
}

// Delete deletes an object
func (m *MockClient) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("delete", key)
	delete(m.objects, key)
	return nil
}
