package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

type storedObject struct {
	ContentType string
	Data        []byte
}

// MemoryStore keeps objects in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]storedObject
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]storedObject),
	}
}

func (m *MemoryStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, body)
	if err != nil {
		return "", fmt.Errorf("failed to read object %s: %w", key, err)
	}
	if size >= 0 && n != size {
		return "", fmt.Errorf("object %s: read %d bytes, declared %d", key, n, size)
	}

	m.mu.Lock()
	m.objects[key] = storedObject{ContentType: contentType, Data: buf.Bytes()}
	m.mu.Unlock()

	return m.baseURL + "/" + key, nil
}

// Get returns a stored object's bytes and content type.
func (m *MemoryStore) Get(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.Data, obj.ContentType, ok
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
