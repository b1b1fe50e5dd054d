package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Object is a blob held by MemoryStorage.
type Object struct {
	ContentType string
	Data        []byte
}

// MemoryStorage is an in-process ObjectStore for tests and local runs.
type MemoryStorage struct {
	mu      sync.Mutex
	objects map[string]Object
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: map[string]Object{}}
}

func (m *MemoryStorage) Put(_ context.Context, key, contentType string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{ContentType: contentType, Data: append([]byte(nil), data...)}
	return nil
}

func (m *MemoryStorage) PresignGet(_ context.Context, key string, expires time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return "", fmt.Errorf("object %s not found", key)
	}
	return fmt.Sprintf("memory://%s?expires=%d", key, int(expires.Seconds())), nil
}

// Get returns a stored object.
func (m *MemoryStorage) Get(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[key]
	return o, ok
}
