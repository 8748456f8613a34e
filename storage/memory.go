package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

type Object struct {
	Data        []byte
	ContentType string
}

// MemoryStorage is an in-process bucket for local runs and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{baseURL: baseURL, objects: make(map[string]Object)}
}

func (m *MemoryStorage) Upload(ctx context.Context, objectPath string, body io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", objectPath, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.objects[objectPath]; exists {
		return fmt.Errorf("uploading %s: object already exists", objectPath)
	}
	m.objects[objectPath] = Object{Data: data, ContentType: contentType}
	return nil
}

func (m *MemoryStorage) PublicURL(objectPath string) string {
	return m.baseURL + "/" + objectPath
}

func (m *MemoryStorage) Remove(ctx context.Context, objectPaths ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range objectPaths {
		delete(m.objects, p)
	}
	return nil
}

func (m *MemoryStorage) Get(objectPath string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[objectPath]
	return obj, ok
}

func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
