package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

const memoryURLPrefix = "memory://"

// MemoryStore keeps uploads in process. It is used with the memory document
// store when no bucket is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", fmt.Errorf("failed to read upload: %v", err)
	}

	name := objectPath(folder, filename)
	m.mu.Lock()
	m.objects[name] = buf.Bytes()
	m.mu.Unlock()

	return memoryURLPrefix + name, nil
}

func (m *MemoryStore) Delete(ctx context.Context, fileURL string) error {
	if !strings.HasPrefix(fileURL, memoryURLPrefix) {
		return fmt.Errorf("invalid object URL %q", fileURL)
	}
	m.mu.Lock()
	delete(m.objects, strings.TrimPrefix(fileURL, memoryURLPrefix))
	m.mu.Unlock()
	return nil
}

// Object returns a stored upload by its URL.
func (m *MemoryStore) Object(fileURL string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[strings.TrimPrefix(fileURL, memoryURLPrefix)]
	return data, ok
}
