// Package storagetest provides an in-memory image store for tests.
package storagetest

import (
	"context"
	"sync"

	"github.com/shinyyama/realestate-backend/internal/storage"
)

type Memory struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
}

func NewMemory() *Memory {
	return &Memory{Objects: map[string][]byte{}}
}

func (m *Memory) Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectPath] = data
	return storage.PublicURL("test-bucket", objectPath, "token"), nil
}

func (m *Memory) Delete(ctx context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectPath)
	m.Deleted = append(m.Deleted, objectPath)
	return nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Objects)
}
