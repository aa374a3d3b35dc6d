package artifact

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is the in-process artifact store for tests and offline mode.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, documentID, name string, content []byte) error {
	key, err := objectKey(documentID, name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(content))
	copy(cp, content)
	m.objects[key] = cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, documentID, name string) ([]byte, error) {
	key, err := objectKey(documentID, name)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return content, nil
}

func (m *MemoryStore) List(_ context.Context, documentID string) ([]string, error) {
	prefix := strings.TrimSpace(documentID) + "/"
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			names = append(names, strings.TrimPrefix(key, prefix))
		}
	}
	sort.Strings(names)
	return names, nil
}
