package cache

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sells-group/groupements-cli/internal/model"
)

// MemoryStore is a process-local Store. Entries do not survive the run.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*model.Table
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*model.Table)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (*model.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[key], nil
}

func (m *MemoryStore) Set(_ context.Context, key string, tbl *model.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok {
		m.entries[key] = tbl
	}
	return nil
}

func (m *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Migrate(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
