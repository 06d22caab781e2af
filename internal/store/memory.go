package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps rule tables in a map. It is meant for tests and
// single-instance deployments.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]RuleTable
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]RuleTable)}
}

func (m *MemoryStore) GetRuleTable(ctx context.Context, name string) (*RuleTable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[name]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *MemoryStore) PutRuleTable(ctx context.Context, name, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tables[name] = RuleTable{Name: name, Body: body, UpdatedAt: time.Now().UTC()}
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
