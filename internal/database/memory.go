package database

import (
	"context"
	"sync"
)

type memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns a process-local store. Contents are lost on exit.
func NewMemory() Store {
	return &memory{data: make(map[string][]byte)}
}

func (m *memory) Close() {}

func (m *memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *memory) Set(ctx context.Context, key string, value []byte) error {
	return m.SetMany(ctx, map[string][]byte{key: value})
}

func (m *memory) SetMany(_ context.Context, values map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, value := range values {
		m.data[key] = append([]byte(nil), value...)
	}
	return nil
}
