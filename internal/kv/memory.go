package kv

import (
	"context"
	"sync"
)

// Memory keeps values in process memory. Used by tests and one-shot runs.
type Memory struct {
	mu     sync.RWMutex
	prefix string
	values map[string]string
}

func NewMemory(prefix string) *Memory {
	return &Memory{prefix: prefix, values: map[string]string{}}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[m.prefix+key]
	return value, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[m.prefix+key] = value
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, m.prefix+key)
	return nil
}

// Keys returns the unprefixed keys currently held, in no particular order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		if len(k) >= len(m.prefix) && k[:len(m.prefix)] == m.prefix {
			keys = append(keys, k[len(m.prefix):])
		}
	}
	return keys
}
