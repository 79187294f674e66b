package cache

import (
	"context"
	"sync"
)

// Memory is an in-process Cache meant for tests. Expiry is recorded but not
// enforced. Setting Err makes every call fail with it.
type Memory struct {
	mu      sync.Mutex
	entries map[string]string
	ttls    map[string]uint

	Err error
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]string),
		ttls:    make(map[string]uint),
	}
}

func (m *Memory) SetEx(_ context.Context, key, value string, seconds uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	m.entries[key] = value
	m.ttls[key] = seconds

	return nil
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}

	v, ok := m.entries[key]
	if !ok {
		return "", ErrNoValueForKey
	}

	return v, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	delete(m.entries, key)
	delete(m.ttls, key)

	return nil
}

// Peek returns the raw stored value, ignoring Err.
func (m *Memory) Peek(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.entries[key]

	return v, ok
}

// TTL returns the expiry the key was stored with.
func (m *Memory) TTL(key string) uint {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ttls[key]
}
