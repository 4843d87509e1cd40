package tokenstore

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend keeps slots in process memory. It is used by tests and by
// single-instance development runs.
type MemoryBackend struct {
	mu    sync.Mutex
	slots map[string]memorySlot
	now   func() time.Time
}

type memorySlot struct {
	value   []byte
	expires time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{slots: make(map[string]memorySlot), now: time.Now}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[key]
	if !ok {
		return nil, ErrMissing
	}
	if !s.expires.IsZero() && !m.now().Before(s.expires) {
		delete(m.slots, key)
		return nil, ErrMissing
	}
	return append([]byte(nil), s.value...), nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := memorySlot{value: append([]byte(nil), value...)}
	if ttl > 0 {
		s.expires = m.now().Add(ttl)
	}
	m.slots[key] = s
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, key)
	return nil
}

// Ping satisfies the readiness checker.
func (m *MemoryBackend) Ping(context.Context) error { return nil }
