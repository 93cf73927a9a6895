package session

import "sync"

// Storage persists opaque text snapshots by key. A missing key reports ok=false.
type Storage interface {
	Load(key string) (string, bool)
	Save(key, value string) error
}

// MemoryStorage keeps snapshots in a map. It backs tests and runs without a database.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryStorage creates an empty in-memory store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Load(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryStorage) Save(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
