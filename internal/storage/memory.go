package storage

import "sync"

// MemoryBackend keeps values in process memory. Nothing survives a restart.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (b *MemoryBackend) Read(key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (b *MemoryBackend) Write(key string, data []byte) error {
	b.mu.Lock()
	b.data[key] = append([]byte(nil), data...)
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.data[key]; !ok {
		return ErrNotFound
	}
	delete(b.data, key)
	return nil
}

func (b *MemoryBackend) List() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.data))
	for k := range b.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func (b *MemoryBackend) Clear() error {
	b.mu.Lock()
	b.data = make(map[string][]byte)
	b.mu.Unlock()
	return nil
}
