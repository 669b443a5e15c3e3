package repository

import (
	"context"
	"sync"
)

// MemoryBackend keeps collections in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

// Open creates the collection if it does not exist.
func (b *MemoryBackend) Open(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.docs[key]; !ok {
		b.docs[key] = append([]byte(nil), emptyCollection...)
	}
	return nil
}

// Read returns a copy of the stored document.
func (b *MemoryBackend) Read(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	doc, ok := b.docs[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), doc...), nil
}

// Write stores a copy of doc.
func (b *MemoryBackend) Write(_ context.Context, key string, doc []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.docs[key] = append([]byte(nil), doc...)
	return nil
}
