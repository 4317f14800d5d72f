package repository

import (
	"context"
	"sync"

	"github.com/fjod/rocketshoes-cart/internal/domain"
)

// MemoryRepository keeps serialized carts in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string][]byte)}
}

func (m *MemoryRepository) GetCart(_ context.Context, key string) (domain.Cart, error) {
	m.mu.RLock()
	data, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrCartNotFound
	}
	return decodeCart(data)
}

func (m *MemoryRepository) SaveCart(_ context.Context, key string, cart domain.Cart) error {
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = data
	return nil
}

// Raw returns the stored bytes for key.
func (m *MemoryRepository) Raw(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.items[key]
	return data, ok
}

// Put stores raw bytes under key without validation.
func (m *MemoryRepository) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = data
}

func (m *MemoryRepository) Close() error {
	return nil
}
