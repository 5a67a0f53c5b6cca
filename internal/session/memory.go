package session

import (
	"context"
	"sync"

	"wimitasks/internal/models"
)

// MemoryStore keeps the identity in process memory.
type MemoryStore struct {
	mu sync.Mutex
	id *models.Identity
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Save(_ context.Context, id models.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = &id
	return nil
}

func (m *MemoryStore) Load(context.Context) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.id == nil {
		return nil, nil
	}
	id := *m.id
	return &id, nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = nil
	return nil
}
