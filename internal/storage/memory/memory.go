package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fdg312/curo/internal/storage"
)

// MemoryStorage keeps credentials in process; they are lost on restart.
type MemoryStorage struct {
	mu          sync.RWMutex
	credentials map[string]storage.Credential
	now         func() time.Time
}

func New() *MemoryStorage {
	return &MemoryStorage{
		credentials: make(map[string]storage.Credential),
		now:         time.Now,
	}
}

func (m *MemoryStorage) GetCredential(ctx context.Context, clientID string) (storage.Credential, bool, error) {
	_ = ctx
	key := strings.TrimSpace(clientID)

	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.credentials[key]
	if !ok {
		return storage.Credential{}, false, nil
	}
	return row, true, nil
}

func (m *MemoryStorage) UpsertCredential(ctx context.Context, clientID, secret string) (storage.Credential, error) {
	_ = ctx
	key := strings.TrimSpace(clientID)

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	row, ok := m.credentials[key]
	if !ok {
		row = storage.Credential{ClientID: key, CreatedAt: now}
	}
	row.Secret = secret
	row.UpdatedAt = now
	m.credentials[key] = row

	return row, nil
}

func (m *MemoryStorage) DeleteCredential(ctx context.Context, clientID string) error {
	_ = ctx
	key := strings.TrimSpace(clientID)

	m.mu.Lock()
	delete(m.credentials, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
