package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type grant struct {
	token   string
	expires time.Time
}

// MemoryLocker is a Locker for a single process.
type MemoryLocker struct {
	mu     sync.Mutex
	grants map[string]grant
	now    func() time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		grants: make(map[string]grant),
		now:    time.Now,
	}
}

func (m *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if g, held := m.grants[key]; held && now.Before(g.expires) {
		return "", false, nil
	}
	token := uuid.NewString()
	m.grants[key] = grant{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

func (m *MemoryLocker) Release(_ context.Context, key string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if g, held := m.grants[key]; held && g.token == token {
		delete(m.grants, key)
	}
	return nil
}
