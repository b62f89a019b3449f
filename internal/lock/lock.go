package lock

import (
	"context"
	"sync"
	"time"
)

// Locker guards the single in-flight indexing run.
// TryAcquire returns false without error when another holder owns the key.
type Locker interface {
	TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, owner string) error
}

type entry struct {
	owner   string
	expires time.Time
}

// MemoryLocker is a process-local Locker used when no Redis is configured.
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]entry
	clock func() time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]entry), clock: time.Now}
}

func (l *MemoryLocker) TryAcquire(_ context.Context, key, owner string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if e, ok := l.held[key]; ok && now.Before(e.expires) {
		return false, nil
	}
	l.held[key] = entry{owner: owner, expires: now.Add(ttl)}
	return true, nil
}

// Release is a no-op unless owner still holds key.
func (l *MemoryLocker) Release(_ context.Context, key, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.held[key]; ok && e.owner == owner {
		delete(l.held, key)
	}
	return nil
}
