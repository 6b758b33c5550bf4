package locking

import (
	"context"
	"strings"
	"sync"
	"time"
)

const keyPrefix = "nametracker:lock:"

// Locker is the mutual-exclusion primitive guarding scheduled jobs. Acquire
// is non-blocking: false means another holder is alive and the caller should
// no-op. The TTL is the backstop for crashed holders.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// JobKey builds a lock key from a job name plus optional partition parts.
func JobKey(job string, parts ...string) string {
	if len(parts) == 0 {
		return keyPrefix + job
	}
	return keyPrefix + job + ":" + strings.Join(parts, ":")
}

// MemoryLocker is a process-local Locker used in tests and local mode where
// no Redis is configured.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[string]time.Time),
	}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if expiry, held := l.locks[key]; held && now.Before(expiry) {
		return false, nil
	}
	l.locks[key] = now.Add(ttl)
	return true, nil
}

func (l *MemoryLocker) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.locks, key)
	return nil
}
