// internal/services/lock_manager.go
package services

import (
	"context"
	"sync"
	"time"
)

// LockManager hands out one RWMutex per project so operations spanning several
// files (export, delete) see a consistent project.
type LockManager struct {
	locks   map[string]*LockInfo
	mu      sync.Mutex
	lockTTL time.Duration
	now     func() time.Time
}

// LockInfo wraps a project lock. refs counts holders and waiters; a lock with
// refs > 0 is never dropped.
type LockInfo struct {
	mutex    sync.RWMutex
	lastUsed time.Time
	refs     int32
}

func NewLockManager(ttl time.Duration) *LockManager {
	return &LockManager{
		locks:   make(map[string]*LockInfo),
		lockTTL: ttl,
		now:     time.Now,
	}
}

func (lm *LockManager) acquire(id string) *LockInfo {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	info, exists := lm.locks[id]
	if !exists {
		info = &LockInfo{}
		lm.locks[id] = info
	}
	info.refs++
	info.lastUsed = lm.now()
	return info
}

func (lm *LockManager) release(info *LockInfo) {
	lm.mu.Lock()
	info.refs--
	info.lastUsed = lm.now()
	lm.mu.Unlock()
}

// WithLock runs fn holding the project's write lock.
func (lm *LockManager) WithLock(id string, fn func() error) error {
	info := lm.acquire(id)
	defer lm.release(info)

	info.mutex.Lock()
	defer info.mutex.Unlock()
	return fn()
}

// WithReadLock runs fn holding the project's read lock.
func (lm *LockManager) WithReadLock(id string, fn func() error) error {
	info := lm.acquire(id)
	defer lm.release(info)

	info.mutex.RLock()
	defer info.mutex.RUnlock()
	return fn()
}

// StartCleanup drops idle locks every interval until ctx is done.
func (lm *LockManager) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				lm.cleanupUnusedLocks()
			}
		}
	}()
}

func (lm *LockManager) cleanupUnusedLocks() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	removed := 0
	now := lm.now()
	for id, info := range lm.locks {
		if info.refs == 0 && now.Sub(info.lastUsed) > lm.lockTTL {
			delete(lm.locks, id)
			removed++
		}
	}
	return removed
}

// Size returns the number of tracked project locks.
func (lm *LockManager) Size() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return len(lm.locks)
}
