package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	guardRetryLimit = 200
	guardRetryDelay = 5 * time.Millisecond
)

// BookGuard serializes ledger mutations per book id so the
// read-validate-write sequences of the price ledger, stock ledger and
// transaction processor cannot interleave for the same book.
// Operations on different books never block each other.
//
// The guard enforces the invariant independent of the storage backend:
// GormStore additionally takes a FOR UPDATE row lock, MemoryStore
// relies on the guard alone.
type BookGuard struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewBookGuard() *BookGuard {
	return &BookGuard{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (g *BookGuard) lockFor(id uuid.UUID) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()

	lock, ok := g.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[id] = lock
	}
	return lock
}

// Acquire takes the per-book lock. The wait is bounded: after the retry
// budget is exhausted the caller gets ErrConflict instead of blocking
// forever.
func (g *BookGuard) Acquire(id uuid.UUID) (release func(), err error) {
	lock := g.lockFor(id)
	for attempt := 0; attempt < guardRetryLimit; attempt++ {
		if lock.TryLock() {
			return lock.Unlock, nil
		}
		time.Sleep(guardRetryDelay)
	}
	return nil, ErrConflict
}
