// Package keyring provides in-process exclusive locks scoped to string keys.
// Locks on different keys are fully independent; acquisition is bounded by
// the caller's context so a waiter can time out instead of queueing forever.
package keyring

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Ring hands out one exclusive lock per key. Lock entries are reference
// counted and removed once the last holder or waiter is gone, so the ring
// does not grow with the key space.
type Ring struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

// New creates an empty ring.
func New() *Ring {
	return &Ring{locks: make(map[string]*entry)}
}

// Acquire blocks until the lock for key is held or ctx is done. On success
// it returns a release function; the caller must invoke it exactly once.
func (r *Ring) Acquire(ctx context.Context, key string) (func(), error) {
	r.mu.Lock()
	e, ok := r.locks[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		r.locks[key] = e
	}
	e.refs++
	r.mu.Unlock()

	if err := e.sem.Acquire(ctx, 1); err != nil {
		r.unref(key, e)
		return nil, err
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			e.sem.Release(1)
			r.unref(key, e)
		})
	}
	return release, nil
}

func (r *Ring) unref(key string, e *entry) {
	r.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(r.locks, key)
	}
	r.mu.Unlock()
}
