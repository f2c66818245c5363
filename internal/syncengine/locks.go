package syncengine

import (
	"context"
	"sync"
)

// ownerLocks serializes sync calls per owner. An owner's watermark is only
// gap-free if no other call for that owner commits writes stamped with an
// earlier sync start after this call has collected.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[string]*ownerLock
}

type ownerLock struct {
	sem  chan struct{}
	refs int // holder + waiters
}

// acquire blocks until ownerID's lock is held or ctx is done.
func (l *ownerLocks) acquire(ctx context.Context, ownerID string) (release func(), err error) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*ownerLock)
	}
	lk, ok := l.locks[ownerID]
	if !ok {
		lk = &ownerLock{sem: make(chan struct{}, 1)}
		l.locks[ownerID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.sem <- struct{}{}:
		return func() {
			<-lk.sem
			l.put(ownerID, lk)
		}, nil
	case <-ctx.Done():
		l.put(ownerID, lk)
		return nil, ctx.Err()
	}
}

func (l *ownerLocks) put(ownerID string, lk *ownerLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, ownerID)
	}
}

// size reports how many owners currently hold or wait for a lock.
func (l *ownerLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
