package lock

import (
	"context"
	"sync"
)

// Local is an in-process Locker. It only protects a single server instance.
type Local struct {
	mu    sync.Mutex
	locks map[string]*localEntry
}

// localEntry lives while anyone holds or waits for its key.
type localEntry struct {
	slot chan struct{}
	refs int
}

// NewLocal creates an empty Local locker.
func NewLocal() *Local {
	return &Local{locks: make(map[string]*localEntry)}
}

// Lock implements Locker.
func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &localEntry{slot: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.slot <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.slot
				l.release(key, e)
			})
		}, nil
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}
}

func (l *Local) release(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
