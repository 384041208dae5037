// Package lock serializes the read-compute-write cycle of settlement
// recording per fridge.
package lock

import "context"

// Locker acquires an exclusive lock for a key.
// Lock blocks until the lock is held or ctx is done. The returned unlock
// function is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
