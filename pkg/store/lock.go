package store

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// FileLock serializes writers across processes sharing one store directory.
type FileLock interface {
	// TryLockContext attempts to acquire an exclusive lock with retries.
	TryLockContext(ctx context.Context, retryInterval time.Duration) (bool, error)
	Unlock() error
}

// FlockWrapper adapts github.com/gofrs/flock to FileLock.
type FlockWrapper struct {
	flock *flock.Flock
}

// NewFileLock returns a FileLock on path. The file is created on first lock.
func NewFileLock(path string) FileLock {
	return &FlockWrapper{flock: flock.New(path)}
}

func (f *FlockWrapper) TryLockContext(ctx context.Context, retryInterval time.Duration) (bool, error) {
	return f.flock.TryLockContext(ctx, retryInterval)
}

func (f *FlockWrapper) Unlock() error {
	return f.flock.Unlock()
}

const lockRetry = 10 * time.Millisecond

// storeLock pairs an in-process mutex with the file lock. A flock handle is
// re-entrant within one process, so goroutines sharing it need mu.
type storeLock struct {
	mu   sync.Mutex
	file FileLock
}

func newStoreLock(path string) *storeLock {
	return &storeLock{file: NewFileLock(path)}
}

// withLock runs fn while holding l.
func withLock(ctx context.Context, l *storeLock, fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	ok, err := l.file.TryLockContext(ctx, lockRetry)
	if err != nil {
		return err
	}
	if !ok {
		return context.DeadlineExceeded
	}
	defer func() { _ = l.file.Unlock() }()
	return fn()
}
