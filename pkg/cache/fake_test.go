package cache

import (
	"context"
	"errors"
	"sync"

	"tableflip.dev/ordo/pkg/item"
	"tableflip.dev/ordo/pkg/store"
)

var errOffline = errors.New("connection reset")

// flakyRemote wraps a memory store, counting calls and injecting failures.
type flakyRemote struct {
	*store.Memory

	mu           sync.Mutex
	calls        map[string]int
	failInsert   bool
	failBatch    bool
	failFetch    bool
	batchStarted chan struct{}
	batchGate    chan struct{}
}

func newFlaky() *flakyRemote {
	return &flakyRemote{Memory: store.NewMemory(), calls: make(map[string]int)}
}

func (f *flakyRemote) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *flakyRemote) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *flakyRemote) set(fn func(f *flakyRemote)) {
	f.mu.Lock()
	fn(f)
	f.mu.Unlock()
}

func (f *flakyRemote) FetchOrdered(ctx context.Context, scope item.Scope) ([]item.Item, error) {
	f.record("fetch")
	f.mu.Lock()
	fail := f.failFetch
	f.mu.Unlock()
	if fail {
		return nil, errOffline
	}
	return f.Memory.FetchOrdered(ctx, scope)
}

func (f *flakyRemote) Insert(ctx context.Context, scope item.Scope, payload item.Payload, position int) (item.Item, error) {
	f.record("insert")
	f.mu.Lock()
	fail := f.failInsert
	f.mu.Unlock()
	if fail {
		return item.Item{}, errOffline
	}
	return f.Memory.Insert(ctx, scope, payload, position)
}

func (f *flakyRemote) UpdateFields(ctx context.Context, id, ownerID string, fields item.Fields) (item.Item, error) {
	f.record("update")
	return f.Memory.UpdateFields(ctx, id, ownerID, fields)
}

func (f *flakyRemote) BatchReposition(ctx context.Context, ownerID string, placements []item.Placement) error {
	f.record("batch")
	f.mu.Lock()
	fail, started, gate := f.failBatch, f.batchStarted, f.batchGate
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if fail {
		return errOffline
	}
	return f.Memory.BatchReposition(ctx, ownerID, placements)
}

func (f *flakyRemote) Delete(ctx context.Context, id, ownerID string) error {
	f.record("delete")
	return f.Memory.Delete(ctx, id, ownerID)
}

// fixedSession is a Session that never signs out unless told to.
type fixedSession struct {
	mu        sync.Mutex
	owner     string
	listeners []func()
}

func (s *fixedSession) OwnerID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner == "" {
		return "", item.ErrSignedOut
	}
	return s.owner, nil
}

func (s *fixedSession) OnSignOut(fn func()) func() {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
	return func() {}
}

func (s *fixedSession) signOut() {
	s.mu.Lock()
	s.owner = ""
	fns := append([]func(){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
