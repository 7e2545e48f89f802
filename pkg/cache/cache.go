// Package cache keeps an ordered, locally mirrored copy of one scope of items
// and synchronizes every mutation with the remote store.
//
// A Cache behaves like an informer: state lives locally, readers take
// consistent snapshots without touching the store, and every change is
// announced on a buffered event channel. Reorders are optimistic; a failed
// remote write is repaired by refetching the scope, never by undoing locally.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"tableflip.dev/ordo/pkg/item"
	"tableflip.dev/ordo/pkg/logging"
	"tableflip.dev/ordo/pkg/ordered"
	"tableflip.dev/ordo/pkg/store"
)

// ErrClosed is returned by operations on a closed cache.
var ErrClosed = errors.New("cache: closed")

// rollbackTimeout bounds the refetch that repairs a failed reorder.
const rollbackTimeout = 10 * time.Second

// Session is the principal source a cache is bound to.
type Session interface {
	OwnerID() (string, error)
	OnSignOut(fn func()) (cancel func())
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for operation traces and rollbacks.
func WithLogger(l *log.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithEventBuffer sets the capacity of the event channel.
func WithEventBuffer(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.buffer = n
		}
	}
}

// Cache is the sync coordinator for one scope.
type Cache struct {
	scope   item.Scope
	desc    item.Descriptor
	remote  store.Remote
	session Session
	logger  *log.Logger
	buffer  int

	// queue is a one-slot semaphore serializing mutations.
	queue chan struct{}

	mu     sync.RWMutex
	state  ordered.State
	stale  bool
	epoch  uint64
	closed bool

	eventCh     chan Event
	unsubscribe func()
}

// New binds a cache to scope. Items are described by desc, persisted through
// remote and owned by the principal of sess. The cache starts empty; call
// Refresh to load it.
func New(scope item.Scope, desc item.Descriptor, remote store.Remote, sess Session, opts ...Option) (*Cache, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if desc.Kind != scope.Kind {
		return nil, fmt.Errorf("%w: %s descriptor for %s scope", item.ErrValidation, desc.Kind, scope.Kind)
	}
	if remote == nil || sess == nil {
		return nil, errors.New("cache: remote and session required")
	}
	c := &Cache{
		scope:   scope,
		desc:    desc,
		remote:  remote,
		session: sess,
		logger:  logging.New(nil, "warn"),
		buffer:  64,
		queue:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("scope", scope.String())
	c.eventCh = make(chan Event, c.buffer)
	c.unsubscribe = sess.OnSignOut(c.drop)
	return c, nil
}

// Scope returns the scope the cache mirrors.
func (c *Cache) Scope() item.Scope { return c.scope }

// Descriptor returns the kind descriptor items are validated with.
func (c *Cache) Descriptor() item.Descriptor { return c.desc }

// Events exposes the change notifications. The channel is closed by Close.
func (c *Cache) Events() <-chan Event { return c.eventCh }

// Snapshot returns a copy of the current ordered sequence, including any
// optimistic reorder still in flight.
func (c *Cache) Snapshot() []item.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Snapshot()
}

// Len returns the number of items currently held.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Len()
}

// Stale reports whether the last rollback could not reload the scope. The
// next successful Refresh clears it.
func (c *Cache) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stale
}

// Close unsubscribes from the session and closes the event channel. Pending
// operations finish but leave no trace.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.epoch++
	c.unsubscribe()
	close(c.eventCh)
}

// drop discards state when the principal signs out.
func (c *Cache) drop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.epoch++
	c.stale = false
	c.state.Load(nil)
	c.logger.Debug("dropped state on sign-out")
	c.emit(Event{Scope: c.scope, Action: ActionDrop})
}

// acquire takes the mutation slot, or fails when ctx ends first.
func (c *Cache) acquire(ctx context.Context, op string) (func(), error) {
	select {
	case c.queue <- struct{}{}:
		return func() { <-c.queue }, nil
	case <-ctx.Done():
		return nil, fail(op, ctx.Err())
	}
}

// begin resolves the acting owner and the epoch the operation runs in.
func (c *Cache) begin(op string) (string, uint64, error) {
	c.mu.RLock()
	closed, epoch := c.closed, c.epoch
	c.mu.RUnlock()
	if closed {
		return "", 0, ErrClosed
	}
	owner, err := c.session.OwnerID()
	if err != nil {
		return "", 0, fail(op, err)
	}
	if owner != c.scope.OwnerID {
		return "", 0, fail(op, item.ErrSignedOut)
	}
	return owner, epoch, nil
}

// currentLocked reports whether the operation started in epoch may still
// touch state. Callers hold c.mu.
func (c *Cache) currentLocked(epoch uint64) bool {
	return !c.closed && c.epoch == epoch
}

func (c *Cache) emit(ev Event) {
	if c.closed {
		return
	}
	select {
	case c.eventCh <- ev:
	default:
	}
}

// fail wraps err for op. Errors outside the validation, not-found and session
// taxonomy are reported as transient.
func fail(op string, err error) error {
	switch {
	case errors.Is(err, item.ErrValidation),
		errors.Is(err, item.ErrNotFound),
		errors.Is(err, item.ErrSignedOut),
		errors.Is(err, item.ErrTransient),
		errors.Is(err, ErrClosed):
		return fmt.Errorf("cache: %s: %w", op, err)
	default:
		return fmt.Errorf("cache: %s: %w: %w", op, item.ErrTransient, err)
	}
}

func signedOut(op string) error {
	return fail(op, item.ErrSignedOut)
}
