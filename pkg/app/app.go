// Package app wires the store, the session and one cache per open scope into
// the operations shared by the CLI and the terminal UI.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"tableflip.dev/ordo/pkg/cache"
	"tableflip.dev/ordo/pkg/item"
	"tableflip.dev/ordo/pkg/logging"
	"tableflip.dev/ordo/pkg/store"
)

var (
	errNoStore = errors.New("app: no store configured")
	// ErrWatchUnsupported is returned by Watch for stores that cannot report
	// outside writes.
	ErrWatchUnsupported = errors.New("app: store does not support watching")
)

// Service owns one cache per open scope. Caches are created on first use and
// loaded from the store before they are handed out.
type Service struct {
	Remote  store.Remote
	Session cache.Session
	Logger  *log.Logger

	mu          sync.Mutex
	caches      map[item.Scope]*cache.Cache
	unsubscribe func()
}

// New returns a Service over remote acting as the principal of sess.
func New(remote store.Remote, sess cache.Session, logger *log.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Service{
		Remote:  remote,
		Session: sess,
		Logger:  logger,
		caches:  make(map[item.Scope]*cache.Cache),
	}
	if sess != nil {
		s.unsubscribe = sess.OnSignOut(s.forget)
	}
	return s
}

// Owner returns the signed-in principal id.
func (s *Service) Owner() (string, error) {
	if s.Session == nil {
		return "", item.ErrSignedOut
	}
	return s.Session.OwnerID()
}

// Lists returns the cache of the principal's lists.
func (s *Service) Lists(ctx context.Context) (*cache.Cache, error) {
	owner, err := s.Owner()
	if err != nil {
		return nil, err
	}
	return s.Scope(ctx, item.ListsOf(owner))
}

// Notes returns the cache of the notes of listID.
func (s *Service) Notes(ctx context.Context, listID string) (*cache.Cache, error) {
	return s.Children(ctx, listID, item.KindNote)
}

// Tasks returns the cache of the tasks of listID.
func (s *Service) Tasks(ctx context.Context, listID string) (*cache.Cache, error) {
	return s.Children(ctx, listID, item.KindTask)
}

// Children returns the cache of the kind items under listID.
func (s *Service) Children(ctx context.Context, listID string, kind item.Kind) (*cache.Cache, error) {
	owner, err := s.Owner()
	if err != nil {
		return nil, err
	}
	return s.Scope(ctx, item.Scope{OwnerID: owner, ParentID: listID, Kind: kind})
}

// Scope returns the open cache for scope, creating and loading it if needed.
func (s *Service) Scope(ctx context.Context, scope item.Scope) (*cache.Cache, error) {
	if s.Remote == nil {
		return nil, errNoStore
	}
	s.mu.Lock()
	if c, ok := s.caches[scope]; ok {
		s.mu.Unlock()
		return c, nil
	}
	s.mu.Unlock()

	desc, err := item.Describe(scope.Kind)
	if err != nil {
		return nil, err
	}
	c, err := cache.New(scope, desc, s.Remote, s.Session, cache.WithLogger(s.Logger))
	if err != nil {
		return nil, err
	}
	if err := c.Refresh(ctx); err != nil {
		c.Close()
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.caches[scope]; ok {
		// Lost a race with another opener.
		c.Close()
		return existing, nil
	}
	s.caches[scope] = c
	return c, nil
}

// Open returns the scopes with a live cache.
func (s *Service) Open() []item.Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]item.Scope, 0, len(s.caches))
	for scope := range s.caches {
		out = append(out, scope)
	}
	return out
}

// DeleteList removes a list with its notes and tasks. Child caches are closed
// since the store cascades the delete.
func (s *Service) DeleteList(ctx context.Context, listID string) error {
	lists, err := s.Lists(ctx)
	if err != nil {
		return err
	}
	if err := lists.Delete(ctx, listID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for scope, c := range s.caches {
		if scope.ParentID == listID {
			c.Close()
			delete(s.caches, scope)
		}
	}
	return nil
}

// Refresh reloads every open cache. All caches are attempted; errors are
// joined.
func (s *Service) Refresh(ctx context.Context) error {
	var errs []error
	for _, c := range s.snapshot() {
		if err := c.Refresh(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Scope(), err))
		}
	}
	return errors.Join(errs...)
}

// Watch refreshes open caches when the store reports writes from other
// processes. It returns once the watcher is running; refreshing stops when ctx
// is done.
func (s *Service) Watch(ctx context.Context) error {
	w, ok := s.Remote.(store.Watcher)
	if !ok {
		return ErrWatchUnsupported
	}
	events, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for ev := range events {
			if ev.Invalidated {
				if err := s.Refresh(ctx); err != nil {
					s.Logger.Warn("refresh after outside change failed", "err", err)
				}
				continue
			}
			s.mu.Lock()
			c, ok := s.caches[ev.Scope]
			s.mu.Unlock()
			if !ok {
				continue
			}
			s.Logger.Debug("outside change", "scope", ev.Scope.String())
			if err := c.Refresh(ctx); err != nil {
				s.Logger.Warn("refresh after outside change failed", "scope", ev.Scope.String(), "err", err)
			}
		}
	}()
	return nil
}

// Close closes every cache and the store.
func (s *Service) Close() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.forget()
	if s.Remote == nil {
		return nil
	}
	return s.Remote.Close()
}

// forget closes and drops every cache.
func (s *Service) forget() {
	s.mu.Lock()
	caches := s.caches
	s.caches = make(map[item.Scope]*cache.Cache)
	s.mu.Unlock()
	for _, c := range caches {
		c.Close()
	}
}

func (s *Service) snapshot() []*cache.Cache {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*cache.Cache, 0, len(s.caches))
	for _, c := range s.caches {
		out = append(out, c)
	}
	return out
}
