// Package session tracks the signed-in principal for the process and
// broadcasts sign-out to every subscriber.
package session

import (
	"strings"
	"sync"

	"tableflip.dev/ordo/pkg/item"
)

// Principal is the signed-in user. ID is the owner id stamped on every item.
type Principal struct {
	ID   string
	Name string
}

// Session holds the current principal. The zero value is signed out.
type Session struct {
	mu        sync.RWMutex
	principal *Principal
	nextID    int
	listeners map[int]func()
}

// New returns a signed-out session.
func New() *Session {
	return &Session{listeners: make(map[int]func())}
}

var current = New()

// Current returns the process-wide session.
func Current() *Session {
	return current
}

// SignIn makes p the current principal. Signing in as a different principal
// first signs the previous one out so scoped state is discarded.
func (s *Session) SignIn(p Principal) {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return
	}
	s.mu.Lock()
	if s.principal != nil && s.principal.ID != p.ID {
		s.mu.Unlock()
		s.SignOut()
		s.mu.Lock()
	}
	s.principal = &p
	s.mu.Unlock()
}

// SignOut clears the principal and notifies every subscriber. Listeners run
// synchronously, outside the session lock.
func (s *Session) SignOut() {
	s.mu.Lock()
	if s.principal == nil {
		s.mu.Unlock()
		return
	}
	s.principal = nil
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Principal returns the signed-in principal.
func (s *Session) Principal() (Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return Principal{}, false
	}
	return *s.principal, true
}

// OwnerID returns the id of the signed-in principal or item.ErrSignedOut.
func (s *Session) OwnerID() (string, error) {
	p, ok := s.Principal()
	if !ok {
		return "", item.ErrSignedOut
	}
	return p.ID, nil
}

// OnSignOut registers fn to run on every sign-out. The returned function
// removes the registration.
func (s *Session) OnSignOut(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listeners == nil {
		s.listeners = make(map[int]func())
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}
