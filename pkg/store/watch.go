package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"tableflip.dev/ordo/pkg/item"
)

// Event is emitted by Watcher.Watch when underlying storage changes.
type Event struct {
	// Scope whose items changed. Meaningless when Invalidated is set.
	Scope item.Scope
	// Invalidated asks the receiver to refresh every open scope.
	Invalidated bool
}

// Watch streams change events until ctx is cancelled. Callers should drain the
// returned channel to avoid blocking the watcher. The channel is closed once
// ctx is done or the watcher encounters an unrecoverable error.
func (s *Diskv) Watch(ctx context.Context) (<-chan Event, error) {
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "store: watcher close: %v\n", err)
			}
		})
	}

	dirs, err := collectDirs(s.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer closeWatcher()

		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		var sendMu sync.Mutex
		closed := false
		send := func(ev Event) {
			sendMu.Lock()
			defer sendMu.Unlock()
			if closed {
				return
			}
			select {
			case events <- ev:
			default:
				// Dropped; a later refresh picks the change up.
			}
		}
		defer func() {
			sendMu.Lock()
			closed = true
			sendMu.Unlock()
		}()

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				throttle.Enqueue(Event{Invalidated: true}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}

				if evt.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						dir := filepath.Clean(evt.Name)
						// Files may land before the watch is added; walk the new
						// subtree and treat it as a catalog change.
						sub, _ := collectDirs(dir)
						for _, d := range sub {
							if _, found := watched[d]; found {
								continue
							}
							if err := watcher.Add(d); err != nil {
								fmt.Fprintf(os.Stderr, "store: watch %s: %v\n", d, err)
								continue
							}
							watched[d] = struct{}{}
						}
						if scope, ok := scopeForPath(s.basePath, dir); ok {
							throttle.Enqueue(Event{Scope: scope}, send)
						} else {
							throttle.Enqueue(Event{Invalidated: true}, send)
						}
						continue
					}
				}

				scope, ok := scopeForPath(s.basePath, evt.Name)
				if !ok {
					throttle.Enqueue(Event{Invalidated: true}, send)
					continue
				}
				throttle.Enqueue(Event{Scope: scope}, send)
			}
		}
	}()

	return events, nil
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// eventThrottle coalesces rapid change notifications so caches refresh once
// per burst of filesystem activity instead of on every single write.
type eventThrottle struct {
	mu          sync.Mutex
	timer       *time.Timer
	pending     map[item.Scope]struct{}
	invalidated bool
	delay       time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[item.Scope]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	if ev.Invalidated {
		t.invalidated = true
	} else {
		t.pending[ev.Scope] = struct{}{}
	}

	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	invalidated := t.invalidated
	t.pending = make(map[item.Scope]struct{})
	t.invalidated = false
	t.timer = nil
	t.mu.Unlock()

	// A full refresh subsumes every scoped event in the burst.
	if invalidated {
		send(Event{Invalidated: true})
		return
	}
	for scope := range pending {
		send(Event{Scope: scope})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
