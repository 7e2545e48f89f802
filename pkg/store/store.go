// Package store implements the remote persistence adapters the ordered
// collection caches synchronize against.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"tableflip.dev/ordo/pkg/item"
)

// Remote is the persistence contract consumed by the caches. Every call is
// scoped by owner; ids are assigned by the adapter.
type Remote interface {
	// FetchOrdered returns the items of scope in ascending position order.
	FetchOrdered(ctx context.Context, scope item.Scope) ([]item.Item, error)
	// Insert creates an item at position and returns the stored item.
	Insert(ctx context.Context, scope item.Scope, payload item.Payload, position int) (item.Item, error)
	// UpdateFields applies fields to the item matching (id, owner). It
	// returns item.ErrNotFound when no item matches.
	UpdateFields(ctx context.Context, id, ownerID string, fields item.Fields) (item.Item, error)
	// BatchReposition assigns every placement. It writes nothing and returns
	// item.ErrNotFound if any id is not owned by ownerID.
	BatchReposition(ctx context.Context, ownerID string, placements []item.Placement) error
	// Delete removes the item matching (id, owner); missing items are not an
	// error. Deleting a list removes its notes and tasks.
	Delete(ctx context.Context, id, ownerID string) error
	// Close releases adapter resources.
	Close() error
}

// Watcher is implemented by adapters that can report writes made by other
// processes.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

// Open builds the adapter selected by cfg. logger receives adapter
// diagnostics and may be nil.
func Open(cfg Config, logger *log.Logger) (Remote, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	switch Backend(strings.ToLower(strings.TrimSpace(cfg.Backend()))) {
	case BackendMemory:
		return NewMemory(), nil
	case BackendDiskv, "":
		return NewDiskv(cfg.BasePath(), logger)
	case BackendSQLite:
		return NewSQLite(cfg.BasePath())
	case BackendRedis:
		return DialRedis(context.Background(), cfg.RedisAddr())
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend())
	}
}

func newID() string {
	return uuid.NewString()
}

func checkInsert(scope item.Scope, position int) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if position < 0 {
		return fmt.Errorf("%w: negative position %d", item.ErrValidation, position)
	}
	return nil
}

func checkPlacements(ownerID string, placements []item.Placement) error {
	if strings.TrimSpace(ownerID) == "" {
		return fmt.Errorf("%w: owner required", item.ErrValidation)
	}
	seen := make(map[string]struct{}, len(placements))
	for _, p := range placements {
		if p.ID == "" {
			return fmt.Errorf("%w: placement without id", item.ErrValidation)
		}
		if p.Position < 0 {
			return fmt.Errorf("%w: negative position for %s", item.ErrValidation, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate placement for %s", item.ErrValidation, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func notFound(id string) error {
	return fmt.Errorf("store: %w: %s", item.ErrNotFound, id)
}
