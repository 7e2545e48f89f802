package app

import (
	"context"
	"fmt"
	"strings"

	"tableflip.dev/ordo/pkg/cache"
	"tableflip.dev/ordo/pkg/item"
	"tableflip.dev/ordo/pkg/ordered"
)

// Target names a scope the way the CLI does: a kind plus, for notes and
// tasks, a reference to the parent list.
type Target struct {
	Kind item.Kind
	// List is a list id, unique id prefix or 1-based index.
	List string
}

// Resolve returns the cache behind t, and the parent list when t is nested.
func (s *Service) Resolve(ctx context.Context, t Target) (*cache.Cache, *item.Item, error) {
	desc, err := item.Describe(t.Kind)
	if err != nil {
		return nil, nil, err
	}
	lists, err := s.Lists(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !desc.Nested {
		return lists, nil, nil
	}
	ref := strings.TrimSpace(t.List)
	if ref == "" {
		return nil, nil, fmt.Errorf("%w: %ss belong to a list, pass --list", item.ErrValidation, t.Kind)
	}
	list, err := ordered.Resolve(lists.Snapshot(), ref)
	if err != nil {
		return nil, nil, fmt.Errorf("app: list %q: %w", ref, err)
	}
	c, err := s.Children(ctx, list.ID, t.Kind)
	if err != nil {
		return nil, nil, err
	}
	return c, &list, nil
}

// Find resolves ref among the items of c.
func Find(c *cache.Cache, ref string) (item.Item, error) {
	it, err := ordered.Resolve(c.Snapshot(), ref)
	if err != nil {
		return item.Item{}, fmt.Errorf("app: %s %q: %w", c.Scope().Kind, ref, err)
	}
	return it, nil
}

// Move drags the item ref to the 1-based position to.
func Move(ctx context.Context, c *cache.Cache, ref string, to int) (item.Item, error) {
	it, err := Find(c, ref)
	if err != nil {
		return item.Item{}, err
	}
	if err := c.MoveTo(ctx, it.ID, to-1); err != nil {
		return item.Item{}, err
	}
	return it, nil
}

// Remove deletes the item ref. Lists go through DeleteList so child caches are
// released.
func (s *Service) Remove(ctx context.Context, c *cache.Cache, ref string) (item.Item, error) {
	it, err := Find(c, ref)
	if err != nil {
		return item.Item{}, err
	}
	if it.Kind == item.KindList {
		return it, s.DeleteList(ctx, it.ID)
	}
	return it, c.Delete(ctx, it.ID)
}
