// Package ordered holds the in-memory ordered sequence of one scope and the
// pure reorder engine that drag gestures go through.
package ordered

import (
	"sort"

	"tableflip.dev/ordo/pkg/item"
)

// State is the ordered sequence of items for exactly one scope. It is not
// safe for concurrent use; the owning cache guards it.
type State struct {
	items []item.Item
}

// Load replaces the held sequence wholesale, ordered by ascending position.
// Ties keep creation order, then id order.
func (s *State) Load(items []item.Item) {
	s.items = cloneItems(items)
	Sort(s.items)
}

// Snapshot returns a copy of the current ordered sequence.
func (s *State) Snapshot() []item.Item {
	return cloneItems(s.items)
}

// Len returns the number of held items.
func (s *State) Len() int {
	return len(s.items)
}

// Index returns the index of the item with id, or -1.
func (s *State) Index(id string) int {
	return indexOf(s.items, id)
}

// Get returns the item with id.
func (s *State) Get(id string) (item.Item, bool) {
	idx := indexOf(s.items, id)
	if idx < 0 {
		return item.Item{}, false
	}
	return s.items[idx], true
}

func indexOf(items []item.Item, id string) int {
	if id == "" {
		return -1
	}
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// Sort orders items in place by ascending position. Ties keep creation
// order, then id order.
func Sort(items []item.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		left, right := items[i], items[j]
		if left.Position != right.Position {
			return left.Position < right.Position
		}
		lt, rt := left.Created.Time, right.Created.Time
		switch {
		case lt.IsZero() || rt.IsZero() || lt.Equal(rt):
			return left.ID < right.ID
		default:
			return lt.Before(rt)
		}
	})
}

func cloneItems(items []item.Item) []item.Item {
	if len(items) == 0 {
		return nil
	}
	out := make([]item.Item, len(items))
	copy(out, items)
	return out
}
