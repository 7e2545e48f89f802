package ordered

import (
	"fmt"

	"tableflip.dev/ordo/pkg/item"
)

// ErrOutOfRange is returned when a drag references an index outside the
// sequence.
var ErrOutOfRange = fmt.Errorf("%w: index out of range", item.ErrValidation)

// Drag describes a drag gesture. Dropped is false when the item was released
// outside a valid target, which cancels the gesture.
type Drag struct {
	Source      int
	Destination int
	Dropped     bool
}

// Drop builds a completed drag from source to destination.
func Drop(source, destination int) Drag {
	return Drag{Source: source, Destination: destination, Dropped: true}
}

// Cancel builds a drag that was released outside any target.
func Cancel(source int) Drag {
	return Drag{Source: source}
}

func (d Drag) String() string {
	if !d.Dropped {
		return fmt.Sprintf("%d->(cancelled)", d.Source)
	}
	return fmt.Sprintf("%d->%d", d.Source, d.Destination)
}

// Reorder moves the item at drag.Source to drag.Destination and reassigns
// every position to its new 0-based index. It reports changed == false (and
// returns the input unchanged) for cancelled drags and for drops onto the
// source index; callers must not issue a remote write in that case.
func Reorder(items []item.Item, drag Drag) ([]item.Item, bool, error) {
	if !drag.Dropped {
		return items, false, nil
	}
	n := len(items)
	if drag.Source < 0 || drag.Source >= n {
		return items, false, fmt.Errorf("%w: source %d of %d", ErrOutOfRange, drag.Source, n)
	}
	if drag.Destination < 0 || drag.Destination >= n {
		return items, false, fmt.Errorf("%w: destination %d of %d", ErrOutOfRange, drag.Destination, n)
	}
	if drag.Source == drag.Destination {
		return items, false, nil
	}

	moved := items[drag.Source]
	rest := make([]item.Item, 0, n)
	rest = append(rest, items[:drag.Source]...)
	rest = append(rest, items[drag.Source+1:]...)

	next := make([]item.Item, 0, n)
	next = append(next, rest[:drag.Destination]...)
	next = append(next, moved)
	next = append(next, rest[drag.Destination:]...)

	for i := range next {
		next[i].Position = i
	}
	return next, true, nil
}

// Placements returns the id/position pairs for a batch reposition.
func Placements(items []item.Item) []item.Placement {
	out := make([]item.Placement, len(items))
	for i, it := range items {
		out[i] = item.Placement{ID: it.ID, Position: it.Position}
	}
	return out
}

// Contiguous reports whether positions are exactly 0..n-1 in order.
func Contiguous(items []item.Item) bool {
	for i, it := range items {
		if it.Position != i {
			return false
		}
	}
	return true
}
