package ordered

import (
	"fmt"
	"strconv"
	"strings"

	"tableflip.dev/ordo/pkg/item"
)

const minPrefix = 4

// Resolve finds an item by full id, unique id prefix, or 1-based index as
// printed by the CLI.
func Resolve(items []item.Item, ref string) (item.Item, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return item.Item{}, fmt.Errorf("%w: empty reference", item.ErrValidation)
	}
	if idx := indexOf(items, ref); idx >= 0 {
		return items[idx], nil
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		if n >= 1 && n <= len(items) {
			return items[n-1], nil
		}
		// Digits past the end may still be an id prefix.
		if strings.HasPrefix(ref, "#") || len(ref) < minPrefix {
			return item.Item{}, fmt.Errorf("%w: #%d (have %d)", item.ErrNotFound, n, len(items))
		}
		if it, err := byPrefix(items, ref); err == nil {
			return it, nil
		}
		return item.Item{}, fmt.Errorf("%w: #%d (have %d)", item.ErrNotFound, n, len(items))
	}
	if len(ref) < minPrefix {
		return item.Item{}, fmt.Errorf("%w: id prefix %q is too short", item.ErrValidation, ref)
	}
	return byPrefix(items, ref)
}

func byPrefix(items []item.Item, ref string) (item.Item, error) {
	var match *item.Item
	for i := range items {
		if strings.HasPrefix(items[i].ID, ref) {
			if match != nil {
				return item.Item{}, fmt.Errorf("%w: id prefix %q is ambiguous", item.ErrValidation, ref)
			}
			match = &items[i]
		}
	}
	if match == nil {
		return item.Item{}, fmt.Errorf("%w: %q", item.ErrNotFound, ref)
	}
	return *match, nil
}
