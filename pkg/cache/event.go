package cache

import "tableflip.dev/ordo/pkg/item"

// Action names the kind of change an Event reports.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionReorder  Action = "reorder"
	ActionReload   Action = "reload"
	ActionRollback Action = "rollback"
	ActionDrop     Action = "drop"
)

// Event is emitted after the local state of a scope changes.
type Event struct {
	Scope  item.Scope
	Action Action
	// Item is the created, updated or deleted item.
	Item *item.Item
	// Order holds the item ids after reorder, reload and rollback.
	Order []string
	// Err is the remote failure that caused a rollback.
	Err error
}

func orderOf(items []item.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
