package store

import (
	"context"
	"sync"

	"tableflip.dev/ordo/pkg/item"
	"tableflip.dev/ordo/pkg/ordered"
)

// Memory is an in-process Remote. It backs the "memory" backend and tests.
type Memory struct {
	mu    sync.Mutex
	items map[string]item.Item
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]item.Item)}
}

func (m *Memory) FetchOrdered(ctx context.Context, scope item.Scope) ([]item.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]item.Item, 0)
	for _, it := range m.items {
		if scope.Contains(it) {
			out = append(out, it)
		}
	}
	ordered.Sort(out)
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, scope item.Scope, payload item.Payload, position int) (item.Item, error) {
	if err := checkInsert(scope, position); err != nil {
		return item.Item{}, err
	}
	if err := ctx.Err(); err != nil {
		return item.Item{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if scope.ParentID != "" {
		parent, ok := m.items[scope.ParentID]
		if !ok || parent.OwnerID != scope.OwnerID || parent.Kind != item.KindList {
			return item.Item{}, notFound(scope.ParentID)
		}
	}
	it := item.Item{
		ID:       newID(),
		OwnerID:  scope.OwnerID,
		ParentID: scope.ParentID,
		Kind:     scope.Kind,
		Position: position,
		Payload:  payload,
		Created:  item.Now(),
	}
	m.items[it.ID] = it
	return it, nil
}

func (m *Memory) UpdateFields(ctx context.Context, id, ownerID string, fields item.Fields) (item.Item, error) {
	if err := ctx.Err(); err != nil {
		return item.Item{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.OwnerID != ownerID {
		return item.Item{}, notFound(id)
	}
	it.Payload = fields.Apply(it.Payload)
	m.items[id] = it
	return it, nil
}

func (m *Memory) BatchReposition(ctx context.Context, ownerID string, placements []item.Placement) error {
	if err := checkPlacements(ownerID, placements); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range placements {
		it, ok := m.items[p.ID]
		if !ok || it.OwnerID != ownerID {
			return notFound(p.ID)
		}
	}
	for _, p := range placements {
		it := m.items[p.ID]
		it.Position = p.Position
		m.items[p.ID] = it
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, id, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.OwnerID != ownerID {
		return nil
	}
	delete(m.items, id)
	if it.Kind == item.KindList {
		for childID, child := range m.items {
			if child.ParentID == id {
				delete(m.items, childID)
			}
		}
	}
	return nil
}

// Len returns the number of stored items across every scope.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory) Close() error { return nil }
