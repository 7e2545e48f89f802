package cache

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/ordo/pkg/item"
	"tableflip.dev/ordo/pkg/ordered"
)

// Refresh replaces the local state with the remote ordering of the scope.
func (c *Cache) Refresh(ctx context.Context) error {
	const op = "refresh"
	release, err := c.acquire(ctx, op)
	if err != nil {
		return err
	}
	defer release()
	_, epoch, err := c.begin(op)
	if err != nil {
		return err
	}

	items, err := c.remote.FetchOrdered(ctx, c.scope)
	if err != nil {
		c.logger.Warn("refresh failed", "err", err)
		return fail(op, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(epoch) {
		return signedOut(op)
	}
	c.state.Load(items)
	c.stale = false
	c.logger.Debug("refreshed", "count", len(items))
	c.emit(Event{Scope: c.scope, Action: ActionReload, Order: orderOf(items)})
	return nil
}

// Insert creates an item from text at the end of the scope and returns the
// stored item. Empty text is rejected without contacting the store.
func (c *Cache) Insert(ctx context.Context, text string) (item.Item, error) {
	const op = "insert"
	text, err := c.desc.Normalize(text)
	if err != nil {
		return item.Item{}, fail(op, err)
	}
	release, err := c.acquire(ctx, op)
	if err != nil {
		return item.Item{}, err
	}
	defer release()
	_, epoch, err := c.begin(op)
	if err != nil {
		return item.Item{}, err
	}

	position := c.Len()
	created, err := c.remote.Insert(ctx, c.scope, c.desc.NewPayload(text), position)
	if err != nil {
		c.logger.Warn("insert failed", "err", err)
		return item.Item{}, fail(op, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(epoch) {
		return item.Item{}, signedOut(op)
	}
	c.state.Load(append(c.state.Snapshot(), created))
	c.logger.Debug("inserted", "id", created.ID, "position", position)
	c.emit(Event{Scope: c.scope, Action: ActionCreate, Item: &created})
	return created, nil
}

// UpdateContent replaces the text of item id. The item keeps its position.
func (c *Cache) UpdateContent(ctx context.Context, id, text string) (item.Item, error) {
	return c.update(ctx, "update", id, func() (item.Fields, error) {
		text, err := c.desc.Normalize(text)
		if err != nil {
			return item.Fields{}, err
		}
		return c.desc.TextFields(text), nil
	})
}

// SetCompleted marks a task done or not done.
func (c *Cache) SetCompleted(ctx context.Context, id string, done bool) (item.Item, error) {
	if !c.desc.Completable {
		return item.Item{}, fail("complete", fmt.Errorf("%w: %s items cannot be completed", item.ErrValidation, c.desc.Kind))
	}
	return c.update(ctx, "complete", id, func() (item.Fields, error) {
		return item.Fields{Completed: &done}, nil
	})
}

func (c *Cache) update(ctx context.Context, op, id string, fields func() (item.Fields, error)) (item.Item, error) {
	release, err := c.acquire(ctx, op)
	if err != nil {
		return item.Item{}, err
	}
	defer release()
	owner, epoch, err := c.begin(op)
	if err != nil {
		return item.Item{}, err
	}

	c.mu.RLock()
	_, ok := c.state.Get(id)
	c.mu.RUnlock()
	if !ok {
		return item.Item{}, fail(op, notFound(id))
	}
	f, err := fields()
	if err != nil {
		return item.Item{}, fail(op, err)
	}

	updated, err := c.remote.UpdateFields(ctx, id, owner, f)
	if err != nil {
		c.logger.Warn(op+" failed", "id", id, "err", err)
		return item.Item{}, fail(op, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(epoch) {
		return item.Item{}, signedOut(op)
	}
	items := c.state.Snapshot()
	idx := c.state.Index(id)
	if idx < 0 {
		return updated, nil
	}
	items[idx].Payload = updated.Payload
	c.state.Load(items)
	result := items[idx]
	c.logger.Debug(op, "id", id)
	c.emit(Event{Scope: c.scope, Action: ActionUpdate, Item: &result})
	return result, nil
}

// Reorder applies drag optimistically, then persists every position in one
// batch. If the batch fails the scope is reloaded from the store and the
// remote error is returned. A second reorder waits for the first to settle.
func (c *Cache) Reorder(ctx context.Context, drag ordered.Drag) error {
	return c.reorder(ctx, func([]item.Item) (ordered.Drag, error) {
		return drag, nil
	})
}

// MoveTo drags the item id to the 0-based destination. The source index is
// read from the state the move is applied to, after earlier operations on
// the scope have settled.
func (c *Cache) MoveTo(ctx context.Context, id string, destination int) error {
	return c.reorder(ctx, func(items []item.Item) (ordered.Drag, error) {
		for i, it := range items {
			if it.ID == id {
				return ordered.Drop(i, destination), nil
			}
		}
		return ordered.Drag{}, notFound(id)
	})
}

func (c *Cache) reorder(ctx context.Context, plan func([]item.Item) (ordered.Drag, error)) error {
	const op = "reorder"
	release, err := c.acquire(ctx, op)
	if err != nil {
		return err
	}
	defer release()
	owner, epoch, err := c.begin(op)
	if err != nil {
		return err
	}

	c.mu.Lock()
	items := c.state.Snapshot()
	drag, err := plan(items)
	if err != nil {
		c.mu.Unlock()
		return fail(op, err)
	}
	next, changed, err := ordered.Reorder(items, drag)
	if err != nil || !changed {
		c.mu.Unlock()
		if err != nil {
			return fail(op, err)
		}
		return nil
	}
	if !c.currentLocked(epoch) {
		c.mu.Unlock()
		return signedOut(op)
	}
	c.state.Load(next)
	c.emit(Event{Scope: c.scope, Action: ActionReorder, Order: orderOf(next)})
	c.mu.Unlock()

	err = c.remote.BatchReposition(ctx, owner, ordered.Placements(next))
	if err == nil {
		c.mu.RLock()
		current := c.currentLocked(epoch)
		c.mu.RUnlock()
		if !current {
			return signedOut(op)
		}
		c.logger.Debug("reordered", "drag", drag.String())
		return nil
	}
	c.logger.Warn("reorder failed, reloading", "drag", drag.String(), "err", err)
	return c.rollback(ctx, epoch, fail(op, err))
}

// rollback discards the optimistic sequence by refetching the scope. cause is
// returned, joined with the refetch error when the reload fails too.
func (c *Cache) rollback(ctx context.Context, epoch uint64, cause error) error {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()
	items, ferr := c.remote.FetchOrdered(rctx, c.scope)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(epoch) {
		return signedOut("reorder")
	}
	if ferr != nil {
		c.state.Load(nil)
		c.stale = true
		c.logger.Warn("reload after failed reorder failed, state is stale", "err", ferr)
		c.emit(Event{Scope: c.scope, Action: ActionRollback, Err: cause})
		return errors.Join(cause, fail("refetch", ferr))
	}
	c.state.Load(items)
	c.stale = false
	c.emit(Event{Scope: c.scope, Action: ActionRollback, Order: orderOf(items), Err: cause})
	return cause
}

// Delete removes item id from the store and from the local sequence. The
// positions of the remaining items are left as they are.
func (c *Cache) Delete(ctx context.Context, id string) error {
	const op = "delete"
	release, err := c.acquire(ctx, op)
	if err != nil {
		return err
	}
	defer release()
	owner, epoch, err := c.begin(op)
	if err != nil {
		return err
	}

	c.mu.RLock()
	removed, ok := c.state.Get(id)
	c.mu.RUnlock()
	if !ok {
		return fail(op, notFound(id))
	}

	if err := c.remote.Delete(ctx, id, owner); err != nil {
		c.logger.Warn("delete failed", "id", id, "err", err)
		return fail(op, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(epoch) {
		return signedOut(op)
	}
	items := c.state.Snapshot()
	kept := items[:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	c.state.Load(kept)
	c.logger.Debug("deleted", "id", id)
	c.emit(Event{Scope: c.scope, Action: ActionDelete, Item: &removed})
	return nil
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", item.ErrNotFound, id)
}
