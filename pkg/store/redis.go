package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"tableflip.dev/ordo/pkg/item"
	"tableflip.dev/ordo/pkg/ordered"
)

// Redis stores each item as JSON under item:<id> and keeps one sorted set per
// scope, scored by position.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// DialRedis connects to addr and checks the connection.
func DialRedis(ctx context.Context, addr string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store: redis %s: %w", addr, err)
	}
	return NewRedis(client), nil
}

// reader is the read surface shared by *redis.Client and *redis.Tx.
type reader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

func itemKey(id string) string {
	return fmt.Sprintf("item:%s", id)
}

func scopeKey(scope item.Scope) string {
	parent := noParent
	if scope.ParentID != "" {
		parent = scope.ParentID
	}
	return fmt.Sprintf("scope:%s:%s:%s", encodeSegment(scope.OwnerID), scope.Kind, parent)
}

func (s *Redis) FetchOrdered(ctx context.Context, scope item.Scope) ([]item.Item, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	ids, err := s.client.ZRange(ctx, scopeKey(scope), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	items, err := s.load(ctx, s.client, ids)
	if err != nil {
		return nil, err
	}
	out := make([]item.Item, 0, len(items))
	for _, it := range items {
		if it != nil && scope.Contains(*it) {
			out = append(out, *it)
		}
	}
	ordered.Sort(out)
	return out, nil
}

func (s *Redis) Insert(ctx context.Context, scope item.Scope, payload item.Payload, position int) (item.Item, error) {
	if err := checkInsert(scope, position); err != nil {
		return item.Item{}, err
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
	data, err := json.Marshal(it)
	if err != nil {
		return item.Item{}, err
	}
	write := func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, itemKey(it.ID), data, 0)
		pipe.ZAdd(ctx, scopeKey(scope), &redis.Z{Score: float64(position), Member: it.ID})
		return nil
	}
	if scope.ParentID == "" {
		if _, err := s.client.TxPipelined(ctx, write); err != nil {
			return item.Item{}, err
		}
		return it, nil
	}
	// The parent is watched so a concurrent list delete aborts the write.
	err = s.watch(ctx, func(tx *redis.Tx) error {
		parent, err := s.get(ctx, tx, scope.ParentID)
		if err != nil {
			return err
		}
		if parent == nil || parent.OwnerID != scope.OwnerID || parent.Kind != item.KindList {
			return notFound(scope.ParentID)
		}
		_, err = tx.TxPipelined(ctx, write)
		return err
	}, itemKey(scope.ParentID))
	if err != nil {
		return item.Item{}, err
	}
	return it, nil
}

func (s *Redis) UpdateFields(ctx context.Context, id, ownerID string, fields item.Fields) (item.Item, error) {
	var updated item.Item
	err := s.watch(ctx, func(tx *redis.Tx) error {
		it, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if it == nil || it.OwnerID != ownerID {
			return notFound(id)
		}
		it.Payload = fields.Apply(it.Payload)
		data, err := json.Marshal(it)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, itemKey(id), data, 0)
			return nil
		})
		updated = *it
		return err
	}, itemKey(id))
	return updated, err
}

func (s *Redis) BatchReposition(ctx context.Context, ownerID string, placements []item.Placement) error {
	if err := checkPlacements(ownerID, placements); err != nil {
		return err
	}
	if len(placements) == 0 {
		return nil
	}
	keys := make([]string, len(placements))
	ids := make([]string, len(placements))
	for i, p := range placements {
		keys[i] = itemKey(p.ID)
		ids[i] = p.ID
	}
	return s.watch(ctx, func(tx *redis.Tx) error {
		items, err := s.load(ctx, tx, ids)
		if err != nil {
			return err
		}
		for i, it := range items {
			if it == nil || it.OwnerID != ownerID {
				return notFound(placements[i].ID)
			}
			it.Position = placements[i].Position
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, it := range items {
				data, err := json.Marshal(it)
				if err != nil {
					return err
				}
				pipe.Set(ctx, itemKey(it.ID), data, 0)
				pipe.ZAdd(ctx, scopeKey(it.Scope()), &redis.Z{Score: float64(it.Position), Member: it.ID})
			}
			return nil
		})
		return err
	}, keys...)
}

func (s *Redis) Delete(ctx context.Context, id, ownerID string) error {
	var childScopes []string
	for _, k := range []item.Kind{item.KindNote, item.KindTask} {
		childScopes = append(childScopes, scopeKey(item.Scope{OwnerID: ownerID, ParentID: id, Kind: k}))
	}
	// Child scopes are watched so an insert racing the cascade aborts it.
	watched := append([]string{itemKey(id)}, childScopes...)
	return s.watch(ctx, func(tx *redis.Tx) error {
		it, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if it == nil || it.OwnerID != ownerID {
			return nil
		}
		var children []string
		if it.Kind == item.KindList {
			for _, key := range childScopes {
				ids, err := tx.ZRange(ctx, key, 0, -1).Result()
				if err != nil {
					return err
				}
				children = append(children, ids...)
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, child := range children {
				pipe.Del(ctx, itemKey(child))
			}
			if it.Kind == item.KindList {
				for _, key := range childScopes {
					pipe.Del(ctx, key)
				}
			}
			pipe.Del(ctx, itemKey(id))
			pipe.ZRem(ctx, scopeKey(it.Scope()), id)
			return nil
		})
		return err
	}, watched...)
}

// txRetries bounds how often an optimistic transaction is replayed after a
// watched key changed.
const txRetries = 5

// watch runs fn in an optimistic transaction over keys, replaying it while
// another client wins the race.
func (s *Redis) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < txRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("store: redis: %w", redis.TxFailedErr)
}

func (s *Redis) Close() error {
	return s.client.Close()
}

func (s *Redis) get(ctx context.Context, c reader, id string) (*item.Item, error) {
	data, err := c.Get(ctx, itemKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var it item.Item
	if err := json.Unmarshal([]byte(data), &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// load returns one entry per id, nil where the item is missing.
func (s *Redis) load(ctx context.Context, c reader, ids []string) ([]*item.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = itemKey(id)
	}
	vals, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*item.Item, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var it item.Item
		if err := json.Unmarshal([]byte(raw), &it); err != nil {
			return nil, err
		}
		out[i] = &it
	}
	return out, nil
}
