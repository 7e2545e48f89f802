package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/ordo/pkg/item"
	"tableflip.dev/ordo/pkg/logging"
	"tableflip.dev/ordo/pkg/ordered"
)

const (
	keySep   = "."
	noParent = "_"
)

// Diskv stores one JSON file per item under base/<owner>/<kind>/<parent>/<id>.
type Diskv struct {
	d        *diskv.Diskv
	basePath string
	lock     *storeLock
	logger   *log.Logger
}

var _ Watcher = (*Diskv)(nil)

// NewDiskv opens (creating if needed) a diskv store rooted at basePath.
// Unreadable item files are skipped and reported to logger; nil logs warnings
// to stderr.
func NewDiskv(basePath string, logger *log.Logger) (*Diskv, error) {
	basePath = filepath.Clean(strings.TrimSpace(basePath))
	if basePath == "" || basePath == "." {
		return nil, errors.New("store: base path required")
	}
	if logger == nil {
		logger = logging.New(nil, "warn")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &Diskv{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			TempDir:           basePath + ".tmp",
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			// No read cache: other processes write the same tree.
			CacheSizeMax: 0,
		}),
		basePath: basePath,
		lock:     newStoreLock(basePath + ".lock"),
		logger:   logger,
	}, nil
}

// BasePath returns the store root.
func (s *Diskv) BasePath() string { return s.basePath }

func (s *Diskv) FetchOrdered(ctx context.Context, scope item.Scope) ([]item.Item, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	all := make([]item.Item, 0)
	for key := range s.d.KeysPrefix(scopePrefix(scope), ctx.Done()) {
		it, err := s.read(key)
		if err != nil {
			s.logger.Warn("skipping unreadable item", "key", key, "err", err)
			continue
		}
		if scope.Contains(it) {
			all = append(all, it)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ordered.Sort(all)
	return all, nil
}

func (s *Diskv) Insert(ctx context.Context, scope item.Scope, payload item.Payload, position int) (item.Item, error) {
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
	err := withLock(ctx, s.lock, func() error {
		if scope.ParentID != "" {
			parent, _, err := s.find(ctx, scope.OwnerID, scope.ParentID)
			if err != nil {
				return err
			}
			if parent.Kind != item.KindList {
				return notFound(scope.ParentID)
			}
		}
		return s.write(it)
	})
	if err != nil {
		return item.Item{}, err
	}
	return it, nil
}

func (s *Diskv) UpdateFields(ctx context.Context, id, ownerID string, fields item.Fields) (item.Item, error) {
	var updated item.Item
	err := withLock(ctx, s.lock, func() error {
		it, _, err := s.find(ctx, ownerID, id)
		if err != nil {
			return err
		}
		it.Payload = fields.Apply(it.Payload)
		updated = it
		return s.write(it)
	})
	return updated, err
}

func (s *Diskv) BatchReposition(ctx context.Context, ownerID string, placements []item.Placement) error {
	if err := checkPlacements(ownerID, placements); err != nil {
		return err
	}
	return withLock(ctx, s.lock, func() error {
		index, err := s.index(ctx, ownerID)
		if err != nil {
			return err
		}
		next := make([]item.Item, 0, len(placements))
		for _, p := range placements {
			it, ok := index[p.ID]
			if !ok {
				return notFound(p.ID)
			}
			it.Position = p.Position
			next = append(next, it)
		}
		for _, it := range next {
			if err := s.write(it); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Diskv) Delete(ctx context.Context, id, ownerID string) error {
	return withLock(ctx, s.lock, func() error {
		it, key, err := s.find(ctx, ownerID, id)
		if errors.Is(err, item.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var children []string
		if it.Kind == item.KindList {
			for _, k := range []item.Kind{item.KindNote, item.KindTask} {
				child := item.Scope{OwnerID: ownerID, ParentID: id, Kind: k}
				for ck := range s.d.KeysPrefix(scopePrefix(child), ctx.Done()) {
					children = append(children, ck)
				}
			}
		}
		for _, ck := range children {
			if err := s.d.Erase(ck); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
		return s.d.Erase(key)
	})
}

func (s *Diskv) Close() error { return nil }

func (s *Diskv) read(key string) (item.Item, error) {
	val, err := s.d.Read(key)
	if err != nil {
		return item.Item{}, err
	}
	it := item.Item{}
	if err := json.Unmarshal(val, &it); err != nil {
		return item.Item{}, err
	}
	pk := keyToPathTransform(key)
	it.ID = pk.FileName
	return it, nil
}

func (s *Diskv) write(it item.Item) error {
	data, err := json.Marshal(it)
	if err != nil {
		return err
	}
	return s.d.Write(toKey(it), data)
}

// find locates id among the items of owner.
func (s *Diskv) find(ctx context.Context, ownerID, id string) (item.Item, string, error) {
	if ownerID == "" || id == "" {
		return item.Item{}, "", notFound(id)
	}
	suffix := keySep + id
	cancel := make(chan struct{})
	defer close(cancel)
	for key := range s.d.KeysPrefix(encodeSegment(ownerID)+keySep, cancel) {
		if !strings.HasSuffix(key, suffix) {
			continue
		}
		it, err := s.read(key)
		if err != nil {
			return item.Item{}, "", err
		}
		if it.OwnerID == ownerID {
			return it, key, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return item.Item{}, "", err
	}
	return item.Item{}, "", notFound(id)
}

func (s *Diskv) index(ctx context.Context, ownerID string) (map[string]item.Item, error) {
	all := make(map[string]item.Item)
	for key := range s.d.KeysPrefix(encodeSegment(ownerID)+keySep, ctx.Done()) {
		it, err := s.read(key)
		if err != nil {
			return nil, err
		}
		if it.OwnerID == ownerID {
			all[it.ID] = it
		}
	}
	return all, ctx.Err()
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, keySep)
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return strings.Join(pathKey.Path, keySep) + keySep + pathKey.FileName
}

// toKey makes `owner.kind.parent.id`.
func toKey(it item.Item) string {
	return scopePrefix(it.Scope()) + it.ID
}

func scopePrefix(scope item.Scope) string {
	parent := noParent
	if scope.ParentID != "" {
		parent = encodeSegment(scope.ParentID)
	}
	return strings.Join([]string{encodeSegment(scope.OwnerID), string(scope.Kind), parent}, keySep) + keySep
}

// scopeForPath maps base/<owner>/<kind>/<parent>[/<id>] back to a scope.
func scopeForPath(base, path string) (item.Scope, bool) {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return item.Scope{}, false
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	if len(parts) < 3 {
		return item.Scope{}, false
	}
	owner, ok := decodeSegment(parts[0])
	if !ok {
		return item.Scope{}, false
	}
	kind, err := item.ParseKind(parts[1])
	if err != nil {
		return item.Scope{}, false
	}
	scope := item.Scope{OwnerID: owner, Kind: kind}
	if parts[2] != noParent {
		parent, ok := decodeSegment(parts[2])
		if !ok {
			return item.Scope{}, false
		}
		scope.ParentID = parent
	}
	return scope, scope.Validate() == nil
}

func encodeSegment(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func decodeSegment(s string) (string, bool) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return "", false
	}
	return string(b), true
}
