package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"tableflip.dev/ordo/pkg/item"
)

const itemsTable = "items"

// createdLayout is fixed width so created_at sorts as text.
const createdLayout = "2006-01-02T15:04:05.000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	parent_id  TEXT REFERENCES items(id) ON DELETE CASCADE,
	kind       TEXT NOT NULL,
	position   INTEGER NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL DEFAULT '',
	completed  INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_scope ON items(owner_id, kind, parent_id, position);
`

var itemColumns = []string{
	"id", "owner_id", "parent_id", "kind", "position",
	"title", "content", "completed", "created_at",
}

// SQLite keeps items in one table; children cascade with their list.
type SQLite struct {
	db *sql.DB
	sq squirrel.StatementBuilderType
}

// NewSQLite opens (creating if needed) the database file at path. The special
// path ":memory:" opens a private in-memory database.
func NewSQLite(path string) (*SQLite, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: ensure database directory: %w", err)
			}
		}
		dsn = "file:" + path + "?_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// One connection keeps :memory: databases shared and PRAGMAs applied.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &SQLite{
		db: db,
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

func (s *SQLite) FetchOrdered(ctx context.Context, scope item.Scope) ([]item.Item, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	q := s.sq.Select(itemColumns...).From(itemsTable).
		Where(squirrel.Eq{"owner_id": scope.OwnerID, "kind": string(scope.Kind), "parent_id": nullable(scope.ParentID)}).
		OrderBy("position ASC", "created_at ASC", "id ASC")
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]item.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *SQLite) Insert(ctx context.Context, scope item.Scope, payload item.Payload, position int) (item.Item, error) {
	if err := checkInsert(scope, position); err != nil {
		return item.Item{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return item.Item{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if scope.ParentID != "" {
		query, args, err := s.sq.Select("COUNT(*)").From(itemsTable).
			Where(squirrel.Eq{"id": scope.ParentID, "owner_id": scope.OwnerID, "kind": string(item.KindList)}).
			ToSql()
		if err != nil {
			return item.Item{}, err
		}
		var n int
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
			return item.Item{}, err
		}
		if n == 0 {
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
	query, args, err := s.sq.Insert(itemsTable).Columns(itemColumns...).Values(
		it.ID, it.OwnerID, nullable(it.ParentID), string(it.Kind), it.Position,
		it.Payload.Title, it.Payload.Content, it.Payload.Completed, it.Created.UTC().Format(createdLayout),
	).ToSql()
	if err != nil {
		return item.Item{}, err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return item.Item{}, err
	}
	if err := tx.Commit(); err != nil {
		return item.Item{}, err
	}
	return it, nil
}

func (s *SQLite) UpdateFields(ctx context.Context, id, ownerID string, fields item.Fields) (item.Item, error) {
	if !fields.Empty() {
		update := s.sq.Update(itemsTable).Where(squirrel.Eq{"id": id, "owner_id": ownerID})
		if fields.Title != nil {
			update = update.Set("title", *fields.Title)
		}
		if fields.Content != nil {
			update = update.Set("content", *fields.Content)
		}
		if fields.Completed != nil {
			update = update.Set("completed", *fields.Completed)
		}
		query, args, err := update.ToSql()
		if err != nil {
			return item.Item{}, err
		}
		result, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return item.Item{}, err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return item.Item{}, err
		}
		if rows == 0 {
			return item.Item{}, notFound(id)
		}
	}
	return s.get(ctx, id, ownerID)
}

func (s *SQLite) BatchReposition(ctx context.Context, ownerID string, placements []item.Placement) error {
	if err := checkPlacements(ownerID, placements); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range placements {
		query, args, err := s.sq.Update(itemsTable).
			Set("position", p.Position).
			Where(squirrel.Eq{"id": p.ID, "owner_id": ownerID}).
			ToSql()
		if err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return notFound(p.ID)
		}
	}
	return tx.Commit()
}

func (s *SQLite) Delete(ctx context.Context, id, ownerID string) error {
	query, args, err := s.sq.Delete(itemsTable).Where(squirrel.Eq{"id": id, "owner_id": ownerID}).ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) get(ctx context.Context, id, ownerID string) (item.Item, error) {
	query, args, err := s.sq.Select(itemColumns...).From(itemsTable).
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return item.Item{}, err
	}
	it, err := scanItem(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return item.Item{}, notFound(id)
	}
	return it, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row scanner) (item.Item, error) {
	var (
		it      item.Item
		parent  sql.NullString
		kind    string
		created string
	)
	if err := row.Scan(&it.ID, &it.OwnerID, &parent, &kind, &it.Position,
		&it.Payload.Title, &it.Payload.Content, &it.Payload.Completed, &created); err != nil {
		return item.Item{}, err
	}
	it.ParentID = parent.String
	it.Kind = item.Kind(kind)
	t, err := item.ParseTime(created)
	if err != nil {
		return item.Item{}, fmt.Errorf("store: item %s: %w", it.ID, err)
	}
	it.Created = item.Timestamp{Time: t}
	return it, nil
}

// nullable maps an empty parent to SQL NULL so squirrel.Eq emits IS NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
