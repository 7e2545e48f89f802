// Package item defines the ordered items (lists, notes and tasks) managed by
// ordo and the scopes they live in.
package item

import (
	"fmt"
	"strings"
)

// Item is one element of an ordered collection. Lists are top-level items;
// notes and tasks belong to a list through ParentID.
type Item struct {
	ID       string    `json:"id"`
	OwnerID  string    `json:"owner_id"`
	ParentID string    `json:"parent_id,omitempty"`
	Kind     Kind      `json:"kind"`
	Position int       `json:"position"`
	Payload  Payload   `json:"payload"`
	Created  Timestamp `json:"created_at"`
}

// Payload holds the kind-specific fields of an item.
type Payload struct {
	Title     string `json:"title,omitempty"`
	Content   string `json:"content,omitempty"`
	Completed bool   `json:"completed,omitempty"`
}

// Fields is a partial payload update. Nil fields are left untouched.
type Fields struct {
	Title     *string
	Content   *string
	Completed *bool
}

// Empty reports whether no field is set.
func (f Fields) Empty() bool {
	return f.Title == nil && f.Content == nil && f.Completed == nil
}

// Apply returns p with the set fields overwritten.
func (f Fields) Apply(p Payload) Payload {
	if f.Title != nil {
		p.Title = *f.Title
	}
	if f.Content != nil {
		p.Content = *f.Content
	}
	if f.Completed != nil {
		p.Completed = *f.Completed
	}
	return p
}

// Placement assigns a position to an item id in a batch reposition.
type Placement struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// Scope identifies one ordered collection: the lists of an owner, or the
// notes (or tasks) of one list.
type Scope struct {
	OwnerID  string
	ParentID string
	Kind     Kind
}

// ListsOf returns the scope holding every list of owner.
func ListsOf(owner string) Scope {
	return Scope{OwnerID: owner, Kind: KindList}
}

// NotesOf returns the scope holding the notes of a list.
func NotesOf(owner, listID string) Scope {
	return Scope{OwnerID: owner, ParentID: listID, Kind: KindNote}
}

// TasksOf returns the scope holding the tasks of a list.
func TasksOf(owner, listID string) Scope {
	return Scope{OwnerID: owner, ParentID: listID, Kind: KindTask}
}

// Validate checks that the scope is addressable.
func (s Scope) Validate() error {
	if strings.TrimSpace(s.OwnerID) == "" {
		return fmt.Errorf("%w: scope owner required", ErrValidation)
	}
	d, err := Describe(s.Kind)
	if err != nil {
		return err
	}
	switch {
	case d.Nested && s.ParentID == "":
		return fmt.Errorf("%w: %s scope requires a parent list", ErrValidation, s.Kind)
	case !d.Nested && s.ParentID != "":
		return fmt.Errorf("%w: %s scope cannot have a parent", ErrValidation, s.Kind)
	}
	return nil
}

// Contains reports whether it belongs to the scope.
func (s Scope) Contains(it Item) bool {
	return it.OwnerID == s.OwnerID && it.ParentID == s.ParentID && it.Kind == s.Kind
}

func (s Scope) String() string {
	if s.ParentID == "" {
		return fmt.Sprintf("%s/%s", s.OwnerID, s.Kind)
	}
	return fmt.Sprintf("%s/%s/%s", s.OwnerID, s.ParentID, s.Kind)
}

// Text returns the user-visible text of the item (title or content).
func (it Item) Text() string {
	d, err := Describe(it.Kind)
	if err != nil {
		return it.Payload.Title
	}
	return d.Text(it.Payload)
}

// ShortID returns the first eight characters of the id.
func (it Item) ShortID() string {
	if len(it.ID) <= 8 {
		return it.ID
	}
	return it.ID[:8]
}

// Scope returns the scope the item belongs to.
func (it Item) Scope() Scope {
	return Scope{OwnerID: it.OwnerID, ParentID: it.ParentID, Kind: it.Kind}
}
