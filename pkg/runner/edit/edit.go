// Package edit provides the runner logic for changing the text of an item.
package edit

import (
	"context"
	"errors"

	"tableflip.dev/ordo/pkg/app"
	"tableflip.dev/ordo/pkg/runner/show"
)

// Edit replaces the title of a list or task, or the content of a note.
type Edit struct {
	show.Output
	Service *app.Service
	Target  app.Target
	Ref     string
	Text    string
}

// Do updates the item and prints the scope.
func (e *Edit) Do(ctx context.Context) error {
	if e.Service == nil {
		return errors.New("can not edit, no service")
	}
	c, parent, err := e.Service.Resolve(ctx, e.Target)
	if err != nil {
		return err
	}
	it, err := app.Find(c, e.Ref)
	if err != nil {
		return err
	}
	if _, err := c.UpdateContent(ctx, it.ID, e.Text); err != nil {
		return err
	}
	return e.Scope(c, parent)
}
