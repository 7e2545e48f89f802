// Package remove provides the runner logic for deleting items.
package remove

import (
	"context"
	"errors"

	"tableflip.dev/ordo/pkg/app"
	"tableflip.dev/ordo/pkg/runner/show"
)

// Remove deletes an item. Removing a list removes its notes and tasks.
type Remove struct {
	show.Output
	Service *app.Service
	Target  app.Target
	Ref     string
}

// Do deletes the item and prints what is left of the scope.
func (r *Remove) Do(ctx context.Context) error {
	if r.Service == nil {
		return errors.New("can not remove, no service")
	}
	c, parent, err := r.Service.Resolve(ctx, r.Target)
	if err != nil {
		return err
	}
	if _, err := r.Service.Remove(ctx, c, r.Ref); err != nil {
		return err
	}
	return r.Scope(c, parent)
}
