// Package add provides the runner logic for creating items.
package add

import (
	"context"
	"errors"

	"tableflip.dev/ordo/pkg/app"
	"tableflip.dev/ordo/pkg/runner/show"
)

// Add appends a new item to the end of its scope.
type Add struct {
	show.Output
	Service *app.Service
	Target  app.Target
	Text    string
}

// Do creates the item and prints the scope.
func (a *Add) Do(ctx context.Context) error {
	if a.Service == nil {
		return errors.New("can not add, no service")
	}
	c, parent, err := a.Service.Resolve(ctx, a.Target)
	if err != nil {
		return err
	}
	if _, err := c.Insert(ctx, a.Text); err != nil {
		return err
	}
	return a.Scope(c, parent)
}
