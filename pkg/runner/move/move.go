// Package move provides the runner logic for reordering items.
package move

import (
	"context"
	"errors"

	"tableflip.dev/ordo/pkg/app"
	"tableflip.dev/ordo/pkg/runner/show"
)

// Move drags an item to a 1-based position within its scope.
type Move struct {
	show.Output
	Service *app.Service
	Target  app.Target
	Ref     string
	To      int
}

// Do reorders the scope and prints it.
func (m *Move) Do(ctx context.Context) error {
	if m.Service == nil {
		return errors.New("can not move, no service")
	}
	c, parent, err := m.Service.Resolve(ctx, m.Target)
	if err != nil {
		return err
	}
	if _, err := app.Move(ctx, c, m.Ref, m.To); err != nil {
		return err
	}
	return m.Scope(c, parent)
}
