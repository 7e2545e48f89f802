// Package complete provides the runner logic for marking tasks done.
package complete

import (
	"context"
	"errors"

	"tableflip.dev/ordo/pkg/app"
	"tableflip.dev/ordo/pkg/runner/show"
)

// Complete marks a task done, or open again when Done is false.
type Complete struct {
	show.Output
	Service *app.Service
	Target  app.Target
	Ref     string
	Done    bool
}

// Do executes the completion operation for the configured task.
func (n *Complete) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not complete, no service")
	}
	c, parent, err := n.Service.Resolve(ctx, n.Target)
	if err != nil {
		return err
	}
	it, err := app.Find(c, n.Ref)
	if err != nil {
		return err
	}
	if _, err := c.SetCompleted(ctx, it.ID, n.Done); err != nil {
		return err
	}
	return n.Scope(c, parent)
}
