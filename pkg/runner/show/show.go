// Package show prints scopes and overviews, and backs the output of every
// mutating runner.
package show

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/ordo/pkg/app"
	"tableflip.dev/ordo/pkg/cache"
	"tableflip.dev/ordo/pkg/item"
	"tableflip.dev/ordo/pkg/printers"
)

// Output controls how runners render items.
type Output struct {
	JSON   bool
	ShowID bool
	Out    io.Writer
}

func (o Output) writer() io.Writer {
	if o.Out == nil {
		return color.Output
	}
	return o.Out
}

// Scope prints the items of c, titled after parent for nested scopes.
func (o Output) Scope(c *cache.Cache, parent *item.Item) error {
	items := c.Snapshot()
	if o.JSON {
		return printers.JSON(o.writer(), items)
	}
	pp := printers.PrettyPrint{ShowID: o.ShowID, Out: o.writer()}
	kind := string(c.Scope().Kind)
	title := "Lists"
	if parent != nil {
		title = fmt.Sprintf("%s %ss", parent.Text(), kind)
	}
	pp.TitleWithCount(title, len(items), kind)
	pp.Items(items...)
	return nil
}

// Show prints one scope, or every list with its notes and tasks when Target
// is nil.
type Show struct {
	Output
	Service *app.Service
	Target  *app.Target
}

// Do renders the selected scope.
func (s *Show) Do(ctx context.Context) error {
	if s.Service == nil {
		return errors.New("can not show, no service")
	}
	if s.Target != nil {
		c, parent, err := s.Service.Resolve(ctx, *s.Target)
		if err != nil {
			return err
		}
		return s.Scope(c, parent)
	}

	ov, err := s.Service.Overview(ctx)
	if err != nil {
		return err
	}
	if s.JSON {
		return printers.JSON(s.writer(), ov)
	}
	pp := printers.PrettyPrint{ShowID: s.ShowID, Out: s.writer()}
	if len(ov.Lists) == 0 {
		pp.Title("Lists")
		pp.Items()
		return nil
	}
	for i, lo := range ov.Lists {
		pp.Title(fmt.Sprintf("%d. %s", i+1, lo.List.Text()))
		if len(lo.Notes) > 0 {
			pp.Items(lo.Notes...)
		}
		pp.Items(lo.Tasks...)
	}
	return nil
}
