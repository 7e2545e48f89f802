// Package ui starts the terminal user interface.
package ui

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"tableflip.dev/ordo/pkg/app"
	"tableflip.dev/ordo/pkg/tui"
)

// ErrNoTTY is returned when stdout is not a terminal.
var ErrNoTTY = errors.New("ui: requires a terminal")

type UI struct {
	Service *app.Service
	Logger  *log.Logger
}

func (d *UI) Do(ctx context.Context) error {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return ErrNoTTY
	}
	if d.Service == nil {
		return errors.New("can not start ui, no service")
	}
	if err := d.Service.Watch(ctx); err != nil && !errors.Is(err, app.ErrWatchUnsupported) {
		if d.Logger != nil {
			d.Logger.Warn("watch disabled", "err", err)
		}
	}
	return tui.Run(ctx, d.Service)
}
