package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/ordo/pkg/app"
)

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, svc *app.Service) error {
	program := tea.NewProgram(New(ctx, svc), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}
