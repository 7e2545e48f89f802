package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/ordo/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
ordo ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, e *env) error {
				i := ui.UI{Service: e.svc, Logger: e.logger}
				return i.Do(ctx)
			})
		},
	}

	topLevel.AddCommand(cmd)
}
