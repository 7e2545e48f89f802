package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/ordo/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the configured store and what it holds.",
		Example: `
ordo info
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, e *env) error {
				s := info.Info{
					Config:  e.cfg,
					Service: e.svc,
					JSON:    output.JSON,
					Out:     cmd.OutOrStdout(),
				}
				return s.Do(ctx)
			})
		},
	}

	topLevel.AddCommand(cmd)
}
