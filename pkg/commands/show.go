package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/ordo/pkg/commands/options"
	"tableflip.dev/ordo/pkg/runner/show"
)

func addShow(topLevel *cobra.Command) {
	ids := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"overview"},
		Short:   "Print every list with its notes and tasks.",
		Example: `
ordo show
ordo show --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, e *env) error {
				s := show.Show{Output: printer(cmd, ids), Service: e.svc}
				return s.Do(ctx)
			})
		},
	}

	options.AddShowIDArgs(cmd, ids)
	topLevel.AddCommand(cmd)
}
