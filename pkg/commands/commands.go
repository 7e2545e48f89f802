package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/ordo/pkg/commands/options"
	"tableflip.dev/ordo/pkg/item"
)

var (
	output = &options.OutputOptions{}
	global = &options.GlobalOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "ordo",
		Short: options.Wrap80("Ordered lists, notes and tasks on the command line."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	options.AddGlobalArgs(cmd, global)
	options.AddOutputArg(cmd, output)
	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addShow(topLevel)
	addCollection(topLevel, item.KindList)
	addCollection(topLevel, item.KindNote)
	addCollection(topLevel, item.KindTask)
	addUI(topLevel)
	addInfo(topLevel)
	addKey(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
