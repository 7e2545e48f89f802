package options

import (
	"github.com/spf13/cobra"
)

// GlobalOptions are accepted by every command.
type GlobalOptions struct {
	As      string
	Backend string
}

func AddGlobalArgs(cmd *cobra.Command, o *GlobalOptions) {
	cmd.PersistentFlags().StringVar(&o.As, "as", "",
		"Act as this owner instead of the configured one.")
	cmd.PersistentFlags().StringVar(&o.Backend, "backend", "",
		"Override the configured store: memory, diskv, sqlite or redis.")
}
