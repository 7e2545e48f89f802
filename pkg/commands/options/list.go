package options

import (
	"github.com/spf13/cobra"
)

// ListOptions selects the parent list of notes and tasks.
type ListOptions struct {
	List string
}

func AddListArgs(cmd *cobra.Command, o *ListOptions) {
	cmd.PersistentFlags().StringVarP(&o.List, "list", "l", "",
		"The list, by number, id or id prefix.")
}
