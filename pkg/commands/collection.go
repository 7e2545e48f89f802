package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/ordo/pkg/app"
	"tableflip.dev/ordo/pkg/commands/options"
	"tableflip.dev/ordo/pkg/item"
	"tableflip.dev/ordo/pkg/runner/add"
	"tableflip.dev/ordo/pkg/runner/complete"
	"tableflip.dev/ordo/pkg/runner/edit"
	"tableflip.dev/ordo/pkg/runner/move"
	"tableflip.dev/ordo/pkg/runner/remove"
	"tableflip.dev/ordo/pkg/runner/show"
)

// addCollection adds the command managing one kind of item, with
// subcommands for each operation on its ordered scope.
func addCollection(topLevel *cobra.Command, kind item.Kind) {
	desc, err := item.Describe(kind)
	if err != nil {
		panic(err)
	}
	lo := &options.ListOptions{}
	ids := &options.IDOptions{}
	target := func() app.Target {
		return app.Target{Kind: kind, List: lo.List}
	}

	example := fmt.Sprintf(`
ordo %[1]s
ordo %[1]s add groceries
ordo %[1]s mv 3 1
`, kind)
	if desc.Nested {
		example = fmt.Sprintf(`
ordo %[1]s --list 1
ordo %[1]s -l groceries-id add buy milk
ordo %[1]s -l 1 mv 3 1
`, kind)
	}

	cmd := &cobra.Command{
		Use:     string(kind),
		Aliases: []string{string(kind) + "s"},
		Short:   fmt.Sprintf("Show and manage %ss.", kind),
		Example: example,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, e *env) error {
				t := target()
				s := show.Show{Output: printer(cmd, ids), Service: e.svc, Target: &t}
				return s.Do(ctx)
			})
		},
	}
	options.AddShowIDArgs(cmd, ids)
	if desc.Nested {
		options.AddListArgs(cmd, lo)
		_ = cmd.RegisterFlagCompletionFunc("list", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return listCompletions(), cobra.ShellCompDirectiveNoFileComp
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"get"},
		Short:   fmt.Sprintf("Print the %ss in order.", kind),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, e *env) error {
				t := target()
				s := show.Show{Output: printer(cmd, ids), Service: e.svc, Target: &t}
				return s.Do(ctx)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   fmt.Sprintf("add <%s...>", desc.Label),
		Short: fmt.Sprintf("Add a %s at the end.", kind),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return fmt.Errorf("requires a %s", desc.Label)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, e *env) error {
				a := add.Add{Output: printer(cmd, ids), Service: e.svc, Target: target(), Text: strings.Join(args, " ")}
				return a.Do(ctx)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     fmt.Sprintf("edit <ref> <%s...>", desc.Label),
		Aliases: []string{"rename"},
		Short:   fmt.Sprintf("Replace the %s of a %s.", desc.Label, kind),
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, e *env) error {
				ed := edit.Edit{Output: printer(cmd, ids), Service: e.svc, Target: target(), Ref: args[0], Text: strings.Join(args[1:], " ")}
				return ed.Do(ctx)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "mv <ref> <position>",
		Short: fmt.Sprintf("Move a %s to a 1-based position.", kind),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := strconv.Atoi(args[1])
			if err != nil {
				cmd.SilenceUsage = true
				return output.HandleError(fmt.Errorf("%w: position %q is not a number", item.ErrValidation, args[1]))
			}
			return run(cmd, func(ctx context.Context, e *env) error {
				m := move.Move{Output: printer(cmd, ids), Service: e.svc, Target: target(), Ref: args[0], To: to}
				return m.Do(ctx)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <ref>",
		Aliases: []string{"delete"},
		Short:   fmt.Sprintf("Delete a %s.", kind),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, e *env) error {
				r := remove.Remove{Output: printer(cmd, ids), Service: e.svc, Target: target(), Ref: args[0]}
				return r.Do(ctx)
			})
		},
	})

	if desc.Completable {
		for _, done := range []bool{true, false} {
			done := done
			use, short := "done <ref>", "Mark a task completed."
			if !done {
				use, short = "undo <ref>", "Mark a task open again."
			}
			cmd.AddCommand(&cobra.Command{
				Use:   use,
				Short: short,
				Args:  cobra.ExactArgs(1),
				RunE: func(cmd *cobra.Command, args []string) error {
					return run(cmd, func(ctx context.Context, e *env) error {
						c := complete.Complete{Output: printer(cmd, ids), Service: e.svc, Target: target(), Ref: args[0], Done: done}
						return c.Do(ctx)
					})
				},
			})
		}
	}

	for _, sub := range cmd.Commands() {
		options.AddShowIDArgs(sub, ids)
	}
	topLevel.AddCommand(cmd)
}

func listCompletions() []string {
	e, err := connect()
	if err != nil {
		return nil
	}
	defer e.Close()
	lists, err := e.svc.Lists(context.Background())
	if err != nil {
		return nil
	}
	var out []string
	for i, l := range lists.Snapshot() {
		out = append(out, fmt.Sprintf("%d\t%s", i+1, l.Text()))
	}
	return out
}
