package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/termstore/internal/term"
)

// NewWalkCommand creates the walk command.
func NewWalkCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "walk <table> first|last|next|prev [key]",
		Short: "Step through a table's keys in order",
		Long: `Print a key from a table's ordered key space.

first and last take no key. next and prev print the key after or before
the given one, which need not be stored. "(none)" is printed when there is
no such key.

Examples:
  termstore --schema schema.yaml --db data.db walk users first
  termstore --schema schema.yaml --db data.db walk users next 10`,
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(e *env) error {
				return runWalk(e, args)
			})
		},
	}
}

func runWalk(e *env, args []string) error {
	tbl, err := e.table(args[0])
	if err != nil {
		return err
	}
	dir := args[1]

	needsKey := dir == "next" || dir == "prev"
	switch {
	case dir != "first" && dir != "last" && !needsKey:
		return NewExitError(ExitCommandError, ErrCodeBadArgument,
			fmt.Sprintf("invalid direction %q: must be first, last, next or prev", dir))
	case needsKey && len(args) != 3:
		return NewExitError(ExitCommandError, ErrCodeBadArgument, dir+" needs a key")
	case !needsKey && len(args) != 2:
		return NewExitError(ExitCommandError, ErrCodeBadArgument, dir+" takes no key")
	}

	var (
		key   term.Value
		found bool
	)
	switch dir {
	case "first":
		key, found, err = e.adapter.First(e.ctx, e.ec, tbl.Name)
	case "last":
		key, found, err = e.adapter.Last(e.ctx, e.ec, tbl.Name)
	case "next":
		key, found, err = e.adapter.Next(e.ctx, e.ec, tbl.Name, ParseValue(args[2]))
	case "prev":
		key, found, err = e.adapter.Prev(e.ctx, e.ec, tbl.Name, ParseValue(args[2]))
	}
	if err != nil {
		return fail("walk failed", err)
	}
	return e.printKey(key, found)
}
