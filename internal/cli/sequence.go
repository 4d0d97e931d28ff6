package cli

import (
	"github.com/spf13/cobra"
)

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "count <table>",
		Short:         "Print the number of records in a table",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(e *env) error {
				tbl, err := e.table(args[0])
				if err != nil {
					return err
				}
				n, err := e.adapter.Count(e.ctx, e.ec, tbl.Name)
				if err != nil {
					return fail("count failed", err)
				}
				return e.out.Success(n)
			})
		},
	}
}

// NewNextIDCommand creates the next-id command.
func NewNextIDCommand(rootOpts *RootOptions) *cobra.Command {
	var by int64

	cmd := &cobra.Command{
		Use:   "next-id <table>",
		Short: "Advance a table's sequence and print the new value",
		Long: `Advance a table's sequence counter and print the new value.

The counter is shared with key autogeneration. It is never rolled back, and
for disc tables it is persisted, so values are unique across runs.

Example:
  termstore --schema schema.yaml --db data.db next-id users --by 10`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(e *env) error {
				tbl, err := e.table(args[0])
				if err != nil {
					return err
				}
				n, err := e.adapter.NextID(e.ctx, tbl.Name, by)
				if err != nil {
					return fail("next-id failed", err)
				}
				return e.out.Success(n)
			})
		},
	}

	cmd.Flags().Int64Var(&by, "by", 1, "increment (values below 1 count as 1)")
	return cmd
}
