package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string
	Schema     string
	Trace      bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the termstore CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "termstore",
		Short: "Query and edit an embedded term store",
		Long: `termstore runs declarative queries and record operations against an
embedded ordered term store.

Tables are defined in a YAML or CUE schema file. Memory tables live for the
duration of one command; disc tables are kept in the SQLite database given
with --db.

Example:
  termstore --schema schema.yaml --db data.db put users '{"name":"ada","age":36}'
  termstore --schema schema.yaml --db data.db select users --where 'age > 30' --order age:desc`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, ErrCodeBadArgument,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to the SQLite database for disc tables")
	cmd.PersistentFlags().StringVar(&opts.Schema, "schema", "", "path to the schema (.yaml, .yml, .cue or CUE directory)")
	cmd.PersistentFlags().BoolVar(&opts.Trace, "trace", false, "print OpenTelemetry spans to stderr")

	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewPutCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewSelectCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewNextIDCommand(opts))
	cmd.AddCommand(NewWalkCommand(opts))

	return cmd
}

// Execute runs the root command with args and reports any error on the
// command's error stream in the selected format. It returns the process
// exit code.
func Execute(cmd *cobra.Command, args []string) int {
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		format, _ := cmd.PersistentFlags().GetString("format")
		if !slices.Contains(ValidFormats, format) {
			format = "text"
		}
		out := &OutputFormatter{Format: format, Writer: cmd.ErrOrStderr()}
		_ = out.Report(err)
		return GetExitCode(err)
	}
	return ExitSuccess
}
