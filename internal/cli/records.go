package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/roach88/termstore/internal/gateway"
	"github.com/roach88/termstore/internal/schema"
	"github.com/roach88/termstore/internal/term"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <key>",
		Short: "Print the record stored under a key",
		Long: `Print the record stored under a key.

The key is parsed as a JSON literal when possible (42, "42", true) and as a
plain string otherwise.

Example:
  termstore --schema schema.yaml --db data.db get users 1`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(e *env) error {
				tbl, err := e.table(args[0])
				if err != nil {
					return err
				}
				key := ParseValue(args[1])
				row, ok, err := e.adapter.Get(e.ctx, e.ec, tbl.Name, key)
				if err != nil {
					return fail("get failed", err)
				}
				if !ok {
					return fail("get failed", gateway.NewNotFoundError(tbl.Name, key))
				}
				return e.printRow(tbl, row)
			})
		},
	}
}

// NewPutCommand creates the put command.
func NewPutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "put <table> <json-row>",
		Short: "Insert or replace a record",
		Long: `Insert a record, replacing any record with the same key.

Fields missing from the row are stored as null. When the table has an
autogenerated key and the row has no key (or a null one), the key is
generated first.

Example:
  termstore --schema schema.yaml --db data.db put users '{"name":"ada","age":36}'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(e *env) error {
				tbl, err := e.table(args[0])
				if err != nil {
					return err
				}
				row, err := ParseRow(args[1])
				if err != nil {
					return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeBadArgument, Message: "invalid row", Err: err}
				}
				stored, err := e.adapter.Insert(e.ctx, e.ec, tbl.Name, row)
				if err != nil {
					return fail("put failed", err)
				}
				return e.printRow(tbl, stored)
			})
		},
	}
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <table> <key> <json-partial>",
		Short: "Change some fields of a record",
		Long: `Change the fields named in a JSON object on an existing record.

Fields not named keep their stored values; a field set to null is cleared.
The key field cannot be changed.

Example:
  termstore --schema schema.yaml --db data.db update users 1 '{"age":37}'`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(e *env) error {
				tbl, err := e.table(args[0])
				if err != nil {
					return err
				}
				partial, err := ParseRow(args[2])
				if err != nil {
					return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeBadArgument, Message: "invalid partial row", Err: err}
				}
				row, err := e.adapter.Update(e.ctx, e.ec, tbl.Name, ParseValue(args[1]), partial)
				if err != nil {
					return fail("update failed", err)
				}
				return e.printRow(tbl, row)
			})
		},
	}
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <key>",
		Short: "Delete a record",
		Long: `Delete the record stored under a key. Deleting a missing key succeeds.

Example:
  termstore --schema schema.yaml --db data.db delete users 1`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(e *env) error {
				tbl, err := e.table(args[0])
				if err != nil {
					return err
				}
				key, err := e.adapter.Delete(e.ctx, e.ec, tbl.Name, ParseValue(args[1]))
				if err != nil {
					return fail("delete failed", err)
				}
				return e.printKey(key, true)
			})
		},
	}
}

// withEnv opens the env, runs fn and closes the env.
func withEnv(opts *RootOptions, cmd *cobra.Command, fn func(*env) error) error {
	e, err := openEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(e)
}

func (e *env) printRow(tbl *schema.Table, row schema.Row) error {
	if e.out.Format == "json" {
		data, err := toJSONRow(row)
		if err != nil {
			return err
		}
		return e.out.Success(data)
	}
	return e.out.Success(formatRow(tbl.FieldNames(), row))
}

type keyResult struct {
	Found bool            `json:"found"`
	Key   json.RawMessage `json:"key"`
}

func (e *env) printKey(key term.Value, found bool) error {
	if e.out.Format == "json" {
		res := keyResult{Found: found, Key: json.RawMessage("null")}
		if found {
			data, err := term.Encode(key)
			if err != nil {
				return err
			}
			res.Key = data
		}
		return e.out.Success(res)
	}
	if !found {
		return e.out.Success("(none)")
	}
	return e.out.Success(term.Format(key))
}
