package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/termstore/internal/gateway"
	"github.com/roach88/termstore/internal/queryir"
	"github.com/roach88/termstore/internal/term"
)

// SelectOptions holds flags for the select command.
type SelectOptions struct {
	*RootOptions
	Where   string
	Order   []string
	Limit   int
	Fields  []string
	Params  []string
	Tx      bool
	Explain bool
}

// SelectResult is the JSON payload of the select command.
type SelectResult struct {
	Count int       `json:"count"`
	Rows  []jsonRow `json:"rows"`
}

// ExplainResult is the JSON payload of select --explain.
type ExplainResult struct {
	Table       string   `json:"table"`
	MatchSpec   string   `json:"match_spec"`
	Native      bool     `json:"native"`
	NativeLimit int      `json:"native_limit"`
	Limit       int      `json:"limit"`
	Ordering    []string `json:"ordering"`
	Trim        []string `json:"trim"`
	Warnings    []string `json:"warnings"`
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SelectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "select <table>",
		Short: "Query records",
		Long: `Query the records of a table.

The filter is a conjunction of comparisons:

  field op value [AND field op value ...]

where op is one of == != < <= > >= and value is a number, a quoted
string, true, false, null, another field name, or ?N for the N-th
--param. OR is recognised but rejected: the store cannot evaluate it.

Without --order, rows come back in key order and --limit stops the scan
early. With --order, every matching record is fetched and sorted before
the limit is applied.

Examples:
  termstore --schema schema.yaml select users --where 'age >= 18' --order age:desc --limit 10
  termstore --schema schema.yaml select users --where 'name == ?1' --param '"ada"' --fields id,age
  termstore --schema schema.yaml select users --where 'age > 30' --explain`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, func(e *env) error {
				return runSelect(opts, e, args[0])
			})
		},
	}

	cmd.Flags().StringVar(&opts.Where, "where", "", "filter expression")
	cmd.Flags().StringArrayVar(&opts.Order, "order", nil, "sort key as field[:asc|desc] (repeatable)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of rows (0 = no limit)")
	cmd.Flags().StringSliceVar(&opts.Fields, "fields", nil, "comma-separated fields to return (default all)")
	cmd.Flags().StringArrayVar(&opts.Params, "param", nil, "value for ?N, in order (repeatable)")
	cmd.Flags().BoolVar(&opts.Tx, "tx", false, "run inside a transaction")
	cmd.Flags().BoolVar(&opts.Explain, "explain", false, "print the query plan instead of running it")

	return cmd
}

func runSelect(opts *SelectOptions, e *env, table string) error {
	tbl, err := e.table(table)
	if err != nil {
		return err
	}

	where, err := ParseFilter(opts.Where)
	if err != nil {
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeBadArgument, Message: "invalid --where", Err: err}
	}
	ordering, err := ParseOrder(opts.Order)
	if err != nil {
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeBadArgument, Message: "invalid --order", Err: err}
	}
	params := make([]term.Value, len(opts.Params))
	for i, p := range opts.Params {
		params[i] = ParseValue(p)
	}

	sel := queryir.Select{
		From:   tbl.Name,
		Fields: opts.Fields,
		Where:  where,
		Limit:  opts.Limit,
	}
	if len(ordering) > 0 {
		sel.OrderBy = []queryir.Ordering{ordering}
	}

	if opts.Explain {
		return explainSelect(e, sel, params)
	}

	ec := e.ec
	if opts.Tx {
		ec = gateway.Transaction
	}
	e.out.VerboseLog("select %s under %s", tbl.Name, ec)

	count, rows, err := e.adapter.Execute(e.ctx, ec, sel, params)
	if err != nil {
		return fail("select failed", err)
	}

	if e.out.Format == "json" {
		data, err := toJSONRows(rows)
		if err != nil {
			return err
		}
		return e.out.Success(SelectResult{Count: count, Rows: data})
	}

	names := opts.Fields
	if len(names) == 0 {
		names = tbl.FieldNames()
	}
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(formatRow(names, row))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "(%d rows)", count)
	return e.out.Success(b.String())
}

func explainSelect(e *env, sel queryir.Select, params []term.Value) error {
	plan, err := e.adapter.Explain(sel, params)
	if err != nil {
		return fail("explain failed", err)
	}
	validation := queryir.Validate(sel)

	ordering := make([]string, len(plan.Ordering))
	for i, ob := range plan.Ordering {
		ordering[i] = ob.Field + " " + string(ob.Dir)
	}

	res := ExplainResult{
		Table:       sel.From,
		MatchSpec:   plan.Spec.String(),
		Native:      validation.IsNative,
		NativeLimit: plan.NativeLimit,
		Limit:       plan.Limit,
		Ordering:    ordering,
		Trim:        plan.Trim,
		Warnings:    validation.Warnings,
	}
	if e.out.Format == "json" {
		return e.out.Success(res)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "table:        %s\n", res.Table)
	fmt.Fprintf(&b, "match spec:   %s\n", res.MatchSpec)
	fmt.Fprintf(&b, "native limit: %d\n", res.NativeLimit)
	fmt.Fprintf(&b, "limit:        %d\n", res.Limit)
	fmt.Fprintf(&b, "ordering:     %s", strings.Join(res.Ordering, ", "))
	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "\nwarning:      %s", w)
	}
	return e.out.Success(b.String())
}
