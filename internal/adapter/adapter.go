package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/termstore/internal/gateway"
	"github.com/roach88/termstore/internal/order"
	"github.com/roach88/termstore/internal/queryir"
	"github.com/roach88/termstore/internal/querymatch"
	"github.com/roach88/termstore/internal/schema"
	"github.com/roach88/termstore/internal/store"
	"github.com/roach88/termstore/internal/term"
	"github.com/roach88/termstore/internal/tracing"
)

// Adapter answers queries and record operations for the tables of a
// schema registry.
type Adapter struct {
	gw       *gateway.Gateway
	registry *schema.Registry
	keygen   KeyGenerator
	logger   *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithKeyGenerator overrides the generator for "uuid" keys (for testing).
func WithKeyGenerator(gen KeyGenerator) Option {
	return func(a *Adapter) {
		a.keygen = gen
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// New creates an adapter. Tables must already exist in the gateway's
// store; see Provision.
func New(gw *gateway.Gateway, registry *schema.Registry, opts ...Option) *Adapter {
	a := &Adapter{
		gw:       gw,
		registry: registry,
		keygen:   UUIDv7Generator{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Provision creates every registry table in st. Tables that already exist
// are left as they are.
func Provision(ctx context.Context, st *store.Store, registry *schema.Registry) error {
	for _, tbl := range registry.Tables() {
		def := store.TableDef{
			Name:   tbl.Name,
			Arity:  tbl.Arity(),
			KeyPos: tbl.KeyPos(),
			Disc:   tbl.Storage == schema.StorageDisc,
		}
		if err := st.CreateTable(ctx, def); err != nil && !errors.Is(err, store.ErrTableExists) {
			return fmt.Errorf("provision: %w", err)
		}
	}
	return nil
}

// Gateway returns the underlying gateway.
func (a *Adapter) Gateway() *gateway.Gateway {
	return a.gw
}

// Registry returns the schema registry.
func (a *Adapter) Registry() *schema.Registry {
	return a.registry
}

// table resolves name through the registry, halting when it is unknown.
func (a *Adapter) table(name string) *schema.Table {
	tbl, ok := a.registry.Lookup(name)
	if !ok {
		a.gw.Halt(name, fmt.Errorf("table %q is not defined in the schema", name))
	}
	return tbl
}

// Plan describes how Execute will run a query.
type Plan struct {
	// Spec is the translated match specification.
	Spec store.MatchSpec

	// Projection names the fields the store returns, in Spec.Result order.
	// Nil means whole records.
	Projection []string

	// Trim lists ordering fields added to Projection that are dropped
	// from the rows after sorting.
	Trim []string

	// Ordering is the concatenated ordering; empty keeps key order.
	Ordering queryir.Ordering

	// NativeLimit is the limit passed to the store. Zero when ordering
	// forces the full matching set to be fetched.
	NativeLimit int

	// Limit is the requested limit, applied after ordering.
	Limit int
}

// Explain translates sel without running it.
func (a *Adapter) Explain(sel queryir.Select, params []term.Value) (*Plan, error) {
	tbl := a.table(sel.From)

	ordering := sel.Ordering()
	for _, name := range ordering.Fields() {
		if _, ok := tbl.Position(name); !ok {
			return nil, &querymatch.Error{
				Code:    querymatch.ErrCodeUnknownField,
				Table:   tbl.Name,
				Field:   name,
				Message: "cannot order by a field the table does not define",
			}
		}
	}
	projection, trim := nativeProjection(sel.Fields, ordering)

	spec, err := querymatch.Translate(tbl, projection, sel.Where, params)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Spec:        spec,
		Projection:  projection,
		Trim:        trim,
		Ordering:    ordering,
		NativeLimit: sel.Limit,
		Limit:       sel.Limit,
	}
	if len(ordering) > 0 || plan.NativeLimit < 0 {
		plan.NativeLimit = 0
	}
	return plan, nil
}

// Execute runs sel and returns the number of rows and the rows.
//
// params supply the values of queryir.BoundCompare predicates by index.
// Translation failures are returned as *querymatch.Error.
func (a *Adapter) Execute(ctx context.Context, ec gateway.ExecContext, sel queryir.Select, params []term.Value) (int, []schema.Row, error) {
	tbl := a.table(sel.From)

	ctx, span := tracing.Start(ctx, "adapter.execute",
		trace.WithAttributes(attribute.String(tracing.AttrKeyTable, tbl.Name)))
	defer span.End()

	plan, err := a.Explain(sel, params)
	if err != nil {
		tracing.SetSpanError(ctx, string(querymatch.CodeOf(err)), err)
		return 0, nil, err
	}

	a.logger.Debug("executing select",
		"table", tbl.Name,
		"spec", plan.Spec.String(),
		"native_limit", plan.NativeLimit,
		"ordering", len(plan.Ordering))

	tuples, err := gateway.Run(ctx, a.gw, ec, func(s *gateway.Session) ([]term.Tuple, error) {
		return s.Select(tbl.Name, plan.Spec, plan.NativeLimit), nil
	})
	if err != nil {
		return 0, nil, err
	}

	rows := make([]schema.Row, len(tuples))
	for i, tuple := range tuples {
		if plan.Projection == nil {
			rows[i] = tbl.Row(term.Record{Table: tbl.Name, Fields: tuple})
		} else {
			rows[i] = schema.ProjectRow(plan.Projection, tuple)
		}
	}

	order.Sort(rows, plan.Ordering)
	if plan.Limit > 0 && len(rows) > plan.Limit {
		rows = rows[:plan.Limit]
	}
	for _, row := range rows {
		for _, name := range plan.Trim {
			delete(row, name)
		}
	}

	span.SetAttributes(attribute.Int(tracing.AttrKeyRowCount, len(rows)))
	return len(rows), rows, nil
}

// nativeProjection returns the projection to request from the store and
// the ordering fields it adds. An empty
// fields list selects whole records and adds nothing.
func nativeProjection(fields []string, ordering queryir.Ordering) (projection, trim []string) {
	if len(fields) == 0 {
		return nil, nil
	}
	projection = slices.Clone(fields)
	for _, name := range ordering.Fields() {
		if !slices.Contains(projection, name) {
			projection = append(projection, name)
			trim = append(trim, name)
		}
	}
	return projection, trim
}

// Select returns every field of the records of table matching where, in
// key order, stopping after limit rows when limit is positive.
func (a *Adapter) Select(ctx context.Context, ec gateway.ExecContext, table string, where queryir.Predicate, limit int, params ...term.Value) ([]schema.Row, error) {
	_, rows, err := a.Execute(ctx, ec, queryir.Select{From: table, Where: where, Limit: limit}, params)
	return rows, err
}

// Insert writes row, replacing any record with the same key, and returns
// the stored row. Fields missing from row are stored as null. A null key
// on an autogenerated table is generated before the write.
func (a *Adapter) Insert(ctx context.Context, ec gateway.ExecContext, table string, row schema.Row) (schema.Row, error) {
	tbl := a.table(table)

	row = maps.Clone(row)
	if row == nil {
		row = schema.Row{}
	}
	if tbl.AutoGenerate != schema.AutoNone && term.IsNull(row[tbl.Key]) {
		key, err := a.generateKey(ctx, tbl)
		if err != nil {
			return nil, err
		}
		row[tbl.Key] = key
	}

	rec, err := tbl.Record(row)
	if err != nil {
		return nil, gateway.NewWriteFailedError(table, err)
	}

	stored, err := gateway.Run(ctx, a.gw, ec, func(s *gateway.Session) (term.Record, error) {
		return s.Insert(table, rec)
	})
	if err != nil {
		return nil, err
	}
	return tbl.Row(stored), nil
}

func (a *Adapter) generateKey(ctx context.Context, tbl *schema.Table) (term.Value, error) {
	switch tbl.AutoGenerate {
	case schema.AutoSequence:
		n, err := a.gw.NextSequence(ctx, tbl.Name, 1)
		if err != nil {
			return nil, err
		}
		return term.Int(n), nil
	case schema.AutoUUID:
		return term.String(a.keygen.Generate()), nil
	default:
		return nil, fmt.Errorf("table %q: unknown autogenerate %q", tbl.Name, tbl.AutoGenerate)
	}
}

// Get returns the record stored under key. A missing record is reported
// with ok false and no error.
func (a *Adapter) Get(ctx context.Context, ec gateway.ExecContext, table string, key term.Value) (row schema.Row, ok bool, err error) {
	tbl := a.table(table)
	rec, err := gateway.Run(ctx, a.gw, ec, func(s *gateway.Session) (*term.Record, error) {
		if rec, found := s.Get(table, key); found {
			return &rec, nil
		}
		return nil, nil
	})
	if err != nil || rec == nil {
		return nil, false, err
	}
	return tbl.Row(*rec), true, nil
}

// Update changes the fields named in partial on the record stored under
// key and returns the result. Fields absent from partial keep their
// stored values; term.Null{} sets a field to null. The key field cannot
// be changed. Updating a missing key fails with gateway.ErrCodeNotFound.
//
// Under gateway.Dirty the read and the write are not atomic.
func (a *Adapter) Update(ctx context.Context, ec gateway.ExecContext, table string, key term.Value, partial schema.Row) (schema.Row, error) {
	tbl := a.table(table)
	rec, err := tbl.Partial(partial)
	if err != nil {
		return nil, gateway.NewWriteFailedError(table, err)
	}

	stored, err := gateway.Run(ctx, a.gw, ec, func(s *gateway.Session) (term.Record, error) {
		return s.Update(table, key, rec)
	})
	if err != nil {
		return nil, err
	}
	return tbl.Row(stored), nil
}

// Delete removes the record stored under key and returns key. Deleting a
// missing key succeeds.
func (a *Adapter) Delete(ctx context.Context, ec gateway.ExecContext, table string, key term.Value) (term.Value, error) {
	a.table(table)
	return gateway.Run(ctx, a.gw, ec, func(s *gateway.Session) (term.Value, error) {
		return s.Delete(table, key)
	})
}

// NextID advances the table's sequence by increment and returns the new
// value. An increment of zero or less advances by one.
func (a *Adapter) NextID(ctx context.Context, table string, increment int64) (int64, error) {
	a.table(table)
	if increment <= 0 {
		increment = 1
	}
	return a.gw.NextSequence(ctx, table, increment)
}

// Count returns the number of records in table.
func (a *Adapter) Count(ctx context.Context, ec gateway.ExecContext, table string) (int, error) {
	a.table(table)
	return gateway.Run(ctx, a.gw, ec, func(s *gateway.Session) (int, error) {
		return s.Count(table), nil
	})
}

// First returns the smallest key in table.
func (a *Adapter) First(ctx context.Context, ec gateway.ExecContext, table string) (term.Value, bool, error) {
	return a.traverse(ctx, ec, table, func(s *gateway.Session) (term.Value, bool) {
		return s.First(table)
	})
}

// Last returns the largest key in table.
func (a *Adapter) Last(ctx context.Context, ec gateway.ExecContext, table string) (term.Value, bool, error) {
	return a.traverse(ctx, ec, table, func(s *gateway.Session) (term.Value, bool) {
		return s.Last(table)
	})
}

// Next returns the smallest key in table greater than key. key need not
// be stored.
func (a *Adapter) Next(ctx context.Context, ec gateway.ExecContext, table string, key term.Value) (term.Value, bool, error) {
	return a.traverse(ctx, ec, table, func(s *gateway.Session) (term.Value, bool) {
		return s.Next(table, key)
	})
}

// Prev returns the largest key in table less than key.
func (a *Adapter) Prev(ctx context.Context, ec gateway.ExecContext, table string, key term.Value) (term.Value, bool, error) {
	return a.traverse(ctx, ec, table, func(s *gateway.Session) (term.Value, bool) {
		return s.Prev(table, key)
	})
}

type found struct {
	key term.Value
	ok  bool
}

func (a *Adapter) traverse(ctx context.Context, ec gateway.ExecContext, table string, step func(*gateway.Session) (term.Value, bool)) (term.Value, bool, error) {
	a.table(table)
	res, err := gateway.Run(ctx, a.gw, ec, func(s *gateway.Session) (found, error) {
		key, ok := step(s)
		return found{key: key, ok: ok}, nil
	})
	if err != nil {
		return nil, false, err
	}
	return res.key, res.ok, nil
}
