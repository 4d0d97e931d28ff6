package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/termstore/internal/store"
	"github.com/roach88/termstore/internal/tracing"
)

// ExecContext selects how a body runs against the store.
type ExecContext int

const (
	// Dirty runs each operation directly on the live tables with no
	// isolation between operations.
	Dirty ExecContext = iota

	// Transaction runs the body isolated and all-or-nothing.
	Transaction
)

func (ec ExecContext) String() string {
	switch ec {
	case Dirty:
		return "dirty"
	case Transaction:
		return "transaction"
	default:
		return fmt.Sprintf("ExecContext(%d)", int(ec))
	}
}

// ParseExecContext parses "dirty" or "transaction".
func ParseExecContext(s string) (ExecContext, error) {
	switch s {
	case "dirty":
		return Dirty, nil
	case "transaction":
		return Transaction, nil
	default:
		return 0, fmt.Errorf("invalid execution context %q: must be dirty or transaction", s)
	}
}

// Gateway mediates all access to a store.
type Gateway struct {
	store  *store.Store
	logger *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// New creates a gateway over st.
func New(st *store.Store, opts ...Option) *Gateway {
	g := &Gateway{store: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Store returns the underlying store.
func (g *Gateway) Store() *store.Store {
	return g.store
}

// Run executes body under ec and normalizes its outcome. See the package
// documentation for the mapping. A missing table panics with *FatalError.
//
// Bodies must not call Run with Transaction from inside a Transaction.
func Run[T any](ctx context.Context, g *Gateway, ec ExecContext, body func(*Session) (T, error)) (result T, err error) {
	ctx, span := tracing.Start(ctx, "gateway.run",
		trace.WithAttributes(attribute.String(tracing.AttrKeyExecContext, ec.String())))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			var zero T
			result, err = zero, g.recovered(r)
		}
		if err != nil {
			tracing.SetSpanError(ctx, string(CodeOf(err)), err)
		}
	}()

	fn := func(act *store.Activity) error {
		v, err := body(&Session{act: act, gw: g})
		if err != nil {
			return err
		}
		result = v
		return nil
	}

	switch ec {
	case Dirty:
		err = g.store.Dirty(ctx, fn)
	case Transaction:
		err = g.store.Transaction(ctx, fn)
	default:
		return result, fmt.Errorf("run: unknown execution context %s", ec)
	}

	if err != nil {
		var zero T
		return zero, g.normalize(err)
	}
	return result, nil
}

// NextSequence atomically adds increment to the table's counter and
// returns the new value. It is independent of any execution context and
// safe to call concurrently from anywhere.
func (g *Gateway) NextSequence(ctx context.Context, table string, increment int64) (next int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			next, err = 0, g.recovered(r)
		}
	}()
	return g.store.UpdateCounter(ctx, table, increment), nil
}

// Halt logs a configuration-fatal condition for table and panics with
// *FatalError. Callers outside Run use it for tables the deployment is
// expected to provide.
func (g *Gateway) Halt(table string, cause error) {
	g.logger.Error("configuration fatal: referenced table does not exist",
		"table", table,
		"error", cause)
	panic(&FatalError{Table: table, Err: cause})
}

// normalize maps an error returned by the store into the gateway's
// error space.
func (g *Gateway) normalize(err error) error {
	if table, ok := store.NoExistsTable(err); ok {
		g.Halt(table, err)
	}

	var ab *store.Abort
	if errors.As(err, &ab) {
		g.logger.Debug("execution aborted", "reason", ab.Reason)
		return NewAbortedError(ab.Reason, ab)
	}
	return err
}

// recovered maps a value recovered from a panic. FatalError is re-raised.
func (g *Gateway) recovered(r any) error {
	switch v := r.(type) {
	case *FatalError:
		panic(v)
	case *store.Abort:
		return g.normalize(v)
	}

	g.logger.Debug("execution raised", "value", r)
	err, _ := r.(error)
	return NewAbortedError(Raised{Value: r}, err)
}
