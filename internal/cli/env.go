package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/roach88/termstore/internal/adapter"
	"github.com/roach88/termstore/internal/config"
	"github.com/roach88/termstore/internal/gateway"
	"github.com/roach88/termstore/internal/schema"
	"github.com/roach88/termstore/internal/store"
	"github.com/roach88/termstore/internal/tracing"
)

// env is everything a command needs to talk to the store.
type env struct {
	ctx     context.Context
	cfg     config.Config
	logger  *slog.Logger
	store   *store.Store
	adapter *adapter.Adapter
	ec      gateway.ExecContext
	out     *OutputFormatter

	closers []func() error
}

// openEnv loads the configuration, applies flag overrides, and opens and
// provisions the store. Callers must Close the env.
func openEnv(opts *RootOptions, cmd *cobra.Command) (*env, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeConfig, Message: "failed to load config", Err: err}
		}
		cfg = loaded
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Schema != "" {
		cfg.Schema = opts.Schema
	}
	if opts.Trace {
		cfg.Trace = true
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	if cfg.Schema == "" {
		return nil, NewExitError(ExitCommandError, ErrCodeConfig, "no schema given: use --schema or set schema in the config file")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e := &env{
		cfg:    cfg,
		ec:     cfg.DefaultExecContext(),
		logger: newLogger(cmd.ErrOrStderr(), cfg.Level()),
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
	}

	if cfg.Trace {
		provider, err := tracing.NewProvider(cmd.ErrOrStderr())
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to set up tracing", err)
		}
		ctx = tracing.SetTracer(ctx, provider.Tracer(tracing.ServiceName))
		e.closers = append(e.closers, func() error {
			return provider.Shutdown(context.Background())
		})
	}
	e.ctx = ctx

	registry, err := schema.LoadFile(cfg.Schema)
	if err != nil {
		e.Close()
		return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeConfig, Message: "failed to load schema", Err: err}
	}

	e.logger.Debug("opening store", "db", cfg.Database, "schema", cfg.Schema)
	st, err := store.Open(store.Options{Path: cfg.Database, Logger: e.logger})
	if err != nil {
		e.Close()
		return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeStore, Message: "failed to open store", Err: err}
	}
	e.store = st
	e.closers = append([]func() error{st.Close}, e.closers...)

	if err := adapter.Provision(ctx, st, registry); err != nil {
		e.Close()
		return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeStore, Message: "failed to provision tables", Err: err}
	}

	gw := gateway.New(st, gateway.WithLogger(e.logger))
	e.adapter = adapter.New(gw, registry, adapter.WithLogger(e.logger))
	return e, nil
}

// Close releases the store and flushes spans.
func (e *env) Close() {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c())
	}
	e.closers = nil
	if err := errors.Join(errs...); err != nil {
		e.logger.Error("error closing store", "error", err)
	}
}

// table returns the schema definition of name. Unlike the adapter, which
// treats an unknown table as fatal, the CLI reports a typo as a command
// error.
func (e *env) table(name string) (*schema.Table, error) {
	tbl, ok := e.adapter.Registry().Lookup(name)
	if !ok {
		return nil, NewExitError(ExitCommandError, ErrCodeUnknownTable,
			fmt.Sprintf("table %q is not defined in %s", name, e.cfg.Schema))
	}
	return tbl, nil
}

// fail wraps an operation error with ExitFailure.
func fail(message string, err error) error {
	return WrapExitError(ExitFailure, message, err)
}

// newLogger returns a tint logger writing to w. Colour is used only when
// w is a terminal.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
		w = colorable.NewColorable(f)
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
	}))
}
