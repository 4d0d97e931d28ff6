package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - tables, records and counters
const currentSchemaVersion = 1

var (
	// ErrTableExists is returned by CreateTable for a name already in use.
	ErrTableExists = errors.New("table already exists")

	// ErrInvalidTableDef is returned by CreateTable for malformed definitions.
	ErrInvalidTableDef = errors.New("invalid table definition")

	// ErrNoDisc is returned when a disc table is created on a store opened
	// without a database path.
	ErrNoDisc = errors.New("store has no disc storage")
)

// Options configures Open.
type Options struct {
	// Path is the SQLite file holding disc copies. Empty means the store is
	// memory only and tables cannot be created with Disc set.
	Path string

	// Logger receives store diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Store is an embedded ordered term store.
// It is safe for concurrent use.
type Store struct {
	db     *sql.DB // nil when memory only
	logger *slog.Logger

	mu     sync.RWMutex // guards tables
	tables map[string]*table

	txMu sync.Mutex // serializes transactions
}

// Open creates a store. With a Path, the SQLite database is created or
// opened and the required pragmas and migrations are applied.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
func Open(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		logger: logger,
		tables: make(map[string]*table),
	}
	if opts.Path == "" {
		return s, nil
	}

	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s.db = db
	logger.Debug("store opened", "path", opts.Path)
	return s, nil
}

// Close releases the database connection, if any. In-memory tables are
// dropped with the store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// HasDisc reports whether the store was opened with a database path.
func (s *Store) HasDisc() bool {
	return s.db != nil
}

// CreateTable provisions a table.
//
// For a disc table, the definition is recorded in the database (or checked
// against the recorded one) and any previously persisted records and the
// counter are loaded into memory.
func (s *Store) CreateTable(ctx context.Context, def TableDef) error {
	if err := def.validate(); err != nil {
		return fmt.Errorf("create table %q: %w", def.Name, err)
	}
	if def.Disc && s.db == nil {
		return fmt.Errorf("create table %q: %w", def.Name, ErrNoDisc)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[def.Name]; ok {
		return fmt.Errorf("create table %q: %w", def.Name, ErrTableExists)
	}

	t := newTable(def)
	if def.Disc {
		if err := loadDisc(ctx, s.db, t); err != nil {
			return fmt.Errorf("create table %q: %w", def.Name, err)
		}
	}
	s.tables[def.Name] = t

	s.logger.Debug("table created",
		"table", def.Name,
		"arity", def.Arity,
		"disc", def.Disc,
		"records", t.tree.Len(),
		"counter", t.counter.Load())
	return nil
}

// TableInfo returns the definition of a table.
func (s *Store) TableInfo(name string) (TableDef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	if !ok {
		return TableDef{}, false
	}
	return t.def, true
}

// Tables returns the names of all tables in sorted order.
func (s *Store) Tables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// lookup returns the named table or aborts with NoExists.
func (s *Store) lookup(name string) *table {
	s.mu.RLock()
	t, ok := s.tables[name]
	s.mu.RUnlock()
	if !ok {
		abort(NoExists{Table: name})
	}
	return t
}

// Dirty runs fn with an activity bound directly to the live tables.
// Panics raised inside fn, *Abort included, are not recovered.
func (s *Store) Dirty(ctx context.Context, fn func(*Activity) error) error {
	return fn(&Activity{store: s, ctx: ctx})
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and checks the schema
// version. This function is idempotent.
func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d",
			version, currentSchemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
