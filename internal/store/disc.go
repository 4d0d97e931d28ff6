package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/termstore/internal/term"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// loadDisc registers t's definition in the database and loads its
// persisted records and counter into t.
//
// A table recorded with a different arity or key position is an error:
// tables are never altered in place.
func loadDisc(ctx context.Context, db *sql.DB, t *table) error {
	var arity, keyPos int
	err := db.QueryRowContext(ctx,
		`SELECT arity, key_pos FROM tables WHERE name = ?`, t.def.Name,
	).Scan(&arity, &keyPos)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx,
			`INSERT INTO tables (name, arity, key_pos) VALUES (?, ?, ?)`,
			t.def.Name, t.def.Arity, t.def.KeyPos,
		); err != nil {
			return fmt.Errorf("register table: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read table definition: %w", err)
	case arity != t.def.Arity || keyPos != t.def.KeyPos:
		return fmt.Errorf("%w: stored definition has arity %d key position %d",
			ErrInvalidTableDef, arity, keyPos)
	}

	rows, err := db.QueryContext(ctx, `SELECT fields FROM records WHERE tab = ?`, t.def.Name)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return fmt.Errorf("scan record: %w", err)
		}
		fields, err := term.DecodeFields([]byte(data))
		if err != nil {
			return fmt.Errorf("decode record: %w", err)
		}
		if len(fields) != t.def.Arity {
			return fmt.Errorf("decode record: %w: arity %d", ErrInvalidRecord, len(fields))
		}
		rec := term.Record{Table: t.def.Name, Fields: fields}
		t.tree.ReplaceOrInsert(entry{key: fields[t.def.KeyPos], rec: rec})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate records: %w", err)
	}

	var counter int64
	err = db.QueryRowContext(ctx, `SELECT value FROM counters WHERE tab = ?`, t.def.Name).Scan(&counter)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("load counter: %w", err)
	}
	t.counter.Store(counter)

	return nil
}

func putDisc(ctx context.Context, db execer, tab string, e entry) error {
	key, err := term.KeyString(e.key)
	if err != nil {
		return fmt.Errorf("encode key: %w", err)
	}
	fields, err := term.EncodeFields(e.rec.Fields)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO records (tab, key, fields) VALUES (?, ?, ?)
		ON CONFLICT(tab, key) DO UPDATE SET fields = excluded.fields
	`, tab, key, string(fields))
	return err
}

func deleteDisc(ctx context.Context, db execer, tab string, key term.Value) error {
	k, err := term.KeyString(key)
	if err != nil {
		// Unencodable keys were never written.
		return nil
	}
	_, err = db.ExecContext(ctx, `DELETE FROM records WHERE tab = ? AND key = ?`, tab, k)
	return err
}

// commitDisc persists the disc-table mutations of a transaction log in
// one database transaction. Logs touching only memory tables do nothing.
func commitDisc(ctx context.Context, db *sql.DB, log []mutation) error {
	var disc []mutation
	for _, m := range log {
		if m.table.def.Disc {
			disc = append(disc, m)
		}
	}
	if len(disc) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, m := range disc {
		switch m.op {
		case opPut:
			err = putDisc(ctx, tx, m.table.def.Name, m.entry)
		case opDelete:
			err = deleteDisc(ctx, tx, m.table.def.Name, m.entry.key)
		}
		if err != nil {
			return fmt.Errorf("persist %s: %w", m.table.def.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// saveCounter persists a counter value. Larger values always win.
func saveCounter(ctx context.Context, db execer, tab string, value int64) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO counters (tab, value) VALUES (?, ?)
		ON CONFLICT(tab) DO UPDATE SET value = MAX(value, excluded.value)
	`, tab, value)
	return err
}
