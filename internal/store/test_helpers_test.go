package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/termstore/internal/term"
)

// usersDef is a 3-field table keyed on position 0: {users, id, name, age}.
var usersDef = TableDef{Name: "users", Arity: 3, KeyPos: 0}

// createTestStore creates a memory-only store with the users table.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := s.CreateTable(context.Background(), usersDef); err != nil {
		t.Fatalf("CreateTable() failed: %v", err)
	}
	return s
}

// createDiscStore opens (or reopens) a SQLite-backed store at path and
// creates the users table as a disc table.
func createDiscStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(Options{Path: path})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	def := usersDef
	def.Disc = true
	if err := s.CreateTable(context.Background(), def); err != nil {
		t.Fatalf("CreateTable() failed: %v", err)
	}
	return s
}

func testDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func user(id int64, name string, age int64) term.Record {
	return term.NewRecord("users", term.Int(id), term.String(name), term.Int(age))
}

// seedUsers writes records with a dirty activity.
func seedUsers(t *testing.T, s *Store, recs ...term.Record) {
	t.Helper()
	err := s.Dirty(context.Background(), func(a *Activity) error {
		for _, r := range recs {
			if err := a.Write(r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

// dirty runs fn in a dirty activity and fails the test on error.
func dirty(t *testing.T, s *Store, fn func(a *Activity)) {
	t.Helper()
	if err := s.Dirty(context.Background(), func(a *Activity) error { fn(a); return nil }); err != nil {
		t.Fatalf("dirty activity failed: %v", err)
	}
}
