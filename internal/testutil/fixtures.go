package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/termstore/internal/schema"
	"github.com/roach88/termstore/internal/store"
	"github.com/roach88/termstore/internal/term"
)

// UsersTable returns the users fixture table:
// {id int (sequence key), name string, age int, email string}.
func UsersTable() *schema.Table {
	return &schema.Table{
		Name: "users",
		Fields: []schema.Field{
			{Name: "id", Type: schema.TypeInt},
			{Name: "name", Type: schema.TypeString},
			{Name: "age", Type: schema.TypeInt},
			{Name: "email", Type: schema.TypeString},
		},
		Key:          "id",
		AutoGenerate: schema.AutoSequence,
	}
}

// SessionsTable returns the sessions fixture table:
// {token string (uuid key), user_id int, score float}.
func SessionsTable() *schema.Table {
	return &schema.Table{
		Name: "sessions",
		Fields: []schema.Field{
			{Name: "token", Type: schema.TypeString},
			{Name: "user_id", Type: schema.TypeInt},
			{Name: "score", Type: schema.TypeFloat},
		},
		AutoGenerate: schema.AutoUUID,
	}
}

// NewRegistry returns a registry holding the users and sessions fixtures.
func NewRegistry(t testing.TB) *schema.Registry {
	t.Helper()
	reg, err := schema.NewRegistry(UsersTable(), SessionsTable())
	require.NoError(t, err)
	return reg
}

// OpenStore opens a memory-only store closed at test cleanup.
func OpenStore(t testing.TB) *store.Store {
	t.Helper()
	st, err := store.Open(store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// OpenDiscStore opens a SQLite-backed store at path, closed at test
// cleanup.
func OpenDiscStore(t testing.TB, path string) *store.Store {
	t.Helper()
	st, err := store.Open(store.Options{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// User builds a users row. An id of 0 leaves the key null so it is
// generated on insert.
func User(id int64, name string, age int64) schema.Row {
	row := schema.Row{
		"id":    term.Null{},
		"name":  term.String(name),
		"age":   term.Int(age),
		"email": term.Null{},
	}
	if id != 0 {
		row["id"] = term.Int(id)
	}
	return row
}
