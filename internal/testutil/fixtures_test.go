package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termstore/internal/schema"
	"github.com/roach88/termstore/internal/store"
	"github.com/roach88/termstore/internal/term"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry(t)

	users, ok := reg.Lookup("users")
	require.True(t, ok)
	assert.Equal(t, 0, users.KeyPos())
	assert.Equal(t, schema.AutoSequence, users.AutoGenerate)

	sessions, ok := reg.Lookup("sessions")
	require.True(t, ok)
	assert.Equal(t, "token", sessions.Key)
	assert.Equal(t, schema.StorageMemory, sessions.Storage)
}

func TestUserRowBuildsRecord(t *testing.T) {
	reg := NewRegistry(t)
	users := reg.MustLookup("users")

	rec, err := users.Record(User(3, "ada", 36))
	require.NoError(t, err)
	assert.Equal(t, term.NewRecord("users", term.Int(3), term.String("ada"), term.Int(36), term.Null{}), rec)

	assert.True(t, term.IsNull(User(0, "bob", 1)["id"]))
}

func TestOpenStores(t *testing.T) {
	mem := OpenStore(t)
	assert.False(t, mem.HasDisc())

	disc := OpenDiscStore(t, filepath.Join(t.TempDir(), "fixtures.db"))
	assert.True(t, disc.HasDisc())
	require.NoError(t, disc.CreateTable(context.Background(), store.TableDef{Name: "t", Arity: 2, Disc: true}))
}
