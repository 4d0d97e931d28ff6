package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertExampleSchema checks the tables defined in testdata/schema.*.
func assertExampleSchema(t *testing.T, reg *Registry) {
	t.Helper()

	tables := reg.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, "users", tables[0].Name)
	assert.Equal(t, "sessions", tables[1].Name)

	users, ok := reg.Lookup("users")
	require.True(t, ok)
	assert.Equal(t, AutoSequence, users.AutoGenerate)
	assert.Equal(t, StorageMemory, users.Storage)
	assert.Equal(t, []string{"id", "name", "age"}, users.FieldNames())

	sessions := reg.MustLookup("sessions")
	assert.Equal(t, "token", sessions.Key)
	assert.Equal(t, AutoUUID, sessions.AutoGenerate)
	assert.Equal(t, StorageDisc, sessions.Storage)
	assert.Equal(t, []Field{
		{Name: "token", Type: TypeString},
		{Name: "user_id", Type: TypeInt},
		{Name: "score", Type: TypeFloat},
		{Name: "tags", Type: TypeAny},
	}, sessions.Fields)
}

func TestLoadYAML(t *testing.T) {
	reg, err := LoadFile(filepath.Join("testdata", "schema.yaml"))
	require.NoError(t, err)
	assertExampleSchema(t, reg)
}

func TestLoadCUEFile(t *testing.T) {
	reg, err := LoadFile(filepath.Join("testdata", "schema.cue"))
	require.NoError(t, err)
	assertExampleSchema(t, reg)
}

func TestLoadCUEDir(t *testing.T) {
	dir := t.TempDir()
	src, err := os.ReadFile(filepath.Join("testdata", "schema.cue"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.cue"), src, 0644))

	reg, err := LoadFile(dir)
	require.NoError(t, err)
	assertExampleSchema(t, reg)
}

func TestLoadYAMLRejectsUnknownKeys(t *testing.T) {
	_, err := LoadYAML([]byte("tables:\n  - name: t\n    colour: red\n    fields: [{name: a}]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestLoadYAMLDuplicateTable(t *testing.T) {
	_, err := LoadYAML([]byte(`
tables:
  - {name: t, fields: [{name: a}]}
  - {name: t, fields: [{name: b}]}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate table")
}

func TestLoadCUEErrors(t *testing.T) {
	_, err := LoadCUE([]byte(`table: t: { key: "a" }`), "bad.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fields are required")

	_, err = LoadCUE([]byte(`table: t: fields: { a: {x: int} }`), "bad.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type kind")

	_, err = LoadCUE([]byte(`table: {`), "broken.cue")
	require.Error(t, err)
}

func TestLoadFileUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
