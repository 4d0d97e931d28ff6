package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termstore/internal/term"
)

func usersTable(t *testing.T) *Table {
	t.Helper()
	tbl := &Table{
		Name: "users",
		Fields: []Field{
			{Name: "id", Type: TypeInt},
			{Name: "name", Type: TypeString},
			{Name: "score", Type: TypeFloat},
			{Name: "tags"},
		},
		AutoGenerate: AutoSequence,
	}
	require.NoError(t, tbl.Resolve())
	return tbl
}

func TestResolveDefaults(t *testing.T) {
	tbl := usersTable(t)

	assert.Equal(t, "id", tbl.Key)
	assert.Equal(t, 0, tbl.KeyPos())
	assert.Equal(t, StorageMemory, tbl.Storage)
	assert.Equal(t, TypeAny, tbl.Fields[3].Type)
	assert.Equal(t, 4, tbl.Arity())
	assert.Equal(t, []string{"id", "name", "score", "tags"}, tbl.FieldNames())

	pos, ok := tbl.Position("score")
	assert.True(t, ok)
	assert.Equal(t, 2, pos)
	_, ok = tbl.Position("nope")
	assert.False(t, ok)
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		tbl  Table
		want string
	}{
		{"no name", Table{Fields: []Field{{Name: "a"}}}, "name is required"},
		{"no fields", Table{Name: "t"}, "at least one field"},
		{"duplicate field", Table{Name: "t", Fields: []Field{{Name: "a"}, {Name: "a"}}}, "duplicate field"},
		{"bad type", Table{Name: "t", Fields: []Field{{Name: "a", Type: "decimal"}}}, "unknown type"},
		{"bad key", Table{Name: "t", Key: "b", Fields: []Field{{Name: "a"}}}, "key is not a field"},
		{"sequence on string", Table{Name: "t", AutoGenerate: AutoSequence, Fields: []Field{{Name: "a", Type: TypeString}}}, "sequence keys must be int"},
		{"uuid on int", Table{Name: "t", AutoGenerate: AutoUUID, Fields: []Field{{Name: "a", Type: TypeInt}}}, "uuid keys must be string"},
		{"bad autogenerate", Table{Name: "t", AutoGenerate: "random", Fields: []Field{{Name: "a"}}}, "unknown autogenerate"},
		{"bad storage", Table{Name: "t", Storage: "tape", Fields: []Field{{Name: "a"}}}, "unknown storage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tbl.Resolve()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRecordFillsNull(t *testing.T) {
	tbl := usersTable(t)

	rec, err := tbl.Record(Row{"name": term.String("ada"), "score": term.Int(3)})
	require.NoError(t, err)

	// ints widen to float for float fields
	assert.Equal(t, term.NewRecord("users", term.Null{}, term.String("ada"), term.Float(3), term.Null{}), rec)
}

func TestPartialFillsUnspecified(t *testing.T) {
	tbl := usersTable(t)

	rec, err := tbl.Partial(Row{"name": term.Null{}})
	require.NoError(t, err)

	assert.Equal(t, term.NewRecord("users", term.Unspecified{}, term.Null{}, term.Unspecified{}, term.Unspecified{}), rec)
}

func TestRecordErrors(t *testing.T) {
	tbl := usersTable(t)

	_, err := tbl.Record(Row{"email": term.String("x")})
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = tbl.Record(Row{"id": term.String("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected int, got string")

	// any accepts everything
	_, err = tbl.Record(Row{"tags": term.List{term.String("x")}})
	assert.NoError(t, err)
}

func TestRowAndProjectRow(t *testing.T) {
	tbl := usersTable(t)
	rec := term.NewRecord("users", term.Int(1), term.String("ada"), term.Float(1.5), term.Null{})

	assert.Equal(t, Row{
		"id":    term.Int(1),
		"name":  term.String("ada"),
		"score": term.Float(1.5),
		"tags":  term.Null{},
	}, tbl.Row(rec))

	assert.Equal(t, Row{"name": term.String("ada"), "id": term.Int(1)},
		ProjectRow([]string{"name", "id"}, term.Tuple{term.String("ada"), term.Int(1)}))
}

func TestUnresolvedTablePanics(t *testing.T) {
	tbl := &Table{Name: "t", Fields: []Field{{Name: "a"}}}
	assert.Panics(t, func() { tbl.KeyPos() })
}
