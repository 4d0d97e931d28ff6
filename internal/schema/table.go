package schema

import (
	"errors"
	"fmt"

	"github.com/roach88/termstore/internal/term"
)

// ErrUnknownField is returned when a row names a field the table lacks.
var ErrUnknownField = errors.New("unknown field")

// FieldType constrains the values a field accepts. Null is accepted by
// every type.
type FieldType string

const (
	TypeAny    FieldType = "any"
	TypeInt    FieldType = "int"
	TypeFloat  FieldType = "float"
	TypeString FieldType = "string"
	TypeBool   FieldType = "bool"
	TypeList   FieldType = "list"
)

// AutoGenerate selects how Insert fills a missing key.
type AutoGenerate string

const (
	// AutoNone requires callers to supply the key.
	AutoNone AutoGenerate = ""

	// AutoSequence draws the key from the table's counter (int keys).
	AutoSequence AutoGenerate = "sequence"

	// AutoUUID generates a UUIDv7 string key.
	AutoUUID AutoGenerate = "uuid"
)

// Storage selects where a table lives.
type Storage string

const (
	StorageMemory Storage = "memory"
	StorageDisc   Storage = "disc"
)

// Field is one positional field of a table.
type Field struct {
	Name string    `yaml:"name"`
	Type FieldType `yaml:"type,omitempty"`
}

// Table is a table definition. Call Resolve (or add it to a Registry)
// before using the accessors.
type Table struct {
	Name         string       `yaml:"name"`
	Fields       []Field      `yaml:"fields"`
	Key          string       `yaml:"key,omitempty"`
	AutoGenerate AutoGenerate `yaml:"autogenerate,omitempty"`
	Storage      Storage      `yaml:"storage,omitempty"`

	positions map[string]int
	keyPos    int
	resolved  bool
}

// Row is a name-mapped record.
type Row map[string]term.Value

// Resolve validates the definition, fills defaults (first field is the
// key, type any, memory storage) and builds the field → position shape.
func (t *Table) Resolve() error {
	if t.Name == "" {
		return &Error{Message: "table name is required"}
	}
	if len(t.Fields) == 0 {
		return &Error{Table: t.Name, Message: "at least one field is required"}
	}

	positions := make(map[string]int, len(t.Fields))
	for i := range t.Fields {
		f := &t.Fields[i]
		if f.Name == "" {
			return &Error{Table: t.Name, Message: fmt.Sprintf("field %d has no name", i)}
		}
		if _, dup := positions[f.Name]; dup {
			return &Error{Table: t.Name, Field: f.Name, Message: "duplicate field"}
		}
		if f.Type == "" {
			f.Type = TypeAny
		}
		switch f.Type {
		case TypeAny, TypeInt, TypeFloat, TypeString, TypeBool, TypeList:
		default:
			return &Error{Table: t.Name, Field: f.Name, Message: fmt.Sprintf("unknown type %q", f.Type)}
		}
		positions[f.Name] = i
	}

	if t.Key == "" {
		t.Key = t.Fields[0].Name
	}
	keyPos, ok := positions[t.Key]
	if !ok {
		return &Error{Table: t.Name, Field: t.Key, Message: "key is not a field"}
	}

	keyType := t.Fields[keyPos].Type
	switch t.AutoGenerate {
	case AutoNone:
	case AutoSequence:
		if keyType != TypeInt && keyType != TypeAny {
			return &Error{Table: t.Name, Field: t.Key, Message: "sequence keys must be int"}
		}
	case AutoUUID:
		if keyType != TypeString && keyType != TypeAny {
			return &Error{Table: t.Name, Field: t.Key, Message: "uuid keys must be string"}
		}
	default:
		return &Error{Table: t.Name, Message: fmt.Sprintf("unknown autogenerate %q", t.AutoGenerate)}
	}

	switch t.Storage {
	case "":
		t.Storage = StorageMemory
	case StorageMemory, StorageDisc:
	default:
		return &Error{Table: t.Name, Message: fmt.Sprintf("unknown storage %q", t.Storage)}
	}

	t.positions = positions
	t.keyPos = keyPos
	t.resolved = true
	return nil
}

func (t *Table) mustBeResolved() {
	if !t.resolved {
		panic(fmt.Sprintf("schema: table %q used before Resolve", t.Name))
	}
}

// Arity returns the number of fields.
func (t *Table) Arity() int {
	return len(t.Fields)
}

// KeyPos returns the position of the key field.
func (t *Table) KeyPos() int {
	t.mustBeResolved()
	return t.keyPos
}

// Position returns the position of the named field.
func (t *Table) Position(name string) (int, bool) {
	t.mustBeResolved()
	pos, ok := t.positions[name]
	return pos, ok
}

// FieldNames returns the field names in positional order.
func (t *Table) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// Record builds a complete record from row. Fields absent from row are
// Null. Unknown names and values of the wrong type are errors.
func (t *Table) Record(row Row) (term.Record, error) {
	return t.build(row, term.Null{})
}

// Partial builds a partial record for an update. Fields absent from row
// are Unspecified (left unchanged); an explicit term.Null sets the field
// to null.
func (t *Table) Partial(row Row) (term.Record, error) {
	return t.build(row, term.Unspecified{})
}

func (t *Table) build(row Row, absent term.Value) (term.Record, error) {
	t.mustBeResolved()
	fields := make([]term.Value, len(t.Fields))
	for i := range fields {
		fields[i] = absent
	}
	for name, v := range row {
		pos, ok := t.positions[name]
		if !ok {
			return term.Record{}, fmt.Errorf("%s.%s: %w", t.Name, name, ErrUnknownField)
		}
		cv, err := t.Fields[pos].Type.coerce(v)
		if err != nil {
			return term.Record{}, fmt.Errorf("%s.%s: %w", t.Name, name, err)
		}
		fields[pos] = cv
	}
	return term.Record{Table: t.Name, Fields: fields}, nil
}

// Row maps a record's positional values to field names.
func (t *Table) Row(rec term.Record) Row {
	row := make(Row, len(t.Fields))
	for i, f := range t.Fields {
		if i < len(rec.Fields) {
			row[f.Name] = rec.Fields[i]
		}
	}
	return row
}

// ProjectRow maps a projected tuple to the given names, position by
// position.
func ProjectRow(names []string, tuple term.Tuple) Row {
	row := make(Row, len(names))
	for i, name := range names {
		if i < len(tuple) {
			row[name] = tuple[i]
		}
	}
	return row
}

// coerce checks v against the field type. Int values are widened to Float
// for float fields.
func (ft FieldType) coerce(v term.Value) (term.Value, error) {
	if v == nil {
		return term.Null{}, nil
	}
	kind := term.KindOf(v)
	if kind == term.KindNull || kind == term.KindUnspecified || ft == TypeAny {
		return v, nil
	}
	switch ft {
	case TypeInt:
		if kind == term.KindInt {
			return v, nil
		}
	case TypeFloat:
		switch kind {
		case term.KindFloat:
			return v, nil
		case term.KindInt:
			return term.Float(v.(term.Int)), nil
		}
	case TypeString:
		if kind == term.KindString {
			return v, nil
		}
	case TypeBool:
		if kind == term.KindBool {
			return v, nil
		}
	case TypeList:
		if kind == term.KindList {
			return v, nil
		}
	}
	return nil, fmt.Errorf("expected %s, got %s", ft, kind)
}
