package schema

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"gopkg.in/yaml.v3"
)

// yamlFile is the document layout of a YAML schema file.
type yamlFile struct {
	Tables []*Table `yaml:"tables"`
}

// LoadFile loads table definitions from a .yaml/.yml file, a .cue file,
// or a directory holding one CUE package.
func LoadFile(path string) (*Registry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if info.IsDir() {
		return LoadCUEDir(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(data)
	case ".cue":
		return LoadCUE(data, path)
	default:
		return nil, fmt.Errorf("load schema: unsupported file type %q", filepath.Ext(path))
	}
}

// LoadYAML parses a YAML schema document. Unknown keys are rejected.
func LoadYAML(data []byte) (*Registry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc yamlFile
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse YAML schema: %w", err)
	}
	return NewRegistry(doc.Tables...)
}

// LoadCUE compiles CUE source and extracts its table definitions.
// filename is used only in error positions.
func LoadCUE(src []byte, filename string) (*Registry, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return FromCUE(v)
}

// LoadCUEDir loads the CUE package in dir and extracts its tables.
func LoadCUEDir(dir string) (*Registry, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &Error{Message: fmt.Sprintf("no CUE instances loaded from %s", dir)}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	v := cuecontext.New().BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return FromCUE(v)
}

// FromCUE extracts tables from the top-level "table" struct of v. Each
// label is a table name; fields are declared in positional order.
func FromCUE(v cue.Value) (*Registry, error) {
	reg, _ := NewRegistry()

	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return reg, nil
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		t, err := parseCUETable(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		if err := reg.Add(t); err != nil {
			var se *Error
			if errors.As(err, &se) && !se.Pos.IsValid() {
				se.Pos = iter.Value().Pos()
			}
			return nil, err
		}
	}
	return reg, nil
}

func parseCUETable(name string, v cue.Value) (*Table, error) {
	t := &Table{Name: name}

	for path, dst := range map[string]*string{
		"key":          &t.Key,
		"autogenerate": (*string)(&t.AutoGenerate),
		"storage":      (*string)(&t.Storage),
	} {
		fv := v.LookupPath(cue.ParsePath(path))
		if !fv.Exists() {
			continue
		}
		s, err := fv.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		*dst = s
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &Error{Table: name, Message: "fields are required", Pos: v.Pos()}
	}
	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		ft, err := cueFieldType(iter.Value())
		if err != nil {
			return nil, &Error{Table: name, Field: iter.Label(), Message: err.Error(), Pos: iter.Value().Pos()}
		}
		t.Fields = append(t.Fields, Field{Name: iter.Label(), Type: ft})
	}
	return t, nil
}

// cueFieldType maps the kind of a CUE field declaration to a FieldType.
func cueFieldType(v cue.Value) (FieldType, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		return TypeString, nil
	case cue.IntKind:
		return TypeInt, nil
	case cue.FloatKind, cue.NumberKind:
		return TypeFloat, nil
	case cue.BoolKind:
		return TypeBool, nil
	case cue.ListKind:
		return TypeList, nil
	case cue.TopKind:
		return TypeAny, nil
	default:
		return "", fmt.Errorf("unsupported type kind: %v", v.IncompleteKind())
	}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &Error{Message: first.Error(), Pos: positions[0]}
	}
	return err
}
