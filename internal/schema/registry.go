package schema

import (
	"fmt"
)

// Registry holds the resolved tables known to the adapter, in definition
// order.
type Registry struct {
	tables map[string]*Table
	order  []string
}

// NewRegistry resolves and registers tables.
func NewRegistry(tables ...*Table) (*Registry, error) {
	r := &Registry{tables: make(map[string]*Table)}
	for _, t := range tables {
		if err := r.Add(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add resolves t and registers it. Names must be unique.
func (r *Registry) Add(t *Table) error {
	if err := t.Resolve(); err != nil {
		return err
	}
	if _, dup := r.tables[t.Name]; dup {
		return &Error{Table: t.Name, Message: "duplicate table"}
	}
	r.tables[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Lookup returns the named table.
func (r *Registry) Lookup(name string) (*Table, bool) {
	t, ok := r.tables[name]
	return t, ok
}

// MustLookup returns the named table or panics.
func (r *Registry) MustLookup(name string) *Table {
	t, ok := r.tables[name]
	if !ok {
		panic(fmt.Sprintf("schema: unknown table %q", name))
	}
	return t
}

// Tables returns all tables in definition order.
func (r *Registry) Tables() []*Table {
	out := make([]*Table, len(r.order))
	for i, name := range r.order {
		out[i] = r.tables[name]
	}
	return out
}
