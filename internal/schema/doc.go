// Package schema describes the tables the adapter reads and writes.
//
// A Table names its fields in positional order, designates the key field,
// and says how missing keys are generated and whether the table keeps a
// disc copy. Resolve turns the definition into a field name → position
// shape once, so translation and row mapping never search field lists.
//
// Definitions are loaded from YAML or CUE:
//
//	tables:
//	  - name: users
//	    key: id
//	    autogenerate: sequence
//	    fields:
//	      - {name: id, type: int}
//	      - {name: name, type: string}
//
//	table: users: {
//		key:          "id"
//		autogenerate: "sequence"
//		fields: {
//			id:   int
//			name: string
//		}
//	}
package schema
