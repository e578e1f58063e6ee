// Package schema holds the declarative field-descriptor shape (C1,
// spec.md §4.1) shared by attribute schemas, command schemas (§4.8) and
// authz schemas (§4.9): an ordered sequence of named, typed entries with
// flags, defaults and a description.
package schema

import "github.com/cuemby/gobjkernel/pkg/types"

// Field is one entry of a SchemaDesc.
type Field struct {
	Name        string
	Type        types.SemType
	Flags       types.AttrFlag
	Default     any
	Description string

	// Alias is the list of alternate names a command/authz lookup will
	// also match, case-insensitively (§4.8 step 1). Unused by attribute
	// schemas.
	Alias []string

	// Handler, when set, is invoked directly by the command/authz
	// dispatcher instead of redirecting to an FSM event (§4.8 step
	// "dispatch then chooses"). Unused by attribute schemas.
	Handler func(kw types.KW) (types.KW, error)

	// Wild marks a command schema as accepting arbitrary key=value
	// pairs beyond its declared fields (§4.8 step 4).
	Wild bool
}

// Desc is an ordered sequence of field descriptors, e.g. a class's
// attr_schema, commands schema, or authz schema (spec.md §3).
type Desc struct {
	Fields []Field
}

// Find looks up a field by name or one of its aliases, case-insensitively.
func (d *Desc) Find(name string) (*Field, bool) {
	for i := range d.Fields {
		f := &d.Fields[i]
		if equalFold(f.Name, name) {
			return f, true
		}
		for _, a := range f.Alias {
			if equalFold(a, name) {
				return f, true
			}
		}
	}
	return nil, false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
