// Package types holds the value types shared across the gobj runtime:
// the kw payload, semantic attribute types, and the gobj role variant.
package types

// KW is the message payload exchanged between gobjs: a nested mapping of
// strings, numbers, booleans, nulls, lists and sub-mappings. It is the
// Go-native stand-in for the JSON kw object described in spec.md §3/§5.
type KW map[string]any

// Clone returns a deep copy of kw. Nested maps and slices are copied
// recursively; scalar values are copied by assignment. Used by the
// pub/sub engine (C7) to give each non-shared subscriber its own copy
// per spec.md §5 "otherwise each subscriber receives a deep clone".
func (kw KW) Clone() KW {
	return cloneValue(kw).(KW)
}

func cloneValue(v any) any {
	switch vv := v.(type) {
	case KW:
		out := make(KW, len(vv))
		for k, val := range vv {
			out[k] = cloneValue(val)
		}
		return out
	case map[string]any:
		out := make(KW, len(vv))
		for k, val := range vv {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(vv))
		for i, val := range vv {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// Merge overlays other on top of kw, returning kw. Keys in other win.
// Used for __global__ merges (override) during publication (§4.6.2.j).
func (kw KW) Merge(other KW) KW {
	for k, v := range other {
		kw[k] = v
	}
	return kw
}

// DeleteKeys removes the named keys from kw, returning kw. Used for the
// subscription __local__ key-removal step (§4.6.2.h).
func (kw KW) DeleteKeys(keys []string) KW {
	for _, k := range keys {
		delete(kw, k)
	}
	return kw
}

// SemType is one of the attribute schema's declared semantic types (§4.1).
type SemType string

const (
	TypeString  SemType = "string"
	TypeBoolean SemType = "boolean"
	TypeInt32   SemType = "int32"
	TypeUint32  SemType = "uint32"
	TypeInt64   SemType = "int64"
	TypeUint64  SemType = "uint64"
	TypeReal    SemType = "real"
	TypeJSON    SemType = "json"
	TypePointer SemType = "pointer"
	TypeList    SemType = "list"
	TypeIter    SemType = "iter"
)

// AttrFlag is one bit of an attribute's flag set (§4.1).
type AttrFlag uint32

const (
	AttrReadable AttrFlag = 1 << iota
	AttrWritable
	AttrRequired
	AttrPersistent
	AttrStats
	AttrVolatile
	AttrRStats
	AttrPStats
	AttrPublic
	AttrAuthzRead
	AttrAuthzWrite
	AttrNotAccess
)

// Has reports whether flags contains all bits of f.
func (flags AttrFlag) Has(f AttrFlag) bool { return flags&f == f }

// Role is the tagged variant replacing the source's combinable gobj
// flag bitmask (yuno/service/default_service/unique_name/volatile/...),
// per spec.md §9 Design Notes "Per-object variant flags". Independence
// that is real (volatile-ness) is kept as an orthogonal bool on Gobj
// rather than folded into the variant.
type Role int

const (
	RoleOrdinary Role = iota
	RoleYuno
	RoleDefaultService
	RoleService
	RoleUnique
)

func (r Role) String() string {
	switch r {
	case RoleYuno:
		return "yuno"
	case RoleDefaultService:
		return "default_service"
	case RoleService:
		return "service"
	case RoleUnique:
		return "unique"
	default:
		return "ordinary"
	}
}
