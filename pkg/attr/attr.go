// Package attr implements the attribute store (C2, spec.md §4.1):
// schema-driven typed values for one gobj, with post-write/post-read
// hooks, persistence callouts for unique-named objects, and delegation
// to a "bottom" object when an attribute is absent locally.
package attr

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/gobjkernel/pkg/gobjerr"
	"github.com/cuemby/gobjkernel/pkg/schema"
	"github.com/cuemby/gobjkernel/pkg/types"
)

// Hooks are the class-level callbacks an AttrStore fires into its owner.
// All three are optional; a zero-value Hooks fires nothing.
type Hooks struct {
	OnPostWrite      func(name string)
	OnPostRead       func(name string, value any) any
	OnPostWriteStats func(name string, old, new any)
}

// Delegate is the read/write surface of a "bottom" object consulted when
// an attribute is not present locally (spec.md §4.3 "Bottom chain").
type Delegate interface {
	Read(name string) (any, error)
	Write(name string, value any) error
	Has(name string) bool
}

// Persistence is the four-callback external collaborator of spec.md §6
// "Persistent-attribute store". Calls are only emitted on objects with
// a unique name. A nil Persistence means calls return ErrPersistence,
// per spec.md §4.14 "Persistent attrs: if a callback is absent, calls
// return an error; they never crash the process".
type Persistence interface {
	LoadAll(ownerName string, selector any) (types.KW, error)
	Save(ownerName string, selector any) error
	Remove(ownerName string, selector any) error
	List(ownerName string, selector any) (any, error)
}

// Store holds typed attribute values for one gobj instance.
type Store struct {
	schema      *schema.Desc
	values      types.KW
	hooks       Hooks
	bottom      Delegate
	persistence Persistence
	ownerName   string
	unique      bool

	created   bool
	destroyed bool
}

// New builds a Store from sc with every field set to its schema default.
func New(sc *schema.Desc, hooks Hooks) *Store {
	s := &Store{
		schema: sc,
		values: make(types.KW, len(sc.Fields)),
		hooks:  hooks,
	}
	s.ResetDefaults(0, 0)
	return s
}

// SetBottom points lookups that miss locally at d (nil clears it).
func (s *Store) SetBottom(d Delegate) { s.bottom = d }

// SetPersistence registers the pluggable four-callback backing store and
// the owner's unique name (persistence is only active when unique=true).
func (s *Store) SetPersistence(p Persistence, ownerName string, unique bool) {
	s.persistence = p
	s.ownerName = ownerName
	s.unique = unique
}

// MarkCreated makes the store observable to Write; called by the gobj
// lifecycle once class on_create returns (spec.md §4.3 step 10).
func (s *Store) MarkCreated() { s.created = true }

// MarkDestroyed closes the store to further writes.
func (s *Store) MarkDestroyed() { s.destroyed = true }

func (s *Store) field(name string) (*schema.Field, bool) { return s.schema.Find(name) }

// Read returns the named attribute's value, consulting the bottom chain
// when absent locally, per spec.md §4.1.
func (s *Store) Read(name string) (any, error) {
	f, ok := s.field(name)
	if !ok {
		if s.bottom != nil && s.bottom.Has(name) {
			return s.bottom.Read(name)
		}
		return nil, fmt.Errorf("attribute %q: %w", name, gobjerr.ErrNotFound)
	}
	v, present := s.values[name]
	if !present {
		v = f.Default
	}
	if s.hooks.OnPostRead != nil {
		v = s.hooks.OnPostRead(name, v)
	}
	return v, nil
}

// Write sets the named attribute after validating its declared type.
// Rejected before MarkCreated or after MarkDestroyed (spec.md §4.1
// "Writes are rejected before created is observable or after destroyed").
func (s *Store) Write(name string, value any) error {
	if !s.created || s.destroyed {
		return fmt.Errorf("write %q: %w", name, gobjerr.ErrState)
	}
	f, ok := s.field(name)
	if !ok {
		if s.bottom != nil && s.bottom.Has(name) {
			return s.bottom.Write(name, value)
		}
		return fmt.Errorf("attribute %q: %w", name, gobjerr.ErrNotFound)
	}
	if !typeMatches(f.Type, value) {
		return fmt.Errorf("attribute %q wants %s: %w", name, f.Type, gobjerr.ErrTypeMismatch)
	}
	old, hadOld := s.values[name]
	s.values[name] = value
	if s.hooks.OnPostWrite != nil {
		s.hooks.OnPostWrite(name)
	}
	if f.Flags.Has(types.AttrStats) && s.hooks.OnPostWriteStats != nil {
		var oldVal any = f.Default
		if hadOld {
			oldVal = old
		}
		s.hooks.OnPostWriteStats(name, oldVal, value)
	}
	return nil
}

// Has reports whether name is a declared local attribute (does not
// consult the bottom chain; used by the delegating side of Delegate).
func (s *Store) Has(name string) bool {
	_, ok := s.field(name)
	return ok
}

// IsSet reports whether a required attribute holds a value the attr
// system deems "set": present and, for strings, non-empty. Used by
// lifecycle start() to decide whether required attrs are satisfied
// (spec.md §4.7).
func (s *Store) IsSet(name string) bool {
	f, ok := s.field(name)
	if !ok {
		return false
	}
	v, present := s.values[name]
	if !present {
		v = f.Default
	}
	switch vv := v.(type) {
	case nil:
		return false
	case string:
		return vv != ""
	default:
		return true
	}
}

// MissingRequired returns the names of every AttrRequired field that is
// not currently "set" (spec.md §4.7 start() precondition).
func (s *Store) MissingRequired() []string {
	var missing []string
	for _, f := range s.schema.Fields {
		if f.Flags.Has(types.AttrRequired) && !s.IsSet(f.Name) {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// Keys returns the names of declared attributes whose flags include
// every bit of filter (filter==0 returns all names).
func (s *Store) Keys(filter types.AttrFlag) []string {
	var out []string
	for _, f := range s.schema.Fields {
		if filter == 0 || f.Flags.Has(filter) {
			out = append(out, f.Name)
		}
	}
	return out
}

// Snapshot renders the attributes matching filter as a JSON-ready map.
func (s *Store) Snapshot(filter types.AttrFlag) (types.KW, error) {
	out := make(types.KW)
	for _, name := range s.Keys(filter) {
		v, err := s.Read(name)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// SnapshotJSON renders Snapshot(filter) as JSON bytes.
func (s *Store) SnapshotJSON(filter types.AttrFlag) ([]byte, error) {
	kw, err := s.Snapshot(filter)
	if err != nil {
		return nil, err
	}
	return json.Marshal(kw)
}

// ResetDefaults restores every attribute matching includeFlag (0 means
// all) and not matching excludeFlag to its schema default.
func (s *Store) ResetDefaults(includeFlag, excludeFlag types.AttrFlag) {
	for _, f := range s.schema.Fields {
		if includeFlag != 0 && !f.Flags.Has(includeFlag) {
			continue
		}
		if excludeFlag != 0 && f.Flags.Has(excludeFlag) {
			continue
		}
		s.values[f.Name] = f.Default
	}
}

// LoadPersistent invokes the Persistence.LoadAll callback (if any unique
// object has one registered) and merges the result into the store,
// per spec.md §4.3 step 8 "invoke load_persistent_attrs".
func (s *Store) LoadPersistent(selector any) error {
	if !s.unique {
		return nil
	}
	if s.persistence == nil {
		return fmt.Errorf("no persistence backend registered: %w", gobjerr.ErrPersistence)
	}
	kw, err := s.persistence.LoadAll(s.ownerName, selector)
	if err != nil {
		return fmt.Errorf("load persistent attrs: %w", err)
	}
	for name, v := range kw {
		if _, ok := s.field(name); ok {
			s.values[name] = v
		}
	}
	return nil
}

// SavePersistent invokes the Persistence.Save callback.
func (s *Store) SavePersistent(selector any) error {
	if !s.unique {
		return nil
	}
	if s.persistence == nil {
		return fmt.Errorf("no persistence backend registered: %w", gobjerr.ErrPersistence)
	}
	return s.persistence.Save(s.ownerName, selector)
}

func typeMatches(t types.SemType, v any) bool {
	if v == nil {
		return true
	}
	switch t {
	case types.TypeString:
		_, ok := v.(string)
		return ok
	case types.TypeBoolean:
		_, ok := v.(bool)
		return ok
	case types.TypeInt32, types.TypeUint32, types.TypeInt64, types.TypeUint64, types.TypePointer:
		switch v.(type) {
		case int, int32, int64, uint, uint32, uint64:
			return true
		default:
			return false
		}
	case types.TypeReal:
		switch v.(type) {
		case float32, float64:
			return true
		default:
			return false
		}
	case types.TypeList, types.TypeIter:
		_, ok := v.([]any)
		return ok
	case types.TypeJSON:
		return true
	default:
		return false
	}
}
