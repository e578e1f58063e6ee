// Package gclass implements the class registry (C3) and the immutable
// class descriptor of spec.md §3 "Class descriptor": FSM shape, attribute
// schema, optional command/authz schemas, flags and capability hooks.
package gclass

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cuemby/gobjkernel/pkg/gobjerr"
	"github.com/cuemby/gobjkernel/pkg/schema"
	"github.com/cuemby/gobjkernel/pkg/types"
)

// EventFlag marks per-event behavior declared on a class's input events
// (spec.md §4.5 "flags per event").
type EventFlag uint32

const (
	// EventKwWriting means the action runs with a lent kw the caller
	// still owns; otherwise the callee takes ownership (spec.md §5).
	EventKwWriting EventFlag = 1 << iota
	// EventSystem marks a system event (e.g. state_changed) that is
	// only delivered to subscribers that declare it as input (§4.6.2.g).
	EventSystem
	// EventNoWarnSubs suppresses the "zero subscribers" warning on publish.
	EventNoWarnSubs
)

// EventDesc describes one declared input or output event.
type EventDesc struct {
	Name  string
	Flags EventFlag
}

// Action is a class FSM action: it receives the event kw and the
// source's name and returns the dispatch result. It is given no handle
// to the receiving gobj.
type Action func(kw types.KW, src string) (types.KW, error)

// Transition is one (event, action, next_state?) triple for a state.
type Transition struct {
	Event     string
	Action    Action
	NextState string // empty means no state change
}

// State is an ordered sequence of transitions for one named FSM state.
type State struct {
	Name        string
	Transitions []Transition
}

// FSM is the ordered state sequence plus declared input/output events.
type FSM struct {
	States      []State
	InputEvents []EventDesc
	OutputEvents []EventDesc

	validated bool
	validMu   sync.Mutex
}

// InputEvent looks up a declared input event by name, case-insensitively.
func (f *FSM) InputEvent(name string) (EventDesc, bool) {
	for _, e := range f.InputEvents {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return EventDesc{}, false
}

func (f *FSM) stateIndex(name string) int {
	for i, s := range f.States {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Validate checks invariant I2 (spec.md §3): every transition event is a
// declared input event and every next_state names an existing state.
// Exactly-once semantics are the caller's responsibility (gobj.Create
// goes through Class.EnsureValidated, which records a passed validation).
func (f *FSM) Validate() error {
	for _, s := range f.States {
		for _, tr := range s.Transitions {
			if _, ok := f.InputEvent(tr.Event); !ok {
				return fmt.Errorf("state %q: event %q not declared as input event: %w", s.Name, tr.Event, gobjerr.ErrSchema)
			}
			if tr.NextState != "" && f.stateIndex(tr.NextState) < 0 {
				return fmt.Errorf("state %q: event %q: unknown next_state %q: %w", s.Name, tr.Event, tr.NextState, gobjerr.ErrSchema)
			}
		}
	}
	return nil
}

// Flag is one of a class's Flags bits (spec.md §3).
type Flag uint32

const (
	FlagManualStart Flag = 1 << iota
	FlagNoCheckOutputEvents
	FlagIgnoreUnknownAttrs
	FlagRequiredStartToPlay
)

// Hooks is the capability record of optional class callbacks (spec.md §9
// "Dynamic dispatch via function pointers in class descriptors").
// Every field is optional; the engine consults a zero value as "absent".
type Hooks struct {
	OnCreate         func(priv any, kw types.KW) error
	OnCreateWithKw   func(priv any, kw types.KW) error
	OnDestroy        func(priv any)
	OnChildAdded     func(priv any, child string)
	OnStart          func(priv any) error
	OnStop           func(priv any) error
	OnPlay           func(priv any) error
	OnPause          func(priv any) error
	OnDisable        func(priv any) error
	OnEnable         func(priv any) error
	OnStateChanged   func(priv any, previous, current string)
	OnInjectEvent    func(priv any, event string, kw types.KW, src string) (types.KW, error)
	OnPublishEvent   func(priv any, event string, kw types.KW) int
	OnPublicationPreFilter func(priv any, event string, kw types.KW) int
	OnPublicationFilter    func(priv any, event string, kw types.KW) int
	OnSubscriptionAdded    func(priv any) int
	OnSubscriptionDeleted  func(priv any)
	OnAuthzCheck     func(priv any, authzName string, kw types.KW, src string) bool
}

// Class is the immutable-after-registration class descriptor.
type Class struct {
	Name            string
	Base            *Class
	FSM             *FSM
	AttrSchema      *schema.Desc
	Commands        *schema.Desc
	Authz           *schema.Desc
	PrivateSize     int
	Flags           Flag
	TraceLevelNames [16]string
	Hooks           Hooks

	// Mutable counters (spec.md §3).
	mu               sync.Mutex
	liveInstances    int
	gclassTraceMask  uint32
	noGclassTraceMask uint32
}

// HasFlag reports whether the class's Flags contains f.
func (c *Class) HasFlag(f Flag) bool { return c.Flags&f == f }

// IsSubclassOf walks Base pointers looking for other (spec.md §3 "base
// (optional pointer to parent class for subclass-of tests)").
func (c *Class) IsSubclassOf(other *Class) bool {
	for b := c.Base; b != nil; b = b.Base {
		if b == other {
			return true
		}
	}
	return false
}

// EnsureValidated validates the class FSM exactly once (spec.md §4.5
// "Class validation (run once per class on first creation)").
func (c *Class) EnsureValidated() error {
	c.FSM.validMu.Lock()
	defer c.FSM.validMu.Unlock()
	if c.FSM.validated {
		return nil
	}
	if err := c.FSM.Validate(); err != nil {
		return err
	}
	c.FSM.validated = true
	return nil
}

func (c *Class) incLive(delta int) {
	c.mu.Lock()
	c.liveInstances += delta
	c.mu.Unlock()
}

// LiveInstances returns the current live-instance count.
func (c *Class) LiveInstances() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveInstances
}

// IncLive and DecLive are exported for pkg/gobj's create/destroy to
// maintain the live-instance counter without reaching into Class's
// unexported fields via reflection.
func (c *Class) IncLive() { c.incLive(1) }
func (c *Class) DecLive() { c.incLive(-1) }

// ValidName reports whether s is a legal class or gobj name: it must not
// contain a backtick or caret, and class names additionally forbid '.'.
func ValidName(s string, isClass bool) bool {
	if s == "" {
		return false
	}
	if strings.ContainsAny(s, "`^") {
		return false
	}
	if isClass && strings.Contains(s, ".") {
		return false
	}
	return true
}
