package gobj

import (
	"strings"
	"sync"

	"github.com/cuemby/gobjkernel/pkg/attr"
	"github.com/cuemby/gobjkernel/pkg/fsm"
	"github.com/cuemby/gobjkernel/pkg/gclass"
	"github.com/cuemby/gobjkernel/pkg/pubsub"
	"github.com/cuemby/gobjkernel/pkg/types"
	"github.com/google/uuid"
)

// MaxNameBytes is the maximum length of a gobj name (spec.md §3).
const MaxNameBytes = 48

// Gobj is the runtime entity of spec.md §3 "Object (Gobj)": identity,
// class, tree position, FSM instance, attribute store and subscription
// membership (held by the shared pubsub.Engine, not duplicated here).
type Gobj struct {
	rt    *Runtime
	id    string
	name  string
	class *gclass.Class

	mu       sync.Mutex
	parent   *Gobj
	children []*Gobj
	bottom   *Gobj

	role     types.Role
	volatile bool

	createdFlag    bool
	destroyingFlag bool
	destroyedFlag  bool
	autoplay       bool
	autostart      bool
	imminentDestroy bool

	running  bool
	playing  bool
	disabled bool

	fsmStateIdx int
	prevState   string

	attrs    *attr.Store
	userData types.KW
	stats    types.KW
	priv     any

	traceLevel   uint32
	noTraceLevel uint32

	fullNameCache  string
	shortNameCache string
	snmpOIDCache   string
	cacheValid     bool
}

// ID returns the gobj's process-unique identity (used as the pub/sub
// engine's index key; distinct from the user-facing Name).
func (g *Gobj) ID() string { return g.id }

// Name returns the gobj's short name.
func (g *Gobj) Name() string { return g.name }

// Class returns the gobj's class descriptor.
func (g *Gobj) Class() *gclass.Class { return g.class }

// PrivateData returns the opaque per-instance state owned by the
// class's handlers (spec.md §3 "private_size").
func (g *Gobj) PrivateData() any { return g.priv }

// SetPrivateData installs the per-instance state; called by a class's
// on_create hook (or the caller building the class) to attach storage
// sized per Class.PrivateSize.
func (g *Gobj) SetPrivateData(v any) { g.priv = v }

// Parent returns the gobj's parent, or nil only for the yuno.
func (g *Gobj) Parent() *Gobj {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.parent
}

// Children returns a snapshot of the children slice in insertion order.
func (g *Gobj) Children() []*Gobj {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Gobj, len(g.children))
	copy(out, g.children)
	return out
}

// Bottom returns the gobj's delegation target, or nil.
func (g *Gobj) Bottom() *Gobj {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bottom
}

// Attrs returns the attribute store.
func (g *Gobj) Attrs() *attr.Store { return g.attrs }

// Role returns the gobj's variant (yuno/service/default_service/unique/ordinary).
func (g *Gobj) Role() types.Role { return g.role }

// IsVolatile reports the orthogonal volatile hint (spec.md §9: kept
// independent of the Role variant since it is real independence).
func (g *Gobj) IsVolatile() bool { return g.volatile }

// Running, Playing, Disabled mirror the booleans of spec.md §3.
func (g *Gobj) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}
func (g *Gobj) Playing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playing
}
func (g *Gobj) Disabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.disabled
}

// Destroying/Destroyed/Created report the lifecycle flags.
func (g *Gobj) Destroying() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.destroyingFlag
}
func (g *Gobj) Destroyed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.destroyedFlag
}
func (g *Gobj) Created() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createdFlag
}

// ImminentDestroy reports whether Destroy has been called on g, even
// while its children are still being torn down (spec.md §3 flag
// "imminent_destroy").
func (g *Gobj) ImminentDestroy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.imminentDestroy
}

// IsAlive implements fsm.Dispatchable: not destroying, not destroyed
// (invariant I8 "While destroying ... event send into it fails").
func (g *Gobj) IsAlive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.destroyingFlag && !g.destroyedFlag
}

// IsRunning implements fsm.Dispatchable / is used by the publish gate
// for state_changed (spec.md §4.5 step 4).
func (g *Gobj) IsRunning() bool { return g.Running() }

// StateIndex implements fsm.Dispatchable.
func (g *Gobj) StateIndex() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fsmStateIdx
}

// StateName returns the current FSM state's name.
func (g *Gobj) StateName() string {
	idx := g.StateIndex()
	return g.class.FSM.States[idx].Name
}

// PrevStateName returns the state name prior to the last committed transition.
func (g *Gobj) PrevStateName() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prevState
}

// CommitTransition implements fsm.Dispatchable: update prev_state then
// fsm_state, committing before the action executes (spec.md §4.5).
func (g *Gobj) CommitTransition(nextIdx int, _ string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prevState = g.class.FSM.States[g.fsmStateIdx].Name
	g.fsmStateIdx = nextIdx
}

// SendEvent implements pubsub.Endpoint, delegating to pkg/fsm.Dispatch.
// The publisher's identity (its Name) is passed through as the action's
// src parameter.
func (g *Gobj) SendEvent(event string, kw types.KW, src pubsub.Endpoint) (types.KW, error) {
	srcName := ""
	if src != nil {
		if named, ok := src.(interface{ Name() string }); ok {
			srcName = named.Name()
		}
	}
	return fsm.Dispatch(g, g, event, kw, srcName)
}

// Send is the public entry point callers use instead of SendEvent
// directly, mirroring "send event to gobj X" from spec.md §2.
func (g *Gobj) Send(event string, kw types.KW, src *Gobj) (types.KW, error) {
	var srcEP pubsub.Endpoint
	if src != nil {
		srcEP = src
	}
	return g.SendEvent(event, kw, srcEP)
}

// Publish implements fsm.Publisher, delegating to the shared pubsub.Engine.
func (g *Gobj) Publish(event string, kw types.KW) (int, error) {
	return g.rt.Pubsub.Publish(g, event, kw)
}

// ChangeState performs change_state(new) (spec.md §4.5 helper).
func (g *Gobj) ChangeState(newState string) error {
	return fsm.ChangeState(g, g, newState)
}

func validName(name string) bool {
	if name == "" || len(name) > MaxNameBytes {
		return false
	}
	return !strings.ContainsAny(name, "`^")
}

func newID() string { return uuid.NewString() }
