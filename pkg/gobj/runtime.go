// Package gobj implements the object node (C4), tree and name services
// (C6), and the lifecycle controller (C8) of spec.md §3/§4.3/§4.4/§4.7.
// It is the central package of the runtime: Gobj implements both
// pkg/fsm.Dispatchable and pkg/pubsub.Endpoint so send_event and
// publish can operate on it without those packages depending back on
// pkg/gobj.
package gobj

import (
	"sync"

	"github.com/cuemby/gobjkernel/pkg/attr"
	"github.com/cuemby/gobjkernel/pkg/gclass"
	"github.com/cuemby/gobjkernel/pkg/pubsub"
	"github.com/cuemby/gobjkernel/pkg/types"
)

// Runtime is the process-wide mutable context of spec.md §9 "Global
// mutable state": the yuno, default service, service/unique-name
// tables, global settings and global trace/panic flags, grouped into a
// single struct passed by reference to every public operation — rather
// than package-level globals, per the Design Notes.
type Runtime struct {
	Classes *gclass.Registry
	Pubsub  *pubsub.Engine

	mu             sync.Mutex
	services       map[string]*Gobj
	uniqueGobjs    map[string]*Gobj
	yuno           *Gobj
	defaultService *Gobj

	GlobalSettings types.KW
	GlobalTrace    uint32
	DeepTrace      bool
	PanicTrace     bool

	yunoMustDie bool
	exitCode    int

	Persistence attr.Persistence
}

// SetPersistence registers the single process-wide persistent-attribute
// backing store (spec.md §6 "Persistent-attribute store (pluggable; one
// registration per process)").
func (rt *Runtime) SetPersistence(p attr.Persistence) { rt.Persistence = p }

// New builds an empty Runtime with fresh class and pub/sub registries.
func New() *Runtime {
	return &Runtime{
		Classes:        gclass.NewRegistry(),
		Pubsub:         pubsub.NewEngine(),
		services:       make(map[string]*Gobj),
		uniqueGobjs:    make(map[string]*Gobj),
		GlobalSettings: make(types.KW),
	}
}

// Yuno returns the root gobj, or nil before it is created.
func (rt *Runtime) Yuno() *Gobj {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.yuno
}

// DefaultService returns the gobj holding the default-service role, if any.
func (rt *Runtime) DefaultService() *Gobj {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.defaultService
}

// FindService looks up a registered service by name (invariant I4).
func (rt *Runtime) FindService(name string) (*Gobj, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	g, ok := rt.services[name]
	return g, ok
}

// FindUniqueGobj looks up a registered unique-named gobj (invariant I3).
func (rt *Runtime) FindUniqueGobj(name string) (*Gobj, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	g, ok := rt.uniqueGobjs[name]
	return g, ok
}

// WalkServices calls f for every registered service.
func (rt *Runtime) WalkServices(f func(*Gobj)) {
	rt.mu.Lock()
	list := make([]*Gobj, 0, len(rt.services))
	for _, g := range rt.services {
		list = append(list, g)
	}
	rt.mu.Unlock()
	for _, g := range list {
		f(g)
	}
}

// SetYunoMustDie sticks true permanently once set (spec.md §4.7 "sticky
// write-once-true"), observable by the process supervisor.
func (rt *Runtime) SetYunoMustDie() {
	rt.mu.Lock()
	rt.yunoMustDie = true
	rt.mu.Unlock()
}

// YunoMustDie reports whether SetYunoMustDie has ever been called.
func (rt *Runtime) YunoMustDie() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.yunoMustDie
}

// SetExitCode sets the last-value exit code observable by the supervisor.
func (rt *Runtime) SetExitCode(code int) {
	rt.mu.Lock()
	rt.exitCode = code
	rt.mu.Unlock()
}

// ExitCode returns the most recently set exit code.
func (rt *Runtime) ExitCode() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.exitCode
}

func (rt *Runtime) registerService(g *Gobj) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.services[g.name] = g
	if g.role == types.RoleDefaultService {
		rt.defaultService = g
	}
}

func (rt *Runtime) unregisterService(g *Gobj) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	delete(rt.services, g.name)
	if rt.defaultService == g {
		rt.defaultService = nil
	}
}

func (rt *Runtime) registerUnique(g *Gobj) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.uniqueGobjs[g.name] = g
}

func (rt *Runtime) unregisterUnique(g *Gobj) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	delete(rt.uniqueGobjs, g.name)
}

func (rt *Runtime) setYuno(g *Gobj) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.yuno = g
}
