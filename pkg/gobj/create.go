package gobj

import (
	"fmt"

	"github.com/cuemby/gobjkernel/pkg/attr"
	"github.com/cuemby/gobjkernel/pkg/gclass"
	"github.com/cuemby/gobjkernel/pkg/gobjerr"
	"github.com/cuemby/gobjkernel/pkg/log"
	"github.com/cuemby/gobjkernel/pkg/monitor"
	"github.com/cuemby/gobjkernel/pkg/types"
)

// CreateOpts configures one of the five creation variants of spec.md §4.3.
type CreateOpts struct {
	Name      string
	Class     *gclass.Class
	Parent    *Gobj
	KW        types.KW
	AsService bool
	AsUnique  bool
	Volatile  bool
	Default   bool // default_service, only meaningful with AsService
	Disabled  bool
	Autoplay  bool
	Autostart bool
}

// Create implements the ordinary creation variant (spec.md §4.3 steps 1-11).
func (rt *Runtime) Create(opts CreateOpts) (*Gobj, error) {
	if opts.Class == nil {
		return nil, fmt.Errorf("create %q: nil class: %w", opts.Name, gobjerr.ErrArgument)
	}
	isYuno := opts.Parent == nil
	if !isYuno {
		if opts.Parent == nil || !opts.Parent.IsAlive() {
			return nil, fmt.Errorf("create %q: %w", opts.Name, gobjerr.ErrArgument)
		}
		if rt.Yuno() == nil {
			return nil, fmt.Errorf("create %q: no reachable yuno: %w", opts.Name, gobjerr.ErrState)
		}
	}
	if !validName(opts.Name) {
		return nil, fmt.Errorf("create: invalid name %q: %w", opts.Name, gobjerr.ErrArgument)
	}

	// Step 3: lazy FSM validation, exactly once per class.
	if err := opts.Class.EnsureValidated(); err != nil {
		log.WithClass(opts.Class.Name).Fatal().Err(err).Msg("class FSM validation failed")
		return nil, err
	}

	g := &Gobj{
		rt:    rt,
		id:    newID(),
		name:  opts.Name,
		class: opts.Class,
		role:  types.RoleOrdinary,
	}
	g.volatile = opts.Volatile

	switch {
	case opts.Default:
		g.role = types.RoleDefaultService
	case opts.AsService:
		g.role = types.RoleService
	case opts.AsUnique:
		g.role = types.RoleUnique
	}
	if isYuno {
		g.role = types.RoleYuno
	}

	// Step 5: attribute store from schema with defaults.
	g.attrs = attr.New(opts.Class.AttrSchema, attr.Hooks{
		OnPostWriteStats: func(name string, old, new any) { onPostWriteStats(g, name, old, new) },
	})

	// Step 6: register unique / service entries.
	if opts.AsUnique || isYuno {
		rt.registerUnique(g)
	}
	if opts.AsService || opts.Default {
		rt.registerService(g)
	}

	// Step 7: merge config into the attribute store. The store's own
	// created gate opens here so on_create (step 10) can also write
	// attributes; the gobj-level Created() flag stays false until step 10
	// so it is observable only once construction fully completes.
	g.attrs.MarkCreated()
	for k, v := range opts.KW {
		_ = g.attrs.Write(k, v) // ignore_unknown_attrs semantics: unknown keys silently skipped
	}

	// Step 8: load persistent attrs for unique objects.
	if opts.AsUnique || isYuno {
		g.attrs.SetPersistence(rt.Persistence, g.name, true)
		if err := g.attrs.LoadPersistent(nil); err != nil {
			log.WithGobj(opts.Name).Warn().Err(err).Msg("load_persistent_attrs failed")
		}
	}

	// Step 9: attach to parent (except the yuno).
	if !isYuno {
		opts.Parent.addChild(g)
		g.parent = opts.Parent
	} else {
		rt.setYuno(g)
	}
	g.invalidateCaches()

	g.autoplay = opts.Autoplay
	g.autostart = opts.Autostart
	if opts.Disabled {
		g.disabled = true
	}

	// Step 10: on_create hook, then set created flag.
	if opts.Class.Hooks.OnCreateWithKw != nil {
		if err := opts.Class.Hooks.OnCreateWithKw(g.priv, opts.KW); err != nil {
			return nil, fmt.Errorf("on_create_with_kw %q: %w", opts.Name, err)
		}
	} else if opts.Class.Hooks.OnCreate != nil {
		if err := opts.Class.Hooks.OnCreate(g.priv, opts.KW); err != nil {
			return nil, fmt.Errorf("on_create %q: %w", opts.Name, err)
		}
	}
	g.createdFlag = true

	opts.Class.IncLive()

	// Step 11: notify parent's on_child_added hook.
	if !isYuno && opts.Parent.class.Hooks.OnChildAdded != nil {
		opts.Parent.class.Hooks.OnChildAdded(opts.Parent.priv, g.name)
	}

	log.WithComponent("gobj").Debug().Str("gobj", g.name).Str("class", opts.Class.Name).Msg("created")
	monitor.MonitorGobj("create", g.name)
	return g, nil
}

// CreateUnique is Create with AsUnique forced on.
func (rt *Runtime) CreateUnique(opts CreateOpts) (*Gobj, error) {
	opts.AsUnique = true
	return rt.Create(opts)
}

// CreateVolatile is Create with the volatile lifetime hint forced on.
func (rt *Runtime) CreateVolatile(opts CreateOpts) (*Gobj, error) {
	opts.Volatile = true
	return rt.Create(opts)
}

// CreateService is Create with AsService forced on.
func (rt *Runtime) CreateService(opts CreateOpts) (*Gobj, error) {
	opts.AsService = true
	return rt.Create(opts)
}

// YunoFactory creates the single root gobj of the process. It refuses
// to run twice (spec.md §4.2 "may only be created via yuno_factory,
// which refuses to run twice").
func (rt *Runtime) YunoFactory(role, name string, class *gclass.Class, kw types.KW) (*Gobj, error) {
	if rt.Yuno() != nil {
		return nil, fmt.Errorf("yuno already created: %w", gobjerr.ErrState)
	}
	if err := rt.Classes.RegisterYuno(role, class); err != nil {
		return nil, err
	}
	return rt.Create(CreateOpts{Name: name, Class: class, KW: kw})
}

func (g *Gobj) addChild(child *Gobj) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.children = append(g.children, child)
}

// onPostWriteStats walks up to the nearest service ancestor and records
// the stat there, per spec.md §4.1 "stats attrs roll up to the owning
// service". The rollup target is the service gobj's stats map (not its
// attribute store), one entry per "<gobj-name>.<attr-name>" key holding
// the newest value, with the map created lazily.
func onPostWriteStats(g *Gobj, name string, old, new any) {
	for p := g.Parent(); p != nil; p = p.Parent() {
		if p.role != types.RoleService && p.role != types.RoleDefaultService && p.role != types.RoleYuno {
			continue
		}
		if p.stats == nil {
			p.mu.Lock()
			if p.stats == nil {
				p.stats = make(types.KW)
			}
			p.mu.Unlock()
		}
		key := g.name + "." + name
		p.mu.Lock()
		p.stats[key] = new
		p.mu.Unlock()
		return
	}
}
