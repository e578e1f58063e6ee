package gobj

import (
	"fmt"

	"github.com/cuemby/gobjkernel/pkg/gclass"
	"github.com/cuemby/gobjkernel/pkg/gobjerr"
	"github.com/cuemby/gobjkernel/pkg/types"
)

// TreeSpec is the declarative node of spec.md §4.4 "create_tree(parent,
// spec, ev_on_setup, ev_on_setup_complete)":
//
//	{ gclass, name, kw, as_service?, as_unique?, default_service?,
//	  autoplay?, autostart?, disabled?, zchilds:[ ...same shape... ] }
type TreeSpec struct {
	GClass         string
	Name           string
	KW             types.KW
	AsService      bool
	AsUnique       bool
	DefaultService bool
	Autoplay       bool
	Autostart      bool
	Disabled       bool
	Children       []TreeSpec
}

// CreateTree builds parent's subtree from spec, resolving each node's
// class by name, wiring a default subscriber reference, firing the
// setup events declared on parent, and single-childed bottom wiring
// (spec.md §4.4 steps 1-5).
func (rt *Runtime) CreateTree(parent *Gobj, spec TreeSpec, evOnSetup, evOnSetupComplete string) (*Gobj, error) {
	class, ok := rt.Classes.Find(spec.GClass)
	if !ok {
		return nil, fmt.Errorf("create_tree: unknown class %q: %w", spec.GClass, gobjerr.ErrArgument)
	}

	kw := spec.KW.Clone()
	resolveSubscriber(rt, parent, class, kw)

	g, err := rt.Create(CreateOpts{
		Name:      spec.Name,
		Class:     class,
		Parent:    parent,
		KW:        kw,
		AsService: spec.AsService,
		AsUnique:  spec.AsUnique,
		Default:   spec.DefaultService,
		Autoplay:  spec.Autoplay,
		Autostart: spec.Autostart,
	})
	if err != nil {
		return nil, fmt.Errorf("create_tree %q: %w", spec.Name, err)
	}

	if spec.Disabled {
		if err := Disable(g); err != nil {
			return nil, fmt.Errorf("create_tree %q: disable: %w", spec.Name, err)
		}
	}

	if evOnSetup != "" && parent != nil {
		if _, ok := parent.class.FSM.InputEvent(evOnSetup); ok {
			if _, err := parent.Send(evOnSetup, types.KW{}, g); err != nil {
				return nil, fmt.Errorf("create_tree %q: ev_on_setup: %w", spec.Name, err)
			}
		}
	}

	var firstChild *Gobj
	for i, childSpec := range spec.Children {
		child, err := rt.CreateTree(g, childSpec, "", "")
		if err != nil {
			return nil, err
		}
		if i == 0 {
			firstChild = child
		}
	}
	if len(spec.Children) == 1 {
		g.SetBottom(firstChild)
	}

	if evOnSetupComplete != "" && parent != nil {
		if _, ok := parent.class.FSM.InputEvent(evOnSetupComplete); ok {
			if _, err := parent.Send(evOnSetupComplete, types.KW{}, firstChild); err != nil {
				return nil, fmt.Errorf("create_tree %q: ev_on_setup_complete: %w", spec.Name, err)
			}
		}
	}

	return g, nil
}

// resolveSubscriber implements step 1's "subscriber" key coercion: a
// string is resolved to the unique-named gobj it names; a back-reference
// (an already-resolved *Gobj) is kept; if absent and the class declares a
// subscriber attribute and parent is not the yuno, default it to parent.
func resolveSubscriber(rt *Runtime, parent *Gobj, class *gclass.Class, kw types.KW) {
	const key = "subscriber"
	switch v := kw[key].(type) {
	case string:
		if g, ok := rt.FindUniqueGobj(v); ok {
			kw[key] = g
		}
	case *Gobj:
		// already a reference; keep as-is
	case nil:
		if parent != nil && parent.Role() != types.RoleYuno && class.AttrSchema != nil {
			if _, ok := class.AttrSchema.Find(key); ok {
				kw[key] = parent
			}
		}
	}
}
