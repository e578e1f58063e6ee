package gobj

import (
	"fmt"

	"github.com/cuemby/gobjkernel/pkg/gclass"
	"github.com/cuemby/gobjkernel/pkg/gobjerr"
)

// Reparent moves g from its current parent to newParent, invalidating
// g's and its descendants' derived name caches (spec.md §3 "Derived
// caches ... invalidated when tree topology changes").
func Reparent(g, newParent *Gobj) error {
	if g == nil || newParent == nil {
		return fmt.Errorf("reparent: %w", gobjerr.ErrArgument)
	}
	if g == newParent {
		return fmt.Errorf("reparent %q onto itself: %w", g.name, gobjerr.ErrArgument)
	}
	for p := newParent; p != nil; p = p.Parent() {
		if p == g {
			return fmt.Errorf("reparent %q under its own descendant %q: %w", g.name, newParent.name, gobjerr.ErrArgument)
		}
	}
	if old := g.Parent(); old != nil {
		old.removeChild(g)
	}
	newParent.addChild(g)
	g.mu.Lock()
	g.parent = newParent
	g.mu.Unlock()
	g.invalidateCaches()
	return nil
}

// WalkTree visits g and every descendant, depth-first, pre-order.
func WalkTree(g *Gobj, f func(*Gobj)) {
	if g == nil {
		return
	}
	f(g)
	for _, c := range g.Children() {
		WalkTree(c, f)
	}
}

// StartTree visits top-to-bottom, skipping any gobj whose class carries
// the manual_start flag and skipping a disabled gobj's whole subtree
// (spec.md §4.7 "start_tree").
func StartTree(g *Gobj) error {
	if g == nil {
		return nil
	}
	if g.Disabled() {
		return nil
	}
	if !g.class.HasFlag(gclass.FlagManualStart) {
		if err := Start(g); err != nil {
			return fmt.Errorf("start_tree %q: %w", g.name, err)
		}
	}
	for _, c := range g.Children() {
		if err := StartTree(c); err != nil {
			return err
		}
	}
	return nil
}

// StopTree visits bottom-up, children before their parent (spec.md §5
// Ordering guarantees: "stop_tree and destroy visit bottom-up (children
// before parents)" — this supersedes the top-to-bottom wording of §4.7,
// see DESIGN.md).
func StopTree(g *Gobj) error {
	if g == nil {
		return nil
	}
	if g.Disabled() {
		return nil
	}
	for _, c := range g.Children() {
		if err := StopTree(c); err != nil {
			return err
		}
	}
	if !g.class.HasFlag(gclass.FlagManualStart) {
		if err := Stop(g); err != nil {
			return fmt.Errorf("stop_tree %q: %w", g.name, err)
		}
	}
	return nil
}
