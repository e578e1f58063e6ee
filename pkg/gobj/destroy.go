package gobj

import (
	"fmt"

	"github.com/cuemby/gobjkernel/pkg/gobjerr"
	"github.com/cuemby/gobjkernel/pkg/log"
	"github.com/cuemby/gobjkernel/pkg/monitor"
)

// Destroy is the mirror of creation and idempotent (spec.md §4.3
// "Destruction is the mirror and is idempotent (re-entry returns without
// effect)"): forced stop (which forces a pause first), subscriptions
// dropped via hard=force unsubscribe, all children destroyed, then the
// class on_destroy hook, then the instance is freed.
func Destroy(g *Gobj) error {
	if g == nil {
		return fmt.Errorf("destroy: %w", gobjerr.ErrArgument)
	}
	g.mu.Lock()
	if g.destroyedFlag || g.destroyingFlag {
		g.mu.Unlock()
		return nil
	}
	g.destroyingFlag = true
	g.imminentDestroy = true
	g.mu.Unlock()

	if g.Running() {
		log.WithGobj(g.name).Warn().Msg("forcing stop before destroy")
		if err := Stop(g); err != nil {
			log.WithGobj(g.name).Warn().Err(err).Msg("stop before destroy failed")
		}
	}

	g.rt.Pubsub.DestroyEndpoint(g)

	g.mu.Lock()
	kids := append([]*Gobj(nil), g.children...)
	g.mu.Unlock()
	for _, c := range kids {
		if err := Destroy(c); err != nil {
			return fmt.Errorf("destroy child %q: %w", c.name, err)
		}
	}

	if g.class.Hooks.OnDestroy != nil {
		g.class.Hooks.OnDestroy(g.priv)
	}

	g.rt.unregisterService(g)
	g.rt.unregisterUnique(g)

	if parent := g.Parent(); parent != nil {
		parent.removeChild(g)
	}

	g.attrs.MarkDestroyed()
	g.class.DecLive()

	g.mu.Lock()
	g.destroyingFlag = false
	g.destroyedFlag = true
	g.parent = nil
	g.children = nil
	g.bottom = nil
	g.mu.Unlock()

	monitor.MonitorGobj("destroy", g.name)
	return nil
}

func (g *Gobj) removeChild(child *Gobj) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, c := range g.children {
		if c == child {
			g.children = append(g.children[:i], g.children[i+1:]...)
			return
		}
	}
}
