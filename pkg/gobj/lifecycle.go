package gobj

import (
	"fmt"

	"github.com/cuemby/gobjkernel/pkg/gclass"
	"github.com/cuemby/gobjkernel/pkg/gobjerr"
	"github.com/cuemby/gobjkernel/pkg/log"
)

// Start runs on_start after checking every AttrRequired attribute is set
// (spec.md §4.7 "start(): refuses if required attrs are unset"). Starting
// an already-running gobj is a no-op. A disabled gobj refuses to start.
func Start(g *Gobj) error {
	if g.Running() {
		return nil
	}
	if g.Disabled() {
		return fmt.Errorf("start %q: disabled: %w", g.name, gobjerr.ErrState)
	}
	if missing := g.attrs.MissingRequired(); len(missing) > 0 {
		return fmt.Errorf("start %q: missing required attrs %v: %w", g.name, missing, gobjerr.ErrArgument)
	}

	if bottom := g.Bottom(); bottom != nil && !bottom.Disabled() && !bottom.class.HasFlag(gclass.FlagManualStart) {
		if err := Start(bottom); err != nil {
			return fmt.Errorf("start bottom of %q: %w", g.name, err)
		}
	}

	if g.class.Hooks.OnStart != nil {
		if err := g.class.Hooks.OnStart(g.priv); err != nil {
			return fmt.Errorf("on_start %q: %w", g.name, err)
		}
	}
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()
	return nil
}

// Stop runs on_stop and clears running (spec.md §4.7 "stop(): refuses if
// not running; if playing, pauses first with an info-level warning").
// Stopping an already-stopped gobj is a no-op.
func Stop(g *Gobj) error {
	if !g.Running() {
		return nil
	}
	if g.Playing() {
		log.WithGobj(g.name).Info().Msg("pausing before stop")
		if err := Pause(g); err != nil {
			return fmt.Errorf("pause before stop %q: %w", g.name, err)
		}
	}
	if g.class.Hooks.OnStop != nil {
		if err := g.class.Hooks.OnStop(g.priv); err != nil {
			return fmt.Errorf("on_stop %q: %w", g.name, err)
		}
	}
	g.mu.Lock()
	g.running = false
	g.mu.Unlock()
	return nil
}

// Play runs on_play (spec.md §4.7 "play(): requires running unless class
// clears required_start_to_play, in which case auto-start is performed
// with an error-level warning"). On_play failure reverts playing to 0.
func Play(g *Gobj) error {
	if g.Playing() {
		return nil
	}
	if g.Disabled() {
		return fmt.Errorf("play %q: disabled: %w", g.name, gobjerr.ErrState)
	}
	if !g.Running() {
		if g.class.HasFlag(gclass.FlagRequiredStartToPlay) {
			return fmt.Errorf("play %q: not running: %w", g.name, gobjerr.ErrState)
		}
		log.WithGobj(g.name).Error().Msg("auto-starting on play: required_start_to_play cleared")
		if err := Start(g); err != nil {
			return fmt.Errorf("auto-start before play %q: %w", g.name, err)
		}
	}
	if g.class.Hooks.OnPlay != nil {
		if err := g.class.Hooks.OnPlay(g.priv); err != nil {
			return fmt.Errorf("on_play %q: %w", g.name, err)
		}
	}
	g.mu.Lock()
	g.playing = true
	g.mu.Unlock()
	return nil
}

// Pause runs on_pause and clears playing. Pausing an already-paused
// (non-playing) gobj is a no-op.
func Pause(g *Gobj) error {
	if !g.Playing() {
		return nil
	}
	if g.class.Hooks.OnPause != nil {
		if err := g.class.Hooks.OnPause(g.priv); err != nil {
			return fmt.Errorf("on_pause %q: %w", g.name, err)
		}
	}
	g.mu.Lock()
	g.playing = false
	g.mu.Unlock()
	return nil
}

// Enable clears the disabled flag, then runs class on_enable or, absent
// one, start_tree (spec.md §4.7 "enable: runs class on_enable or,
// absent, start_tree").
func Enable(g *Gobj) error {
	if !g.Disabled() {
		return nil
	}
	g.mu.Lock()
	g.disabled = false
	g.mu.Unlock()
	if g.class.Hooks.OnEnable != nil {
		if err := g.class.Hooks.OnEnable(g.priv); err != nil {
			return fmt.Errorf("on_enable %q: %w", g.name, err)
		}
		return nil
	}
	return StartTree(g)
}

// Disable runs class on_disable or, absent, stop_tree, then sets the
// disabled flag (spec.md §4.7 "disable: runs class on_disable or,
// absent, stop_tree"). A disabled gobj refuses start and play.
func Disable(g *Gobj) error {
	if g.Disabled() {
		return nil
	}
	if g.class.Hooks.OnDisable != nil {
		if err := g.class.Hooks.OnDisable(g.priv); err != nil {
			return fmt.Errorf("on_disable %q: %w", g.name, err)
		}
	} else if err := StopTree(g); err != nil {
		return fmt.Errorf("disable %q: %w", g.name, err)
	}
	g.mu.Lock()
	g.disabled = true
	g.mu.Unlock()
	return nil
}

// ServiceAutoStart runs the process startup sequence over the service
// registry (spec.md §4.7 "Service auto-start iterates the service
// registry: those with an on_play method get only start ...; others get
// start_tree. autoplay follows after autostart.").
func ServiceAutoStart(rt *Runtime) error {
	var firstErr error
	rt.WalkServices(func(svc *Gobj) {
		if firstErr != nil || !svc.autostart {
			return
		}
		var err error
		if svc.class.Hooks.OnPlay != nil {
			err = Start(svc)
		} else {
			err = StartTree(svc)
		}
		if err != nil {
			firstErr = fmt.Errorf("service auto-start %q: %w", svc.name, err)
			return
		}
		if svc.autoplay {
			if err := Play(svc); err != nil {
				firstErr = fmt.Errorf("service autoplay %q: %w", svc.name, err)
			}
		}
	})
	return firstErr
}
