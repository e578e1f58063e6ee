// Package fsm implements the event-dispatch half of the FSM engine (C5,
// spec.md §4.5): send_event's lookup-of-transition, transition commit,
// action invocation and state_changed publication. Class shape
// validation (invariant I2) lives in pkg/gclass since it only concerns
// the descriptor, not a live instance.
//
// The engine operates against the small Dispatchable/Publisher
// interfaces below rather than the concrete pkg/gobj.Gobj type, so that
// pkg/gobj can depend on pkg/fsm without a import cycle — pkg/gobj.Gobj
// implements both interfaces and calls fsm.Dispatch from its SendEvent
// method.
package fsm

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/cuemby/gobjkernel/pkg/gclass"
	"github.com/cuemby/gobjkernel/pkg/gobjerr"
	"github.com/cuemby/gobjkernel/pkg/monitor"
	"github.com/cuemby/gobjkernel/pkg/types"
)

// Dispatchable is the live-instance surface send_event needs: current
// class/state, a way to commit a transition, and liveness/running bits.
type Dispatchable interface {
	Class() *gclass.Class
	PrivateData() any
	StateIndex() int
	CommitTransition(nextIndex int, event string)
	IsAlive() bool // not destroying/destroyed — invariant I8
	IsRunning() bool
	Name() string
}

// Publisher emits the synthetic state_changed event after a committed
// transition (spec.md §4.5 step 4, "publish a synthetic state_changed
// event"). pkg/gobj.Gobj.Publish satisfies this by delegating to
// pkg/pubsub.
type Publisher interface {
	Publish(event string, kw types.KW) (int, error)
}

// StateChangedEvent is the reserved system event name (spec.md §6).
const StateChangedEvent = "__EV_STATE_CHANGED__"

// nestedDispatch is the process-wide nested-dispatch counter used only
// for trace indentation (spec.md §5: "not atomic; its sole purpose is
// trace indentation" — we still use an atomic int so concurrent test
// goroutines don't trip the race detector; the runtime itself is
// single-threaded cooperative).
var nestedDispatch int64

// DispatchDepth returns the current nesting depth, for trace indentation.
func DispatchDepth() int64 { return atomic.LoadInt64(&nestedDispatch) }

// Dispatch implements send_event(dst, event, kw, src) (spec.md §4.5).
func Dispatch(dst Dispatchable, pub Publisher, event string, kw types.KW, src string) (types.KW, error) {
	if dst == nil || !dst.IsAlive() {
		return nil, gobjerr.ErrNoGobj
	}

	atomic.AddInt64(&nestedDispatch, 1)
	defer atomic.AddInt64(&nestedDispatch, -1)

	class := dst.Class()
	desc, declared := class.FSM.InputEvent(event)
	if !declared {
		if class.Hooks.OnInjectEvent != nil {
			return class.Hooks.OnInjectEvent(dst.PrivateData(), event, kw, src)
		}
		return nil, fmt.Errorf("event %q on class %q: %w", event, class.Name, gobjerr.ErrInputEventNotDefined)
	}

	stateIdx := dst.StateIndex()
	state := class.FSM.States[stateIdx]

	for _, tr := range state.Transitions {
		if !strings.EqualFold(tr.Event, event) {
			continue
		}

		committed := false
		if tr.NextState != "" {
			nextIdx := indexOfState(class.FSM, tr.NextState)
			dst.CommitTransition(nextIdx, event)
			committed = true
		}

		var (
			result types.KW
			err    error
		)
		// NoAction: no handler declared for this transition, nothing runs.
		if tr.Action != nil {
			result, err = tr.Action(kw, src)
		}

		if committed && dst.IsRunning() {
			publishStateChanged(dst, pub, class, state.Name, tr.NextState)
		}

		_ = desc // event descriptor consulted above; kept for clarity
		monitor.MonitorEvent("send_event", event, src, dst.Name())
		return result, err
	}

	monitor.MonitorEvent("send_event_refused", event, src, dst.Name())
	return nil, fmt.Errorf("event %q refused in state %q on class %q: %w", event, state.Name, class.Name, gobjerr.ErrNotAccepted)
}

func publishStateChanged(dst Dispatchable, pub Publisher, class *gclass.Class, previous, current string) {
	kw := types.KW{"previous_state": previous, "current_state": current}
	if class.Hooks.OnStateChanged != nil {
		class.Hooks.OnStateChanged(dst.PrivateData(), previous, current)
		return
	}
	if pub != nil {
		_, _ = pub.Publish(StateChangedEvent, kw)
	}
}

func indexOfState(f *gclass.FSM, name string) int {
	for i, s := range f.States {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// ChangeState performs a bare transition commit and state_changed
// publication without an event (spec.md §4.5 "change_state(new)").
func ChangeState(dst Dispatchable, pub Publisher, newState string) error {
	class := dst.Class()
	nextIdx := indexOfState(class.FSM, newState)
	if nextIdx < 0 {
		return fmt.Errorf("unknown state %q: %w", newState, gobjerr.ErrArgument)
	}
	previous := class.FSM.States[dst.StateIndex()].Name
	dst.CommitTransition(nextIdx, "")
	if dst.IsRunning() {
		publishStateChanged(dst, pub, class, previous, newState)
	}
	return nil
}
