// Package gobjerr holds the typed sentinel errors and result codes of
// spec.md §7 Error Handling Design. Engine functions return one of these
// wrapped with fmt.Errorf("...: %w", ...) for context, never a panic on
// user input — only class FSM validation (ErrSchema) is fatal.
package gobjerr

import "errors"

// Argument error: null gobj/class, malformed name, missing required parameter.
var ErrArgument = errors.New("argument error")

// State error: operation invalid in current state (stop when not running, ...).
var ErrState = errors.New("state error")

// Not-found: no such class/service/event/attribute.
var ErrNotFound = errors.New("not found")

// Schema error: class FSM inconsistency. Fatal — a programmer bug.
var ErrSchema = errors.New("schema error")

// Persistence error: propagated from the pluggable attribute store.
var ErrPersistence = errors.New("persistence error")

// Authorization error: distinct so callers can map it to an HTTP-403-like response.
var ErrAuthz = errors.New("authorization error")

// ErrNoGobj is returned by send_event when the destination is null,
// destroying, or destroyed (spec.md §4.5 step 1, invariant I8).
var ErrNoGobj = errors.New("no gobj")

// ErrInputEventNotDefined is returned when the event is not in the
// class's declared input-event set and no on_inject_event is set.
var ErrInputEventNotDefined = errors.New("input event not defined")

// ErrNotAccepted is returned when the event is declared but no
// transition matches the current state (spec.md §4.5 step 5).
var ErrNotAccepted = errors.New("event not accepted in current state")

// ErrTypeMismatch is returned by AttrStore.Write on a type-incompatible value.
var ErrTypeMismatch = errors.New("attribute type mismatch")

// Code is a negative result code, mirroring the source's integer return
// convention for callers that prefer testing a code over errors.Is.
type Code int

const (
	OK                  Code = 0
	CodeArgument        Code = -1
	CodeState           Code = -2
	CodeNotFound        Code = -3
	CodeSchema          Code = -4
	CodePersistence     Code = -5
	CodeAuthz           Code = -6
	CodeNoGobj          Code = -7
	CodeInputEventUndef Code = -8
	CodeNotAccepted     Code = -9
	CodeTypeMismatch    Code = -10
)

// ToCode maps a sentinel error (possibly wrapped) to its result code.
// Unrecognized errors map to CodeArgument, the most conservative choice.
func ToCode(err error) Code {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, ErrNoGobj):
		return CodeNoGobj
	case errors.Is(err, ErrInputEventNotDefined):
		return CodeInputEventUndef
	case errors.Is(err, ErrNotAccepted):
		return CodeNotAccepted
	case errors.Is(err, ErrTypeMismatch):
		return CodeTypeMismatch
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrSchema):
		return CodeSchema
	case errors.Is(err, ErrPersistence):
		return CodePersistence
	case errors.Is(err, ErrAuthz):
		return CodeAuthz
	case errors.Is(err, ErrState):
		return CodeState
	default:
		return CodeArgument
	}
}
