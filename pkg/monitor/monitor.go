// Package monitor implements the fire-and-forget monitor/audit sink
// surface (spec.md §6 "Monitor & audit sinks"): monitor_gobj,
// monitor_event, audit_command, dispatched to zero or more registered
// Sinks. A sink must never be allowed to raise into the caller.
package monitor

import (
	"github.com/cuemby/gobjkernel/pkg/log"
)

// Sink receives monitor and audit notifications. Implementations must
// not block the caller for long or panic; the fan-out functions below
// recover panics defensively but a well-behaved sink should not rely on
// that.
type Sink interface {
	MonitorGobj(eventKind, gobjName string)
	MonitorEvent(kind, event, src, dst string)
	AuditCommand(name string, kw map[string]any)
}

var sinks []Sink

// Register adds s to the set of sinks notified by every call below.
// Registration is process-wide: the sink list is a package-level table
// shared by every Runtime in the process (unlike the class registry and
// transform table, which belong to a Runtime and its pubsub Engine).
func Register(s Sink) {
	sinks = append(sinks, s)
}

// Reset clears all registered sinks, used by tests.
func Reset() { sinks = nil }

// MonitorGobj fans eventKind/gobjName out to every registered sink.
func MonitorGobj(eventKind, gobjName string) {
	for _, s := range sinks {
		safely(func() { s.MonitorGobj(eventKind, gobjName) })
	}
}

// MonitorEvent fans an event delivery notification out to every sink.
func MonitorEvent(kind, event, src, dst string) {
	for _, s := range sinks {
		safely(func() { s.MonitorEvent(kind, event, src, dst) })
	}
}

// AuditCommand fans a command invocation out to every sink.
func AuditCommand(name string, kw map[string]any) {
	for _, s := range sinks {
		safely(func() { s.AuditCommand(name, kw) })
	}
}

func safely(f func()) {
	defer func() {
		if r := recover(); r != nil {
			log.WithComponent("monitor").Error().Interface("panic", r).Msg("sink panicked, ignored")
		}
	}()
	f()
}
