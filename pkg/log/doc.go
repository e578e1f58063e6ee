/*
Package log provides structured logging for the gobj runtime using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging with
component-specific loggers, configurable log levels, and helper functions for
common logging patterns. All logs include timestamps and support filtering by
severity level.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()                │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("fsm")                     │          │
	│  │  - WithClass("door")                        │          │
	│  │  - WithGobj("root/svc/door#1")               │          │
	│  │  - WithEvent("open")                        │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Log Output                       │          │
	│  │  JSON: {"level":"info","gclass":"door", ...}│          │
	│  │  Console: <RFC3339> INF state changed ...   │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Levels

Debug carries per-event dispatch tracing (see pkg/trace), Info carries
lifecycle transitions (create/destroy/start/stop), Warn carries refused
events and recoverable state errors, Error carries persistence and
authorization failures, Fatal is reserved for class FSM validation
failures (spec.md §7: schema errors are programmer bugs and terminate
the process).

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true, Output: os.Stdout})
	logger := log.WithClass("door")
	logger.Info().Str("event", "open").Msg("event dispatched")
*/
package log
