/*
Package pubsub implements the subscription engine (C7, spec.md §4.6) and
its transformation filters (§4.10): subscribe/unsubscribe with
deep-structural idempotent matching, publish with the pre-filter →
event-filter → rename → selection-filter → system-event-gate →
local-key-removal → transform → global-merge pipeline, and enumeration
by submatch.

Grounded on the teacher's pkg/events.Broker (subscribe/publish/broadcast
shape) generalized from an unfiltered channel fan-out to the spec's
per-subscription filter and transform pipeline, and on
original_source/src/10_gobj.h's gobj_subscribe_event/gobj_publish_event.
*/
package pubsub
