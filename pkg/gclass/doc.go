/*
Package gclass implements the class registry and class descriptor of
spec.md §3 and §4.2 (components C1/C3): an immutable-after-registration
FSM shape, attribute schema, optional command/authz schemas, and a
capability record of optional hooks (on_create, on_start, on_publish_event,
...) collected into one struct per spec.md §9 "Dynamic dispatch via
function pointers in class descriptors" — implementers register classes
declaratively and the engine in pkg/gobj/pkg/fsm/pkg/pubsub consults the
Hooks record per call instead of a vtable.

Grounded on the teacher's pkg/manager (a registry of long-lived
descriptors consulted by the reconciler and scheduler) and on
original_source/src/10_gobj.h's GCLASS/GMETHODS tables.
*/
package gclass
