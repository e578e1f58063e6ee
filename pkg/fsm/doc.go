/*
Package fsm implements event dispatch for the per-class finite state
machine of spec.md §4.5 (C5): transition lookup by (state, event),
transition-commit-before-action ordering, and the post-action
state_changed publication. It works against the Dispatchable/Publisher
interfaces rather than a concrete object type so pkg/gobj can implement
them without creating an import cycle between the tree/lifecycle layer
and the dispatch layer — the same separation the teacher draws between
pkg/manager (state) and pkg/reconciler (the loop that acts on it).
*/
package fsm
