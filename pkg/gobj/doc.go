// Package gobj ties the class registry (pkg/gclass), the FSM dispatch
// engine (pkg/fsm) and the pub/sub engine (pkg/pubsub) into the runtime
// object: Gobj, the tree it lives in, and the lifecycle state machine
// layered on top of running/playing/disabled.
//
// Gobj implements fsm.Dispatchable and fsm.Publisher so pkg/fsm can
// dispatch events against it, and pubsub.Endpoint so pkg/pubsub can
// deliver publications to it, without either package importing pkg/gobj.
// Runtime gathers the process-wide mutable state — class/pubsub
// registries, service and unique-name tables, the yuno, global settings
// and trace flags — into one struct passed by reference, in place of
// package-level globals.
//
// Grounded on cuemby-warren's pkg/manager (the FSM-shaped apply loop)
// and pkg/reconciler (tree-walk reconciliation), generalized to the
// object-tree/bottom-chain/lifecycle shape of the gobj runtime.
package gobj
