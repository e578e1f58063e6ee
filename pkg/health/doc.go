// Package health provides pluggable health checkers (HTTP, TCP, exec)
// and a Monitor that polls one on an interval and publishes a
// "health_changed" event on the target gobj whenever the computed
// Status.Healthy flips.
//
// Status.Update applies the same consecutive-failure/success hysteresis
// regardless of checker kind: a StartPeriod grace window suppresses
// checks entirely, then Retries consecutive failures are required
// before a healthy target is marked unhealthy, and a single success
// clears it. Monitor is deliberately unaware of the gobj command or FSM
// layers — it only needs a Name and a Publish method, so any gobj.Gobj
// satisfies Target without this package importing pkg/gobj.
package health
