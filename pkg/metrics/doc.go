/*
Package metrics provides Prometheus metrics collection and exposition
for the gobj runtime.

The package registers gauges, counters, and histograms covering the
object tree's lifecycle (live instances, running/playing counts,
create/destroy rates), event dispatch, pub/sub publication, and
command/authz dispatch, and exposes them via the standard promhttp
handler for scraping.

Collector polls the class registry and the gobj tree on an interval to
keep the live/running/playing gauges current. The counters are moved by
MonitorSink, which turns the pkg/monitor notifications emitted by
pkg/gobj, pkg/fsm, pkg/pubsub, pkg/command, and pkg/authz into counter
increments once it is registered with monitor.Register. The
CreateDuration and EventDispatchDuration histograms and the
SubscriptionsActive gauge are registered, but nothing in this module
updates them.

A Timer wraps time.Now() for the "start a timer, observe a histogram on
return" pattern; nothing in this module outside its tests uses it.
*/
package metrics
