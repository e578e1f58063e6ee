// Package monitor fans fire-and-forget monitor/audit notifications out
// to zero or more registered Sinks: the default ZerologSink, and a
// RedisSink reference implementation for off-process delivery.
package monitor
