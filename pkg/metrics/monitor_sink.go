package metrics

import "strings"

// MonitorSink implements monitor.Sink, translating monitor_gobj
// notifications from pkg/gobj into the create/destroy counters above.
// It is registered with monitor.Register by the process that wants
// Prometheus instrumentation; it is not wired by default so that
// pkg/gobj stays free of any compile-time dependency on this package.
type MonitorSink struct{}

func (MonitorSink) MonitorGobj(eventKind, gobjName string) {
	switch eventKind {
	case "create":
		GobjsCreatedTotal.WithLabelValues("").Inc()
	case "destroy":
		GobjsDestroyedTotal.WithLabelValues("").Inc()
	}
}

func (MonitorSink) MonitorEvent(kind, event, src, dst string) {
	switch kind {
	case "send_event":
		EventsDispatchedTotal.WithLabelValues("", event).Inc()
	case "send_event_refused":
		EventsRefusedTotal.WithLabelValues("", event, "refused").Inc()
	case "publish_zero_subscribers":
		PublishZeroSubscribersTotal.WithLabelValues(event).Inc()
	case "publish":
		PublicationsTotal.WithLabelValues(event).Inc()
	}
}

func (MonitorSink) AuditCommand(name string, kw map[string]any) {
	if authzName, ok := strings.CutPrefix(name, "authz:"); ok {
		AuthzChecksTotal.WithLabelValues("", authzName, "").Inc()
		return
	}
	CommandsDispatchedTotal.WithLabelValues("", name).Inc()
}
