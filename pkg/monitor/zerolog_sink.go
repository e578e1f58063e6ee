package monitor

import "github.com/cuemby/gobjkernel/pkg/log"

// ZerologSink is the default sink: every notification becomes one
// structured log line.
type ZerologSink struct{}

func (ZerologSink) MonitorGobj(eventKind, gobjName string) {
	log.WithComponent("monitor").Info().Str("kind", eventKind).Str("gobj", gobjName).Msg("monitor_gobj")
}

func (ZerologSink) MonitorEvent(kind, event, src, dst string) {
	log.WithComponent("monitor").Info().Str("kind", kind).Str("event", event).Str("src", src).Str("dst", dst).Msg("monitor_event")
}

func (ZerologSink) AuditCommand(name string, kw map[string]any) {
	log.WithComponent("monitor").Info().Str("command", name).Interface("kw", kw).Msg("audit_command")
}
