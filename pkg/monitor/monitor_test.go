package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingSink struct {
	gobjCalls  [][2]string
	eventCalls [][4]string
	audits     []string
}

func (r *recordingSink) MonitorGobj(eventKind, gobjName string) {
	r.gobjCalls = append(r.gobjCalls, [2]string{eventKind, gobjName})
}

func (r *recordingSink) MonitorEvent(kind, event, src, dst string) {
	r.eventCalls = append(r.eventCalls, [4]string{kind, event, src, dst})
}

func (r *recordingSink) AuditCommand(name string, kw map[string]any) {
	r.audits = append(r.audits, name)
}

func TestDispatchFansOutToAllSinks(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	a, b := &recordingSink{}, &recordingSink{}
	Register(a)
	Register(b)

	MonitorGobj("create", "svc1")
	MonitorEvent("send", "go", "x", "y")
	AuditCommand("poke", map[string]any{"n": 1})

	for _, s := range []*recordingSink{a, b} {
		assert.Equal(t, [][2]string{{"create", "svc1"}}, s.gobjCalls)
		assert.Equal(t, [][4]string{{"send", "go", "x", "y"}}, s.eventCalls)
		assert.Equal(t, []string{"poke"}, s.audits)
	}
}

type panickingSink struct{}

func (panickingSink) MonitorGobj(string, string)         { panic("boom") }
func (panickingSink) MonitorEvent(string, string, string, string) {}
func (panickingSink) AuditCommand(string, map[string]any) {}

func TestPanickingSinkDoesNotPropagate(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	Register(panickingSink{})
	assert.NotPanics(t, func() { MonitorGobj("create", "x") })
}
