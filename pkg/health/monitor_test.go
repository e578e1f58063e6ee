package health

import (
	"context"
	"testing"
	"time"

	"github.com/cuemby/gobjkernel/pkg/types"
)

type fakeTarget struct {
	name       string
	published  []string
	lastHealth any
}

func (f *fakeTarget) Name() string { return f.name }

func (f *fakeTarget) Publish(event string, kw types.KW) (int, error) {
	f.published = append(f.published, event)
	f.lastHealth = kw["healthy"]
	return 1, nil
}

type scriptedChecker struct {
	results []Result
	i       int
}

func (s *scriptedChecker) Check(context.Context) Result {
	r := s.results[s.i]
	if s.i < len(s.results)-1 {
		s.i++
	}
	return r
}

func (s *scriptedChecker) Type() CheckType { return CheckTypeHTTP }

func TestMonitorPublishesOnlyOnTransition(t *testing.T) {
	checker := &scriptedChecker{results: []Result{
		{Healthy: true},
		{Healthy: true},
		{Healthy: false},
		{Healthy: false},
	}}
	target := &fakeTarget{name: "svc"}
	m := NewMonitor(target, checker, Config{Retries: 1})

	for i := 0; i < len(checker.results); i++ {
		m.poll(context.Background())
	}

	if len(target.published) != 1 {
		t.Fatalf("expected exactly one health_changed publication, got %d", len(target.published))
	}
	if target.lastHealth != false {
		t.Fatalf("expected final published health=false, got %v", target.lastHealth)
	}
}

func TestMonitorSkipsDuringStartPeriod(t *testing.T) {
	checker := &scriptedChecker{results: []Result{{Healthy: false}}}
	target := &fakeTarget{name: "svc"}
	m := NewMonitor(target, checker, Config{StartPeriod: time.Hour})

	m.poll(context.Background())

	if len(target.published) != 0 {
		t.Fatalf("expected no publication during start period, got %d", len(target.published))
	}
}
