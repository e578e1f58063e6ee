package health

import (
	"context"
	"time"

	"github.com/cuemby/gobjkernel/pkg/types"
)

// Target is the gobj surface a Monitor needs: a name for log/event
// context and a way to publish the health_changed transition.
type Target interface {
	Name() string
	Publish(event string, kw types.KW) (int, error)
}

// Monitor polls a Checker on an interval against one gobj and publishes
// "health_changed" whenever Status.Healthy flips, the same
// ticker-plus-stop-channel shape as pkg/metrics.Collector.
type Monitor struct {
	target  Target
	checker Checker
	config  Config
	status  *Status

	stopCh chan struct{}
}

// NewMonitor builds a Monitor for target, using checker under config.
func NewMonitor(target Target, checker Checker, config Config) *Monitor {
	return &Monitor{
		target:  target,
		checker: checker,
		config:  config,
		status:  NewStatus(),
		stopCh:  make(chan struct{}),
	}
}

// Status returns the monitor's current health status.
func (m *Monitor) Status() Status { return *m.status }

// Start begins polling in the background at config.Interval.
func (m *Monitor) Start(ctx context.Context) {
	interval := m.config.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.poll(ctx)
			case <-ctx.Done():
				return
			case <-m.stopCh:
				return
			}
		}
	}()
}

// Stop halts the background polling goroutine.
func (m *Monitor) Stop() {
	close(m.stopCh)
}

func (m *Monitor) poll(ctx context.Context) {
	if m.status.InStartPeriod(m.config) {
		return
	}
	timeout := m.config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	result := m.checker.Check(checkCtx)
	cancel()

	was := m.status.Healthy
	m.status.Update(result, m.config)
	if m.status.Healthy != was {
		m.target.Publish("health_changed", types.KW{
			"healthy": m.status.Healthy,
			"message": result.Message,
		})
	}
}
