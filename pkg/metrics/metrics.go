package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Tree/lifecycle gauges.
	LiveInstances = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gobj_live_instances",
			Help: "Live gobj instances by class",
		},
		[]string{"class"},
	)

	RunningGobjs = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gobj_running",
			Help: "Gobjs currently running, by class",
		},
		[]string{"class"},
	)

	PlayingGobjs = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gobj_playing",
			Help: "Gobjs currently playing, by class",
		},
		[]string{"class"},
	)

	// Creation/destruction counters.
	GobjsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gobj_created_total",
			Help: "Total gobjs created, by class",
		},
		[]string{"class"},
	)

	GobjsDestroyedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gobj_destroyed_total",
			Help: "Total gobjs destroyed, by class",
		},
		[]string{"class"},
	)

	CreateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gobj_create_duration_seconds",
			Help:    "Time spent in Create, including config merge and on_create",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Event dispatch.
	EventsDispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gobj_events_dispatched_total",
			Help: "Total FSM events dispatched, by class and event",
		},
		[]string{"class", "event"},
	)

	EventsRefusedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gobj_events_refused_total",
			Help: "Total FSM events refused (undefined or refused in current state)",
		},
		[]string{"class", "event", "reason"},
	)

	EventDispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gobj_event_dispatch_duration_seconds",
			Help:    "Time spent inside one event's transition action",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"class", "event"},
	)

	// Pub/sub.
	PublicationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gobj_publications_total",
			Help: "Total publish() calls, by event",
		},
		[]string{"event"},
	)

	SubscriptionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gobj_subscriptions_active",
			Help: "Currently active subscriptions",
		},
	)

	PublishZeroSubscribersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gobj_publish_zero_subscribers_total",
			Help: "Total publications that reached zero subscribers",
		},
		[]string{"event"},
	)

	// Command/authz dispatch.
	CommandsDispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gobj_commands_dispatched_total",
			Help: "Total commands dispatched, by class and command",
		},
		[]string{"class", "command"},
	)

	AuthzChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gobj_authz_checks_total",
			Help: "Total authz checks, by class, authz name, and result",
		},
		[]string{"class", "authz", "allowed"},
	)
)

func init() {
	prometheus.MustRegister(
		LiveInstances,
		RunningGobjs,
		PlayingGobjs,
		GobjsCreatedTotal,
		GobjsDestroyedTotal,
		CreateDuration,
		EventsDispatchedTotal,
		EventsRefusedTotal,
		EventDispatchDuration,
		PublicationsTotal,
		SubscriptionsActive,
		PublishZeroSubscribersTotal,
		CommandsDispatchedTotal,
		AuthzChecksTotal,
	)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
