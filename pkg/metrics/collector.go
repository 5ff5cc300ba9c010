package metrics

import (
	"context"
	"time"

	"github.com/ollxel/geotimer-bot/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	botUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of bot updates handled labeled by handler and status",
		},
		[]string{"handler", "status"},
	)
	updateDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "update_duration_seconds",
			Help:    "Duration of update handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)
	zoneTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zone_transitions_total",
			Help: "Total number of zone boundary crossings split by direction",
		},
		[]string{"direction"},
	)
	geocodeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_requests_total",
			Help: "Total number of address resolution attempts split by outcome",
		},
		[]string{"status"},
	)
	sessionTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_transitions_total",
			Help: "Total number of authoring session step transitions",
		},
		[]string{"from", "to"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Current number of in-progress authoring sessions",
		},
	)
	sessionsByStep = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sessions_by_step",
			Help: "Number of authoring sessions per conversation step",
		},
		[]string{"step"},
	)
)

var trackedSteps = []session.Step{
	session.StepAwaitingName,
	session.StepAwaitingLocation,
	session.StepAwaitingRadius,
}

func init() {
	session.RegisterTransitionRecorder(RecordSessionTransition)
}

// RecordUpdate increments update counters and records duration.
func RecordUpdate(handler, status string, duration time.Duration) {
	if handler == "" {
		handler = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botUpdatesTotal.WithLabelValues(handler, status).Inc()
	updateDurationSeconds.WithLabelValues(handler).Observe(duration.Seconds())
}

// RecordZoneTransition tracks entered and exited crossings.
func RecordZoneTransition(direction string) {
	if direction == "" {
		direction = "unknown"
	}

	zoneTransitionsTotal.WithLabelValues(direction).Inc()
}

// RecordGeocodeRequest tracks address resolution outcomes.
func RecordGeocodeRequest(status string) {
	if status == "" {
		status = "unknown"
	}

	geocodeRequestsTotal.WithLabelValues(status).Inc()
}

// RecordSessionTransition tracks authoring session step transitions.
func RecordSessionTransition(from, to string) {
	if from == "" {
		from = "none"
	}
	if to == "" {
		to = "none"
	}

	sessionTransitionsTotal.WithLabelValues(from, to).Inc()
}

// SetActiveSessions updates the gauge for in-progress authoring sessions.
func SetActiveSessions(count int) {
	activeSessions.Set(float64(count))
}

// SetSessionsByStep updates the gauge for the given conversation step.
func SetSessionsByStep(step string, count int) {
	if step == "" {
		step = "unknown"
	}

	sessionsByStep.WithLabelValues(step).Set(float64(count))
}

// SessionCollector periodically gathers session step counts and emits gauge metrics.
type SessionCollector struct {
	sessions session.Manager
}

// NewSessionCollector builds a metrics collector bound to the provided session manager.
func NewSessionCollector(sessions session.Manager) *SessionCollector {
	return &SessionCollector{sessions: sessions}
}

// Run polls the session store every 10 seconds, updating session gauges until ctx is cancelled.
func (c *SessionCollector) Run(ctx context.Context) {
	if c == nil || c.sessions == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		_ = c.collect(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Second):
		}
	}
}

func (c *SessionCollector) collect(ctx context.Context) error {
	sessions, err := c.sessions.All(ctx)
	if err != nil {
		return err
	}

	SetActiveSessions(len(sessions))

	stepCounts := make(map[string]int, len(sessions))
	for _, sess := range sessions {
		label := "unknown"
		if sess != nil && sess.Step != "" {
			label = string(sess.Step)
		}
		stepCounts[label]++
	}

	sessionsByStep.Reset()

	for _, tracked := range trackedSteps {
		label := string(tracked)
		SetSessionsByStep(label, stepCounts[label])
		delete(stepCounts, label)
	}

	for label, count := range stepCounts {
		SetSessionsByStep(label, count)
	}

	return nil
}
