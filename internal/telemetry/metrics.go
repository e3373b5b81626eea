package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"safetasks/internal/state"
	"safetasks/internal/task"
	"safetasks/internal/xp"
)

// Metrics exports the store's activity to Prometheus.
type Metrics struct {
	updates      *prometheus.CounterVec
	events       *prometheus.CounterVec
	tasks        *prometheus.GaugeVec
	xpTotal      prometheus.Gauge
	level        prometheus.Gauge
	achievements prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		updates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safetasks",
			Name:      "state_updates_total",
			Help:      "Committed state updates by operation.",
		}, []string{"op"}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safetasks",
			Name:      "events_total",
			Help:      "Telemetry events by type.",
		}, []string{"type"}),
		tasks: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "safetasks",
			Name:      "tasks",
			Help:      "Tasks by completion status.",
		}, []string{"status"}),
		xpTotal: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "safetasks",
			Name:      "xp_total",
			Help:      "Current XP total.",
		}),
		level: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "safetasks",
			Name:      "level",
			Help:      "Current XP level.",
		}),
		achievements: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "safetasks",
			Name:      "achievements_unlocked",
			Help:      "Unlocked achievements.",
		}),
	}
}

// Set publishes the gauges for s without counting an update.
func (m *Metrics) Set(s state.State) {
	done := len(task.Completed(s.Tasks))
	m.tasks.WithLabelValues("completed").Set(float64(done))
	m.tasks.WithLabelValues("pending").Set(float64(len(s.Tasks) - done))
	m.xpTotal.Set(float64(s.XP.Total))
	m.level.Set(float64(xp.Level(s.XP.Total)))
	m.achievements.Set(float64(len(s.Achievements.Unlocked)))
}

func (m *Metrics) Observe(c state.Change) {
	m.updates.WithLabelValues(c.Op).Inc()
	for _, e := range Diff(c) {
		m.events.WithLabelValues(string(e.Type)).Inc()
	}
	m.Set(c.Next)
}
