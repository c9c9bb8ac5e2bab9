package container

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeConstructed = "constructed"
	outcomeCached      = "cached"
	outcomeFailed      = "failed"
	outcomeDeferred    = "deferred"
	outcomeNotFound    = "not_found"
)

// Metrics holds the Prometheus collectors of a container.
// A nil *Metrics records nothing.
type Metrics struct {
	Resolutions  *prometheus.CounterVec
	Construction *prometheus.HistogramVec
	Services     *prometheus.GaugeVec
}

// NewMetrics creates the container collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "timeos",
				Subsystem: "container",
				Name:      "resolutions_total",
				Help:      "Service resolutions by identifier and outcome",
			},
			[]string{"service", "outcome"},
		),
		Construction: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "timeos",
				Subsystem: "container",
				Name:      "construction_seconds",
				Help:      "Time spent in service factories",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"service"},
		),
		Services: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "timeos",
				Subsystem: "container",
				Name:      "services",
				Help:      "Registered services by resolution state at the last health check",
			},
			[]string{"state"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Resolutions, m.Construction, m.Services)
	}
	return m
}

func (m *Metrics) observe(id, outcome string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(id, outcome).Inc()
}

func (m *Metrics) observeDuration(id string, took time.Duration) {
	if m == nil {
		return
	}
	m.Construction.WithLabelValues(id).Observe(took.Seconds())
}

func (m *Metrics) setStates(counts HealthCounts) {
	if m == nil {
		return
	}
	m.Services.WithLabelValues(string(StateResolved)).Set(float64(counts.Resolved))
	m.Services.WithLabelValues(string(StateFailed)).Set(float64(counts.Failed))
	m.Services.WithLabelValues(string(StateRegistered)).Set(float64(counts.Pending))
	m.Services.WithLabelValues(string(StateResolving)).Set(float64(counts.Resolving))
}
