// Package metrics records invocation counts and latencies per source format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const OutcomeSuccess = "success"

// Collector owns its registry so several engines in one process, or tests,
// never collide on registration.
type Collector struct {
	registry    *prometheus.Registry
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lambdaweb_invocations_total",
			Help: "Invocations handled, by source format and outcome.",
		}, []string{"format", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lambdaweb_invocation_duration_seconds",
			Help:    "Time from receiving an invocation to posting its result.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"format"}),
	}

	c.registry.MustRegister(c.invocations)
	c.registry.MustRegister(c.duration)
	c.registry.MustRegister(collectors.NewGoCollector())

	return c
}

// Observe records one invocation. outcome is OutcomeSuccess or the error type
// reported to the Runtime API.
func (c *Collector) Observe(format string, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.invocations.WithLabelValues(format, outcome).Inc()
	c.duration.WithLabelValues(format).Observe(d.Seconds())
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
