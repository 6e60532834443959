package metric

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric records API request latency and failures. It satisfies owm.Observer.
// Each Metric owns its registry, so nothing leaks into the global default one.
type Metric struct {
	registry       *prometheus.Registry
	requestTime    *prometheus.HistogramVec
	requestFailure *prometheus.CounterVec
}

func New() *Metric {
	m := &Metric{
		registry: prometheus.NewRegistry(),
		requestTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "owm_request_duration_seconds",
				Help:    "Histogram of OpenWeatherMap request round-trip times.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		requestFailure: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "owm_request_failures_total",
				Help: "Failed OpenWeatherMap fetches by failure kind.",
			},
			[]string{"endpoint", "kind"},
		),
	}
	m.registry.MustRegister(m.requestTime, m.requestFailure)
	return m
}

func (m *Metric) ObserveRequest(endpoint string, d time.Duration) {
	m.requestTime.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *Metric) ObserveFailure(endpoint string, kind string) {
	m.requestFailure.WithLabelValues(endpoint, kind).Inc()
}

// Gatherer exposes the registry, e.g. for promhttp or tests.
func (m *Metric) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes all metrics in the text exposition format to path,
// for pickup by the node exporter textfile collector.
func (m *Metric) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
