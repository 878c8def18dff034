package templog

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the latest readings of a session to Prometheus. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	temperature  *prometheus.GaugeVec
	samples      prometheus.Counter
	readErrors   *prometheus.CounterVec
	readDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		temperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "templog_temperature_celsius",
			Help: "Last temperature logged per source.",
		}, []string{"source"}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "templog_samples_total",
			Help: "Total samples written to the session CSV.",
		}),
		readErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "templog_read_errors_total",
			Help: "Total failed instrument reads per source.",
		}, []string{"source"}),
		readDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "templog_read_duration_seconds",
			Help:    "Histogram of instrument read durations per source.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
	}

	m.registry.MustRegister(
		m.temperature,
		m.samples,
		m.readErrors,
		m.readDuration,
	)
	return m
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRead(src Source, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.readDuration.WithLabelValues(string(src)).Observe(d.Seconds())
	// An interrupted read is a clean stop, not an instrument failure.
	if err != nil && !errors.Is(err, context.Canceled) {
		m.readErrors.WithLabelValues(string(src)).Inc()
	}
}

func (m *Metrics) ObserveSample(s Sample) {
	if m == nil {
		return
	}
	for _, r := range s.Readings() {
		m.temperature.WithLabelValues(string(r.Source)).Set(r.Value)
	}
	m.samples.Inc()
}
