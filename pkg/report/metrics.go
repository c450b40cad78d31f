package report

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports transfer counters to Prometheus.
type Metrics struct {
	Registry *prometheus.Registry

	Transfers *prometheus.CounterVec   // labels: mode, state
	Bytes     prometheus.Counter       // bytes written
	Duration  *prometheus.HistogramVec // labels: mode
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledmatrix",
			Name:      "transfers_total",
			Help:      "Transfer attempts by mode and final state.",
		}, []string{"mode", "state"}),
		Bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledmatrix",
			Name:      "bytes_written_total",
			Help:      "Bytes written to the link.",
		}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ledmatrix",
			Name:      "transfer_duration_seconds",
			Help:      "Transfer attempt duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Transfers, m.Bytes, m.Duration,
	)
	return m
}

// Report implements Reporter.
func (m *Metrics) Report(_ context.Context, r *TransferReport) error {
	m.Transfers.WithLabelValues(r.Mode, r.State).Inc()
	m.Bytes.Add(float64(r.Sent))
	m.Duration.WithLabelValues(r.Mode).Observe(r.Elapsed().Seconds())
	return nil
}

// Handler returns the HTTP handler serving the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
