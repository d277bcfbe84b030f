package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its own registry so several instances can coexist in tests.
type Metrics struct {
	Registry *prometheus.Registry

	Probes       *prometheus.CounterVec
	ProbeLatency *prometheus.HistogramVec
	AppendErrors prometheus.Counter
	Reloads      *prometheus.CounterVec
	Targets      prometheus.Gauge
	PassDuration prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statuspage_probes_total", Help: "Probes executed, by service and result",
		}, []string{"service", "result"}),
		ProbeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "statuspage_probe_duration_seconds", Help: "Latency of successful probes",
			Buckets: prometheus.DefBuckets,
		}, []string{"service"}),
		AppendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "statuspage_check_append_errors_total", Help: "Check results that could not be stored",
		}),
		Reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statuspage_target_reloads_total", Help: "Services file reloads, by result",
		}, []string{"result"}),
		Targets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "statuspage_targets", Help: "Targets in the current list",
		}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "statuspage_check_pass_duration_seconds", Help: "Duration of one check pass over all targets",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
	}
	reg.MustRegister(
		m.Probes, m.ProbeLatency, m.AppendErrors, m.Reloads, m.Targets, m.PassDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ObserveProbe records one probe outcome.
func (m *Metrics) ObserveProbe(service string, up bool, responseTimeMS int64) {
	if up {
		m.Probes.WithLabelValues(service, "up").Inc()
		m.ProbeLatency.WithLabelValues(service).Observe(float64(responseTimeMS) / 1000)
		return
	}
	m.Probes.WithLabelValues(service, "down").Inc()
}
