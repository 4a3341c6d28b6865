package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	ItemsAnnotated       *prometheus.CounterVec
	Extractions          *prometheus.CounterVec
	NotificationsCreated *prometheus.CounterVec
	SweepRuns            *prometheus.CounterVec
	SweepItems           prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ItemsAnnotated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pantry_items_annotated_total",
			Help: "Items run through the expiry pipeline, by resulting status.",
		}, []string{"status"}),
		Extractions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pantry_extractions_total",
			Help: "Vision extraction calls, by outcome.",
		}, []string{"outcome"}),
		NotificationsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pantry_notifications_created_total",
			Help: "In-app notifications generated, by kind.",
		}, []string{"kind"}),
		SweepRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pantry_expiry_sweep_runs_total",
			Help: "Daily expiry sweeps, by outcome.",
		}, []string{"outcome"}),
		SweepItems: f.NewGauge(prometheus.GaugeOpts{
			Name: "pantry_expiry_sweep_items",
			Help: "Items found by the most recent expiry sweep.",
		}),
		gatherer: reg,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ItemAnnotated(status string) {
	if m == nil {
		return
	}
	m.ItemsAnnotated.WithLabelValues(status).Inc()
}

func (m *Metrics) Extraction(outcome string) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) NotificationCreated(kind string) {
	if m == nil {
		return
	}
	m.NotificationsCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) Sweep(outcome string, items int) {
	if m == nil {
		return
	}
	m.SweepRuns.WithLabelValues(outcome).Inc()
	m.SweepItems.Set(float64(items))
}
