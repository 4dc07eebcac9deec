package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors for the pipeline. A nil *Metrics
// records nothing.
type Metrics struct {
	Documents  *prometheus.CounterVec
	Extraction *prometheus.HistogramVec
	QueueDepth prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boletoscan",
			Name:      "documents_total",
			Help:      "Boletos processed, by match outcome.",
		}, []string{"outcome"}),
		Extraction: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "boletoscan",
			Name:      "extraction_duration_seconds",
			Help:      "Time spent extracting document text, by text source.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "boletoscan",
			Name:      "queue_depth",
			Help:      "Batch jobs waiting for a worker.",
		}),
	}
	reg.MustRegister(m.Documents, m.Extraction, m.QueueDepth)
	return m
}

func (m *Metrics) countDocument(outcome string) {
	if m == nil {
		return
	}
	m.Documents.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeExtraction(source string, d time.Duration) {
	if m == nil {
		return
	}
	m.Extraction.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) setQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}
