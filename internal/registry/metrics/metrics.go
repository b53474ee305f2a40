package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the certificate registry.
type Metrics struct {
	Issued           prometheus.Counter
	IssuanceFailures *prometheus.CounterVec
	Invalidated      prometheus.Counter
	BulkItems        *prometheus.CounterVec
	Active           prometheus.Gauge
}

// New creates and registers all registry metrics.
func New() *Metrics {
	return &Metrics{
		Issued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certledger_certificates_issued_total",
			Help: "Total number of certificates issued",
		}),
		IssuanceFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certledger_issuance_failures_total",
			Help: "Total number of rejected issuance attempts by error code",
		}, []string{"code"}),
		Invalidated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certledger_certificates_invalidated_total",
			Help: "Total number of certificates invalidated",
		}),
		BulkItems: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certledger_bulk_items_total",
			Help: "Total number of bulk upload items by outcome status",
		}, []string{"status"}),
		Active: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "certledger_certificates_active",
			Help: "Number of currently active certificates",
		}),
	}
}

func (m *Metrics) RecordIssued() {
	if m == nil {
		return
	}
	m.Issued.Inc()
	m.Active.Inc()
}

func (m *Metrics) RecordIssuanceFailure(code string) {
	if m == nil {
		return
	}
	m.IssuanceFailures.WithLabelValues(code).Inc()
}

func (m *Metrics) RecordInvalidated() {
	if m == nil {
		return
	}
	m.Invalidated.Inc()
	m.Active.Dec()
}

func (m *Metrics) RecordBulkItem(status string) {
	if m == nil {
		return
	}
	m.BulkItems.WithLabelValues(status).Inc()
}
