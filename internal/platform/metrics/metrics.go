package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SigningsTotal         *prometheus.CounterVec
	SigningFailuresTotal  *prometheus.CounterVec
	CertificatesGenerated *prometheus.CounterVec
	StampFallbacksTotal   prometheus.Counter
	CertificateRenderSecs prometheus.Histogram
	SyncEventsEnqueued    *prometheus.CounterVec
}

// New creates the metric set registered against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SigningsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "previnet_signings_total",
			Help: "Completed signings by record kind",
		}, []string{"kind"}),
		SigningFailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "previnet_signing_failures_total",
			Help: "Rejected signing attempts by reason",
		}, []string{"reason"}),
		CertificatesGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "previnet_certificates_generated_total",
			Help: "Certificates generated by render path (stamp or synthesize)",
		}, []string{"path"}),
		StampFallbacksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "previnet_stamp_fallbacks_total",
			Help: "Stamp attempts abandoned in favor of a synthesized certificate",
		}),
		CertificateRenderSecs: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "previnet_certificate_render_seconds",
			Help:    "Certificate render latency",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		SyncEventsEnqueued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "previnet_sync_events_enqueued_total",
			Help: "Needs-sync events enqueued by record kind",
		}, []string{"kind"}),
	}
}
