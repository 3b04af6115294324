package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transfer metrics
	TransfersCreated   *prometheus.CounterVec
	TransfersConfirmed prometheus.Counter
	TransfersRejected  prometheus.Counter
	TransferDuration   prometheus.Histogram
	TransferAmount     prometheus.Histogram
	TransferErrors     *prometheus.CounterVec

	// Duplicate-suppression metrics
	DuplicatesSuppressed prometheus.Counter

	// Account metrics
	AccountsCreated prometheus.Counter

	// Risk metrics
	RiskAssessments   prometheus.Counter
	AdvisoryFallbacks prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		TransfersCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payledger_transfers_created_total",
				Help: "Total number of transfers created, by initial state",
			},
			[]string{"state"},
		),
		TransfersConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payledger_transfers_confirmed_total",
			Help: "Total number of pending transfers approved",
		}),
		TransfersRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payledger_transfers_rejected_total",
			Help: "Total number of pending transfers rejected",
		}),
		TransferDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "payledger_transfer_duration_seconds",
			Help:    "Duration of transfer operations",
			Buckets: prometheus.DefBuckets,
		}),
		TransferAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "payledger_transfer_amount",
			Help:    "Transfer amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		TransferErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payledger_transfer_errors_total",
				Help: "Total number of transfer errors by type",
			},
			[]string{"error_type"},
		),
		DuplicatesSuppressed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payledger_duplicate_requests_total",
			Help: "Total number of transfer requests rejected as duplicates",
		}),
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		RiskAssessments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payledger_risk_assessments_total",
			Help: "Total number of risk assessments served",
		}),
		AdvisoryFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payledger_advisory_fallbacks_total",
			Help: "Total number of risk assessments that fell back to the algorithmic score",
		}),
	}
}
