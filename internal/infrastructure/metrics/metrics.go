package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Billing pass metrics
	BillingRuns        *prometheus.CounterVec
	BillingRunDuration *prometheus.HistogramVec
	RunLockBusy        prometheus.Counter

	// Disbursement metrics
	DisbursementsCreated   prometheus.Counter
	DisbursementsCompleted prometheus.Counter
	DisbursementsFailed    prometheus.Counter
	ItemsBilled            prometheus.Counter
	AmountCents            prometheus.Counter

	// Gateway metrics
	GatewayRequests *prometheus.CounterVec

	// Notification metrics
	NotifyFailures prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Billing pass metrics
		BillingRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hermes_billing_runs_total",
				Help: "Total number of billing passes by pass name",
			},
			[]string{"pass"},
		),
		BillingRunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hermes_billing_run_duration_seconds",
				Help:    "Duration of billing passes",
				Buckets: []float64{.1, .5, 1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"pass"},
		),
		RunLockBusy: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hermes_run_lock_busy_total",
			Help: "Total number of billing ticks skipped because another instance held the run lock",
		}),

		// Disbursement metrics
		DisbursementsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hermes_disbursements_created_total",
			Help: "Total number of disbursements created",
		}),
		DisbursementsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hermes_disbursements_completed_total",
			Help: "Total number of disbursements completed",
		}),
		DisbursementsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hermes_disbursements_failed_total",
			Help: "Total number of disbursements marked failed",
		}),
		ItemsBilled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hermes_items_billed_total",
			Help: "Total number of billable items settled by completed disbursements",
		}),
		AmountCents: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hermes_disbursed_cents_total",
			Help: "Total amount disbursed in cents",
		}),

		// Gateway metrics
		GatewayRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hermes_gateway_requests_total",
				Help: "Total gateway transfer calls by outcome",
			},
			[]string{"outcome"},
		),

		// Notification metrics
		NotifyFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hermes_notify_failures_total",
			Help: "Total number of notification delivery failures",
		}),
	}
}
