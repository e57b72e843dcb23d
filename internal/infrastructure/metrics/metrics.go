package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	TransactionsApplied  *prometheus.CounterVec
	TransactionsRejected *prometheus.CounterVec
	ApplyDuration        prometheus.Histogram

	// Account metrics
	AccountsCreated prometheus.Counter
	AccountsLocked  prometheus.Counter

	// Pipeline metrics
	RecordsRead    prometheus.Counter
	RecordsSkipped prometheus.Counter
	QueueDepth     prometheus.Gauge
}

// New creates all metrics and registers them with reg. A nil reg registers
// with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Transaction metrics
		TransactionsApplied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txengine_transactions_applied_total",
				Help: "Total number of transactions applied by type",
			},
			[]string{"type"},
		),
		TransactionsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txengine_transactions_rejected_total",
				Help: "Total number of transactions rejected by type and reason",
			},
			[]string{"type", "reason"},
		),
		ApplyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "txengine_apply_duration_seconds",
			Help:    "Duration of a single transaction application",
			Buckets: []float64{.000001, .00001, .0001, .001, .01, .1},
		}),

		// Account metrics
		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "txengine_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountsLocked: factory.NewCounter(prometheus.CounterOpts{
			Name: "txengine_accounts_locked_total",
			Help: "Total number of accounts locked by a chargeback",
		}),

		// Pipeline metrics
		RecordsRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "txengine_records_read_total",
			Help: "Total number of input records read",
		}),
		RecordsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "txengine_records_skipped_total",
			Help: "Total number of input records skipped as undecodable",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "txengine_queue_depth",
			Help: "Number of transactions waiting to be applied",
		}),
	}
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format, for the node_exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
