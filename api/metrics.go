package api

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	documents    *prometheus.CounterVec
	failures     prometheus.Counter
	transactions prometheus.Counter
	removed      prometheus.Counter
	duration     prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgr_documents_total",
			Help: "Documents received for extraction, by source kind.",
		}, []string{"kind"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledgr_document_failures_total",
			Help: "Documents whose text could not be read.",
		}),
		transactions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledgr_transactions_total",
			Help: "Transactions returned after cleaning.",
		}),
		removed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledgr_removed_rows_total",
			Help: "Records dropped for an invalid date or amount.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledgr_extract_duration_seconds",
			Help:    "Time spent processing an extract request.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.documents, m.failures, m.transactions, m.removed, m.duration)
	return m
}
