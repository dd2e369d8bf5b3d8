// Package metrics exposes prometheus instrumentation for statement
// execution, the teacher's observability library (client_golang is a
// direct go.mod dependency left unexercised in the retrieved pkg/ppl
// tree — this is where it gets wired in).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder owns the engine's prometheus collectors. Callers register
// it against a prometheus.Registerer of their choosing (the default
// registry, or an isolated one in tests).
type Recorder struct {
	StatementsTotal   *prometheus.CounterVec
	StatementDuration *prometheus.HistogramVec
	RowsReturned      prometheus.Counter
}

// New builds a Recorder and registers its collectors with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		StatementsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sqlengine_statements_total",
			Help: "Total number of statements executed, by kind.",
		}, []string{"kind"}),
		StatementDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sqlengine_statement_duration_seconds",
			Help:    "Statement execution latency in seconds, by kind.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		RowsReturned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sqlengine_rows_returned_total",
			Help: "Total number of rows returned across all SELECT statements.",
		}),
	}
	reg.MustRegister(r.StatementsTotal, r.StatementDuration, r.RowsReturned)
	return r
}

// ObserveStatement records one statement's outcome: a counter bump by
// kind and a duration-histogram observation.
func (r *Recorder) ObserveStatement(kind string, seconds float64) {
	r.StatementsTotal.WithLabelValues(kind).Inc()
	r.StatementDuration.WithLabelValues(kind).Observe(seconds)
}

// AddRowsReturned bumps the rows-returned counter by n.
func (r *Recorder) AddRowsReturned(n int) {
	if n <= 0 {
		return
	}
	r.RowsReturned.Add(float64(n))
}
