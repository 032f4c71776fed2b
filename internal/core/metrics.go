package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Import outcomes recorded in lead_imports_total.
const (
	OutcomeSuccess    = "success"
	OutcomeInvalid    = "invalid_mapping"
	OutcomeEmpty      = "no_rows"
	OutcomeBusy       = "busy"
	OutcomeStorage    = "storage_error"
	OutcomeOtherError = "error"
)

var (
	leadsImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_imported_total",
			Help: "Total number of leads inserted by imports",
		},
	)

	leadImports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_imports_total",
			Help: "Total number of import attempts by outcome",
		},
		[]string{"outcome"},
	)

	importDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lead_import_duration_seconds",
			Help:    "Duration of successful imports in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func recordImport(outcome string, inserted int, seconds float64) {
	leadImports.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		leadsImported.Add(float64(inserted))
		importDuration.Observe(seconds)
	}
}
