// Package metrics defines the Prometheus collectors of the cost service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeCached  = "cached"
)

var (
	Calculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ifc_cost_calculations_total",
			Help: "Total number of cost calculations by outcome",
		},
		[]string{"outcome"},
	)

	ElementsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ifc_cost_elements_processed_total",
			Help: "Total number of elements priced",
		},
	)

	ProviderFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ifc_cost_provider_failures_total",
			Help: "Total number of isolated provider failures",
		},
		[]string{"provider"},
	)

	CalculationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ifc_cost_calculation_duration_seconds",
			Help:    "Time taken to calculate a project breakdown",
			Buckets: prometheus.DefBuckets,
		},
	)

	RuleLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ifc_cost_rule_loads_total",
			Help: "Total number of rule set loads by outcome",
		},
		[]string{"outcome"},
	)

	RuleTableDefaults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ifc_cost_rule_table_defaults_total",
			Help: "Number of times a rule table fell back to built-in defaults",
		},
		[]string{"table"},
	)
)
