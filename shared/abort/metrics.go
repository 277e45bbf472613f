package abort

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pipelineAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_attempts_total",
			Help: "Attempts of pipeline-wrapped operations by result (ok, fault, error)",
		},
		[]string{"operation", "result"},
	)

	pipelineCancellations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_cancellations_total",
			Help: "Requests cancelled by the pipeline by responsible side",
		},
		[]string{"operation", "responsible"},
	)

	pipelineShortCircuits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_short_circuits_total",
			Help: "Operations skipped because the request was already cancelled",
		},
		[]string{"operation"},
	)
)
