package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction metrics
var (
	// PredictionsTotal tracks scoring calls by path (model/heuristic)
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total prediction calls by scoring path",
		},
		[]string{"path"},
	)

	// FallbackDowngradesTotal counts calls where model inference failed and
	// the heuristic took over mid-call
	FallbackDowngradesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prediction_fallback_downgrades_total",
			Help: "Total scoring calls downgraded from model to heuristic",
		},
	)

	// AggregationDuration tracks feature aggregation latency in seconds
	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feature_aggregation_duration_seconds",
			Help:    "Feature aggregation duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// InferenceDuration tracks model inference latency in seconds
	InferenceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_inference_duration_seconds",
			Help:    "Model inference duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
		},
	)
)

// Streaming metrics
var (
	// StreamSessionsActive tracks currently running live-stream sessions
	StreamSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stream_sessions_active",
			Help: "Number of live-stream sessions currently running",
		},
	)

	// StreamTicksTotal counts emitted snapshot ticks across all sessions
	StreamTicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stream_ticks_total",
			Help: "Total snapshot ticks emitted across all stream sessions",
		},
	)

	// StreamTickErrorsTotal counts per-tick failures surfaced as error events
	StreamTickErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stream_tick_errors_total",
			Help: "Total per-tick failures surfaced as error events",
		},
	)
)

// Store metrics
var (
	// StoreOpsTotal tracks document store operations by operation and status
	StoreOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_store_operations_total",
			Help: "Total document store operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// StoreBreakerState tracks the store circuit breaker state
	// (0=closed, 1=half-open, 2=open)
	StoreBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "document_store_breaker_state",
			Help: "Document store circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

// Training metrics
var (
	// TrainingRunsTotal tracks training runs by outcome
	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "training_runs_total",
			Help: "Total training runs by outcome",
		},
		[]string{"status"},
	)
)
