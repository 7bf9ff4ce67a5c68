package runtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus instrumentation for run-level and cycle-level
// activity, grounded on the teacher's internal/observability.Metrics
// (CounterVec/HistogramVec/GaugeVec construction via promauto, one struct
// field per series).
type Metrics struct {
	// RunsTotal counts run outcomes by final status.
	// Labels: status (COMPLETED|WAIT_USER|FAILED|MAX_CYCLES|CANCELLED)
	RunsTotal *prometheus.CounterVec

	// CycleDuration measures wall-clock time per cycle.
	// Labels: agent_type
	CycleDuration *prometheus.HistogramVec

	// CyclesTotal counts cycles executed.
	// Labels: agent_type
	CyclesTotal *prometheus.CounterVec

	// ToolExecutionsTotal counts tool dispatches by name and outcome.
	// Labels: tool_name, status_code
	ToolExecutionsTotal *prometheus.CounterVec

	// ToolExecutionDuration measures tool dispatch latency.
	// Labels: tool_name
	ToolExecutionDuration *prometheus.HistogramVec

	// MemoryCompactionsTotal counts compaction passes.
	MemoryCompactionsTotal prometheus.Counter

	// ActiveRuns tracks runs currently in flight.
	ActiveRuns prometheus.Gauge

	// TokensTotal tracks token consumption by kind.
	// Labels: kind (prompt|completion)
	TokensTotal *prometheus.CounterVec
}

// NewMetrics registers and returns the runtime's Prometheus series. Call
// once per process; registering twice against the default registry panics,
// matching promauto's own behavior.
func NewMetrics() *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentcore_runs_total",
				Help: "Total number of runs by final status",
			},
			[]string{"status"},
		),
		CycleDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentcore_cycle_duration_seconds",
				Help:    "Duration of a single cycle in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"agent_type"},
		),
		CyclesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentcore_cycles_total",
				Help: "Total number of cycles executed",
			},
			[]string{"agent_type"},
		),
		ToolExecutionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentcore_tool_executions_total",
				Help: "Total number of tool dispatches by tool name and status code",
			},
			[]string{"tool_name", "status_code"},
		),
		ToolExecutionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentcore_tool_execution_duration_seconds",
				Help:    "Duration of tool dispatches in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
			[]string{"tool_name"},
		),
		MemoryCompactionsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agentcore_memory_compactions_total",
				Help: "Total number of memory compaction passes",
			},
		),
		ActiveRuns: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentcore_active_runs",
				Help: "Current number of in-flight runs",
			},
		),
		TokensTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentcore_tokens_total",
				Help: "Total tokens consumed by kind",
			},
			[]string{"kind"},
		),
	}
}

// RecordRun increments RunsTotal for the given terminal status.
func (m *Metrics) RecordRun(status string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
}

// RecordCycle records one cycle's duration and agent type.
func (m *Metrics) RecordCycle(agentType string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.CyclesTotal.WithLabelValues(agentType).Inc()
	m.CycleDuration.WithLabelValues(agentType).Observe(durationSeconds)
}

// RecordToolExecution records one tool dispatch's outcome and duration.
func (m *Metrics) RecordToolExecution(toolName, statusCode string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.ToolExecutionsTotal.WithLabelValues(toolName, statusCode).Inc()
	m.ToolExecutionDuration.WithLabelValues(toolName).Observe(durationSeconds)
}

// RecordTokens records a token usage sample split by kind.
func (m *Metrics) RecordTokens(promptTokens, completionTokens int) {
	if m == nil {
		return
	}
	if promptTokens > 0 {
		m.TokensTotal.WithLabelValues("prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.TokensTotal.WithLabelValues("completion").Add(float64(completionTokens))
	}
}

// RecordMemoryCompaction increments the compaction counter.
func (m *Metrics) RecordMemoryCompaction() {
	if m == nil {
		return
	}
	m.MemoryCompactionsTotal.Inc()
}
