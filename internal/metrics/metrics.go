// Package metrics exposes Prometheus collectors for the triage pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "triagent"

var (
	// AgentInvocations counts agent executions by agent and outcome
	// ("success" or "fallback").
	AgentInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_invocations_total",
			Help:      "Total agent executions by agent and outcome",
		},
		[]string{"agent", "outcome"},
	)

	// AgentRetries counts fallback-model retries by agent and the reason
	// the primary attempt was rejected.
	AgentRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_retries_total",
			Help:      "Fallback-model retries by agent and failure reason",
		},
		[]string{"agent", "reason"},
	)

	// AgentDuration observes agent execution latency.
	AgentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agent_duration_seconds",
			Help:      "Agent execution latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"agent"},
	)

	// CacheLookups counts result-cache lookups by agent and result
	// ("hit" or "miss").
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by agent and result",
		},
		[]string{"agent", "result"},
	)

	// HTTPRequests counts HTTP requests by method, path and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path and status code",
		},
		[]string{"method", "path", "status"},
	)
)
