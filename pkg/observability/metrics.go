// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the bote gateway.
package observability

import "github.com/prometheus/client_golang/prometheus"

// StreamBuckets defines histogram buckets suited for streaming chat
// latencies, ranging from 100ms to 120s.
var StreamBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts all HTTP requests by method, route, and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bote_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bote_request_duration_seconds",
			Help:    "Request duration",
			Buckets: StreamBuckets,
		},
		[]string{"method", "route"},
	)

	// StreamingConnections tracks the number of active SSE streaming connections.
	StreamingConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bote_streaming_connections_active",
			Help: "Active streaming connections",
		},
	)

	// UpstreamRequestsTotal counts chat completion calls issued upstream.
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bote_upstream_requests_total",
			Help: "Upstream requests",
		},
		[]string{"model", "status"},
	)

	// UpstreamLatency records time to stream completion in seconds.
	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bote_upstream_latency_seconds",
			Help:    "Upstream latency",
			Buckets: StreamBuckets,
		},
		[]string{"model"},
	)

	// ExchangesTotal counts finished exchanges by terminal outcome.
	ExchangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bote_exchanges_total",
			Help: "Finished exchanges",
		},
		[]string{"model", "outcome"},
	)

	// StreamEventsTotal counts upstream stream events by type.
	StreamEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bote_stream_events_total",
			Help: "Stream events",
		},
		[]string{"type"},
	)

	// ToolCallsTotal counts reassembled tool calls by outcome.
	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bote_tool_calls_total",
			Help: "Tool call outcomes",
		},
		[]string{"outcome"},
	)

	// TokenCountsTotal counts token counting operations by path.
	TokenCountsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bote_token_counts_total",
			Help: "Token count operations",
		},
		[]string{"path"},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bote_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
		[]string{"tier"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		StreamingConnections,
		UpstreamRequestsTotal,
		UpstreamLatency,
		ExchangesTotal,
		StreamEventsTotal,
		ToolCallsTotal,
		TokenCountsTotal,
		RateLimitRejectedTotal,
	)
}
