package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Streaming metrics
	StreamFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchpulse_stream_frames_total",
			Help: "Total frames emitted by tick generators",
		},
		[]string{"type"}, // meta|tick|error|ended|heartbeat
	)

	StreamTickErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "matchpulse_stream_tick_errors_total",
			Help: "Total non-fatal per-tick computation failures",
		},
	)

	StreamConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "matchpulse_stream_connections",
			Help: "Currently open streaming connections",
		},
		[]string{"transport"}, // sse|websocket
	)

	// Feed metrics
	FeedRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchpulse_feed_requests_total",
			Help: "Total upstream feed API requests",
		},
		[]string{"platform", "operation", "status"}, // status: success|error|rate_limited
	)

	FeedLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matchpulse_feed_latency_seconds",
			Help:    "Upstream feed API latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"platform", "operation"},
	)

	// Summarization metrics
	SummarizeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchpulse_summarize_requests_total",
			Help: "Total summarize-path requests",
		},
		[]string{"status"}, // ok|rate_limited|upstream_error
	)

	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchpulse_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: ok|error|panic
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matchpulse_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"worker"},
	)
)

func init() {
	prometheus.MustRegister(
		StreamFrames,
		StreamTickErrors,
		StreamConnections,
		FeedRequests,
		FeedLatency,
		SummarizeRequests,
		WorkerExecutions,
		WorkerDuration,
	)
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFeedRequest records one upstream feed call
func ObserveFeedRequest(platform, operation, status string, start time.Time) {
	FeedRequests.WithLabelValues(platform, operation, status).Inc()
	FeedLatency.WithLabelValues(platform, operation).Observe(time.Since(start).Seconds())
}
