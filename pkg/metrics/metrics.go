package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Deadline scan pass duration (seconds)
	ScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deadline_scan_duration_seconds",
			Help:    "Deadline scanner pass duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"pass"}, // pass: upcoming, overdue
	)

	// Notifications published, by type
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_count",
			Help: "Total number of notifications published",
		},
		[]string{"type"},
	)

	// Channel sends that failed and caused an unregister
	BroadcastSendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_send_failures_count",
			Help: "Total number of failed channel sends during broadcast",
		},
	)

	// Dedup claims rejected as duplicates, by key kind
	DedupRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedup_rejections_count",
			Help: "Total number of dedup claims rejected as already notified",
		},
		[]string{"kind"}, // kind: reminder, overdue
	)

	// Currently registered websocket channels
	ConnectedChannels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "connected_channels",
			Help: "Number of currently registered notification channels",
		},
	)
)

// RecordHTTPRequestDuration records HTTP request latency.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordScanDuration records the duration of one scanner pass.
func RecordScanDuration(pass string, duration time.Duration) {
	ScanDuration.WithLabelValues(pass).Observe(duration.Seconds())
}

// IncrementNotificationsSent counts a published notification.
func IncrementNotificationsSent(notificationType string) {
	NotificationsSent.WithLabelValues(notificationType).Inc()
}

// IncrementDedupRejections counts a rejected duplicate claim.
func IncrementDedupRejections(kind string) {
	DedupRejections.WithLabelValues(kind).Inc()
}
