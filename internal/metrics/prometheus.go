package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Prometheus metrics for the back-office jobs

var (
	// Trophy metrics
	TrophyGrantsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inplayrs_trophy_grants_total",
			Help: "Total number of trophy grant attempts by outcome",
		},
		[]string{"trophy", "outcome"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inplayrs_trophy_notifications_total",
			Help: "Total number of award notifications by status",
		},
		[]string{"status"},
	)

	RuleEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inplayrs_trophy_rule_evaluations_total",
			Help: "Total number of trophy rule evaluations by status",
		},
		[]string{"trophy", "status"},
	)

	RuleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inplayrs_trophy_rule_duration_seconds",
			Help:    "Duration of trophy rule evaluations in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"trophy"},
	)

	TrophyRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inplayrs_trophy_runs_total",
			Help: "Total number of trophy runs by status",
		},
		[]string{"status"},
	)

	RunLockContentionTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inplayrs_run_lock_contention_total",
			Help: "Total number of runs skipped because another process held the lock",
		},
	)

	// Feed metrics
	FeedDownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inplayrs_feed_downloads_total",
			Help: "Total number of data feed downloads",
		},
		[]string{"feed", "status"},
	)

	FeedDownloadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inplayrs_feed_download_duration_seconds",
			Help:    "Duration of data feed downloads in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"feed"},
	)

	FeedBytesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inplayrs_feed_bytes_written_total",
			Help: "Total number of feed bytes cached to disk",
		},
		[]string{"feed"},
	)

	FeedPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inplayrs_feed_pass_duration_seconds",
			Help:    "Duration of a full pass over the configured feeds in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120},
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inplayrs_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	LastSuccessfulRun = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inplayrs_last_successful_run_timestamp",
			Help: "Timestamp of the last successful job run",
		},
		[]string{"job"},
	)
)

// RecordGrant records the outcome of a single trophy grant
func RecordGrant(trophy, outcome string) {
	TrophyGrantsTotal.WithLabelValues(trophy, outcome).Inc()
}

// RecordNotification records an award notification attempt
func RecordNotification(status string) {
	NotificationsTotal.WithLabelValues(status).Inc()
}

// RecordRule records a rule evaluation
func RecordRule(trophy, status string, duration float64) {
	RuleEvaluationsTotal.WithLabelValues(trophy, status).Inc()
	RuleDuration.WithLabelValues(trophy).Observe(duration)
}

// RecordRun records a trophy run
func RecordRun(status string) {
	TrophyRunsTotal.WithLabelValues(status).Inc()

	if status == "complete" {
		LastSuccessfulRun.WithLabelValues("updatetrophies").SetToCurrentTime()
	}
}

// RecordLockContention records a run skipped because the lock was held
func RecordLockContention() {
	RunLockContentionTotal.Inc()
}

// RecordFeedDownload records a feed download
func RecordFeedDownload(feed, status string, duration float64, bytes int) {
	FeedDownloadsTotal.WithLabelValues(feed, status).Inc()
	FeedDownloadDuration.WithLabelValues(feed).Observe(duration)
	if bytes > 0 {
		FeedBytesWritten.WithLabelValues(feed).Add(float64(bytes))
	}
}

// RecordFeedPass records a full pass over the feeds
func RecordFeedPass(duration float64) {
	FeedPassDuration.Observe(duration)
	LastSuccessfulRun.WithLabelValues("loadfeeds").SetToCurrentTime()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// Push sends everything registered with the default registry to a Pushgateway.
// Batch jobs exit before a scrape could happen, so they push instead.
func Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(prometheus.DefaultGatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
