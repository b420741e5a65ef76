package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	SyncRuns           *prometheus.CounterVec
	SyncDuration       *prometheus.HistogramVec
	EventSyncSkipped   prometheus.Counter
	FetchDuration      *prometheus.HistogramVec
	FetchErrors        *prometheus.CounterVec
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}

// Label values used by the sync pipelines and the scraper.
const (
	EntityPlayer = "player"
	EntityClub   = "club"
	EntityEvent  = "event"

	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"

	FeedRoster  = "roster"
	FeedSummary = "summary"
	FeedDetail  = "detail"
	FeedHistory = "history"
)
