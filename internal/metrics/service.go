package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		SyncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tt_sync_runs_total",
			Help: "The total number of sync pipeline runs by entity and outcome.",
		}, []string{"entity", "outcome"}),
		SyncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tt_sync_duration_seconds",
			Help:    "The duration of a sync pipeline run, cascades included.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300, 900},
		}, []string{"entity"}),
		EventSyncSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tt_event_sync_skipped_total",
			Help: "The total number of event syncs short-circuited because stored data was complete.",
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tt_fetch_duration_seconds",
			Help:    "The duration of fetches against the ratings source.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"feed"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tt_fetch_errors_total",
			Help: "The total number of failed fetches or parses against the ratings source.",
		}, []string{"feed"}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tt_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tt_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tt_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.SyncRuns,
		s.SyncDuration,
		s.EventSyncSkipped,
		s.FetchDuration,
		s.FetchErrors,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncSyncRuns(entity, outcome string) {
	s.SyncRuns.WithLabelValues(entity, outcome).Inc()
}

func (s *Service) ObserveSyncDuration(entity string, duration float64) {
	s.SyncDuration.WithLabelValues(entity).Observe(duration)
}

func (s *Service) IncEventSyncSkipped() {
	s.EventSyncSkipped.Inc()
}

func (s *Service) ObserveFetchDuration(feed string, duration float64) {
	s.FetchDuration.WithLabelValues(feed).Observe(duration)
}

func (s *Service) IncFetchErrors(feed string) {
	s.FetchErrors.WithLabelValues(feed).Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
