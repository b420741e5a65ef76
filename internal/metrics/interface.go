package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the sync engine from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncSyncRuns(entity, outcome string)
	ObserveSyncDuration(entity string, duration float64)
	IncEventSyncSkipped()
	ObserveFetchDuration(feed string, duration float64)
	IncFetchErrors(feed string)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
