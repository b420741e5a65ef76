package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu               sync.Mutex
	syncRuns         map[string]int
	syncDurations    map[string][]float64
	eventSyncSkipped int
	fetchDurations   map[string][]float64
	fetchErrors      map[string]int
	slackNotifSent   int
	slackNotifFailed int
	startupTime      float64
}

var _ Metrics = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		syncRuns:       make(map[string]int),
		syncDurations:  make(map[string][]float64),
		fetchDurations: make(map[string][]float64),
		fetchErrors:    make(map[string]int),
	}
}

func (m *Mock) IncSyncRuns(entity, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncRuns[entity+"/"+outcome]++
}

func (m *Mock) ObserveSyncDuration(entity string, duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncDurations[entity] = append(m.syncDurations[entity], duration)
}

func (m *Mock) IncEventSyncSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventSyncSkipped++
}

func (m *Mock) ObserveFetchDuration(feed string, duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchDurations[feed] = append(m.fetchDurations[feed], duration)
}

func (m *Mock) IncFetchErrors(feed string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchErrors[feed]++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// SyncRuns returns how often IncSyncRuns was called for the entity/outcome pair.
func (m *Mock) SyncRuns(entity, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncRuns[entity+"/"+outcome]
}

// SyncDurations returns the durations observed for an entity.
func (m *Mock) SyncDurations(entity string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.syncDurations[entity]...)
}

// EventSyncSkipped returns the number of times IncEventSyncSkipped was called.
func (m *Mock) EventSyncSkipped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventSyncSkipped
}

// FetchCount returns how many fetch durations were observed for a feed.
func (m *Mock) FetchCount(feed string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fetchDurations[feed])
}

// FetchErrors returns the number of times IncFetchErrors was called for a feed.
func (m *Mock) FetchErrors(feed string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchErrors[feed]
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}

// StartupTime returns the last value passed to SetStartupTime.
func (m *Mock) StartupTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startupTime
}
