package ratings

import (
	"context"
	"sync"
)

// MockSource is a mock implementation of the Source interface for testing.
// It is safe for concurrent use.
type MockSource struct {
	mu sync.Mutex

	// Spies for method calls
	FetchClubRosterFunc    func(ctx context.Context, clubID int64, clubName string) ([]ClubRosterEntry, error)
	FetchEventSummaryFunc  func(ctx context.Context, eventID int64) ([]EventSummaryRow, error)
	FetchEventDetailFunc   func(ctx context.Context, eventID int64) ([]EventDetailRow, error)
	FetchPlayerHistoryFunc func(ctx context.Context, playerID int64) ([]PlayerHistoryRow, error)

	// Call records
	FetchClubRosterCalls    []int64
	FetchEventSummaryCalls  []int64
	FetchEventDetailCalls   []int64
	FetchPlayerHistoryCalls []int64
}

var _ Source = (*MockSource)(nil)

// NewMockSource creates a new mock instance.
func NewMockSource() *MockSource {
	return &MockSource{}
}

// Reset clears all call records.
func (m *MockSource) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchClubRosterCalls = nil
	m.FetchEventSummaryCalls = nil
	m.FetchEventDetailCalls = nil
	m.FetchPlayerHistoryCalls = nil
}

// Calls returns the total number of fetches recorded.
func (m *MockSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.FetchClubRosterCalls) + len(m.FetchEventSummaryCalls) +
		len(m.FetchEventDetailCalls) + len(m.FetchPlayerHistoryCalls)
}

// The hooks run outside the lock: summary and detail are fetched concurrently.

func (m *MockSource) FetchClubRoster(ctx context.Context, clubID int64, clubName string) ([]ClubRosterEntry, error) {
	m.mu.Lock()
	m.FetchClubRosterCalls = append(m.FetchClubRosterCalls, clubID)
	fn := m.FetchClubRosterFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, clubID, clubName)
	}
	return []ClubRosterEntry{}, nil
}

func (m *MockSource) FetchEventSummary(ctx context.Context, eventID int64) ([]EventSummaryRow, error) {
	m.mu.Lock()
	m.FetchEventSummaryCalls = append(m.FetchEventSummaryCalls, eventID)
	fn := m.FetchEventSummaryFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, eventID)
	}
	return []EventSummaryRow{}, nil
}

func (m *MockSource) FetchEventDetail(ctx context.Context, eventID int64) ([]EventDetailRow, error) {
	m.mu.Lock()
	m.FetchEventDetailCalls = append(m.FetchEventDetailCalls, eventID)
	fn := m.FetchEventDetailFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, eventID)
	}
	return []EventDetailRow{}, nil
}

func (m *MockSource) FetchPlayerHistory(ctx context.Context, playerID int64) ([]PlayerHistoryRow, error) {
	m.mu.Lock()
	m.FetchPlayerHistoryCalls = append(m.FetchPlayerHistoryCalls, playerID)
	fn := m.FetchPlayerHistoryFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, playerID)
	}
	return []PlayerHistoryRow{}, nil
}
