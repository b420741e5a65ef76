package notifier

import (
	"context"
	"sync"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendSyncReportFunc func(ctx context.Context, report SyncReport, dryRun bool) error

	// Call records
	SendSyncReportCalls []SyncReport
	DryRuns             []bool
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendSyncReportCalls = nil
	m.DryRuns = nil
}

func (m *Mock) SendSyncReport(ctx context.Context, report SyncReport, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendSyncReportCalls = append(m.SendSyncReportCalls, report)
	m.DryRuns = append(m.DryRuns, dryRun)
	if m.SendSyncReportFunc != nil {
		return m.SendSyncReportFunc(ctx, report, dryRun)
	}
	return nil
}

// Reports returns a copy of the recorded reports.
func (m *Mock) Reports() []SyncReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SyncReport(nil), m.SendSyncReportCalls...)
}
