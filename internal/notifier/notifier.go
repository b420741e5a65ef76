package notifier

import (
	"context"
	"time"
)

// Notifier defines a high-level interface for reporting finished sync runs.
// This decouples the sync engine from the specific notification provider (e.g., Slack).
type Notifier interface {
	SendSyncReport(ctx context.Context, report SyncReport, dryRun bool) error
}

// SyncReport summarises one top-level club or player sync.
type SyncReport struct {
	Entity    string
	ID        int64
	Name      string
	Status    string
	Error     string
	Synced    int
	Failed    int
	FailedIDs []int64
	Duration  time.Duration
	FromCache bool
}

type dryRunKey struct{}

// WithDryRun marks the context so notifications are logged instead of sent.
func WithDryRun(ctx context.Context, dryRun bool) context.Context {
	return context.WithValue(ctx, dryRunKey{}, dryRun)
}

// IsDryRun reports whether the context was marked with WithDryRun.
func IsDryRun(ctx context.Context) bool {
	dryRun, _ := ctx.Value(dryRunKey{}).(bool)
	return dryRun
}
