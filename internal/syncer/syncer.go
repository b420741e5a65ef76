package syncer

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mauv0809/tt-ratings/internal/metrics"
	"github.com/mauv0809/tt-ratings/internal/notifier"
	"github.com/mauv0809/tt-ratings/internal/ratings"
	"github.com/mauv0809/tt-ratings/internal/store"
)

var _ Service = (*Syncer)(nil)

// New creates a Syncer. The notifier may be nil.
func New(st store.Store, source ratings.Source, m metrics.Metrics, n notifier.Notifier) *Syncer {
	return &Syncer{
		store:      st,
		source:     source,
		metrics:    m,
		notifier:   n,
		Now:        time.Now,
		MonthsBack: DefaultMonthsBack,
	}
}

type runIDKey struct{}

// WithRunID attaches a run ID to the context so a whole cascade logs under one ID.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunID returns the run ID carried by the context, if any.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// begin returns a context carrying a run ID, a logger scoped to it and
// whether this call started the run.
func begin(ctx context.Context, keyvals ...any) (context.Context, *log.Logger, bool) {
	root := false
	id := RunID(ctx)
	if id == "" {
		id = uuid.NewString()
		ctx = WithRunID(ctx, id)
		root = true
	}
	return ctx, log.With(append([]any{"run_id", id}, keyvals...)...), root
}

func (s *Syncer) now() time.Time {
	return s.Now().UTC()
}

func (s *Syncer) monthsBack(requested int) int {
	if requested > 0 {
		return requested
	}
	if s.MonthsBack > 0 {
		return s.MonthsBack
	}
	return DefaultMonthsBack
}

func (s *Syncer) observe(entity, outcome string, start time.Time) {
	s.metrics.IncSyncRuns(entity, outcome)
	s.metrics.ObserveSyncDuration(entity, time.Since(start).Seconds())
}

func (s *Syncer) report(ctx context.Context, logger *log.Logger, r notifier.SyncReport) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendSyncReport(ctx, r, notifier.IsDryRun(ctx)); err != nil {
		logger.Warn("Failed to send sync report", "error", err)
	}
}

// CheckConsistency lists events where the player's history and the event summary disagree.
func (s *Syncer) CheckConsistency(ctx context.Context, playerID int64) ([]store.Divergence, error) {
	return s.store.ListRatingDivergences(ctx, playerID)
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
