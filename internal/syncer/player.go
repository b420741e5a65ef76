package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mauv0809/tt-ratings/internal/metrics"
	"github.com/mauv0809/tt-ratings/internal/notifier"
	"github.com/mauv0809/tt-ratings/internal/ratings"
	"github.com/mauv0809/tt-ratings/internal/store"
)

// SyncPlayer refreshes a player's history inside the requested window and, unless
// disabled, cascades into every event in that window. Failing events are counted,
// not returned. An empty history is a terminal failed status, not an error.
func (s *Syncer) SyncPlayer(ctx context.Context, playerID int64, opts PlayerOptions) (PlayerResult, error) {
	ctx, logger, root := begin(ctx, "player_id", playerID)
	start := time.Now()
	res := PlayerResult{PlayerID: playerID}
	monthsBack := s.monthsBack(opts.MonthsBack)

	logger.Info("Fetching player history")
	history, err := s.source.FetchPlayerHistory(ctx, playerID)
	if err != nil {
		s.failPlayer(ctx, logger, playerID, err)
		s.observe(metrics.EntityPlayer, metrics.OutcomeFailed, start)
		res.Status = store.StatusFailed
		if root {
			s.reportPlayer(ctx, logger, res, err.Error(), start)
		}
		return res, fmt.Errorf("failed to fetch history of player %d: %w", playerID, err)
	}
	res.HistoryRows = len(history)

	if err := s.store.MarkPlayerSync(ctx, playerID, store.StatusInProgress, "", s.now()); err != nil {
		s.observe(metrics.EntityPlayer, metrics.OutcomeFailed, start)
		return res, err
	}

	if len(history) == 0 {
		logger.Warn("No history found for player")
		if err := s.store.MarkPlayerSync(ctx, playerID, store.StatusFailed, NoHistoryMessage, s.now()); err != nil {
			s.observe(metrics.EntityPlayer, metrics.OutcomeFailed, start)
			return res, err
		}
		res.Status = store.StatusFailed
		s.observe(metrics.EntityPlayer, metrics.OutcomeFailed, start)
		if root {
			s.reportPlayer(ctx, logger, res, NoHistoryMessage, start)
		}
		return res, nil
	}

	res.Cutoff = s.now().AddDate(0, -monthsBack, 0)
	retained := make([]ratings.PlayerHistoryRow, 0, len(history))
	for _, row := range history {
		if !row.EventDate.Before(res.Cutoff) {
			retained = append(retained, row)
		}
	}
	res.RetainedRows = len(retained)
	logger.Info("Filtered history to window", "kept", len(retained), "total", len(history), "since", res.Cutoff.Format("2006-01-02"))

	for _, row := range retained {
		if err := s.storeHistoryRow(ctx, playerID, row); err != nil {
			s.failPlayer(ctx, logger, playerID, err)
			s.observe(metrics.EntityPlayer, metrics.OutcomeFailed, start)
			return res, err
		}
	}

	if boolOr(opts.SyncEvents, true) {
		events := uniqueEvents(retained)
		logger.Info("Syncing events for player", "events", len(events))
		for _, row := range events {
			if err := ctx.Err(); err != nil {
				s.failPlayer(ctx, logger, playerID, err)
				s.observe(metrics.EntityPlayer, metrics.OutcomeFailed, start)
				return res, err
			}
			date := row.EventDate
			evRes, err := s.SyncEventForPlayer(ctx, row.EventID, playerID, EventMeta{Name: row.EventName, Date: &date})
			switch {
			case err != nil:
				logger.Warn("Event sync failed for player", "event_id", row.EventID, "error", err)
				res.EventsFailed++
				res.FailedEventIDs = append(res.FailedEventIDs, row.EventID)
			case evRes.Skipped:
				res.EventsSkipped++
			default:
				res.EventsSynced++
			}
		}
	}

	if err := s.store.MarkPlayerSync(ctx, playerID, store.StatusOK, "", s.now()); err != nil {
		s.failPlayer(ctx, logger, playerID, err)
		s.observe(metrics.EntityPlayer, metrics.OutcomeFailed, start)
		res.Status = store.StatusFailed
		return res, err
	}
	res.Status = store.StatusOK
	s.observe(metrics.EntityPlayer, metrics.OutcomeOK, start)
	logger.Info("Player sync done",
		"events_synced", res.EventsSynced, "events_skipped", res.EventsSkipped, "events_failed", res.EventsFailed)
	if root {
		s.reportPlayer(ctx, logger, res, "", start)
	}
	return res, nil
}

func (s *Syncer) storeHistoryRow(ctx context.Context, playerID int64, row ratings.PlayerHistoryRow) error {
	if err := s.store.UpsertEvent(ctx, store.Event{ID: row.EventID, Name: row.EventName, Date: row.EventDate}); err != nil {
		return err
	}
	return s.store.UpsertPlayerHistory(ctx, store.PlayerHistory{
		PlayerID:     playerID,
		EventID:      row.EventID,
		EventDate:    row.EventDate,
		EventName:    row.EventName,
		InitialMean:  row.InitialMean,
		InitialStDev: row.InitialStDev,
		PointChange:  row.PointChange,
		FinalMean:    row.FinalMean,
		FinalStDev:   row.FinalStDev,
	})
}

// failPlayer stamps the failure even when the run's context is already cancelled.
func (s *Syncer) failPlayer(ctx context.Context, logger *log.Logger, playerID int64, cause error) {
	logger.Error("Player sync failed", "error", cause)
	if err := s.store.MarkPlayerSync(context.WithoutCancel(ctx), playerID, store.StatusFailed, cause.Error(), s.now()); err != nil {
		logger.Error("Failed to record player failure", "error", err)
	}
}

func (s *Syncer) reportPlayer(ctx context.Context, logger *log.Logger, res PlayerResult, errText string, start time.Time) {
	s.report(ctx, logger, notifier.SyncReport{
		Entity:    string(EntityPlayer),
		ID:        res.PlayerID,
		Status:    string(res.Status),
		Error:     errText,
		Synced:    res.EventsSynced + res.EventsSkipped,
		Failed:    res.EventsFailed,
		FailedIDs: res.FailedEventIDs,
		Duration:  time.Since(start),
	})
}

// uniqueEvents keeps the first-seen order of event IDs and the last-seen metadata.
func uniqueEvents(rows []ratings.PlayerHistoryRow) []ratings.PlayerHistoryRow {
	index := make(map[int64]int, len(rows))
	out := make([]ratings.PlayerHistoryRow, 0, len(rows))
	for _, row := range rows {
		if i, ok := index[row.EventID]; ok {
			out[i] = row
			continue
		}
		index[row.EventID] = len(out)
		out = append(out, row)
	}
	return out
}
