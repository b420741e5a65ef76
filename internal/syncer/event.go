package syncer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/mauv0809/tt-ratings/internal/metrics"
	"github.com/mauv0809/tt-ratings/internal/ratings"
	"github.com/mauv0809/tt-ratings/internal/store"
)

// SyncEventForPlayer stores one player's summary and matches for an event.
// Nothing is fetched when the stored data is already complete: a summary
// exists, at least one match exists and every match has a resolved opponent.
func (s *Syncer) SyncEventForPlayer(ctx context.Context, eventID, playerID int64, meta EventMeta) (EventResult, error) {
	ctx, logger, _ := begin(ctx, "event_id", eventID, "player_id", playerID)
	start := time.Now()
	res := EventResult{EventID: eventID, PlayerID: playerID}

	complete, err := s.eventComplete(ctx, eventID, playerID)
	if err != nil {
		s.observe(metrics.EntityEvent, metrics.OutcomeFailed, start)
		return res, err
	}
	if complete {
		logger.Debug("Event already stored for player, skipping")
		res.Skipped = true
		s.metrics.IncEventSyncSkipped()
		s.observe(metrics.EntityEvent, metrics.OutcomeSkipped, start)
		return res, nil
	}

	logger.Debug("Fetching summary and detail")
	var (
		summaryRows []ratings.EventSummaryRow
		detailRows  []ratings.EventDetailRow
	)
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		rows, err := s.source.FetchEventSummary(ctx, eventID)
		summaryRows = rows
		return err
	})
	p.Go(func(ctx context.Context) error {
		rows, err := s.source.FetchEventDetail(ctx, eventID)
		detailRows = rows
		return err
	})
	if err := p.Wait(); err != nil {
		s.observe(metrics.EntityEvent, metrics.OutcomeFailed, start)
		return res, fmt.Errorf("failed to fetch event %d: %w", eventID, err)
	}

	if err := s.storeEvent(ctx, eventID, playerID, meta, summaryRows, detailRows, &res); err != nil {
		s.observe(metrics.EntityEvent, metrics.OutcomeFailed, start)
		return res, err
	}

	if res.MatchesStored == 0 {
		logger.Debug("No matches found for player in event")
	}
	s.observe(metrics.EntityEvent, metrics.OutcomeOK, start)
	return res, nil
}

func (s *Syncer) eventComplete(ctx context.Context, eventID, playerID int64) (bool, error) {
	summary, err := s.store.GetEventSummary(ctx, eventID, playerID)
	if err != nil || summary == nil {
		return false, err
	}
	matches, err := s.store.CountEventMatches(ctx, eventID, playerID)
	if err != nil || matches == 0 {
		return false, err
	}
	missing, err := s.store.CountEventMatchesMissingOpponent(ctx, eventID, playerID)
	if err != nil {
		return false, err
	}
	return missing == 0, nil
}

func (s *Syncer) storeEvent(ctx context.Context, eventID, playerID int64, meta EventMeta,
	summaryRows []ratings.EventSummaryRow, detailRows []ratings.EventDetailRow, res *EventResult) error {
	names := make(map[int64]string, len(summaryRows))
	for _, row := range summaryRows {
		if row.PlayerID != 0 && row.PlayerName != "" {
			names[row.PlayerID] = row.PlayerName
		}
	}

	existing, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	event := store.Event{ID: eventID, Name: strings.TrimSpace(meta.Name)}
	if event.Name == "" && existing != nil {
		event.Name = existing.Name
	}
	switch {
	case meta.Date != nil:
		event.Date = *meta.Date
	case existing != nil:
		event.Date = existing.Date
	default:
		event.Date = s.now()
	}
	if err := s.store.UpsertEvent(ctx, event); err != nil {
		return err
	}

	for _, row := range summaryRows {
		if row.PlayerID != playerID {
			continue
		}
		err := s.store.UpsertEventSummary(ctx, store.EventSummary{
			EventID:      eventID,
			PlayerID:     playerID,
			PlayerName:   row.PlayerName,
			InitialMean:  row.InitialMean,
			InitialStDev: row.InitialStDev,
			PointChange:  row.PointChange,
			FinalMean:    row.FinalMean,
			FinalStDev:   row.FinalStDev,
		})
		if err != nil {
			return err
		}
		res.SummaryStored = true
		break
	}

	matches := playerMatches(detailRows, playerID, names)
	if len(matches) == 0 {
		// Stored matches stay as they are when the feed has none for this player.
		return nil
	}
	if err := s.store.ReplaceEventMatches(ctx, eventID, playerID, matches); err != nil {
		return err
	}
	res.MatchesStored = len(matches)
	return nil
}

// playerMatches keeps the detail rows the player took part in, in feed order,
// and names the opponent from the summary feed.
func playerMatches(rows []ratings.EventDetailRow, playerID int64, names map[int64]string) []store.EventMatch {
	var out []store.EventMatch
	for _, row := range rows {
		if row.WinnerID != playerID && row.LoserID != playerID {
			continue
		}
		opponent := row.WinnerID
		if row.WinnerID == playerID {
			opponent = row.LoserID
		}
		var opponentName *string
		if name, ok := names[opponent]; ok {
			opponentName = &name
		}
		out = append(out, store.EventMatch{
			RowIndex:          len(out),
			OpponentName:      opponentName,
			WinnerID:          row.WinnerID,
			LoserID:           row.LoserID,
			Score:             row.Score,
			WinnerDelta:       row.WinnerDelta,
			WinnerOppMean:     row.WinnerOppMean,
			WinnerOppStDev:    row.WinnerOppStDev,
			LoserDelta:        row.LoserDelta,
			LoserOppMean:      row.LoserOppMean,
			LoserOppStDev:     row.LoserOppStDev,
			MatchesPairPlayed: row.MatchesPairPlayed,
		})
	}
	return out
}
