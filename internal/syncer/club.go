package syncer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mauv0809/tt-ratings/internal/metrics"
	"github.com/mauv0809/tt-ratings/internal/notifier"
	"github.com/mauv0809/tt-ratings/internal/store"
)

// SyncClub refreshes a club roster, live or from the stored members, and then
// syncs every member in roster order. A failing member never aborts the club.
func (s *Syncer) SyncClub(ctx context.Context, clubID int64, opts ClubOptions) (ClubResult, error) {
	ctx, logger, root := begin(ctx, "club_id", clubID)
	start := time.Now()
	res := ClubResult{ClubID: clubID, FromCache: opts.UseRosterCache}

	clubName, err := s.clubName(ctx, clubID, opts.ClubName)
	if err != nil {
		s.observe(metrics.EntityClub, metrics.OutcomeFailed, start)
		return res, err
	}

	roster, err := s.loadRoster(ctx, logger, clubID, clubName, opts.UseRosterCache)
	if err != nil {
		s.observe(metrics.EntityClub, metrics.OutcomeFailed, start)
		return res, err
	}
	res.RosterSize = len(roster)
	if len(roster) == 0 {
		s.observe(metrics.EntityClub, metrics.OutcomeFailed, start)
		return res, &EmptyRosterError{ClubID: clubID}
	}

	if !opts.UseRosterCache {
		if err := s.store.UpsertClub(ctx, clubID, clubName); err != nil {
			s.observe(metrics.EntityClub, metrics.OutcomeFailed, start)
			return res, err
		}
		if err := s.store.MarkClubSync(ctx, clubID, store.StatusInProgress, "", s.now()); err != nil {
			s.observe(metrics.EntityClub, metrics.OutcomeFailed, start)
			return res, err
		}
		if err := s.store.UpsertRoster(ctx, clubID, roster); err != nil {
			s.failClub(ctx, logger, clubID, err)
			s.observe(metrics.EntityClub, metrics.OutcomeFailed, start)
			return res, err
		}
	}

	if boolOr(opts.SyncPlayers, true) {
		logger.Info("Syncing player histories for club", "members", len(roster))
		for i, member := range roster {
			if err := ctx.Err(); err != nil {
				if !opts.UseRosterCache {
					s.failClub(ctx, logger, clubID, err)
				}
				s.observe(metrics.EntityClub, metrics.OutcomeFailed, start)
				return res, err
			}
			pr, err := s.SyncPlayer(ctx, member.PlayerID, PlayerOptions{MonthsBack: opts.MonthsBack})
			switch {
			case err != nil:
				logger.Warn("Player sync failed", "player_id", member.PlayerID, "error", err)
				res.PlayersFailed++
				res.FailedPlayerIDs = append(res.FailedPlayerIDs, member.PlayerID)
			case pr.Status == store.StatusFailed:
				res.PlayersFailed++
				res.FailedPlayerIDs = append(res.FailedPlayerIDs, member.PlayerID)
			default:
				res.PlayersSynced++
			}
			if done := i + 1; done%progressEvery == 0 || done == len(roster) {
				logger.Info("Club sync progress", "completed", done, "total", len(roster))
			}
		}
	}

	if !opts.UseRosterCache {
		if err := s.store.MarkClubSync(ctx, clubID, store.StatusOK, "", s.now()); err != nil {
			s.failClub(ctx, logger, clubID, err)
			s.observe(metrics.EntityClub, metrics.OutcomeFailed, start)
			return res, err
		}
	}
	s.observe(metrics.EntityClub, metrics.OutcomeOK, start)
	logger.Info("Club sync done", "players_synced", res.PlayersSynced, "players_failed", res.PlayersFailed)

	if !root {
		return res, nil
	}
	s.report(ctx, logger, notifier.SyncReport{
		Entity:    string(EntityClub),
		ID:        clubID,
		Name:      clubName,
		Status:    string(store.StatusOK),
		Synced:    res.PlayersSynced,
		Failed:    res.PlayersFailed,
		FailedIDs: res.FailedPlayerIDs,
		Duration:  time.Since(start),
		FromCache: opts.UseRosterCache,
	})
	return res, nil
}

// clubName picks the requested name, then the stored one, then a default.
func (s *Syncer) clubName(ctx context.Context, clubID int64, requested string) (string, error) {
	if name := strings.TrimSpace(requested); name != "" {
		return name, nil
	}
	existing, err := s.store.GetClub(ctx, clubID)
	if err != nil {
		return "", err
	}
	if existing != nil && existing.Name != "" {
		return existing.Name, nil
	}
	return store.ClubPlaceholder, nil
}

func (s *Syncer) loadRoster(ctx context.Context, logger *log.Logger, clubID int64, clubName string, cached bool) ([]store.ClubMember, error) {
	if cached {
		logger.Info("Loading roster from store")
		members, err := s.store.ListClubMembers(ctx, clubID)
		if err != nil {
			return nil, err
		}
		logger.Info("Roster loaded from store", "members", len(members))
		return members, nil
	}

	logger.Info("Fetching club roster", "club_name", clubName)
	entries, err := s.source.FetchClubRoster(ctx, clubID, clubName)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster of club %d: %w", clubID, err)
	}
	members := make([]store.ClubMember, 0, len(entries))
	for _, e := range entries {
		members = append(members, store.ClubMember{
			ClubID:         clubID,
			PlayerID:       e.PlayerID,
			Rank:           e.Rank,
			DisplayName:    e.DisplayName,
			RatingMean:     e.RatingMean,
			RatingStDev:    e.RatingStDev,
			LastPlayedDate: e.LastPlayedDate,
		})
	}
	logger.Info("Roster fetched", "members", len(members))
	return members, nil
}

func (s *Syncer) failClub(ctx context.Context, logger *log.Logger, clubID int64, cause error) {
	logger.Error("Club sync failed", "error", cause)
	if err := s.store.MarkClubSync(context.WithoutCancel(ctx), clubID, store.StatusFailed, cause.Error(), s.now()); err != nil {
		logger.Error("Failed to record club failure", "error", err)
	}
}
