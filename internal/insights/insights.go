package insights

import (
	"context"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mauv0809/tt-ratings/internal/store"
)

var _ Service = (*Insights)(nil)

// New creates a new Insights reader.
func New(st store.Store) *Insights {
	return &Insights{
		store: st,
		Now:   time.Now,
	}
}

// Leaderboard returns one page of a club roster ordered by rank, unranked members last.
func (i *Insights) Leaderboard(ctx context.Context, clubID int64, limit int, cursor string) (LeaderboardPage, error) {
	page := LeaderboardPage{ClubID: clubID, Items: []store.ClubMember{}}
	limit = clampLimit(limit)

	var after *store.RankCursor
	if cursor != "" {
		after = &store.RankCursor{}
		if err := decodeCursor(cursor, after); err != nil {
			return page, err
		}
	}

	members, err := i.store.ListLeaderboard(ctx, clubID, after, limit+1)
	if err != nil {
		return page, err
	}
	if len(members) > limit {
		members = members[:limit]
		last := members[len(members)-1]
		next, err := encodeCursor(store.RankCursor{Rank: last.SortRank(), PlayerID: last.PlayerID})
		if err != nil {
			return page, err
		}
		page.NextCursor = next
		page.HasMore = true
	}
	if len(members) > 0 {
		page.Items = members
	}
	return page, nil
}

// History returns one page of a player's history within the range, newest first.
func (i *Insights) History(ctx context.Context, playerID int64, r Range, limit int, cursor string) (HistoryPage, error) {
	page := HistoryPage{PlayerID: playerID, Range: r, Items: []store.PlayerHistory{}}
	limit = clampLimit(limit)

	q := store.HistoryQuery{Since: r.Since(i.Now()), Limit: limit + 1}
	if cursor != "" {
		q.Before = &store.HistoryCursor{}
		if err := decodeCursor(cursor, q.Before); err != nil {
			return page, err
		}
	}

	rows, err := i.store.ListPlayerHistory(ctx, playerID, q)
	if err != nil {
		return page, err
	}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next, err := encodeCursor(store.HistoryCursor{EventDate: last.EventDate, EventID: last.EventID})
		if err != nil {
			return page, err
		}
		page.NextCursor = next
		page.HasMore = true
	}
	if len(rows) > 0 {
		page.Items = rows
	}
	return page, nil
}

// Overview summarises a player over the range. It returns nil for unknown players.
func (i *Insights) Overview(ctx context.Context, playerID int64, r Range) (*Overview, error) {
	player, err := i.store.GetPlayer(ctx, playerID)
	if err != nil || player == nil {
		return nil, err
	}

	ov := &Overview{
		PlayerID:     playerID,
		DisplayName:  player.DisplayName,
		AvatarURL:    player.AvatarURL,
		Range:        r,
		Trend:        []TrendPoint{},
		RecentEvents: []RecentEvent{},
		Sync: SyncState{
			Status:       player.SyncStatus,
			LastSyncedAt: player.LastSyncedAt,
			Error:        player.SyncError,
		},
	}

	membership, err := i.store.GetPrimaryMembership(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if membership != nil {
		ov.Club = &ClubRef{ClubID: membership.ClubID, Name: membership.ClubName, Rank: membership.Rank}
	}

	latest, err := i.store.LatestPlayerHistory(ctx, playerID)
	if err != nil {
		return nil, err
	}
	ov.Current = current(latest)
	if latest != nil {
		played := latest.EventDate
		ov.LastPlayedDate = &played
	}

	rows, err := i.store.ListPlayerHistory(ctx, playerID, store.HistoryQuery{Since: r.Since(i.Now())})
	if err != nil {
		return nil, err
	}
	eventIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		eventIDs = append(eventIDs, row.EventID)
	}
	matches, err := i.store.ListPlayerMatches(ctx, playerID, eventIDs)
	if err != nil {
		return nil, err
	}

	ov.Insights = playerInsights(playerID, rows, matches)
	for j := len(rows) - 1; j >= 0; j-- {
		ov.Trend = append(ov.Trend, TrendPoint{Date: rows[j].EventDate, Mean: rows[j].FinalMean, StDev: rows[j].FinalStDev})
	}
	for _, row := range rows[:min(len(rows), recentEvents)] {
		ov.RecentEvents = append(ov.RecentEvents, RecentEvent{
			EventID:     row.EventID,
			EventDate:   row.EventDate,
			EventName:   row.EventName,
			PointChange: row.PointChange,
			Final:       RatingPoint{Mean: row.FinalMean, StDev: row.FinalStDev},
		})
	}

	log.Debug("Built player overview", "playerID", playerID, "range", r, "events", len(rows), "matches", len(matches))
	return ov, nil
}

func current(latest *store.PlayerHistory) Current {
	if latest == nil {
		return Current{Confidence: Confidence(nil)}
	}
	mean, stdev, change := latest.FinalMean, latest.FinalStDev, latest.PointChange
	return Current{
		Mean:       &mean,
		StDev:      &stdev,
		LastChange: &change,
		LastEvent:  &EventRef{EventID: latest.EventID, Name: latest.EventName, Date: latest.EventDate},
		Confidence: Confidence(&stdev),
	}
}

// Confidence buckets a rating deviation. A missing deviation is "unknown".
func Confidence(stdev *int) string {
	switch {
	case stdev == nil:
		return "unknown"
	case *stdev <= 60:
		return "high"
	case *stdev <= 130:
		return "medium"
	default:
		return "low"
	}
}

// playerInsights expects rows newest first.
func playerInsights(playerID int64, rows []store.PlayerHistory, matches []store.EventMatch) PlayerInsights {
	out := PlayerInsights{EventsPlayed: len(rows)}

	for _, row := range rows[:min(len(rows), momentumSize)] {
		out.MomentumLast5 += row.PointChange
	}
	if len(rows) >= 2 {
		change := rows[0].FinalStDev - rows[len(rows)-1].FinalStDev
		out.StDevChangeSelectedRange = &change
	}
	if len(rows) > 0 {
		out.CurrentStreak = streak(rows)
	}

	initial := make(map[int64]int, len(rows))
	for _, row := range rows {
		initial[row.EventID] = row.InitialMean
	}

	var wins, losses int
	for _, m := range matches {
		if m.WinnerID == playerID {
			wins++
			if m.WinnerOppMean > initial[m.EventID] {
				out.UpsetWins.Count++
				if out.UpsetWins.Best == nil || m.WinnerOppMean > out.UpsetWins.Best.OpponentRating {
					out.UpsetWins.Best = &OpponentResult{OpponentName: m.OpponentName, OpponentRating: m.WinnerOppMean, EventID: m.EventID}
				}
			}
			continue
		}
		losses++
		if out.ToughestLoss == nil || m.LoserOppMean < out.ToughestLoss.OpponentRating {
			out.ToughestLoss = &OpponentResult{OpponentName: m.OpponentName, OpponentRating: m.LoserOppMean, EventID: m.EventID}
		}
	}
	if total := wins + losses; total > 0 {
		out.WinRate = &WinRate{Wins: wins, Losses: losses, Total: total}
	}
	return out
}

// streak counts how many of the newest events moved the rating the same way.
func streak(rows []store.PlayerHistory) *Streak {
	dir := direction(rows[0].PointChange)
	s := &Streak{Direction: dir}
	for _, row := range rows {
		if direction(row.PointChange) != dir {
			break
		}
		s.Count++
	}
	return s
}

func direction(pointChange int) string {
	if pointChange >= 0 {
		return "W"
	}
	return "L"
}

// EventForPlayer breaks down one player's results in an event. It returns nil for unknown events.
func (i *Insights) EventForPlayer(ctx context.Context, eventID, playerID int64) (*EventInsights, error) {
	event, err := i.store.GetEvent(ctx, eventID)
	if err != nil || event == nil {
		return nil, err
	}
	summary, err := i.store.GetEventSummary(ctx, eventID, playerID)
	if err != nil {
		return nil, err
	}
	matches, err := i.store.ListEventMatches(ctx, eventID, playerID)
	if err != nil {
		return nil, err
	}

	out := &EventInsights{
		Event:    EventRef{EventID: event.ID, Name: event.Name, Date: event.Date},
		PlayerID: playerID,
		Matches:  make([]MatchResult, 0, len(matches)),
	}
	if summary != nil {
		out.Summary = &EventSummary{
			Initial:     RatingPoint{Mean: summary.InitialMean, StDev: summary.InitialStDev},
			Final:       RatingPoint{Mean: summary.FinalMean, StDev: summary.FinalStDev},
			TotalChange: summary.PointChange,
		}
	}

	var oppSum int
	for _, m := range matches {
		res := matchResult(m, playerID)
		out.Matches = append(out.Matches, res)
		oppSum += res.OpponentRating.Mean
		rated := &RatedOpponent{Opponent: res.Opponent, OpponentRating: res.OpponentRating.Mean}
		if res.Result == "W" {
			out.Insights.Wins++
			if out.Insights.BestWin == nil || rated.OpponentRating > out.Insights.BestWin.OpponentRating {
				out.Insights.BestWin = rated
			}
			continue
		}
		out.Insights.Losses++
		if out.Insights.ToughestLoss == nil || rated.OpponentRating < out.Insights.ToughestLoss.OpponentRating {
			out.Insights.ToughestLoss = rated
		}
	}
	if len(matches) > 0 {
		avg := int(math.Round(float64(oppSum) / float64(len(matches))))
		out.Insights.AvgOpponentMean = &avg
	}
	return out, nil
}

func matchResult(m store.EventMatch, playerID int64) MatchResult {
	if m.WinnerID == playerID {
		return MatchResult{
			Result:         "W",
			Opponent:       Opponent{PlayerID: m.LoserID, Name: m.OpponentName},
			OpponentRating: RatingPoint{Mean: m.WinnerOppMean, StDev: m.WinnerOppStDev},
			Delta:          m.WinnerDelta,
			Score:          m.Score,
		}
	}
	return MatchResult{
		Result:         "L",
		Opponent:       Opponent{PlayerID: m.WinnerID, Name: m.OpponentName},
		OpponentRating: RatingPoint{Mean: m.LoserOppMean, StDev: m.LoserOppStDev},
		Delta:          m.LoserDelta,
		Score:          m.Score,
	}
}
