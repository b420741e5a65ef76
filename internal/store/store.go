package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
)

var _ Store = (*SQLStore)(nil)

// New creates a new Store.
func New(db *sqlx.DB) *SQLStore {
	return &SQLStore{
		db: db,
	}
}

const upsertPlayerSQL = `
	INSERT INTO players (id, display_name) VALUES (?, ?)
	ON CONFLICT(id) DO UPDATE SET
		display_name = CASE WHEN excluded.display_name = ? THEN players.display_name ELSE excluded.display_name END`

// UpsertPlayer creates a player or renames it. Nothing but the display name is touched,
// and a placeholder never replaces a real name.
func (s *SQLStore) UpsertPlayer(ctx context.Context, id int64, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, s.db.Rebind(upsertPlayerSQL), playerArgs(id, displayName)...)
	if err != nil {
		return fmt.Errorf("failed to upsert player %d: %w", id, err)
	}
	return nil
}

func playerArgs(id int64, displayName string) []any {
	placeholder := PlayerPlaceholder(id)
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = placeholder
	}
	return []any{id, name, placeholder}
}

// MarkPlayerSync stamps the sync status columns of a player, creating it if needed.
// An empty syncErr clears the stored error.
func (s *SQLStore) MarkPlayerSync(ctx context.Context, id int64, status SyncStatus, syncErr string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO players (id, display_name, sync_status, sync_error, last_synced_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sync_status = excluded.sync_status,
			sync_error = excluded.sync_error,
			last_synced_at = excluded.last_synced_at`),
		id, PlayerPlaceholder(id), string(status), nullString(syncErr), at.UTC())
	if err != nil {
		return fmt.Errorf("failed to mark player %d as %s: %w", id, status, err)
	}
	log.Debug("Marked player sync status", "playerID", id, "status", status)
	return nil
}

func (s *SQLStore) UpdatePlayerAvatar(ctx context.Context, id int64, avatarURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE players SET avatar_url = ? WHERE id = ?`), nullString(avatarURL), id)
	if err != nil {
		return fmt.Errorf("failed to update avatar of player %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("player %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// UpsertClub creates a club or renames it, leaving its sync columns untouched.
func (s *SQLStore) UpsertClub(ctx context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO clubs (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`), id, name)
	if err != nil {
		return fmt.Errorf("failed to upsert club %d: %w", id, err)
	}
	return nil
}

func (s *SQLStore) MarkClubSync(ctx context.Context, id int64, status SyncStatus, syncErr string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO clubs (id, name, sync_status, sync_error, last_synced_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sync_status = excluded.sync_status,
			sync_error = excluded.sync_error,
			last_synced_at = excluded.last_synced_at`),
		id, ClubPlaceholder, string(status), nullString(syncErr), at.UTC())
	if err != nil {
		return fmt.Errorf("failed to mark club %d as %s: %w", id, status, err)
	}
	return nil
}

// UpsertRoster writes every member's player row and then replaces its membership row,
// all in one transaction.
func (s *SQLStore) UpsertRoster(ctx context.Context, clubID int64, members []ClubMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin roster transaction: %w", err)
	}
	defer tx.Rollback()

	playerStmt, err := tx.PreparexContext(ctx, tx.Rebind(upsertPlayerSQL))
	if err != nil {
		return fmt.Errorf("failed to prepare player upsert: %w", err)
	}
	defer playerStmt.Close()

	memberStmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO club_members (club_id, player_id, rank, display_name, rating_mean, rating_stdev, last_played_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(club_id, player_id) DO UPDATE SET
			rank = excluded.rank,
			display_name = excluded.display_name,
			rating_mean = excluded.rating_mean,
			rating_stdev = excluded.rating_stdev,
			last_played_date = excluded.last_played_date`))
	if err != nil {
		return fmt.Errorf("failed to prepare member upsert: %w", err)
	}
	defer memberStmt.Close()

	for _, m := range members {
		if _, err := playerStmt.ExecContext(ctx, playerArgs(m.PlayerID, m.DisplayName)...); err != nil {
			return fmt.Errorf("failed to upsert player %d: %w", m.PlayerID, err)
		}
		if _, err := memberStmt.ExecContext(ctx, clubID, m.PlayerID, m.Rank, m.DisplayName,
			m.RatingMean, m.RatingStDev, utcPtr(m.LastPlayedDate)); err != nil {
			return fmt.Errorf("failed to upsert member %d of club %d: %w", m.PlayerID, clubID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit roster of club %d: %w", clubID, err)
	}
	log.Debug("Upserted club roster", "clubID", clubID, "members", len(members))
	return nil
}

// UpsertEvent writes an event. An empty or placeholder name never replaces a stored name.
func (s *SQLStore) UpsertEvent(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	placeholder := EventPlaceholder(event.ID)
	name := strings.TrimSpace(event.Name)
	if name == "" {
		name = placeholder
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO events (id, name, date) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = CASE WHEN excluded.name = ? THEN events.name ELSE excluded.name END,
			date = excluded.date`),
		event.ID, name, event.Date.UTC(), placeholder)
	if err != nil {
		return fmt.Errorf("failed to upsert event %d: %w", event.ID, err)
	}
	return nil
}

func (s *SQLStore) UpsertEventSummary(ctx context.Context, summary EventSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO event_summaries (event_id, player_id, player_name, initial_mean, initial_stdev, point_change, final_mean, final_stdev)
		VALUES (:event_id, :player_id, :player_name, :initial_mean, :initial_stdev, :point_change, :final_mean, :final_stdev)
		ON CONFLICT(event_id, player_id) DO UPDATE SET
			player_name = excluded.player_name,
			initial_mean = excluded.initial_mean,
			initial_stdev = excluded.initial_stdev,
			point_change = excluded.point_change,
			final_mean = excluded.final_mean,
			final_stdev = excluded.final_stdev`, summary)
	if err != nil {
		return fmt.Errorf("failed to upsert summary of event %d for player %d: %w", summary.EventID, summary.PlayerID, err)
	}
	return nil
}

// ReplaceEventMatches swaps the whole match set of a player in an event.
// Readers see either the old set or the new one.
func (s *SQLStore) ReplaceEventMatches(ctx context.Context, eventID, playerID int64, matches []EventMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin match transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM event_matches WHERE event_id = ? AND player_id = ?`), eventID, playerID); err != nil {
		return fmt.Errorf("failed to delete matches of event %d for player %d: %w", eventID, playerID, err)
	}

	if len(matches) > 0 {
		rows := make([]EventMatch, len(matches))
		for i, m := range matches {
			m.EventID = eventID
			m.PlayerID = playerID
			rows[i] = m
		}
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO event_matches (event_id, player_id, row_index, opponent_name, winner_id, loser_id, score,
				winner_delta, winner_opp_mean, winner_opp_stdev, loser_delta, loser_opp_mean, loser_opp_stdev, matches_pair_played)
			VALUES (:event_id, :player_id, :row_index, :opponent_name, :winner_id, :loser_id, :score,
				:winner_delta, :winner_opp_mean, :winner_opp_stdev, :loser_delta, :loser_opp_mean, :loser_opp_stdev, :matches_pair_played)`, rows)
		if err != nil {
			return fmt.Errorf("failed to insert matches of event %d for player %d: %w", eventID, playerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit matches of event %d for player %d: %w", eventID, playerID, err)
	}
	return nil
}

func (s *SQLStore) UpsertPlayerHistory(ctx context.Context, h PlayerHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h.EventDate = h.EventDate.UTC()
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO player_history (player_id, event_id, event_date, event_name, initial_mean, initial_stdev, point_change, final_mean, final_stdev)
		VALUES (:player_id, :event_id, :event_date, :event_name, :initial_mean, :initial_stdev, :point_change, :final_mean, :final_stdev)
		ON CONFLICT(player_id, event_id) DO UPDATE SET
			event_date = excluded.event_date,
			event_name = excluded.event_name,
			initial_mean = excluded.initial_mean,
			initial_stdev = excluded.initial_stdev,
			point_change = excluded.point_change,
			final_mean = excluded.final_mean,
			final_stdev = excluded.final_stdev`, h)
	if err != nil {
		return fmt.Errorf("failed to upsert history of player %d for event %d: %w", h.PlayerID, h.EventID, err)
	}
	return nil
}

// Reset removes every row from every table, children first.
func (s *SQLStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reset transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{
		"event_matches", "event_summaries", "player_history",
		"club_members", "events", "clubs", "players",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}
	log.Warn("All stored rating data was cleared")
	return nil
}

func (s *SQLStore) GetPlayer(ctx context.Context, id int64) (*Player, error) {
	var p Player
	if err := s.get(ctx, &p, `
		SELECT id, display_name, avatar_url, sync_status, sync_error, last_synced_at
		FROM players WHERE id = ?`, id); err != nil {
		return nil, notFoundAsNil(err, "player", id)
	}
	return &p, nil
}

func (s *SQLStore) GetClub(ctx context.Context, id int64) (*Club, error) {
	var c Club
	if err := s.get(ctx, &c, `
		SELECT id, name, sync_status, sync_error, last_synced_at
		FROM clubs WHERE id = ?`, id); err != nil {
		return nil, notFoundAsNil(err, "club", id)
	}
	return &c, nil
}

func (s *SQLStore) GetEvent(ctx context.Context, id int64) (*Event, error) {
	var e Event
	if err := s.get(ctx, &e, `SELECT id, name, date FROM events WHERE id = ?`, id); err != nil {
		return nil, notFoundAsNil(err, "event", id)
	}
	return &e, nil
}

func (s *SQLStore) GetEventSummary(ctx context.Context, eventID, playerID int64) (*EventSummary, error) {
	var es EventSummary
	if err := s.get(ctx, &es, `
		SELECT event_id, player_id, player_name, initial_mean, initial_stdev, point_change, final_mean, final_stdev
		FROM event_summaries WHERE event_id = ? AND player_id = ?`, eventID, playerID); err != nil {
		return nil, notFoundAsNil(err, "event summary", eventID)
	}
	return &es, nil
}

func (s *SQLStore) CountEventMatches(ctx context.Context, eventID, playerID int64) (int, error) {
	var n int
	err := s.get(ctx, &n, `SELECT COUNT(*) FROM event_matches WHERE event_id = ? AND player_id = ?`, eventID, playerID)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches of event %d: %w", eventID, err)
	}
	return n, nil
}

// CountEventMatchesMissingOpponent counts stored matches whose opponent name is unresolved.
func (s *SQLStore) CountEventMatchesMissingOpponent(ctx context.Context, eventID, playerID int64) (int, error) {
	var n int
	err := s.get(ctx, &n, `
		SELECT COUNT(*) FROM event_matches
		WHERE event_id = ? AND player_id = ? AND opponent_name IS NULL`, eventID, playerID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unresolved matches of event %d: %w", eventID, err)
	}
	return n, nil
}

// EventHasData reports whether any summary or match row exists for the event.
func (s *SQLStore) EventHasData(ctx context.Context, eventID int64) (bool, error) {
	var n int
	err := s.get(ctx, &n, `
		SELECT (SELECT COUNT(*) FROM event_summaries WHERE event_id = ?)
		     + (SELECT COUNT(*) FROM event_matches WHERE event_id = ?)`, eventID, eventID)
	if err != nil {
		return false, fmt.Errorf("failed to check data of event %d: %w", eventID, err)
	}
	return n > 0, nil
}

const memberColumns = `club_id, player_id, rank, display_name, rating_mean, rating_stdev, last_played_date`

func (s *SQLStore) ListClubMembers(ctx context.Context, clubID int64) ([]ClubMember, error) {
	var members []ClubMember
	err := s.selectRows(ctx, &members, `
		SELECT `+memberColumns+` FROM club_members
		WHERE club_id = ?
		ORDER BY COALESCE(rank, 2147483647), player_id`, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of club %d: %w", clubID, err)
	}
	return members, nil
}

// ListLeaderboard pages through a club roster by rank, unranked members last.
func (s *SQLStore) ListLeaderboard(ctx context.Context, clubID int64, after *RankCursor, limit int) ([]ClubMember, error) {
	query := `SELECT ` + memberColumns + ` FROM club_members WHERE club_id = ?`
	args := []any{clubID}
	if after != nil {
		query += ` AND (COALESCE(rank, 2147483647) > ? OR (COALESCE(rank, 2147483647) = ? AND player_id > ?))`
		args = append(args, after.Rank, after.Rank, after.PlayerID)
	}
	query += ` ORDER BY COALESCE(rank, 2147483647), player_id LIMIT ?`
	args = append(args, limit)

	var members []ClubMember
	if err := s.selectRows(ctx, &members, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list leaderboard of club %d: %w", clubID, err)
	}
	return members, nil
}

// GetPrimaryMembership returns the player's first club membership, if any.
func (s *SQLStore) GetPrimaryMembership(ctx context.Context, playerID int64) (*Membership, error) {
	var m Membership
	if err := s.get(ctx, &m, `
		SELECT m.club_id, c.name AS club_name, m.rank
		FROM club_members m JOIN clubs c ON c.id = m.club_id
		WHERE m.player_id = ?
		ORDER BY m.club_id LIMIT 1`, playerID); err != nil {
		return nil, notFoundAsNil(err, "membership of player", playerID)
	}
	return &m, nil
}

const historyColumns = `player_id, event_id, event_date, event_name, initial_mean, initial_stdev, point_change, final_mean, final_stdev`

// ListPlayerHistory returns history rows newest first.
func (s *SQLStore) ListPlayerHistory(ctx context.Context, playerID int64, q HistoryQuery) ([]PlayerHistory, error) {
	query := `SELECT ` + historyColumns + ` FROM player_history WHERE player_id = ?`
	args := []any{playerID}
	if q.Since != nil {
		query += ` AND event_date >= ?`
		args = append(args, q.Since.UTC())
	}
	if q.Before != nil {
		before := q.Before.EventDate.UTC()
		query += ` AND (event_date < ? OR (event_date = ? AND event_id < ?))`
		args = append(args, before, before, q.Before.EventID)
	}
	query += ` ORDER BY event_date DESC, event_id DESC`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	var rows []PlayerHistory
	if err := s.selectRows(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list history of player %d: %w", playerID, err)
	}
	return rows, nil
}

func (s *SQLStore) LatestPlayerHistory(ctx context.Context, playerID int64) (*PlayerHistory, error) {
	rows, err := s.ListPlayerHistory(ctx, playerID, HistoryQuery{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

const matchColumns = `event_id, player_id, row_index, opponent_name, winner_id, loser_id, score,
	winner_delta, winner_opp_mean, winner_opp_stdev, loser_delta, loser_opp_mean, loser_opp_stdev, matches_pair_played`

func (s *SQLStore) ListEventMatches(ctx context.Context, eventID, playerID int64) ([]EventMatch, error) {
	var matches []EventMatch
	err := s.selectRows(ctx, &matches, `
		SELECT `+matchColumns+` FROM event_matches
		WHERE event_id = ? AND player_id = ?
		ORDER BY row_index`, eventID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of event %d: %w", eventID, err)
	}
	return matches, nil
}

// ListPlayerMatches returns the player's stored matches across the given events.
func (s *SQLStore) ListPlayerMatches(ctx context.Context, playerID int64, eventIDs []int64) ([]EventMatch, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
		SELECT `+matchColumns+` FROM event_matches
		WHERE player_id = ? AND event_id IN (?)
		ORDER BY event_id, row_index`, playerID, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build match query: %w", err)
	}

	var matches []EventMatch
	if err := s.selectRows(ctx, &matches, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list matches of player %d: %w", playerID, err)
	}
	return matches, nil
}

// ListRatingDivergences compares the history feed with the summary feed for every
// event where both are stored and returns the pairs that disagree.
func (s *SQLStore) ListRatingDivergences(ctx context.Context, playerID int64) ([]Divergence, error) {
	var out []Divergence
	err := s.selectRows(ctx, &out, `
		SELECT h.player_id, h.event_id,
			h.initial_mean AS h_initial_mean, h.initial_stdev AS h_initial_stdev, h.point_change AS h_point_change,
			h.final_mean AS h_final_mean, h.final_stdev AS h_final_stdev,
			s.initial_mean AS s_initial_mean, s.initial_stdev AS s_initial_stdev, s.point_change AS s_point_change,
			s.final_mean AS s_final_mean, s.final_stdev AS s_final_stdev
		FROM player_history h
		JOIN event_summaries s ON s.event_id = h.event_id AND s.player_id = h.player_id
		WHERE h.player_id = ?
			AND (h.initial_mean <> s.initial_mean OR h.initial_stdev <> s.initial_stdev
				OR h.point_change <> s.point_change OR h.final_mean <> s.final_mean
				OR h.final_stdev <> s.final_stdev)
		ORDER BY h.event_id`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to compare feeds of player %d: %w", playerID, err)
	}
	return out, nil
}

func (s *SQLStore) get(ctx context.Context, dest any, query string, args ...any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.GetContext(ctx, dest, s.db.Rebind(query), args...)
}

func (s *SQLStore) selectRows(ctx context.Context, dest any, query string, args ...any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.SelectContext(ctx, dest, s.db.Rebind(query), args...)
}

func notFoundAsNil(err error, entity string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return fmt.Errorf("failed to load %s %d: %w", entity, id, err)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
