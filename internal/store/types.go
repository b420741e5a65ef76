package store

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// SyncStatus is the lifecycle marker stamped on players and clubs by the sync pipelines.
type SyncStatus string

const (
	StatusOK         SyncStatus = "ok"
	StatusStale      SyncStatus = "stale"
	StatusInProgress SyncStatus = "in_progress"
	StatusFailed     SyncStatus = "failed"
)

// unrankedSortKey orders roster members without a rank after every ranked member.
const unrankedSortKey = math.MaxInt32

// SQLStore implements Store on top of database/sql via sqlx.
type SQLStore struct {
	db *sqlx.DB
	mu sync.RWMutex
}

type Player struct {
	ID           int64      `db:"id" json:"id"`
	DisplayName  string     `db:"display_name" json:"displayName"`
	AvatarURL    *string    `db:"avatar_url" json:"avatarUrl"`
	SyncStatus   SyncStatus `db:"sync_status" json:"syncStatus"`
	SyncError    *string    `db:"sync_error" json:"syncError"`
	LastSyncedAt *time.Time `db:"last_synced_at" json:"lastSyncedAt"`
}

type Club struct {
	ID           int64      `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	SyncStatus   SyncStatus `db:"sync_status" json:"syncStatus"`
	SyncError    *string    `db:"sync_error" json:"syncError"`
	LastSyncedAt *time.Time `db:"last_synced_at" json:"lastSyncedAt"`
}

// ClubMember is a player's current standing on a club roster.
type ClubMember struct {
	ClubID         int64      `db:"club_id" json:"clubId"`
	PlayerID       int64      `db:"player_id" json:"playerId"`
	Rank           *int       `db:"rank" json:"rank"`
	DisplayName    string     `db:"display_name" json:"displayName"`
	RatingMean     *int       `db:"rating_mean" json:"ratingMean"`
	RatingStDev    *int       `db:"rating_stdev" json:"ratingStDev"`
	LastPlayedDate *time.Time `db:"last_played_date" json:"lastPlayedDate"`
}

// Membership is a club membership joined with the club's name.
type Membership struct {
	ClubID   int64  `db:"club_id"`
	ClubName string `db:"club_name"`
	Rank     *int   `db:"rank"`
}

type Event struct {
	ID   int64     `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
	Date time.Time `db:"date" json:"date"`
}

type EventSummary struct {
	EventID      int64  `db:"event_id" json:"eventId"`
	PlayerID     int64  `db:"player_id" json:"playerId"`
	PlayerName   string `db:"player_name" json:"playerName"`
	InitialMean  int    `db:"initial_mean" json:"initialMean"`
	InitialStDev int    `db:"initial_stdev" json:"initialStDev"`
	PointChange  int    `db:"point_change" json:"pointChange"`
	FinalMean    int    `db:"final_mean" json:"finalMean"`
	FinalStDev   int    `db:"final_stdev" json:"finalStDev"`
}

// EventMatch is one match a player played in an event, seen from that player's side.
type EventMatch struct {
	EventID           int64   `db:"event_id" json:"eventId"`
	PlayerID          int64   `db:"player_id" json:"playerId"`
	RowIndex          int     `db:"row_index" json:"rowIndex"`
	OpponentName      *string `db:"opponent_name" json:"opponentName"`
	WinnerID          int64   `db:"winner_id" json:"winnerId"`
	LoserID           int64   `db:"loser_id" json:"loserId"`
	Score             string  `db:"score" json:"score"`
	WinnerDelta       int     `db:"winner_delta" json:"winnerDelta"`
	WinnerOppMean     int     `db:"winner_opp_mean" json:"winnerOppMean"`
	WinnerOppStDev    int     `db:"winner_opp_stdev" json:"winnerOppStDev"`
	LoserDelta        int     `db:"loser_delta" json:"loserDelta"`
	LoserOppMean      int     `db:"loser_opp_mean" json:"loserOppMean"`
	LoserOppStDev     int     `db:"loser_opp_stdev" json:"loserOppStDev"`
	MatchesPairPlayed int     `db:"matches_pair_played" json:"matchesPairPlayed"`
}

type PlayerHistory struct {
	PlayerID     int64     `db:"player_id" json:"playerId"`
	EventID      int64     `db:"event_id" json:"eventId"`
	EventDate    time.Time `db:"event_date" json:"eventDate"`
	EventName    string    `db:"event_name" json:"eventName"`
	InitialMean  int       `db:"initial_mean" json:"initialMean"`
	InitialStDev int       `db:"initial_stdev" json:"initialStDev"`
	PointChange  int       `db:"point_change" json:"pointChange"`
	FinalMean    int       `db:"final_mean" json:"finalMean"`
	FinalStDev   int       `db:"final_stdev" json:"finalStDev"`
}

// RankCursor is the keyset position of a leaderboard page.
type RankCursor struct {
	Rank     int   `json:"rank"`
	PlayerID int64 `json:"playerId"`
}

// SortRank returns the rank used for leaderboard ordering and cursors.
func (m ClubMember) SortRank() int {
	if m.Rank == nil {
		return unrankedSortKey
	}
	return *m.Rank
}

// HistoryCursor is the keyset position of a history page.
type HistoryCursor struct {
	EventDate time.Time `json:"eventDate"`
	EventID   int64     `json:"eventId"`
}

// HistoryQuery filters player history. Zero values mean unbounded.
type HistoryQuery struct {
	Since  *time.Time
	Before *HistoryCursor
	Limit  int
}

// Divergence pairs a history row with the summary row for the same player and event.
type Divergence struct {
	PlayerID            int64 `db:"player_id"`
	EventID             int64 `db:"event_id"`
	HistoryInitialMean  int   `db:"h_initial_mean"`
	HistoryInitialStDev int   `db:"h_initial_stdev"`
	HistoryPointChange  int   `db:"h_point_change"`
	HistoryFinalMean    int   `db:"h_final_mean"`
	HistoryFinalStDev   int   `db:"h_final_stdev"`
	SummaryInitialMean  int   `db:"s_initial_mean"`
	SummaryInitialStDev int   `db:"s_initial_stdev"`
	SummaryPointChange  int   `db:"s_point_change"`
	SummaryFinalMean    int   `db:"s_final_mean"`
	SummaryFinalStDev   int   `db:"s_final_stdev"`
}

// Fields lists the columns on which the two feeds disagree.
func (d Divergence) Fields() []string {
	var fields []string
	if d.HistoryInitialMean != d.SummaryInitialMean {
		fields = append(fields, "initialMean")
	}
	if d.HistoryInitialStDev != d.SummaryInitialStDev {
		fields = append(fields, "initialStDev")
	}
	if d.HistoryPointChange != d.SummaryPointChange {
		fields = append(fields, "pointChange")
	}
	if d.HistoryFinalMean != d.SummaryFinalMean {
		fields = append(fields, "finalMean")
	}
	if d.HistoryFinalStDev != d.SummaryFinalStDev {
		fields = append(fields, "finalStDev")
	}
	return fields
}

// ClubPlaceholder is the name given to clubs whose real name is not yet known.
const ClubPlaceholder = "Club"

// PlayerPlaceholder is the display name given to players seen only by ID.
func PlayerPlaceholder(id int64) string {
	return "Player " + strconv.FormatInt(id, 10)
}

// EventPlaceholder is the name given to events whose real name is not yet known.
func EventPlaceholder(id int64) string {
	return "Event " + strconv.FormatInt(id, 10)
}
