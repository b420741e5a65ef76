package insights

import (
	"errors"
	"time"

	"github.com/mauv0809/tt-ratings/internal/store"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200

	recentEvents = 7
	momentumSize = 5
)

// ErrInvalidCursor is returned for cursors that do not decode.
var ErrInvalidCursor = errors.New("invalid cursor")

// Range is a trailing window over a player's history.
type Range string

const (
	Range3M      Range = "3m"
	Range6M      Range = "6m"
	Range12M     Range = "12m"
	RangeAll     Range = "all"
	DefaultRange       = Range12M
)

// Insights computes read models straight from the store.
type Insights struct {
	store store.Store

	// Now anchors range windows.
	Now func() time.Time
}

type LeaderboardPage struct {
	ClubID     int64              `json:"clubId"`
	Items      []store.ClubMember `json:"items"`
	NextCursor *string            `json:"nextCursor"`
	HasMore    bool               `json:"hasMore"`
}

type HistoryPage struct {
	PlayerID   int64                 `json:"playerId"`
	Range      Range                 `json:"range"`
	Items      []store.PlayerHistory `json:"items"`
	NextCursor *string               `json:"nextCursor"`
	HasMore    bool                  `json:"hasMore"`
}

type RatingPoint struct {
	Mean  int `json:"mean"`
	StDev int `json:"stdev"`
}

type EventRef struct {
	EventID int64     `json:"eventId"`
	Name    string    `json:"name"`
	Date    time.Time `json:"date"`
}

type Current struct {
	Mean       *int      `json:"mean"`
	StDev      *int      `json:"stdev"`
	LastChange *int      `json:"lastChange"`
	LastEvent  *EventRef `json:"lastEvent"`
	Confidence string    `json:"confidence"`
}

type ClubRef struct {
	ClubID int64  `json:"clubId"`
	Name   string `json:"name"`
	Rank   *int   `json:"rank"`
}

type WinRate struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Total  int `json:"total"`
}

// OpponentResult names an opponent and the rating they carried into the match.
type OpponentResult struct {
	OpponentName   *string `json:"opponentName"`
	OpponentRating int     `json:"opponentRating"`
	EventID        int64   `json:"eventId"`
}

type UpsetWins struct {
	Count int             `json:"count"`
	Best  *OpponentResult `json:"best"`
}

type Streak struct {
	Direction string `json:"direction"`
	Count     int    `json:"count"`
}

type PlayerInsights struct {
	MomentumLast5            int             `json:"momentumLast5"`
	StDevChangeSelectedRange *int            `json:"stdevChangeSelectedRange"`
	EventsPlayed             int             `json:"eventsPlayed"`
	WinRate                  *WinRate        `json:"winRate"`
	UpsetWins                UpsetWins       `json:"upsetWins"`
	ToughestLoss             *OpponentResult `json:"toughestLoss"`
	CurrentStreak            *Streak         `json:"currentStreak"`
}

type TrendPoint struct {
	Date  time.Time `json:"date"`
	Mean  int       `json:"mean"`
	StDev int       `json:"stdev"`
}

type RecentEvent struct {
	EventID     int64       `json:"eventId"`
	EventDate   time.Time   `json:"eventDate"`
	EventName   string      `json:"eventName"`
	PointChange int         `json:"pointChange"`
	Final       RatingPoint `json:"final"`
}

type SyncState struct {
	Status       store.SyncStatus `json:"status"`
	LastSyncedAt *time.Time       `json:"lastSyncedAt"`
	Error        *string          `json:"error"`
}

type Overview struct {
	PlayerID       int64          `json:"playerId"`
	DisplayName    string         `json:"displayName"`
	AvatarURL      *string        `json:"avatarUrl"`
	Club           *ClubRef       `json:"club"`
	Range          Range          `json:"range"`
	Current        Current        `json:"current"`
	LastPlayedDate *time.Time     `json:"lastPlayedDate"`
	Insights       PlayerInsights `json:"insights"`
	Trend          []TrendPoint   `json:"trend"`
	RecentEvents   []RecentEvent  `json:"recentEvents"`
	Sync           SyncState      `json:"sync"`
}

type EventSummary struct {
	Initial     RatingPoint `json:"initial"`
	Final       RatingPoint `json:"final"`
	TotalChange int         `json:"totalChange"`
}

type Opponent struct {
	PlayerID int64   `json:"playerId"`
	Name     *string `json:"name"`
}

type MatchResult struct {
	Result         string      `json:"result"`
	Opponent       Opponent    `json:"opponent"`
	OpponentRating RatingPoint `json:"opponentRating"`
	Delta          int         `json:"delta"`
	Score          string      `json:"score"`
}

// RatedOpponent is the opponent of a notable match in one event.
type RatedOpponent struct {
	Opponent       Opponent `json:"opponent"`
	OpponentRating int      `json:"opponentRating"`
}

type EventStats struct {
	Wins            int            `json:"wins"`
	Losses          int            `json:"losses"`
	AvgOpponentMean *int           `json:"avgOpponentMean"`
	BestWin         *RatedOpponent `json:"bestWin"`
	ToughestLoss    *RatedOpponent `json:"toughestLoss"`
}

type EventInsights struct {
	Event    EventRef      `json:"event"`
	PlayerID int64         `json:"playerId"`
	Summary  *EventSummary `json:"summary"`
	Matches  []MatchResult `json:"matches"`
	Insights EventStats    `json:"insights"`
}
