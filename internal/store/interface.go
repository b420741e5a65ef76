package store

import (
	"context"
	"time"
)

// Store is the persistence gateway used by the sync pipelines and the read side.
// Writes are keyed by the external IDs. Player and club upserts are partial,
// the remaining entities are replaced as whole rows.
type Store interface {
	UpsertPlayer(ctx context.Context, id int64, displayName string) error
	MarkPlayerSync(ctx context.Context, id int64, status SyncStatus, syncErr string, at time.Time) error
	UpdatePlayerAvatar(ctx context.Context, id int64, avatarURL string) error
	UpsertClub(ctx context.Context, id int64, name string) error
	MarkClubSync(ctx context.Context, id int64, status SyncStatus, syncErr string, at time.Time) error
	UpsertRoster(ctx context.Context, clubID int64, members []ClubMember) error
	UpsertEvent(ctx context.Context, event Event) error
	UpsertEventSummary(ctx context.Context, summary EventSummary) error
	ReplaceEventMatches(ctx context.Context, eventID, playerID int64, matches []EventMatch) error
	UpsertPlayerHistory(ctx context.Context, history PlayerHistory) error
	Reset(ctx context.Context) error

	GetPlayer(ctx context.Context, id int64) (*Player, error)
	GetClub(ctx context.Context, id int64) (*Club, error)
	GetEvent(ctx context.Context, id int64) (*Event, error)
	GetEventSummary(ctx context.Context, eventID, playerID int64) (*EventSummary, error)
	CountEventMatches(ctx context.Context, eventID, playerID int64) (int, error)
	CountEventMatchesMissingOpponent(ctx context.Context, eventID, playerID int64) (int, error)
	EventHasData(ctx context.Context, eventID int64) (bool, error)
	ListClubMembers(ctx context.Context, clubID int64) ([]ClubMember, error)
	ListLeaderboard(ctx context.Context, clubID int64, after *RankCursor, limit int) ([]ClubMember, error)
	GetPrimaryMembership(ctx context.Context, playerID int64) (*Membership, error)
	ListPlayerHistory(ctx context.Context, playerID int64, q HistoryQuery) ([]PlayerHistory, error)
	LatestPlayerHistory(ctx context.Context, playerID int64) (*PlayerHistory, error)
	ListEventMatches(ctx context.Context, eventID, playerID int64) ([]EventMatch, error)
	ListPlayerMatches(ctx context.Context, playerID int64, eventIDs []int64) ([]EventMatch, error)
	ListRatingDivergences(ctx context.Context, playerID int64) ([]Divergence, error)
}
