package insights

import "context"

// Service answers the read-side questions asked about stored ratings data.
type Service interface {
	Leaderboard(ctx context.Context, clubID int64, limit int, cursor string) (LeaderboardPage, error)
	History(ctx context.Context, playerID int64, r Range, limit int, cursor string) (HistoryPage, error)
	Overview(ctx context.Context, playerID int64, r Range) (*Overview, error)
	EventForPlayer(ctx context.Context, eventID, playerID int64) (*EventInsights, error)
}
