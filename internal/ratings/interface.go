package ratings

import "context"

// Source defines the read-only feeds of the external ratings site.
// This allows for mock implementations to be used in tests.
type Source interface {
	FetchClubRoster(ctx context.Context, clubID int64, clubName string) ([]ClubRosterEntry, error)
	FetchEventSummary(ctx context.Context, eventID int64) ([]EventSummaryRow, error)
	FetchEventDetail(ctx context.Context, eventID int64) ([]EventDetailRow, error)
	FetchPlayerHistory(ctx context.Context, playerID int64) ([]PlayerHistoryRow, error)
}
