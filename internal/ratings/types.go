package ratings

import "time"

// Rating is a mean/stdev pair as printed on the roster page. Either part may be absent.
type Rating struct {
	Mean  *int
	StDev *int
}

// ClubRosterEntry is one row of a club's member list.
type ClubRosterEntry struct {
	PlayerID       int64
	Rank           *int
	DisplayName    string
	RatingMean     *int
	RatingStDev    *int
	LastPlayedDate *time.Time
}

// EventSummaryRow is one participant's net rating movement in an event.
type EventSummaryRow struct {
	PlayerID      int64
	PlayerName    string
	PlayerCountry string
	InitialMean   int
	InitialStDev  int
	PointChange   int
	FinalMean     int
	FinalStDev    int
}

// EventDetailRow is a single match result from the event detail feed.
type EventDetailRow struct {
	WinnerID          int64
	LoserID           int64
	Score             string
	WinnerDelta       int
	WinnerOppMean     int
	WinnerOppStDev    int
	LoserDelta        int
	LoserOppMean      int
	LoserOppStDev     int
	MatchesPairPlayed int
}

// PlayerHistoryRow is one event in a player's rating trajectory.
type PlayerHistoryRow struct {
	EventID      int64
	EventDate    time.Time
	EventName    string
	InitialMean  int
	InitialStDev int
	PointChange  int
	FinalMean    int
	FinalStDev   int
}
