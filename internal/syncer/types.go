package syncer

import (
	"time"

	"github.com/mauv0809/tt-ratings/internal/metrics"
	"github.com/mauv0809/tt-ratings/internal/notifier"
	"github.com/mauv0809/tt-ratings/internal/ratings"
	"github.com/mauv0809/tt-ratings/internal/store"
)

const (
	DefaultMonthsBack = 12
	progressEvery     = 10

	// NoHistoryMessage is stamped on players whose history feed came back empty.
	NoHistoryMessage = "No player history found."
)

// EntityType names the kinds of entity whose sync state can be queried.
type EntityType string

const (
	EntityPlayer EntityType = "player"
	EntityClub   EntityType = "club"
	EntityEvent  EntityType = "event"
)

// StatusMissing is reported for entities that have never been stored.
const StatusMissing = "missing"

// Syncer runs the player, club and event pipelines against a ratings source and a store.
type Syncer struct {
	store    store.Store
	source   ratings.Source
	metrics  metrics.Metrics
	notifier notifier.Notifier

	// Now is the clock used for sync windows and status stamps.
	Now func() time.Time
	// MonthsBack is applied when an option leaves the window unset.
	MonthsBack int
}

type PlayerOptions struct {
	// SyncEvents defaults to true.
	SyncEvents *bool
	MonthsBack int
}

type ClubOptions struct {
	// ClubName defaults to the stored club name, then "Club".
	ClubName string
	// SyncPlayers defaults to true.
	SyncPlayers    *bool
	MonthsBack     int
	UseRosterCache bool
}

// EventMeta carries event metadata already known to the caller.
type EventMeta struct {
	Name string
	Date *time.Time
}

type PlayerResult struct {
	PlayerID       int64            `json:"playerId"`
	Status         store.SyncStatus `json:"status"`
	HistoryRows    int              `json:"historyRows"`
	RetainedRows   int              `json:"retainedRows"`
	Cutoff         time.Time        `json:"cutoff"`
	EventsSynced   int              `json:"eventsSynced"`
	EventsSkipped  int              `json:"eventsSkipped"`
	EventsFailed   int              `json:"eventsFailed"`
	FailedEventIDs []int64          `json:"failedEventIds,omitempty"`
}

type ClubResult struct {
	ClubID          int64   `json:"clubId"`
	RosterSize      int     `json:"rosterSize"`
	FromCache       bool    `json:"fromCache"`
	PlayersSynced   int     `json:"playersSynced"`
	PlayersFailed   int     `json:"playersFailed"`
	FailedPlayerIDs []int64 `json:"failedPlayerIds,omitempty"`
}

type EventResult struct {
	EventID       int64 `json:"eventId"`
	PlayerID      int64 `json:"playerId"`
	Skipped       bool  `json:"skipped"`
	SummaryStored bool  `json:"summaryStored"`
	MatchesStored int   `json:"matchesStored"`
}

// StatusReport is the externally visible sync state of an entity.
type StatusReport struct {
	Status       string     `json:"status"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
	Error        *string    `json:"error,omitempty"`
}
