package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client *pubsub.Client
}

// EventType names the topic a message is published to.
type EventType string

const (
	EventSyncPlayer EventType = "sync-player"
	EventSyncClub   EventType = "sync-club"
	EventSyncEvent  EventType = "sync-event"
)

// SyncRequest is the msgpack payload of every sync topic.
type SyncRequest struct {
	Entity         string     `msgpack:"entity"`
	PlayerID       int64      `msgpack:"player_id,omitempty"`
	ClubID         int64      `msgpack:"club_id,omitempty"`
	EventID        int64      `msgpack:"event_id,omitempty"`
	MonthsBack     int        `msgpack:"months_back,omitempty"`
	SyncEvents     *bool      `msgpack:"sync_events,omitempty"`
	SyncPlayers    *bool      `msgpack:"sync_players,omitempty"`
	ClubName       string     `msgpack:"club_name,omitempty"`
	UseRosterCache bool       `msgpack:"use_roster_cache,omitempty"`
	EventName      string     `msgpack:"event_name,omitempty"`
	EventDate      *time.Time `msgpack:"event_date,omitempty"`
	DryRun         bool       `msgpack:"dry_run,omitempty"`
}

// PushEnvelope is the JSON body Pub/Sub push subscriptions deliver.
type PushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data       string            `json:"data"`
		MessageID  string            `json:"messageId"`
		Attributes map[string]string `json:"attributes"`
	} `json:"message"`
}
