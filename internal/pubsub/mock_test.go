package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockRoundTripsSyncRequests(t *testing.T) {
	m := NewMock("TEST")
	date := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	syncEvents := false

	req := SyncRequest{Entity: "event", EventID: 100, PlayerID: 1, EventName: "Spring Open", EventDate: &date, SyncEvents: &syncEvents}
	require.NoError(t, m.SendMessage(context.Background(), EventSyncEvent, req))
	require.Len(t, m.SendMessageCalls, 1)
	assert.Equal(t, EventSyncEvent, m.SendMessageCalls[0].Topic)

	var got SyncRequest
	require.NoError(t, m.ProcessMessage(m.SendMessageCalls[0].Encoded, &got))
	assert.Equal(t, "event", got.Entity)
	assert.Equal(t, int64(100), got.EventID)
	assert.Equal(t, "Spring Open", got.EventName)
	require.NotNil(t, got.EventDate)
	assert.True(t, date.Equal(*got.EventDate))
	require.NotNil(t, got.SyncEvents)
	assert.False(t, *got.SyncEvents)

	m.Reset()
	assert.Empty(t, m.SendMessageCalls)
	assert.Empty(t, m.ProcessMessageCalls)
}
