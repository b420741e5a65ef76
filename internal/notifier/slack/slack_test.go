package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauv0809/tt-ratings/internal/metrics"
	"github.com/mauv0809/tt-ratings/internal/notifier"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(context.Background(), message, true)
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.SlackNotifSent())
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline, "posting is bounded by a timeout")
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(context.Background(), message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	_, _, err := notifier.sendMessage(context.Background(), slackapi.NewBlockMessage(), false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 1, metrics.SlackNotifFailed())
}

func TestSendSyncReport_CallsSender(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "C123", "ts123", nil
		},
	}

	n := NewNotifierWithAPI(api, "C123", metrics.NewMock())
	err := n.SendSyncReport(context.Background(), notifier.SyncReport{Entity: "club", ID: 1, Status: "ok"}, false)
	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called via SendSyncReport")
}

func TestFormatSyncReport(t *testing.T) {
	t.Run("successful club sync", func(t *testing.T) {
		client := &Notifier{channelID: "C123"}
		msg := client.formatSyncReport(notifier.SyncReport{
			Entity:    "club",
			ID:        42,
			Name:      "Spin City",
			Status:    "ok",
			Synced:    3,
			Duration:  90 * time.Second,
			FromCache: true,
		})
		require.Len(t, msg.Blocks.BlockSet, 2)

		header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		require.True(t, ok, "First block should be a HeaderBlock")
		assert.Equal(t, "✅ Club sync ok", header.Text.Text)

		details, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok, "Second block should be a SectionBlock")
		assert.Equal(t, "Spin City (ID 42)\nSynced: 3\nFailed: 0\nDuration: 1m30s\nRoster: cached", details.Text.Text)
	})

	t.Run("failures are listed and truncated", func(t *testing.T) {
		failed := make([]int64, 0, 20)
		for i := int64(1); i <= 20; i++ {
			failed = append(failed, i)
		}
		client := &Notifier{channelID: "C123"}
		msg := client.formatSyncReport(notifier.SyncReport{
			Entity:    "player",
			ID:        7,
			Status:    "failed",
			Error:     "No player history found.",
			Failed:    20,
			FailedIDs: failed,
		})
		require.Len(t, msg.Blocks.BlockSet, 4)

		header := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		assert.Equal(t, "⚠️ Player sync failed", header.Text.Text)

		errSection := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
		assert.Equal(t, "Error: No player history found.", errSection.Text.Text)

		contextBlock, ok := msg.Blocks.BlockSet[3].(*slackapi.ContextBlock)
		require.True(t, ok)
		element := contextBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject)
		assert.Equal(t, "Failed: 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, and 5 more", element.Text)
	})
}
