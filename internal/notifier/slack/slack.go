package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"

	"github.com/mauv0809/tt-ratings/internal/metrics"
	"github.com/mauv0809/tt-ratings/internal/notifier"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// maxListedFailures bounds how many failed IDs are spelled out in a report.
const maxListedFailures = 15

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(ctx context.Context, message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// SendSyncReport posts the outcome of a club or player sync.
func (s *Notifier) SendSyncReport(ctx context.Context, report notifier.SyncReport, dryRun bool) error {
	msg := s.formatSyncReport(report)
	_, _, err := s.sendMessage(ctx, msg, dryRun)
	return err
}

// formatSyncReport creates the Slack message for a finished sync using Block Kit.
func (s *Notifier) formatSyncReport(r notifier.SyncReport) slack.Message {
	blocks := make([]slack.Block, 0, 4)

	icon := "✅"
	if r.Status != "ok" {
		icon = "⚠️"
	}
	title := fmt.Sprintf("%s %s sync %s", icon, capitalize(r.Entity), r.Status)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", title, true, false)))

	name := r.Name
	if name == "" {
		name = fmt.Sprintf("%s %d", r.Entity, r.ID)
	}
	details := fmt.Sprintf("%s (ID %d)\nSynced: %d\nFailed: %d\nDuration: %s",
		name, r.ID, r.Synced, r.Failed, r.Duration.Round(time.Second))
	if r.FromCache {
		details += "\nRoster: cached"
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", details, false, false), nil, nil))

	if r.Error != "" {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "Error: "+r.Error, false, false), nil, nil))
	}

	if len(r.FailedIDs) > 0 {
		ids := make([]string, 0, maxListedFailures)
		for i, id := range r.FailedIDs {
			if i == maxListedFailures {
				ids = append(ids, fmt.Sprintf("and %d more", len(r.FailedIDs)-maxListedFailures))
				break
			}
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		text := "Failed: " + strings.Join(ids, ", ")
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", text, false, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
