package ratings

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mauv0809/tt-ratings/internal/config"
	"github.com/mauv0809/tt-ratings/internal/metrics"
)

const (
	DefaultBaseURL = "https://www.ratingscentral.com"
	DefaultTimeout = 15 * time.Second
	userAgent      = "table-tennis-ratings/0.1"
)

// Client scrapes the ratings site over HTTP. It implements Source.
type Client struct {
	httpClient *http.Client
	BaseURL    string
	metrics    metrics.Metrics
}

// Ensure Client implements the Source interface.
var _ Source = (*Client)(nil)

// NewClient creates a scraper for the configured ratings site.
func NewClient(cfg config.RatingsConfig, m metrics.Metrics) *Client {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		BaseURL:    baseURL,
		metrics:    m,
	}
}

// FetchClubRoster scrapes the member list page of a club.
func (c *Client) FetchClubRoster(ctx context.Context, clubID int64, clubName string) ([]ClubRosterEntry, error) {
	if clubName == "" {
		clubName = "Club"
	}
	endpoint := fmt.Sprintf("%s/PlayerList.php?ClubID=%d&MatchNonPrimary=Yes&PlayerSport=1&SortOrder=Rating&Heading=%s",
		c.BaseURL, clubID, url.QueryEscape("All Members of "+clubName))
	body, err := c.fetch(ctx, metrics.FeedRoster, endpoint)
	if err != nil {
		return nil, err
	}
	rows, err := parseRoster(bytes.NewReader(body), endpoint)
	if err != nil {
		c.metrics.IncFetchErrors(metrics.FeedRoster)
		return nil, err
	}
	log.Debug("Parsed club roster", "clubID", clubID, "rows", len(rows))
	return rows, nil
}

// FetchEventSummary downloads the per-participant summary CSV of an event.
func (c *Client) FetchEventSummary(ctx context.Context, eventID int64) ([]EventSummaryRow, error) {
	endpoint := fmt.Sprintf("%s/EventSummary.php?CSV_Output=Text&EventID=%d&SortBy=Name", c.BaseURL, eventID)
	body, err := c.fetch(ctx, metrics.FeedSummary, endpoint)
	if err != nil {
		return nil, err
	}
	rows, err := parseEventSummary(bytes.NewReader(body))
	if err != nil {
		c.metrics.IncFetchErrors(metrics.FeedSummary)
		return nil, fmt.Errorf("failed to parse event summary %d: %w", eventID, err)
	}
	return rows, nil
}

// FetchEventDetail downloads the match list CSV of an event.
func (c *Client) FetchEventDetail(ctx context.Context, eventID int64) ([]EventDetailRow, error) {
	endpoint := fmt.Sprintf("%s/EventDetail.php?CSV_Output=Text&EventID=%d", c.BaseURL, eventID)
	body, err := c.fetch(ctx, metrics.FeedDetail, endpoint)
	if err != nil {
		return nil, err
	}
	rows, err := parseEventDetail(bytes.NewReader(body))
	if err != nil {
		c.metrics.IncFetchErrors(metrics.FeedDetail)
		return nil, fmt.Errorf("failed to parse event detail %d: %w", eventID, err)
	}
	return rows, nil
}

// FetchPlayerHistory downloads the complete rating history CSV of a player.
func (c *Client) FetchPlayerHistory(ctx context.Context, playerID int64) ([]PlayerHistoryRow, error) {
	endpoint := fmt.Sprintf("%s/PlayerHistory.php?CSV_Output=Text&PlayerID=%d", c.BaseURL, playerID)
	body, err := c.fetch(ctx, metrics.FeedHistory, endpoint)
	if err != nil {
		return nil, err
	}
	rows, err := parsePlayerHistory(bytes.NewReader(body))
	if err != nil {
		c.metrics.IncFetchErrors(metrics.FeedHistory)
		return nil, fmt.Errorf("failed to parse player history %d: %w", playerID, err)
	}
	return rows, nil
}

// fetch performs a single GET. There is no retry at this layer.
func (c *Client) fetch(ctx context.Context, feed, endpoint string) ([]byte, error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveFetchDuration(feed, time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.metrics.IncFetchErrors(feed)
		return nil, &FetchError{URL: endpoint, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	log.Debug("Fetching from ratings source", "feed", feed, "url", endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.IncFetchErrors(feed)
		return nil, &FetchError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.IncFetchErrors(feed)
		log.Error("Received non-OK HTTP status from ratings source", "status", resp.StatusCode, "url", endpoint)
		return nil, &FetchError{URL: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.IncFetchErrors(feed)
		return nil, &FetchError{URL: endpoint, Err: err}
	}
	return body, nil
}
