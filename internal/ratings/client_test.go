package ratings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauv0809/tt-ratings/internal/config"
	"github.com/mauv0809/tt-ratings/internal/metrics"
)

const rosterHTML = `<html><body>
<table><tr><th>Menu</th></tr><tr><td><a href="Home.php">Home</a></td></tr></table>
<table>
  <tr><th>Rank</th><th>Rating</th><th>Name</th><th>Country</th><th>Last Played</th></tr>
  <tr><td>1</td><td>2100&#8203;±&#8203;35</td><td><a href="PlayerProfile.php?PlayerID=100">Ann Alpha</a></td><td>USA</td><td>2024-05-01</td></tr>
  <tr><td>2</td><td>1850</td><td><a href="PlayerProfile.php?playerid=200">Bob Beta</a></td><td>USA</td><td></td></tr>
  <tr><td>3</td><td>1700±60</td><td>No Link</td><td>USA</td><td>2024-04-01</td></tr>
  <tr><td></td><td></td><td><a href="PlayerProfile.php?PlayerID=300"></a></td><td></td><td></td></tr>
</table>
</body></html>`

const summaryCSV = `PlayerID,PlayerName,PlayerCountry,InitialMean,InitialStDev,PointChange,FinalMean,FinalStDev
100,Ann Alpha,USA,2100,35,8.4,2108,34

200,"Smith, J.",USA,1850,60,-8,1842,58
0,Nobody,USA,1,1,1,1,1
`

const detailCSV = `WinnerID,LoserID,Score,WinnerDelta,WinnerOpponentMean,WinnerOpponentStDev,LoserDelta,LoserOpponentMean,LoserOpponentStDev,MatchesPairPlayed
100,200,11-5 11-7,8,1850,60,-8,2100,35,1
0,0,,0,0,0,0,0,0,0
300,100,11-9 9-11 11-8,12,2100,35,-12,1500,90
`

const historyCSV = `EventID,EventDate,EventName,InitialMean,InitialStDev,PointChange,FinalMean,FinalStDev
501,2024-05-01,Spring Open,2092,36,8,2100,35
0,garbage,Ignored,0,0,0,0,0
502,2023-11-12,Autumn League,2080,40,12,2092,36
`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *metrics.Mock) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	m := metrics.NewMock()
	return NewClient(config.RatingsConfig{BaseURL: server.URL, FetchTimeout: 2 * time.Second}, m), m
}

func TestFetchClubRoster(t *testing.T) {
	client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/PlayerList.php", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("ClubID"))
		assert.Equal(t, "All Members of Spin City", r.URL.Query().Get("Heading"))
		assert.Equal(t, "table-tennis-ratings/0.1", r.Header.Get("User-Agent"))
		fmt.Fprint(w, rosterHTML)
	})

	rows, err := client.FetchClubRoster(context.Background(), 42, "Spin City")
	require.NoError(t, err)
	require.Len(t, rows, 2, "rows without a player id or name are dropped")

	ann := rows[0]
	assert.Equal(t, int64(100), ann.PlayerID)
	assert.Equal(t, "Ann Alpha", ann.DisplayName)
	require.NotNil(t, ann.Rank)
	assert.Equal(t, 1, *ann.Rank)
	require.NotNil(t, ann.RatingMean)
	require.NotNil(t, ann.RatingStDev)
	assert.Equal(t, 2100, *ann.RatingMean)
	assert.Equal(t, 35, *ann.RatingStDev)
	require.NotNil(t, ann.LastPlayedDate)
	assert.Equal(t, "2024-05-01", ann.LastPlayedDate.Format("2006-01-02"))

	bob := rows[1]
	assert.Equal(t, int64(200), bob.PlayerID)
	require.NotNil(t, bob.RatingMean)
	assert.Equal(t, 1850, *bob.RatingMean)
	assert.Nil(t, bob.RatingStDev)
	assert.Nil(t, bob.LastPlayedDate)

	assert.Equal(t, 1, m.FetchCount(metrics.FeedRoster))
}

func TestFetchClubRoster_NoTable(t *testing.T) {
	client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><table><tr><th>Something else</th></tr></table></html>`)
	})

	_, err := client.FetchClubRoster(context.Background(), 1, "")
	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, 1, m.FetchErrors(metrics.FeedRoster))
}

func TestFetchEventSummary(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/EventSummary.php", r.URL.Path)
		assert.Equal(t, "Text", r.URL.Query().Get("CSV_Output"))
		assert.Equal(t, "9", r.URL.Query().Get("EventID"))
		assert.Equal(t, "Name", r.URL.Query().Get("SortBy"))
		fmt.Fprint(w, summaryCSV)
	})

	rows, err := client.FetchEventSummary(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, EventSummaryRow{
		PlayerID: 100, PlayerName: "Ann Alpha", PlayerCountry: "USA",
		InitialMean: 2100, InitialStDev: 35, PointChange: 8, FinalMean: 2108, FinalStDev: 34,
	}, rows[0])
	assert.Equal(t, "Smith, J.", rows[1].PlayerName)
	assert.Equal(t, -8, rows[1].PointChange)
}

func TestFetchEventDetail(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/EventDetail.php", r.URL.Path)
		fmt.Fprint(w, detailCSV)
	})

	rows, err := client.FetchEventDetail(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "11-5 11-7", rows[0].Score)
	assert.Equal(t, int64(300), rows[1].WinnerID)
	assert.Equal(t, 0, rows[1].MatchesPairPlayed, "short rows default missing columns")
}

func TestFetchPlayerHistory(t *testing.T) {
	t.Run("parses rows and drops rows without event id", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/PlayerHistory.php", r.URL.Path)
			assert.Equal(t, "100", r.URL.Query().Get("PlayerID"))
			fmt.Fprint(w, historyCSV)
		})

		rows, err := client.FetchPlayerHistory(context.Background(), 100)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, int64(501), rows[0].EventID)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), rows[0].EventDate)
		assert.Equal(t, "Autumn League", rows[1].EventName)
	})

	t.Run("unparseable date fails the fetch", func(t *testing.T) {
		client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "EventID,EventDate,EventName\n501,someday,Broken\n")
		})

		_, err := client.FetchPlayerHistory(context.Background(), 100)
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "EventDate", parseErr.Field)
		assert.Equal(t, "someday", parseErr.Value)
		assert.Equal(t, 1, m.FetchErrors(metrics.FeedHistory))
	})

	t.Run("empty document yields no rows", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

		rows, err := client.FetchPlayerHistory(context.Background(), 100)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestFetch_Errors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := client.FetchEventDetail(context.Background(), 1)
		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
		assert.Contains(t, fetchErr.URL, "EventDetail.php")
		assert.Equal(t, 1, m.FetchErrors(metrics.FeedDetail))
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		client := NewClient(config.RatingsConfig{BaseURL: server.URL, FetchTimeout: 50 * time.Millisecond}, metrics.NewMock())
		_, err := client.FetchEventSummary(context.Background(), 1)
		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Zero(t, fetchErr.StatusCode)
		assert.Error(t, errors.Unwrap(fetchErr))
	})

	t.Run("cancelled context", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, historyCSV)
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.FetchPlayerHistory(ctx, 1)
		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
