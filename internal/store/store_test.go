package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauv0809/tt-ratings/internal/config"
	"github.com/mauv0809/tt-ratings/internal/database"
	"github.com/mauv0809/tt-ratings/internal/store"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *store.SQLStore {
	t.Helper()

	db, teardown, err := database.InitDB(config.DatabaseConfig{Driver: config.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(teardown)

	return store.New(db)
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPlayerUpsertsArePartial(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	at := day(2025, 1, 2)

	require.NoError(t, s.UpsertPlayer(ctx, 7, "Ann Alpha"))
	require.NoError(t, s.MarkPlayerSync(ctx, 7, store.StatusFailed, "boom", at))

	p, err := s.GetPlayer(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Ann Alpha", p.DisplayName, "marking status keeps the name")
	assert.Equal(t, store.StatusFailed, p.SyncStatus)
	require.NotNil(t, p.SyncError)
	assert.Equal(t, "boom", *p.SyncError)
	require.NotNil(t, p.LastSyncedAt)
	assert.True(t, at.Equal(*p.LastSyncedAt))

	require.NoError(t, s.UpsertPlayer(ctx, 7, "Ann A."))
	p, err = s.GetPlayer(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Ann A.", p.DisplayName)
	assert.Equal(t, store.StatusFailed, p.SyncStatus, "renaming keeps the status")

	require.NoError(t, s.MarkPlayerSync(ctx, 7, store.StatusOK, "", at))
	p, err = s.GetPlayer(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, p.SyncError, "an empty error clears the column")

	require.NoError(t, s.UpsertPlayer(ctx, 7, ""))
	require.NoError(t, s.UpsertPlayer(ctx, 7, store.PlayerPlaceholder(7)))
	p, err = s.GetPlayer(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Ann A.", p.DisplayName, "placeholders never replace a real name")
}

func TestMarkPlayerSync_CreatesPlaceholder(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.MarkPlayerSync(ctx, 99, store.StatusInProgress, "", time.Now()))
	p, err := s.GetPlayer(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, "Player 99", p.DisplayName)
	assert.Equal(t, store.StatusInProgress, p.SyncStatus)
}

func TestGetMissingRowsReturnNil(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	p, err := s.GetPlayer(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, p)

	c, err := s.GetClub(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, c)

	e, err := s.GetEvent(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, e)

	es, err := s.GetEventSummary(ctx, 1, 1)
	require.NoError(t, err)
	assert.Nil(t, es)

	m, err := s.GetPrimaryMembership(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, m)

	h, err := s.LatestPlayerHistory(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestUpdatePlayerAvatar(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	assert.Error(t, s.UpdatePlayerAvatar(ctx, 5, "https://img/5.png"), "unknown players cannot get an avatar")

	require.NoError(t, s.UpsertPlayer(ctx, 5, "Eve"))
	require.NoError(t, s.UpdatePlayerAvatar(ctx, 5, "https://img/5.png"))
	p, err := s.GetPlayer(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, p.AvatarURL)
	assert.Equal(t, "https://img/5.png", *p.AvatarURL)
}

func TestClubUpsertsArePartial(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertClub(ctx, 3, "Spin City"))
	require.NoError(t, s.MarkClubSync(ctx, 3, store.StatusInProgress, "", time.Now()))
	require.NoError(t, s.UpsertClub(ctx, 3, "Spin City TTC"))

	c, err := s.GetClub(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Spin City TTC", c.Name)
	assert.Equal(t, store.StatusInProgress, c.SyncStatus)
}

func TestMarkClubSync_CreatesPlaceholderClub(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.MarkClubSync(ctx, 8, store.StatusFailed, "boom", time.Now()))

	c, err := s.GetClub(ctx, 8)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, store.ClubPlaceholder, c.Name)
	assert.Equal(t, store.StatusFailed, c.SyncStatus)
}

func TestUpsertRoster(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertClub(ctx, 1, "Club"))

	played := day(2024, 5, 1)
	members := []store.ClubMember{
		{PlayerID: 10, Rank: intPtr(2), DisplayName: "Bob", RatingMean: intPtr(1800), RatingStDev: intPtr(50), LastPlayedDate: &played},
		{PlayerID: 11, Rank: intPtr(1), DisplayName: "Ann", RatingMean: intPtr(2000)},
		{PlayerID: 12, DisplayName: "Cat"},
	}
	require.NoError(t, s.UpsertRoster(ctx, 1, members))

	for _, id := range []int64{10, 11, 12} {
		p, err := s.GetPlayer(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, p, "member %d must have a player row", id)
		assert.Equal(t, store.StatusStale, p.SyncStatus)
	}

	got, err := s.ListClubMembers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(11), got[0].PlayerID)
	assert.Equal(t, int64(10), got[1].PlayerID)
	assert.Equal(t, int64(12), got[2].PlayerID, "unranked members sort last")
	require.NotNil(t, got[1].LastPlayedDate)
	assert.True(t, played.Equal(*got[1].LastPlayedDate))

	// A second pass replaces the member row entirely.
	require.NoError(t, s.UpsertRoster(ctx, 1, []store.ClubMember{{PlayerID: 10, Rank: intPtr(1), DisplayName: "Bobby"}}))
	got, err = s.ListClubMembers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Bobby", got[0].DisplayName)
	assert.Nil(t, got[0].RatingMean)
	assert.Nil(t, got[0].LastPlayedDate)

	p, err := s.GetPlayer(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "Bobby", p.DisplayName)
}

func TestUpsertEvent_NameNeverRegresses(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertEvent(ctx, store.Event{ID: 5, Date: day(2024, 1, 1)}))
	e, err := s.GetEvent(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Event 5", e.Name)

	require.NoError(t, s.UpsertEvent(ctx, store.Event{ID: 5, Name: "Spring Open", Date: day(2024, 1, 2)}))
	require.NoError(t, s.UpsertEvent(ctx, store.Event{ID: 5, Name: "Event 5", Date: day(2024, 1, 3)}))
	require.NoError(t, s.UpsertEvent(ctx, store.Event{ID: 5, Name: "  ", Date: day(2024, 1, 4)}))

	e, err = s.GetEvent(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Spring Open", e.Name)
	assert.True(t, day(2024, 1, 4).Equal(e.Date), "date is always replaced")
}

func TestReplaceEventMatches(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertEvent(ctx, store.Event{ID: 1, Date: day(2024, 1, 1)}))

	first := []store.EventMatch{
		{RowIndex: 0, WinnerID: 100, LoserID: 200, Score: "a"},
		{RowIndex: 1, WinnerID: 300, LoserID: 100, Score: "b"},
		{RowIndex: 2, WinnerID: 100, LoserID: 400, Score: "c"},
	}
	require.NoError(t, s.ReplaceEventMatches(ctx, 1, 100, first))

	second := []store.EventMatch{
		{RowIndex: 0, WinnerID: 100, LoserID: 500, Score: "x", OpponentName: strPtr("Zed")},
		{RowIndex: 1, WinnerID: 600, LoserID: 100, Score: "y"},
	}
	require.NoError(t, s.ReplaceEventMatches(ctx, 1, 100, second))

	got, err := s.ListEventMatches(ctx, 1, 100)
	require.NoError(t, err)
	require.Len(t, got, 2, "no rows from the previous generation survive")
	assert.Equal(t, "x", got[0].Score)
	assert.Equal(t, "y", got[1].Score)
	assert.Equal(t, 0, got[0].RowIndex)
	assert.Equal(t, 1, got[1].RowIndex)
	assert.Equal(t, int64(1), got[0].EventID)
	assert.Equal(t, int64(100), got[0].PlayerID)

	n, err := s.CountEventMatches(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	missing, err := s.CountEventMatchesMissingOpponent(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, missing)

	// Other players in the same event are untouched.
	require.NoError(t, s.ReplaceEventMatches(ctx, 1, 200, []store.EventMatch{{RowIndex: 0, WinnerID: 100, LoserID: 200}}))
	require.NoError(t, s.ReplaceEventMatches(ctx, 1, 100, nil))
	n, err = s.CountEventMatches(ctx, 1, 200)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = s.CountEventMatches(ctx, 1, 100)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReplaceEventMatches_RollsBackOnFailure(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertEvent(ctx, store.Event{ID: 1, Date: day(2024, 1, 1)}))
	require.NoError(t, s.ReplaceEventMatches(ctx, 1, 100, []store.EventMatch{{RowIndex: 0, WinnerID: 100, LoserID: 2, Score: "old"}}))

	// Duplicate row indexes violate the primary key half way through the insert.
	err := s.ReplaceEventMatches(ctx, 1, 100, []store.EventMatch{
		{RowIndex: 0, WinnerID: 100, LoserID: 3},
		{RowIndex: 0, WinnerID: 100, LoserID: 4},
	})
	require.Error(t, err)

	got, err := s.ListEventMatches(ctx, 1, 100)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "old", got[0].Score)
}

func seedHistory(t *testing.T, s *store.SQLStore, playerID int64, rows ...store.PlayerHistory) {
	t.Helper()
	ctx := context.Background()
	for _, h := range rows {
		require.NoError(t, s.UpsertEvent(ctx, store.Event{ID: h.EventID, Name: h.EventName, Date: h.EventDate}))
		h.PlayerID = playerID
		require.NoError(t, s.UpsertPlayerHistory(ctx, h))
	}
}

func TestListPlayerHistory(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	seedHistory(t, s, 1,
		store.PlayerHistory{EventID: 10, EventDate: day(2024, 1, 1), EventName: "A", PointChange: 5},
		store.PlayerHistory{EventID: 11, EventDate: day(2024, 2, 1), EventName: "B", PointChange: -3},
		store.PlayerHistory{EventID: 12, EventDate: day(2024, 2, 1), EventName: "C", PointChange: 1},
		store.PlayerHistory{EventID: 13, EventDate: day(2024, 3, 1), EventName: "D", PointChange: 2},
	)
	seedHistory(t, s, 2, store.PlayerHistory{EventID: 10, EventDate: day(2024, 1, 1), EventName: "A"})

	all, err := s.ListPlayerHistory(ctx, 1, store.HistoryQuery{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []int64{13, 12, 11, 10}, historyIDs(all), "newest first, ties by event id desc")

	since := day(2024, 2, 1)
	recent, err := s.ListPlayerHistory(ctx, 1, store.HistoryQuery{Since: &since})
	require.NoError(t, err)
	assert.Equal(t, []int64{13, 12, 11}, historyIDs(recent))

	page, err := s.ListPlayerHistory(ctx, 1, store.HistoryQuery{
		Before: &store.HistoryCursor{EventDate: day(2024, 2, 1), EventID: 12},
		Limit:  1,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{11}, historyIDs(page))

	latest, err := s.LatestPlayerHistory(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, int64(13), latest.EventID)

	// A re-upsert replaces the row rather than duplicating it.
	seedHistory(t, s, 1, store.PlayerHistory{EventID: 13, EventDate: day(2024, 3, 2), EventName: "D2", PointChange: 9})
	all, err = s.ListPlayerHistory(ctx, 1, store.HistoryQuery{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, 9, all[0].PointChange)
	assert.Equal(t, "D2", all[0].EventName)
}

func historyIDs(rows []store.PlayerHistory) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.EventID)
	}
	return ids
}

func TestListLeaderboard_Paging(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertClub(ctx, 1, "Club"))
	require.NoError(t, s.UpsertRoster(ctx, 1, []store.ClubMember{
		{PlayerID: 1, Rank: intPtr(1), DisplayName: "a"},
		{PlayerID: 2, Rank: intPtr(2), DisplayName: "b"},
		{PlayerID: 3, Rank: intPtr(2), DisplayName: "c"},
		{PlayerID: 4, DisplayName: "d"},
		{PlayerID: 5, DisplayName: "e"},
	}))

	var seen []int64
	var after *store.RankCursor
	for i := 0; i < 5; i++ {
		page, err := s.ListLeaderboard(ctx, 1, after, 2)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, m := range page {
			seen = append(seen, m.PlayerID)
		}
		last := page[len(page)-1]
		after = &store.RankCursor{Rank: last.SortRank(), PlayerID: last.PlayerID}
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, seen)
}

func TestGetPrimaryMembership(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertClub(ctx, 8, "Spin City"))
	require.NoError(t, s.UpsertRoster(ctx, 8, []store.ClubMember{{PlayerID: 1, Rank: intPtr(4), DisplayName: "a"}}))

	m, err := s.GetPrimaryMembership(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, int64(8), m.ClubID)
	assert.Equal(t, "Spin City", m.ClubName)
	require.NotNil(t, m.Rank)
	assert.Equal(t, 4, *m.Rank)
}

func TestListPlayerMatches(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, s.UpsertEvent(ctx, store.Event{ID: id, Date: day(2024, 1, int(id))}))
		require.NoError(t, s.ReplaceEventMatches(ctx, id, 100, []store.EventMatch{{WinnerID: 100, LoserID: 200 + id}}))
	}

	got, err := s.ListPlayerMatches(ctx, 100, []int64{1, 3})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].EventID)
	assert.Equal(t, int64(3), got[1].EventID)

	none, err := s.ListPlayerMatches(ctx, 100, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEventHasData(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertEvent(ctx, store.Event{ID: 1, Date: day(2024, 1, 1)}))

	ok, err := s.EventHasData(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok, "an event shell alone is not data")

	require.NoError(t, s.UpsertEventSummary(ctx, store.EventSummary{EventID: 1, PlayerID: 2, PlayerName: "x"}))
	ok, err = s.EventHasData(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpsertEventSummary_ReplacesRow(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertEvent(ctx, store.Event{ID: 1, Date: day(2024, 1, 1)}))

	require.NoError(t, s.UpsertEventSummary(ctx, store.EventSummary{EventID: 1, PlayerID: 2, PlayerName: "x", FinalMean: 1500}))
	require.NoError(t, s.UpsertEventSummary(ctx, store.EventSummary{EventID: 1, PlayerID: 2, PlayerName: "y", FinalMean: 1510}))

	got, err := s.GetEventSummary(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "y", got.PlayerName)
	assert.Equal(t, 1510, got.FinalMean)
}

func TestListRatingDivergences(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	seedHistory(t, s, 1,
		store.PlayerHistory{EventID: 10, EventDate: day(2024, 1, 1), InitialMean: 1500, PointChange: 10, FinalMean: 1510, FinalStDev: 40},
		store.PlayerHistory{EventID: 11, EventDate: day(2024, 2, 1), InitialMean: 1510, PointChange: 5, FinalMean: 1515, FinalStDev: 39},
		store.PlayerHistory{EventID: 12, EventDate: day(2024, 3, 1), InitialMean: 1515},
	)
	require.NoError(t, s.UpsertEventSummary(ctx, store.EventSummary{EventID: 10, PlayerID: 1, InitialMean: 1500, PointChange: 10, FinalMean: 1510, FinalStDev: 40}))
	require.NoError(t, s.UpsertEventSummary(ctx, store.EventSummary{EventID: 11, PlayerID: 1, InitialMean: 1510, PointChange: 6, FinalMean: 1516, FinalStDev: 39}))

	got, err := s.ListRatingDivergences(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1, "event 12 has no summary and event 10 agrees")
	assert.Equal(t, int64(11), got[0].EventID)
	assert.Equal(t, []string{"pointChange", "finalMean"}, got[0].Fields())
}

func TestReset(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertClub(ctx, 1, "Club"))
	require.NoError(t, s.UpsertRoster(ctx, 1, []store.ClubMember{{PlayerID: 1, DisplayName: "a"}}))
	seedHistory(t, s, 1, store.PlayerHistory{EventID: 10, EventDate: day(2024, 1, 1)})
	require.NoError(t, s.ReplaceEventMatches(ctx, 10, 1, []store.EventMatch{{WinnerID: 1, LoserID: 2}}))

	require.NoError(t, s.Reset(ctx))

	p, err := s.GetPlayer(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, p)
	members, err := s.ListClubMembers(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, members)
	ok, err := s.EventHasData(ctx, 10)
	require.NoError(t, err)
	assert.False(t, ok)
}
