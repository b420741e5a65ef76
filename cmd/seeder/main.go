package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mauv0809/tt-ratings/internal/config"
	"github.com/mauv0809/tt-ratings/internal/database"
	"github.com/mauv0809/tt-ratings/internal/store"
)

// Seeds a synthetic club so the read endpoints have something to show locally.
func main() {
	clubID := flag.Int64("club", 9000, "ID of the seeded club")
	numPlayers := flag.Int("players", 24, "Number of seeded players")
	numEvents := flag.Int("events", 40, "Number of seeded events")
	flag.Parse()

	log.Info("Starting database seeder...")
	cfg := config.Load()
	db, teardown, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	ctx := context.Background()
	st := store.New(db)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	startTime := time.Now()

	if err := st.UpsertClub(ctx, *clubID, "Seeded Club"); err != nil {
		log.Fatalf("Failed to insert club: %s", err)
	}

	means := make(map[int64]int, *numPlayers)
	members := make([]store.ClubMember, 0, *numPlayers)
	for i := 0; i < *numPlayers; i++ {
		id := *clubID*1000 + int64(i+1)
		means[id] = 800 + rng.Intn(1400)
		members = append(members, store.ClubMember{
			PlayerID:    id,
			DisplayName: fmt.Sprintf("Seeder Player %c%d", 'A'+i%26, i/26),
		})
	}

	for _, m := range members {
		if err := st.UpsertPlayer(ctx, m.PlayerID, m.DisplayName); err != nil {
			log.Fatalf("Failed to insert player: %s", err)
		}
	}

	for e := 0; e < *numEvents; e++ {
		eventID := *clubID*10000 + int64(e+1)
		date := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -7*(*numEvents-e))
		event := store.Event{ID: eventID, Name: fmt.Sprintf("Seeded League Night %d", e+1), Date: date}
		if err := st.UpsertEvent(ctx, event); err != nil {
			log.Fatalf("Failed to insert event: %s", err)
		}
		if err := seedEvent(ctx, st, rng, event, members, means); err != nil {
			log.Fatalf("Failed to seed event %d: %s", eventID, err)
		}
		if (e+1)%10 == 0 || e+1 == *numEvents {
			log.Info("Seeded events", "completed", e+1, "total", *numEvents)
		}
	}

	for i := range members {
		mean, stdev := means[members[i].PlayerID], 40+rng.Intn(100)
		members[i].RatingMean, members[i].RatingStDev = &mean, &stdev
	}
	rankByMean(members)
	if err := st.UpsertRoster(ctx, *clubID, members); err != nil {
		log.Fatalf("Failed to insert roster: %s", err)
	}
	for _, m := range members {
		if err := st.MarkPlayerSync(ctx, m.PlayerID, store.StatusOK, "", time.Now()); err != nil {
			log.Fatalf("Failed to stamp player: %s", err)
		}
	}

	log.Info("Successfully seeded club.", "club", *clubID, "players", *numPlayers, "events", *numEvents, "duration", time.Since(startTime))
}

// seedEvent pairs four random members into two matches and stores every row a sync would.
func seedEvent(ctx context.Context, st *store.SQLStore, rng *rand.Rand, event store.Event, members []store.ClubMember, means map[int64]int) error {
	perm := rng.Perm(len(members))
	if len(perm) < 4 {
		return nil
	}
	type result struct{ winner, loser int64 }
	results := []result{
		{members[perm[0]].PlayerID, members[perm[1]].PlayerID},
		{members[perm[2]].PlayerID, members[perm[3]].PlayerID},
	}

	for _, r := range results {
		delta := 5 + rng.Intn(20)
		match := store.EventMatch{
			WinnerID: r.winner, LoserID: r.loser, Score: "3-1",
			WinnerDelta: delta, WinnerOppMean: means[r.loser], WinnerOppStDev: 60,
			LoserDelta: -delta, LoserOppMean: means[r.winner], LoserOppStDev: 60,
			MatchesPairPlayed: 1,
		}
		for _, side := range []struct {
			player, opponent int64
			change           int
		}{{r.winner, r.loser, delta}, {r.loser, r.winner, -delta}} {
			name := nameOf(members, side.opponent)
			m := match
			m.OpponentName = &name
			if err := st.ReplaceEventMatches(ctx, event.ID, side.player, []store.EventMatch{m}); err != nil {
				return err
			}
			initial := means[side.player]
			means[side.player] += side.change
			if err := st.UpsertEventSummary(ctx, store.EventSummary{
				EventID: event.ID, PlayerID: side.player, PlayerName: nameOf(members, side.player),
				InitialMean: initial, InitialStDev: 60, PointChange: side.change,
				FinalMean: means[side.player], FinalStDev: 58,
			}); err != nil {
				return err
			}
			if err := st.UpsertPlayerHistory(ctx, store.PlayerHistory{
				PlayerID: side.player, EventID: event.ID, EventDate: event.Date, EventName: event.Name,
				InitialMean: initial, InitialStDev: 60, PointChange: side.change,
				FinalMean: means[side.player], FinalStDev: 58,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func nameOf(members []store.ClubMember, id int64) string {
	for _, m := range members {
		if m.PlayerID == id {
			return m.DisplayName
		}
	}
	return store.PlayerPlaceholder(id)
}

func rankByMean(members []store.ClubMember) {
	for i := range members {
		rank := 1
		for j := range members {
			if *members[j].RatingMean > *members[i].RatingMean {
				rank++
			}
		}
		members[i].Rank = &rank
	}
}
