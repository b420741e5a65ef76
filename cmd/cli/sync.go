package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mauv0809/tt-ratings/internal/syncer"
)

var (
	noEvents   bool
	noPlayers  bool
	fromDB     bool
	monthsBack int
	clubName   string
	eventName  string
	eventDate  string
	eventOwner int64
)

func init() {
	syncPlayerCmd.Flags().BoolVar(&noEvents, "no-events", false, "Only store the history, skip per-event sync")
	syncPlayerCmd.Flags().IntVar(&monthsBack, "months", 0, "How many months of history to sync (default from SYNC_MONTHS_BACK)")

	syncClubCmd.Flags().StringVar(&clubName, "name", "", "Club name used to resolve the roster page")
	syncClubCmd.Flags().BoolVar(&noPlayers, "no-players", false, "Only refresh the roster")
	syncClubCmd.Flags().BoolVar(&fromDB, "from-db", false, "Use the stored roster instead of fetching it")
	syncClubCmd.Flags().IntVar(&monthsBack, "months", 0, "How many months of history to sync per player")

	syncEventCmd.Flags().Int64Var(&eventOwner, "player", 0, "Player whose results are synced")
	syncEventCmd.Flags().StringVar(&eventName, "name", "", "Event name, if known")
	syncEventCmd.Flags().StringVar(&eventDate, "date", "", "Event date as YYYY-MM-DD, if known")
	syncEventCmd.MarkFlagRequired("player")

	syncCmd.AddCommand(syncPlayerCmd, syncClubCmd, syncEventCmd)
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a sync pipeline against the configured database",
}

var syncPlayerCmd = &cobra.Command{
	Use:   "player <playerId>",
	Short: "Sync a player's history and events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		playerID, err := parseID(args[0])
		if err != nil {
			return err
		}
		engine, _, teardown, err := openEngine()
		if err != nil {
			return err
		}
		defer teardown()

		syncEvents := !noEvents
		res, err := engine.SyncPlayer(cmd.Context(), playerID, syncer.PlayerOptions{SyncEvents: &syncEvents, MonthsBack: monthsBack})
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var syncClubCmd = &cobra.Command{
	Use:   "club <clubId>",
	Short: "Sync a club roster and, unless disabled, every member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clubID, err := parseID(args[0])
		if err != nil {
			return err
		}
		engine, _, teardown, err := openEngine()
		if err != nil {
			return err
		}
		defer teardown()

		syncPlayers := !noPlayers
		res, err := engine.SyncClub(cmd.Context(), clubID, syncer.ClubOptions{
			ClubName:       clubName,
			SyncPlayers:    &syncPlayers,
			MonthsBack:     monthsBack,
			UseRosterCache: fromDB,
		})
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var syncEventCmd = &cobra.Command{
	Use:   "event <eventId>",
	Short: "Sync one player's summary and matches for an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eventID, err := parseID(args[0])
		if err != nil {
			return err
		}
		meta := syncer.EventMeta{Name: eventName}
		if eventDate != "" {
			date, err := time.Parse(time.DateOnly, eventDate)
			if err != nil {
				return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", eventDate)
			}
			meta.Date = &date
		}
		engine, _, teardown, err := openEngine()
		if err != nil {
			return err
		}
		defer teardown()

		res, err := engine.SyncEventForPlayer(cmd.Context(), eventID, eventOwner, meta)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}
