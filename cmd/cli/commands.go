package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mauv0809/tt-ratings/internal/config"
	"github.com/mauv0809/tt-ratings/internal/database"
	"github.com/mauv0809/tt-ratings/internal/metrics"
	"github.com/mauv0809/tt-ratings/internal/notifier"
	"github.com/mauv0809/tt-ratings/internal/notifier/slack"
	"github.com/mauv0809/tt-ratings/internal/ratings"
	"github.com/mauv0809/tt-ratings/internal/store"
	"github.com/mauv0809/tt-ratings/internal/syncer"
)

var forceReset bool

func init() {
	resetCmd.Flags().BoolVar(&forceReset, "force", false, "Confirm that every stored row should be deleted")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(consistencyCmd)
	rootCmd.AddCommand(resetCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <player|club|event> <id>",
	Short: "Show the stored sync status of an entity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		engine, _, teardown, err := openEngine()
		if err != nil {
			return err
		}
		defer teardown()

		status, err := engine.Status(cmd.Context(), syncer.EntityType(args[0]), id)
		if err != nil {
			return err
		}
		return printJSON(status)
	},
}

var consistencyCmd = &cobra.Command{
	Use:   "check-consistency <playerId>",
	Short: "Compare a player's history feed with the stored event summaries",
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

		divs, err := engine.CheckConsistency(cmd.Context(), playerID)
		if err != nil {
			return err
		}
		if len(divs) == 0 {
			fmt.Println("History and summaries agree.")
			return nil
		}
		for _, d := range divs {
			fmt.Printf("event %d: %v\n", d.EventID, d.Fields())
		}
		return fmt.Errorf("%d events disagree", len(divs))
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset-db",
	Short: "Delete every stored row",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !forceReset {
			return fmt.Errorf("refusing to reset without --force")
		}
		_, st, teardown, err := openEngine()
		if err != nil {
			return err
		}
		defer teardown()
		return st.Reset(cmd.Context())
	},
}

// openEngine builds the sync engine on top of the configured database.
func openEngine() (*syncer.Syncer, *store.SQLStore, func(), error) {
	cfg := config.Load()
	db, teardown, err := database.InitDB(cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	st := store.New(db)
	// The CLI exits before anything could scrape these.
	m := metrics.NewService(prometheus.NewRegistry())

	var n notifier.Notifier
	if cfg.Slack.Token != "" && cfg.Slack.ChannelID != "" {
		n = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, m)
	}
	engine := syncer.New(st, ratings.NewClient(cfg.Ratings, m), m, n)
	engine.MonthsBack = cfg.Sync.MonthsBack
	return engine, st, teardown, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	log.Debug("Making request", "url", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
