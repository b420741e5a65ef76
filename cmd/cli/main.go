package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mauv0809/tt-ratings/internal/config"
)

var (
	host string
)

var rootCmd = &cobra.Command{
	Use:   "tt-cli",
	Short: "A CLI to sync and inspect table tennis ratings",
	Long: `A command-line interface that runs the ratings sync pipelines against the
configured database, and talks to a running server for health checks.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetLevel(config.Load().Level())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'\n", err)
		stop()
		os.Exit(1)
	}
}

func main() {
	Execute()
}
