package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pable/royaleops/internal/logger"
	"github.com/pable/royaleops/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve sessions over a read-only HTTP API for overlays and dashboards",
	Long: `Serve stored sessions as JSON and PNG:

  GET /sessions
  GET /sessions/{id}
  GET /sessions/{id}/leaderboard        (and leaderboard.png)
  GET /sessions/{id}/players
  GET /sessions/{id}/series             (and series.png)
  GET /metrics, /healthz`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}
	// serve logs JSON.
	log = logger.New(cfg.LogLevel, os.Stdout)

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	pool, err := mapPool()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(db, pool, log).Run(ctx, addr)
}
