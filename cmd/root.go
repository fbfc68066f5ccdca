package cmd

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pable/royaleops/internal/config"
	"github.com/pable/royaleops/internal/logger"
	mappool "github.com/pable/royaleops/internal/maps"
	"github.com/pable/royaleops/internal/session"
	"github.com/pable/royaleops/internal/storage"
)

var (
	dbPath     string
	configPath string

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "royaleops",
	Short: "Battle-royale tournament operations tool",
	Long: `Run scrims, league days and 4x4 series for a team battle-royale game:
register teams, score matches by hand or from replay files, draft characters,
track series and publish leaderboards.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultConfig := filepath.Join(mustUserHome(), ".royaleops", "config.yaml")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (overrides config)")

	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("db") {
		c.DBPath = dbPath
	}
	dbPath = c.DBPath
	cfg = c
	log = logger.Console(cfg.LogLevel)
	return nil
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// openStore opens the session database, creating its directory if needed.
func openStore() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath, storage.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// loadOpenSession fetches a session by id prefix and refuses archived ones, which are
// read-only.
func loadOpenSession(db *storage.DB, ref string) (*session.Session, error) {
	s, err := db.GetSession(ref)
	if err != nil {
		return nil, err
	}
	if s.Status != session.StatusOpen {
		return nil, fmt.Errorf("session %s is archived and read-only", s.ID[:8])
	}
	return s, nil
}

func mapPool() (*mappool.Pool, error) {
	pool, err := cfg.MapPool()
	if err != nil {
		return nil, fmt.Errorf("load map pool: %w", err)
	}
	return pool, nil
}

func newRand() *rand.Rand {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>1))
}
