// Package config loads royaleops settings from an optional YAML file, a .env file and
// the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pable/royaleops/internal/draft"
	mappool "github.com/pable/royaleops/internal/maps"
	"github.com/pable/royaleops/internal/series"
)

// Config struct to hold the configuration settings
type Config struct {
	DBPath      string         `yaml:"db_path"`
	LogLevel    string         `yaml:"log_level"`
	ListenAddr  string         `yaml:"listen_addr"`
	MapPoolFile string         `yaml:"map_pool_file"`
	Replay      ReplayConfig   `yaml:"replay"`
	Series      SeriesConfig   `yaml:"series"`
	Training    TrainingConfig `yaml:"training"`
}

// ReplayConfig controls player-to-team attribution.
type ReplayConfig struct {
	TagSeparators string `yaml:"tag_separators"`
}

// SeriesConfig holds the defaults for new 4x4 series.
type SeriesConfig struct {
	BestOf      int    `yaml:"best_of"`
	Rounds      int    `yaml:"rounds"`
	Mode        string `yaml:"mode"`
	MapStrategy string `yaml:"map_strategy"`
}

// TrainingConfig holds the defaults for new battle-royale sessions.
type TrainingConfig struct {
	Matches     int    `yaml:"matches"`
	MapStrategy string `yaml:"map_strategy"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:     filepath.Join(userHome(), ".royaleops", "royaleops.db"),
		LogLevel:   "info",
		ListenAddr: ":8080",
		Series: SeriesConfig{
			BestOf:      3,
			Rounds:      13,
			Mode:        string(draft.ModeSnake),
			MapStrategy: string(mappool.StrategyNoRepeat),
		},
		Training: TrainingConfig{
			Matches:     6,
			MapStrategy: string(mappool.StrategyNoRepeat),
		},
	}
}

// Load reads filename over the defaults. A missing file is not an error; an empty
// filename skips the file entirely. Environment variables, including those from a .env
// file in the working directory, override both.
func Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	// .env is optional.
	_ = godotenv.Load()

	cfg.DBPath = getEnv("ROYALEOPS_DB", cfg.DBPath)
	cfg.LogLevel = getEnv("ROYALEOPS_LOG_LEVEL", cfg.LogLevel)
	cfg.ListenAddr = getEnv("ROYALEOPS_LISTEN", cfg.ListenAddr)
	cfg.MapPoolFile = getEnv("ROYALEOPS_MAP_POOL", cfg.MapPoolFile)
	if v := os.Getenv("ROYALEOPS_MATCHES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Training.Matches = n
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerations and numeric ranges.
func (c *Config) Validate() error {
	if _, err := c.SeriesConfig(); err != nil {
		return err
	}
	if _, err := mappool.ParseStrategy(c.Training.MapStrategy); err != nil {
		return fmt.Errorf("training.map_strategy: %w", err)
	}
	if c.Training.Matches < 0 {
		return fmt.Errorf("training.matches must not be negative")
	}
	return nil
}

// SeriesConfig converts the series defaults into a series.Config.
func (c *Config) SeriesConfig() (series.Config, error) {
	mode, err := draft.ParseMode(c.Series.Mode)
	if err != nil {
		return series.Config{}, fmt.Errorf("series.mode: %w", err)
	}
	strategy, err := mappool.ParseStrategy(c.Series.MapStrategy)
	if err != nil {
		return series.Config{}, fmt.Errorf("series.map_strategy: %w", err)
	}
	sc := series.Config{
		BestOf:       c.Series.BestOf,
		RoundsFormat: c.Series.Rounds,
		Mode:         mode,
		MapStrategy:  strategy,
	}
	if err := sc.Validate(); err != nil {
		return series.Config{}, fmt.Errorf("series: %w", err)
	}
	return sc, nil
}

// MapPool loads the configured pool file, or the built-in pool when none is set.
func (c *Config) MapPool() (*mappool.Pool, error) {
	if c.MapPoolFile == "" {
		return mappool.Default(), nil
	}
	return mappool.LoadPool(c.MapPoolFile)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
