package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/royaleops/internal/draft"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "royaleops.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3, cfg.Series.BestOf)
	assert.Equal(t, 6, cfg.Training.Matches)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, `
db_path: /tmp/file.db
log_level: debug
replay:
  tag_separators: ".|"
series:
  best_of: 5
  rounds: 11
  mode: mirrored
  map_strategy: fixed
`)
	t.Setenv("ROYALEOPS_DB", "/tmp/env.db")
	t.Setenv("ROYALEOPS_MATCHES", "8")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ".|", cfg.Replay.TagSeparators)
	assert.Equal(t, 8, cfg.Training.Matches)

	sc, err := cfg.SeriesConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, sc.BestOf)
	assert.Equal(t, 11, sc.RoundsFormat)
	assert.Equal(t, draft.ModeMirrored, sc.Mode)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ROYALEOPS_LISTEN=:9999\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("ROYALEOPS_LISTEN") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ListenAddr)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	tests := map[string]string{
		"bad yaml":      "series: [",
		"bad best-of":   "series: {best_of: 4}",
		"bad mode":      "series: {mode: zigzag}",
		"bad strategy":  "training: {map_strategy: random}",
		"bad rounds":    "series: {rounds: 15}",
		"negative runs": "training: {matches: -1}",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, body))
			assert.Error(t, err)
		})
	}
}

func TestMapPool(t *testing.T) {
	cfg := Default()
	pool, err := cfg.MapPool()
	require.NoError(t, err)
	assert.Contains(t, pool.IDs(), "bermuda")
}
