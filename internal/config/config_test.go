package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "cleaning dataset final.csv", cfg.Dataset.Source)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Export.Format)
	assert.NotEmpty(t, cfg.Dataset.DateLayouts)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "custom.yaml")
	yaml := `
dataset:
  source: usage.csv
  synthetic_start_date: "2023-01-01"
server:
  port: 9000
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	t.Setenv("DASHBOARD_SERVER_PORT", "9100")
	t.Setenv("DASHBOARD_EXPORT_FORMAT", "csv")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "usage.csv", cfg.Dataset.Source)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9100, cfg.Server.Port, "env overrides file")
	assert.Equal(t, "csv", cfg.Export.Format)

	start, ok := cfg.Dataset.SyntheticStart()
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestLoadConfigPathFromEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "from-env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataset:\n  source: env.csv\n"), 0o644))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env.csv", cfg.Dataset.Source)
}

func TestLoadDateLayoutsFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DASHBOARD_DATASET_DATE_LAYOUTS", "2006-01-02, 02.01.2006")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"2006-01-02", "02.01.2006"}, cfg.Dataset.DateLayouts)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("DASHBOARD_LOG_LEVEL", "loud")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Level")
}

func TestEnvTransformFunc(t *testing.T) {
	assert.Equal(t, "server.port", envTransformFunc("DASHBOARD_SERVER_PORT"))
	assert.Equal(t, "dataset.synthetic_start_date", envTransformFunc("DASHBOARD_DATASET_SYNTHETIC_START_DATE"))
	assert.Equal(t, "", envTransformFunc("DASHBOARD_CONFIG"))
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores the previous one when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
