package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Invoice.DefaultDueDays)
	assert.Equal(t, "INV", cfg.Invoice.NumberPrefix)
	assert.Equal(t, 13.0, cfg.Defaults.TaxPercent)
	assert.Equal(t, 0.61, cfg.Defaults.MileageRate)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Invoice.NumberPrefix = "BILL"
	cfg.Defaults.TaxPercent = 5
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "BILL", loaded.Invoice.NumberPrefix)
	assert.Equal(t, 5.0, loaded.Defaults.TaxPercent)
	assert.Equal(t, cfg.Auth.RefreshTTL, loaded.Auth.RefreshTTL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WAGEFLOW_DB_PATH", "/tmp/override.db")
	t.Setenv("JWT_ACCESS_EXPIRATION", "30m")
	t.Setenv("JWT_REFRESH_EXPIRATION", "14d")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 14*24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidEnvDuration(t *testing.T) {
	t.Setenv("JWT_REFRESH_EXPIRATION", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("invoice: [unterminated"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestParseTTL(t *testing.T) {
	d, err := ParseTTL("7d")
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, d)

	d, err = ParseTTL("15m")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, d)

	_, err = ParseTTL("-1h")
	assert.Error(t, err)
}
