package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/laybot/config"
	"github.com/alejandrodnm/laybot/internal/domain"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "bot:\n  test_mode: true\n"))
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.PollInterval())
	assert.Equal(t, 15*time.Minute, cfg.KeepAliveInterval())
	assert.Equal(t, 60, cfg.Betting.WindowStart)
	assert.Equal(t, 74, cfg.Betting.WindowEnd)
	assert.Equal(t, 2.5, cfg.Betting.TargetOver)
	assert.Equal(t, 1.5, cfg.Betting.DefaultMinOdds)
	assert.Equal(t, 4, cfg.Betting.MaxSpreadTicks)
	assert.Equal(t, 2, cfg.Betting.TicksOffset)
	assert.Equal(t, "CLASSIC", cfg.Betting.Ladder)
	assert.Equal(t, "targets.xlsx", cfg.Sheet.Path)
	assert.Equal(t, "laybot.db", cfg.Storage.DSN)

	// La gracia anti-VAR por defecto son los 4 minutos del dominio.
	assert.Equal(t, domain.DefaultDiscardDelay, cfg.DiscardDelay())
}

func TestLoadExplicitDiscardDelay(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "betting:\n  discard_delay_seconds: 90\n"))
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.DiscardDelay())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BETFAIR_APP_KEY", "clave-app")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load(writeConfig(t, "log:\n  level: info\n"))
	require.NoError(t, err)

	assert.Equal(t, "clave-app", cfg.Exchange.AppKey)
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.yaml")
}
