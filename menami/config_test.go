package menami

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"

[bot]
token = "file-token"
dev_guilds = [123]

[db]
driver = "sqlite"
path = "test.db"
`)
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DB_DRIVER", "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.Equal(t, "file-token", cfg.Bot.Token)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 3, cfg.Economy.DropSize)
	assert.Equal(t, 60*time.Second, cfg.Economy.ClaimWindow())
	assert.Equal(t, 30*time.Second, cfg.Economy.DropCooldown())
	assert.Equal(t, []float64{40, 30, 18, 9, 3}, cfg.Economy.RarityWeights)
	assert.False(t, cfg.Spaces.Enabled())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[bot]
token = "file-token"

[economy]
claim_window_s = 45
rarity_weights = [1, 1, 1, 1, 1]
`)
	t.Setenv("DISCORD_TOKEN", "env-token")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_DSN", "postgres://menami@localhost/menami")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Bot.Token)
	assert.Equal(t, "secret", cfg.DB.Password)
	assert.Equal(t, "postgres://menami@localhost/menami", cfg.DB.DSN)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 45*time.Second, cfg.Economy.ClaimWindow())
	assert.Equal(t, []float64{1, 1, 1, 1, 1}, cfg.Economy.RarityWeights)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
