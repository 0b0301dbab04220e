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
	t.Setenv("COMMAND_PREFIX", "")
	os.Unsetenv("COMMAND_PREFIX")
	t.Setenv("DISCORD_GUILD_BLACKLIST", "1,2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "rp!", cfg.CommandPrefix)
	assert.Equal(t, "datastore", cfg.StorageDriver)
	assert.Equal(t, []string{"1", "2"}, cfg.DiscordGuildBlacklist)
	assert.Equal(t, DefaultGame(), cfg.Game)
	assert.Equal(t, "rp!accept", cfg.AcceptPhrase())
	assert.Equal(t, "rp!decline", cfg.DeclinePhrase())
}

func TestLoadInvalidEnv(t *testing.T) {
	t.Setenv("DEV_MODE", "maybe")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestLoadGame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prompt_timeout: 10s\ncancel_keyword: stop\n"), 0o644))

	game, err := LoadGame(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, game.PromptTimeout)
	assert.Equal(t, 60*time.Second, game.DataTimeout)
	assert.Equal(t, "stop", game.CancelKeyword)
	assert.Equal(t, "skip", game.SkipKeyword)
}

func TestLoadGameRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte("skip_keyword: cancel\n"), 0o644))

	_, err := LoadGame(path)
	assert.Error(t, err)

	_, err = LoadGame(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadUsesGameConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trade_timeout: 2m\n"), 0o644))
	t.Setenv("GAME_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.Game.TradeTimeout)
}
