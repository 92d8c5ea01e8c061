package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magefree/monopoly-server-go/internal/game"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, game.DefaultRules(), cfg.GameRules())
	assert.Equal(t, []string{"alice", "bob", "carol", "dave"}, cfg.Game.Players)
	assert.Equal(t, 1000, cfg.Game.MaxTurns)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, game.CatalogFiles{}, cfg.CatalogFiles())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Rules.Bail)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
rules:
  starting_balance: 2000
  bail: 100
game:
  players: [ann, ben]
  humans: [ben]
  seed: 42
  max_turns: 0
catalog:
  chance: cards/chance.yaml
metrics:
  enabled: true
  address: ":9999"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 2000, cfg.Rules.StartingBalance)
	assert.Equal(t, 100, cfg.GameRules().Bail)
	assert.Equal(t, 200, cfg.Rules.PassGoBonus, "unset keys keep their defaults")
	assert.Equal(t, []string{"ann", "ben"}, cfg.Game.Players)
	assert.True(t, cfg.IsHuman("ben"))
	assert.False(t, cfg.IsHuman("ann"))
	assert.Equal(t, int64(42), cfg.Game.Seed)
	assert.Equal(t, "cards/chance.yaml", cfg.CatalogFiles().Chance)
	assert.Equal(t, ":9999", cfg.Metrics.Address)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MONOPOLY_RULES_BAIL", "75")
	t.Setenv("MONOPOLY_GAME_SEED", "7")
	t.Setenv("MONOPOLY_LOGGING_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, "rules:\n  bail: 60\n"))
	require.NoError(t, err)
	assert.Equal(t, 75, cfg.Rules.Bail)
	assert.Equal(t, int64(7), cfg.Game.Seed)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	_, err := Load(writeConfig(t, "logging: [not, a, map"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "rules:\n  max_doubles: 0\n"))
	assert.ErrorContains(t, err, "max doubles")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"negative bail", func(c *Config) { c.Rules.Bail = -1 }, "bail"},
		{"one player", func(c *Config) { c.Game.Players = []string{"solo"} }, "at least 2"},
		{"duplicate player", func(c *Config) { c.Game.Players = []string{"ann", "ann"} }, "twice"},
		{"blank player", func(c *Config) { c.Game.Players = []string{"ann", " "} }, "empty name"},
		{"unknown human", func(c *Config) { c.Game.Humans = []string{"zed"} }, "not in game.players"},
		{"negative turns", func(c *Config) { c.Game.MaxTurns = -1 }, "max_turns"},
		{"series with humans", func(c *Config) {
			c.Game.Series = 3
			c.Game.Humans = []string{"alice"}
		}, "human"},
		{"series without workers", func(c *Config) {
			c.Game.Series = 3
			c.Game.Workers = 0
		}, "workers"},
		{"metrics address", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Address = ""
		}, "metrics.address"},
		{"spectator address", func(c *Config) {
			c.Spectator.Enabled = true
			c.Spectator.Address = ""
		}, "spectator.address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
