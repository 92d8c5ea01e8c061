// Package config loads the runtime configuration from a YAML file and
// MONOPOLY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/magefree/monopoly-server-go/internal/game"
)

// EnvPrefix prefixes every environment override, e.g. MONOPOLY_RULES_BAIL.
const EnvPrefix = "MONOPOLY"

type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Game      GameConfig      `mapstructure:"game"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Spectator SpectatorConfig `mapstructure:"spectator"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type RulesConfig struct {
	StartingBalance int `mapstructure:"starting_balance"`
	PassGoBonus     int `mapstructure:"pass_go_bonus"`
	Bail            int `mapstructure:"bail"`
	MaxJailTurns    int `mapstructure:"max_jail_turns"`
	MaxDoubles      int `mapstructure:"max_doubles"`
	MaxLandingDepth int `mapstructure:"max_landing_depth"`
}

type GameConfig struct {
	Players      []string `mapstructure:"players"`
	Humans       []string `mapstructure:"humans"` // players prompted on the terminal
	Seed         int64    `mapstructure:"seed"`   // zero picks a random seed
	MaxTurns     int      `mapstructure:"max_turns"`
	PolicyScript string   `mapstructure:"policy_script"`
	Locale       string   `mapstructure:"locale"`
	Series       int      `mapstructure:"series"` // games to play unattended, 0 plays one game
	Workers      int      `mapstructure:"workers"`
}

// CatalogConfig names override files; empty paths use the built-in board
// and cards.
type CatalogConfig struct {
	Layout         string `mapstructure:"layout"`
	Chance         string `mapstructure:"chance"`
	CommunityChest string `mapstructure:"community_chest"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Namespace string `mapstructure:"namespace"`
}

type SpectatorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// Load reads the file at path, if it exists, over the defaults and applies
// environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	rules := game.DefaultRules()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("rules.starting_balance", rules.StartingBalance)
	v.SetDefault("rules.pass_go_bonus", rules.PassGoBonus)
	v.SetDefault("rules.bail", rules.Bail)
	v.SetDefault("rules.max_jail_turns", rules.MaxJailTurns)
	v.SetDefault("rules.max_doubles", rules.MaxDoubles)
	v.SetDefault("rules.max_landing_depth", rules.MaxLandingDepth)

	v.SetDefault("game.players", []string{"alice", "bob", "carol", "dave"})
	v.SetDefault("game.humans", []string{})
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.max_turns", 1000)
	v.SetDefault("game.policy_script", "")
	v.SetDefault("game.locale", "en-US")
	v.SetDefault("game.series", 0)
	v.SetDefault("game.workers", 4)

	v.SetDefault("catalog.layout", "")
	v.SetDefault("catalog.chance", "")
	v.SetDefault("catalog.community_chest", "")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", ":9090")
	v.SetDefault("metrics.namespace", "monopoly")

	v.SetDefault("spectator.enabled", false)
	v.SetDefault("spectator.address", ":8080")
}

// Validate checks the configuration for values the game cannot run with.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format %q is not json or console", c.Logging.Format)
	}

	if err := c.GameRules().Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}

	if len(c.Game.Players) < 2 {
		return fmt.Errorf("game.players needs at least 2 names, got %d", len(c.Game.Players))
	}
	seated := make(map[string]bool, len(c.Game.Players))
	for _, name := range c.Game.Players {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("game.players contains an empty name")
		}
		if seated[name] {
			return fmt.Errorf("game.players lists %q twice", name)
		}
		seated[name] = true
	}
	for _, name := range c.Game.Humans {
		if !seated[name] {
			return fmt.Errorf("game.humans names %q, who is not in game.players", name)
		}
	}
	if c.Game.MaxTurns < 0 {
		return fmt.Errorf("game.max_turns must not be negative, got %d", c.Game.MaxTurns)
	}
	if c.Game.Series < 0 {
		return fmt.Errorf("game.series must not be negative, got %d", c.Game.Series)
	}
	if c.Game.Series > 0 && len(c.Game.Humans) > 0 {
		return fmt.Errorf("game.series cannot seat human players")
	}
	if c.Game.Series > 0 && c.Game.Workers < 1 {
		return fmt.Errorf("game.workers must be at least 1, got %d", c.Game.Workers)
	}

	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return fmt.Errorf("metrics.address is required when metrics are enabled")
	}
	if c.Spectator.Enabled && c.Spectator.Address == "" {
		return fmt.Errorf("spectator.address is required when the spectator stream is enabled")
	}
	return nil
}

// GameRules maps the rules section onto the engine's rules.
func (c *Config) GameRules() game.Rules {
	return game.Rules{
		StartingBalance: c.Rules.StartingBalance,
		PassGoBonus:     c.Rules.PassGoBonus,
		Bail:            c.Rules.Bail,
		MaxJailTurns:    c.Rules.MaxJailTurns,
		MaxDoubles:      c.Rules.MaxDoubles,
		MaxLandingDepth: c.Rules.MaxLandingDepth,
	}
}

// CatalogFiles maps the catalog section onto the engine's override files.
func (c *Config) CatalogFiles() game.CatalogFiles {
	return game.CatalogFiles{
		Layout:         c.Catalog.Layout,
		Chance:         c.Catalog.Chance,
		CommunityChest: c.Catalog.CommunityChest,
	}
}

// IsHuman reports whether name is played from the terminal.
func (c *Config) IsHuman(name string) bool {
	for _, human := range c.Game.Humans {
		if human == name {
			return true
		}
	}
	return false
}
