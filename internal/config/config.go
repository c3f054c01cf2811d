// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jason-s-yu/bluff/internal/bot"
	"github.com/jason-s-yu/bluff/internal/game"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BLUFF_SERVER_PORT.
const EnvPrefix = "BLUFF"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

type GameConfig struct {
	Capacity             int           `mapstructure:"capacity"`
	MinPlayers           int           `mapstructure:"min_players"`
	StartDelay           time.Duration `mapstructure:"start_delay"`
	ChallengeWindow      time.Duration `mapstructure:"challenge_window"`
	ResolutionPause      time.Duration `mapstructure:"resolution_pause"`
	InterRoundPause      time.Duration `mapstructure:"inter_round_pause"`
	BotThinkDelay        time.Duration `mapstructure:"bot_think_delay"`
	BotChallengeDelayMin time.Duration `mapstructure:"bot_challenge_delay_min"`
	BotChallengeDelayMax time.Duration `mapstructure:"bot_challenge_delay_max"`
	DefaultDifficulty    string        `mapstructure:"default_difficulty"`
}

// RedisConfig enables the action log queue when Addr is set.
type RedisConfig struct {
	Addr  string `mapstructure:"addr"`
	DB    int    `mapstructure:"db"`
	Queue string `mapstructure:"queue"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

func setDefaults(v *viper.Viper) {
	d := game.DefaultSettings()
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("game.capacity", d.Capacity)
	v.SetDefault("game.min_players", d.MinPlayers)
	v.SetDefault("game.start_delay", d.StartDelay)
	v.SetDefault("game.challenge_window", d.ChallengeWindow)
	v.SetDefault("game.resolution_pause", d.ResolutionPause)
	v.SetDefault("game.inter_round_pause", d.InterRoundPause)
	v.SetDefault("game.bot_think_delay", d.BotThinkDelay)
	v.SetDefault("game.bot_challenge_delay_min", d.BotChallengeDelayMin)
	v.SetDefault("game.bot_challenge_delay_max", d.BotChallengeDelayMax)
	v.SetDefault("game.default_difficulty", string(bot.Medium))

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.queue", "bluff_actions")

	v.SetDefault("database.dsn", "")
}

// Load reads the yaml file at path, if any, then applies BLUFF_* environment overrides on top of
// the defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Settings().Validate(); err != nil {
		return nil, fmt.Errorf("invalid game settings: %w", err)
	}
	return &cfg, nil
}

// Settings converts the game section into room settings.
func (c *Config) Settings() game.Settings {
	return game.Settings{
		Capacity:             c.Game.Capacity,
		MinPlayers:           c.Game.MinPlayers,
		StartDelay:           c.Game.StartDelay,
		ChallengeWindow:      c.Game.ChallengeWindow,
		ResolutionPause:      c.Game.ResolutionPause,
		InterRoundPause:      c.Game.InterRoundPause,
		BotThinkDelay:        c.Game.BotThinkDelay,
		BotChallengeDelayMin: c.Game.BotChallengeDelayMin,
		BotChallengeDelayMax: c.Game.BotChallengeDelayMax,
	}
}

// Difficulty is the bot difficulty used when a request names none.
func (c *Config) Difficulty() bot.Difficulty {
	return bot.ParseDifficulty(c.Game.DefaultDifficulty)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
