// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken          string   `env:"DISCORD_TOKEN"`
	CommandPrefix         string   `env:"COMMAND_PREFIX" envDefault:"rp!"`
	StorageDriver         string   `env:"STORAGE_DRIVER" envDefault:"datastore"`
	StoragePath           string   `env:"STORAGE_PATH" envDefault:"datastore.json"`
	SQLitePath            string   `env:"SQLITE_PATH" envDefault:"pokebox.sqlite"`
	RedisAddr             string   `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	GameConfig            string   `env:"GAME_CONFIG"`
	LogLevel              string   `env:"LOG_LEVEL" envDefault:"info"`
	DevMode               bool     `env:"DEV_MODE" envDefault:"false"`
	InitSlashCommands     bool     `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	CommandCacheDir       string   `env:"COMMAND_CACHE_DIR" envDefault:"data/commands"`
	DiscordGuildBlacklist []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`

	Game Game `env:"-"`
}

// Game holds the dialogue and trade tuning.
type Game struct {
	PromptTimeout time.Duration `yaml:"prompt_timeout"`
	DataTimeout   time.Duration `yaml:"data_timeout"`
	TradeTimeout  time.Duration `yaml:"trade_timeout"`
	CancelKeyword string        `yaml:"cancel_keyword"`
	SkipKeyword   string        `yaml:"skip_keyword"`
}

// DefaultGame returns the stock timeouts and keywords.
func DefaultGame() Game {
	return Game{
		PromptTimeout: 30 * time.Second,
		DataTimeout:   60 * time.Second,
		TradeTimeout:  60 * time.Second,
		CancelKeyword: "cancel",
		SkipKeyword:   "skip",
	}
}

// Load reads the environment and the optional game tuning file.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Game = DefaultGame()
	if cfg.GameConfig != "" {
		game, err := LoadGame(cfg.GameConfig)
		if err != nil {
			return nil, err
		}
		cfg.Game = game
	}
	return &cfg, nil
}

// New loads the bot configuration and exits when it is unusable.
func New() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.DiscordToken == "" {
		log.Fatal("DISCORD_TOKEN is not set")
	}
	return cfg
}

// LoadGame reads a YAML tuning file; missing keys keep their defaults.
func LoadGame(path string) (Game, error) {
	game := DefaultGame()
	raw, err := os.ReadFile(path)
	if err != nil {
		return game, fmt.Errorf("read game config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &game); err != nil {
		return game, fmt.Errorf("%s: %w", path, err)
	}
	if err := game.Validate(); err != nil {
		return game, fmt.Errorf("%s: %w", path, err)
	}
	return game, nil
}

func (g Game) Validate() error {
	if g.PromptTimeout <= 0 || g.DataTimeout <= 0 || g.TradeTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if strings.TrimSpace(g.CancelKeyword) == "" || strings.TrimSpace(g.SkipKeyword) == "" {
		return errors.New("cancel and skip keywords must not be empty")
	}
	if strings.EqualFold(g.CancelKeyword, g.SkipKeyword) {
		return errors.New("cancel and skip keywords must differ")
	}
	return nil
}

// AcceptPhrase is the message a trade counterparty sends to accept.
func (c *Config) AcceptPhrase() string { return c.CommandPrefix + "accept" }

// DeclinePhrase is the message a trade counterparty sends to decline.
func (c *Config) DeclinePhrase() string { return c.CommandPrefix + "decline" }
