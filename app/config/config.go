package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is materialized once at startup and passed into constructors.
type Config struct {
	Discord DiscordConfig
	Catalog CatalogConfig
	Matcher MatcherConfig
	Cache   CacheConfig
	Server  ServerConfig
	Env     string
}

type DiscordConfig struct {
	// Token is required; startup fails without it.
	Token             string
	CommandPrefix     string
	AutoRespond       bool
	MonitoredChannels []string
}

type CatalogConfig struct {
	BaseURL     string
	CategoryID  int
	Timeout     time.Duration
	Validity    time.Duration
	MaxGroupAge time.Duration
	PacingDelay time.Duration
}

type MatcherConfig struct {
	// Threshold in fuzzy-library convention: 0 exact only, 1 anything.
	Threshold       float64
	NameWeight      float64
	CleanNameWeight float64
	GroupNameWeight float64
	MinTermLength   int
}

type CacheConfig struct {
	QuerySize int
	QueryTTL  time.Duration
}

type ServerConfig struct {
	Port string
}

// ErrMissingToken is returned when no Discord token is configured.
var ErrMissingToken = errors.New("discord token is required (set DISCORD_TOKEN)")

// Load reads configuration from an optional app.yaml, a local .env and the
// environment, with defaults for everything except the Discord token.
func Load() (*Config, error) {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("app.env", "development")
	viper.SetDefault("discord.command_prefix", "!price")
	viper.SetDefault("discord.auto_respond", true)
	viper.SetDefault("discord.channels", []string{})
	viper.SetDefault("catalog.base_url", "https://tcgcsv.com/tcgplayer")
	viper.SetDefault("catalog.category_id", 3) // Pokemon
	viper.SetDefault("catalog.timeout", "30s")
	viper.SetDefault("catalog.validity", "6h")
	viper.SetDefault("catalog.max_group_age", "17520h") // 2 years
	viper.SetDefault("catalog.pacing_delay", "100ms")
	viper.SetDefault("matcher.threshold", 0.4)
	viper.SetDefault("matcher.name_weight", 0.7)
	viper.SetDefault("matcher.clean_name_weight", 0.5)
	viper.SetDefault("matcher.group_name_weight", 0.3)
	viper.SetDefault("matcher.min_term_length", 3)
	viper.SetDefault("cache.query_size", 512)
	viper.SetDefault("cache.query_ttl", "10m")
	viper.SetDefault("server.port", "8080")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Config file is optional; env vars and defaults cover everything.
	_ = viper.ReadInConfig()

	cfg := &Config{
		Discord: DiscordConfig{
			Token:             viper.GetString("discord.token"),
			CommandPrefix:     viper.GetString("discord.command_prefix"),
			AutoRespond:       viper.GetBool("discord.auto_respond"),
			MonitoredChannels: viper.GetStringSlice("discord.channels"),
		},
		Catalog: CatalogConfig{
			BaseURL:     viper.GetString("catalog.base_url"),
			CategoryID:  viper.GetInt("catalog.category_id"),
			Timeout:     viper.GetDuration("catalog.timeout"),
			Validity:    viper.GetDuration("catalog.validity"),
			MaxGroupAge: viper.GetDuration("catalog.max_group_age"),
			PacingDelay: viper.GetDuration("catalog.pacing_delay"),
		},
		Matcher: MatcherConfig{
			Threshold:       viper.GetFloat64("matcher.threshold"),
			NameWeight:      viper.GetFloat64("matcher.name_weight"),
			CleanNameWeight: viper.GetFloat64("matcher.clean_name_weight"),
			GroupNameWeight: viper.GetFloat64("matcher.group_name_weight"),
			MinTermLength:   viper.GetInt("matcher.min_term_length"),
		},
		Cache: CacheConfig{
			QuerySize: viper.GetInt("cache.query_size"),
			QueryTTL:  viper.GetDuration("cache.query_ttl"),
		},
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
		},
		Env: viper.GetString("app.env"),
	}

	if cfg.Discord.Token == "" {
		return nil, ErrMissingToken
	}

	return cfg, nil
}
