// Package config loads process configuration from defaults, an optional
// YAML file and MOODMUSIC_* environment variables, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/justestif/go-mood-music/internal/cache"
	"github.com/justestif/go-mood-music/internal/imageclf"
	"github.com/justestif/go-mood-music/internal/llm"
	"github.com/justestif/go-mood-music/internal/logging"
	"github.com/justestif/go-mood-music/internal/saavn"
	"github.com/justestif/go-mood-music/internal/search"
	"github.com/justestif/go-mood-music/internal/spotify"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MOODMUSIC"

// Search providers.
const (
	SearchSaavn   = "saavn"
	SearchSpotify = "spotify"
)

// Cache drivers.
const (
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
)

// Sentinel errors.
var (
	ErrUnknownSearchProvider = errors.New("unknown search provider")
	ErrUnknownCacheDriver    = errors.New("unknown cache driver")
	ErrMissingRedisAddr      = errors.New("missing redis address")
	ErrMissingDatabaseURL    = errors.New("missing database URL")
	ErrInvalidDuration       = errors.New("duration must be positive")
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Search     SearchConfig     `mapstructure:"search"`
	Cache      CacheConfig      `mapstructure:"cache"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Logging    logging.Config   `mapstructure:"logging"`
	Session    SessionConfig    `mapstructure:"session"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SearchConfig configures the track search collaborator.
type SearchConfig struct {
	Provider            string        `mapstructure:"provider"` // saavn or spotify
	SaavnURL            string        `mapstructure:"saavn_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	SpotifyClientID     string        `mapstructure:"spotify_client_id"`
	SpotifyClientSecret string        `mapstructure:"spotify_client_secret"`
	PrimaryLimit        int           `mapstructure:"primary_limit"`
	FallbackLimit       int           `mapstructure:"fallback_limit"`
}

// CacheConfig configures the search result store.
type CacheConfig struct {
	Driver        string        `mapstructure:"driver"` // memory, redis or postgres
	TTL           time.Duration `mapstructure:"ttl"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	DatabaseURL   string        `mapstructure:"database_url"`
	PurgeSchedule string        `mapstructure:"purge_schedule"`
}

// LLMConfig configures the generative collaborator.
type LLMConfig struct {
	Provider string        `mapstructure:"provider"` // openai, ollama or none
	Model    string        `mapstructure:"model"`
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ClassifierConfig configures the image classifier collaborator.
type ClassifierConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig configures the conversation session registry.
type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	PurgeSchedule string        `mapstructure:"purge_schedule"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("search.provider", SearchSaavn)
	v.SetDefault("search.saavn_url", saavn.DefaultBaseURL)
	v.SetDefault("search.timeout", saavn.DefaultTimeout)
	v.SetDefault("search.spotify_client_id", "")
	v.SetDefault("search.spotify_client_secret", "")
	v.SetDefault("search.primary_limit", search.DefaultPrimaryLimit)
	v.SetDefault("search.fallback_limit", search.DefaultFallbackLimit)

	v.SetDefault("cache.driver", CacheMemory)
	v.SetDefault("cache.ttl", search.DefaultCacheTTL)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.database_url", "")
	v.SetDefault("cache.purge_schedule", "@hourly")

	v.SetDefault("llm.provider", llm.ProviderNone)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", 15*time.Second)

	v.SetDefault("classifier.base_url", imageclf.DefaultBaseURL)
	v.SetDefault("classifier.timeout", imageclf.DefaultTimeout)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)

	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.purge_schedule", "@every 10m")
}

// Load reads configuration. path names an optional YAML file; an empty path
// skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Well-known credential variables
	_ = v.BindEnv("search.spotify_client_id", EnvPrefix+"_SEARCH_SPOTIFY_CLIENT_ID", "SPOTIFY_ID")
	_ = v.BindEnv("search.spotify_client_secret", EnvPrefix+"_SEARCH_SPOTIFY_CLIENT_SECRET", "SPOTIFY_SECRET")
	_ = v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("cache.database_url", EnvPrefix+"_CACHE_DATABASE_URL", "DATABASE_URL")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the selected providers have what they need.
func (c *Config) Validate() error {
	switch c.Search.Provider {
	case SearchSaavn:
		if err := c.Saavn().Validate(); err != nil {
			return err
		}
	case SearchSpotify:
		if err := c.Spotify().Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSearchProvider, c.Search.Provider)
	}

	switch c.Cache.Driver {
	case CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return ErrMissingRedisAddr
		}
	case CachePostgres:
		if c.Cache.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCacheDriver, c.Cache.Driver)
	}

	if err := c.LLMClient().Validate(); err != nil {
		return err
	}

	for name, d := range map[string]time.Duration{
		"cache.ttl":   c.Cache.TTL,
		"session.ttl": c.Session.TTL,
		"llm.timeout": c.LLM.Timeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s: %w", name, ErrInvalidDuration)
		}
	}
	return nil
}

// Saavn returns the JioSaavn client configuration.
func (c *Config) Saavn() saavn.Config {
	return saavn.Config{BaseURL: c.Search.SaavnURL, Timeout: c.Search.Timeout}
}

// Spotify returns the Spotify client configuration.
func (c *Config) Spotify() spotify.Config {
	return spotify.Config{ClientID: c.Search.SpotifyClientID, ClientSecret: c.Search.SpotifyClientSecret}
}

// LLMClient returns the generative collaborator configuration.
func (c *Config) LLMClient() llm.Config {
	return llm.Config{
		Provider: c.LLM.Provider,
		Model:    c.LLM.Model,
		APIKey:   c.LLM.APIKey,
		BaseURL:  c.LLM.BaseURL,
		Timeout:  c.LLM.Timeout,
	}
}

// Redis returns the Redis store configuration.
func (c *Config) Redis() cache.RedisConfig {
	return cache.RedisConfig{
		Addr:     c.Cache.RedisAddr,
		Password: c.Cache.RedisPassword,
		DB:       c.Cache.RedisDB,
		TTL:      c.Cache.TTL,
	}
}

// ImageClassifier returns the image classifier configuration.
func (c *Config) ImageClassifier() imageclf.Config {
	return imageclf.Config{BaseURL: c.Classifier.BaseURL, Timeout: c.Classifier.Timeout}
}
