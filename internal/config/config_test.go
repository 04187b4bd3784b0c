package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-mood-music/internal/llm"
	"github.com/justestif/go-mood-music/internal/saavn"
	"github.com/justestif/go-mood-music/internal/spotify"
)

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DATABASE_URL", "OPENAI_API_KEY", "SPOTIFY_ID", "SPOTIFY_SECRET"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearCredentialEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, SearchSaavn, cfg.Search.Provider)
	assert.Equal(t, saavn.DefaultBaseURL, cfg.Search.SaavnURL)
	assert.Equal(t, 8, cfg.Search.PrimaryLimit)
	assert.Equal(t, 6, cfg.Search.FallbackLimit)
	assert.Equal(t, CacheMemory, cfg.Cache.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, llm.ProviderNone, cfg.LLM.Provider)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "@every 10m", cfg.Session.PurgeSchedule)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
search:
  provider: spotify
  primary_limit: 5
cache:
  driver: redis
  ttl: 2h
llm:
  provider: ollama
  model: llama3.2
logging:
  pretty: true
`), 0o644))

	t.Setenv("MOODMUSIC_SERVER_ADDR", ":7070")
	t.Setenv("SPOTIFY_ID", "id")
	t.Setenv("SPOTIFY_SECRET", "secret")
	t.Setenv("MOODMUSIC_LLM_TIMEOUT", "3s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr, "env wins over file")
	assert.Equal(t, SearchSpotify, cfg.Search.Provider)
	assert.Equal(t, 5, cfg.Search.PrimaryLimit)
	assert.Equal(t, 6, cfg.Search.FallbackLimit)
	assert.Equal(t, CacheRedis, cfg.Cache.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "llama3.2", cfg.LLM.Model)
	assert.Equal(t, 3*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.Logging.Pretty)
	assert.Equal(t, spotify.Config{ClientID: "id", ClientSecret: "secret"}, cfg.Spotify())
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"unknown search provider", func(c *Config) { c.Search.Provider = "tidal" }, ErrUnknownSearchProvider},
		{"empty saavn url", func(c *Config) { c.Search.SaavnURL = "" }, saavn.ErrMissingBaseURL},
		{"spotify without credentials", func(c *Config) { c.Search.Provider = SearchSpotify }, spotify.ErrMissingCredentials},
		{"unknown cache driver", func(c *Config) { c.Cache.Driver = "memcached" }, ErrUnknownCacheDriver},
		{"redis without addr", func(c *Config) { c.Cache.Driver = CacheRedis; c.Cache.RedisAddr = "" }, ErrMissingRedisAddr},
		{"postgres without url", func(c *Config) { c.Cache.Driver = CachePostgres }, ErrMissingDatabaseURL},
		{"openai without key", func(c *Config) { c.LLM.Provider = llm.ProviderOpenAI }, llm.ErrMissingAPIKey},
		{"unknown llm", func(c *Config) { c.LLM.Provider = "bard" }, llm.ErrUnknownProvider},
		{"zero session ttl", func(c *Config) { c.Session.TTL = 0 }, ErrInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearCredentialEnv(t)

			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}
