// Package llm provides generative-language collaborators for the mood
// analyzer: a hosted OpenAI model and a local Ollama model.
package llm

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/justestif/go-mood-music/internal/analyzer"
)

// Providers.
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Sentinel errors.
var (
	// ErrMissingAPIKey is returned when the OpenAI provider has no API key.
	ErrMissingAPIKey = errors.New("missing OpenAI API key")

	// ErrUnknownProvider is returned for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown llm provider")

	// ErrEmptyOutput is returned when the model produced no text.
	ErrEmptyOutput = errors.New("model returned no output")
)

// Config selects and configures a provider.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// Validate checks the configuration for the selected provider.
func (c Config) Validate() error {
	switch c.Provider {
	case "", ProviderNone, ProviderOllama:
		return nil
	case ProviderOpenAI:
		if c.APIKey == "" {
			return ErrMissingAPIKey
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}
}

// New builds the configured generator. The none provider yields a nil
// generator, which makes the analyzer always fall back.
func New(cfg Config, logger zerolog.Logger) (analyzer.Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAI(cfg, WithOpenAILogger(logger)), nil
	case ProviderOllama:
		return NewOllama(cfg), nil
	default:
		return nil, nil
	}
}
