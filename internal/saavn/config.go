// Package saavn provides a JioSaavn song search client.
package saavn

import (
	"errors"
	"time"
)

// DefaultBaseURL is the public JioSaavn API mirror.
const DefaultBaseURL = "https://saavn.dev"

// DefaultTimeout bounds a single HTTP request.
const DefaultTimeout = 10 * time.Second

// ErrMissingBaseURL is returned when the base URL is empty.
var ErrMissingBaseURL = errors.New("missing saavn base URL")

// Config holds JioSaavn API configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	return nil
}
