// Package spotify provides a track search collaborator backed by the
// Spotify Web API.
package spotify

import (
	"context"
	"errors"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrMissingCredentials is returned when the client ID or secret is empty.
var ErrMissingCredentials = errors.New("missing spotify client id or secret")

// DefaultLimit is how many tracks a search asks for.
const DefaultLimit = 20

// Config holds Spotify application credentials.
type Config struct {
	ClientID     string
	ClientSecret string
}

// Validate checks that both credentials are set.
func (c Config) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api   *spotify.Client
	limit int
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{api: api, limit: DefaultLimit}
}

// NewWithCredentials authenticates with the client credentials flow. No user
// is involved, so only catalog endpoints are available.
func NewWithCredentials(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return New(spotify.New(cc.Client(ctx))), nil
}
