package saavn

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/justestif/go-mood-music/internal/search"
)

const userAgent = "go-mood-music/1.0"

// Sentinel errors.
var (
	// ErrRateLimited is returned when the API rate limit is exceeded after retries.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrServer is returned for 5xx responses that persisted through retries.
	ErrServer = errors.New("server error")
)

// Client searches songs on JioSaavn.
type Client struct {
	httpClient *http.Client
	baseURL    string
	delays     []time.Duration
	logger     zerolog.Logger
}

var _ search.Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new JioSaavn client from the provided configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(base, "/"),
		delays:     []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns the raw song records for query. A response without a
// usable result list yields an empty slice and no error.
func (c *Client) Search(ctx context.Context, query string) ([]search.Record, error) {
	params := url.Values{"query": {query}}
	reqURL := c.baseURL + "/api/search/songs?" + params.Encode()

	body, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("searching songs: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	return decodeResults(resp.Data.Results), nil
}

// decodeResults keeps the object entries of a result list and drops the rest.
func decodeResults(raw json.RawMessage) []search.Record {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return []search.Record{}
	}

	records := make([]search.Record, 0, len(items))
	for _, item := range items {
		dec := json.NewDecoder(bytes.NewReader(item))
		dec.UseNumber()
		var rec search.Record
		if err := dec.Decode(&rec); err != nil || rec == nil {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// doRequest performs an HTTP GET request with retry on rate limit and
// server errors. Retries up to 3 times with exponential backoff (1s, 2s, 4s).
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= len(c.delays); attempt++ {
		if attempt > 0 {
			c.logger.Debug().Err(lastErr).Int("attempt", attempt).Msg("retrying saavn request")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.delays[attempt-1]):
			}
		}

		body, err := c.doSingleRequest(ctx, reqURL)
		if err == nil {
			return body, nil
		}

		if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServer) {
			lastErr = err
			continue
		}

		return nil, err
	}

	return nil, lastErr
}

// doSingleRequest performs a single HTTP request.
func (c *Client) doSingleRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
