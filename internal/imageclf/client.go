// Package imageclf is a client for the facial-expression classifier that
// labels a still image with an emotion.
package imageclf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/justestif/go-mood-music/internal/lexicon"
)

// Defaults.
const (
	DefaultBaseURL = "https://emotioncnn-satya.onrender.com"
	DefaultTimeout = 20 * time.Second
)

// MaxImageSize caps uploads forwarded to the classifier.
const MaxImageSize = 8 << 20

// Sentinel errors.
var (
	// ErrImageTooLarge is returned for images over MaxImageSize.
	ErrImageTooLarge = errors.New("image too large")

	// ErrClassifier is returned for non-2xx classifier responses.
	ErrClassifier = errors.New("classifier error")
)

// Config holds classifier configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client posts images to the classifier.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a classifier client.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type detectResponse struct {
	Emotion string `json:"emotion"`
}

// Classify uploads image as the multipart field "image" and returns the
// detected emotion. A missing or unknown label yields Neutral.
func (c *Client) Classify(ctx context.Context, image io.Reader, filename string) (lexicon.Emotion, error) {
	if filename == "" {
		filename = "capture.jpg"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	n, err := io.Copy(part, io.LimitReader(image, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	if n > MaxImageSize {
		return "", ErrImageTooLarge
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect_emotion", &buf)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrClassifier, resp.StatusCode)
	}

	var out detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("parsing classifier response: %w", err)
	}
	return lexicon.Normalize(out.Emotion), nil
}
