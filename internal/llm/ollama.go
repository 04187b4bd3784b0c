package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/justestif/go-mood-music/internal/analyzer"
)

// Ollama defaults.
const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3.2"
)

// Ollama talks to a local Ollama API.
type Ollama struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

var _ analyzer.Generator = (*Ollama)(nil)

// generateRequest is the Ollama /api/generate request body.
type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Format  string         `json:"format,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

// generateResponse is the Ollama /api/generate response.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllama creates an Ollama generator.
func NewOllama(cfg Config) *Ollama {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultOllamaURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second // first call loads the model
	}
	return &Ollama{
		baseURL:    strings.TrimRight(base, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Generate sends prompt in JSON mode and returns the model response.
func (c *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	body := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		System: instructions,
		Format: "json",
		Stream: false,
		Options: map[string]any{
			"temperature": 0.3,
			"num_predict": 400,
		},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	out := strings.TrimSpace(result.Response)
	if out == "" {
		return "", ErrEmptyOutput
	}
	return out, nil
}

// Available checks if Ollama is reachable.
func (c *Ollama) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Model returns the configured model name.
func (c *Ollama) Model() string {
	return c.model
}
