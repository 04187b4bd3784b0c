package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/rs/zerolog"

	"github.com/justestif/go-mood-music/internal/analyzer"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

const instructions = "You are an empathetic music therapist. Reply with a single JSON object only."

// replySchema constrains the model to the analyzer's reply shape.
var replySchema = GenerateSchema[analyzer.Reply]()

// OpenAI generates mood analyses with the Responses API.
type OpenAI struct {
	client    openai.Client
	model     string
	waits     []time.Duration
	maxOutput int64
	logger    zerolog.Logger
}

var _ analyzer.Generator = (*OpenAI)(nil)

// OpenAIOption configures an OpenAI generator.
type OpenAIOption func(*OpenAI)

// WithOpenAILogger sets the logger.
func WithOpenAILogger(l zerolog.Logger) OpenAIOption {
	return func(o *OpenAI) {
		o.logger = l
	}
}

// WithRetryWaits replaces the waits between attempts. Their count bounds
// the number of retries.
func WithRetryWaits(waits ...time.Duration) OpenAIOption {
	return func(o *OpenAI) {
		o.waits = waits
	}
}

// NewOpenAI creates an OpenAI generator. The SDK's own retries are disabled
// in favor of the bounded, context-aware retry in Generate.
func NewOpenAI(cfg Config, opts ...OpenAIOption) *OpenAI {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.Timeout))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	o := &OpenAI{
		client:    openai.NewClient(reqOpts...),
		model:     model,
		waits:     []time.Duration{2 * time.Second, 5 * time.Second},
		maxOutput: 600,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate sends prompt and returns the model's text output.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(o.maxOutput),
		Instructions:    openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "MoodAnalysis",
					Schema:      replySchema,
					Strict:      openai.Bool(true),
					Description: openai.String("Mood analysis JSON"),
					Type:        "json_schema",
				},
			},
		},
	}

	resp, err := o.callWithRetry(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai responses: %w", err)
	}

	out := strings.TrimSpace(resp.OutputText())
	if out == "" {
		return "", ErrEmptyOutput
	}
	return out, nil
}

func (o *OpenAI) callWithRetry(ctx context.Context, params responses.ResponseNewParams) (*responses.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := o.client.Responses.New(ctx, params)
		if err == nil {
			return resp, nil
		}
		if attempt >= len(o.waits) || !retryable(err) {
			return nil, err
		}

		o.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("openai call failed, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(o.waits[attempt]):
		}
	}
}

// retryable reports rate-limit and server errors.
func retryable(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return false
}
