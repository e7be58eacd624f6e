package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/matzehuels/conceptmap/pkg/cache"
	apperr "github.com/matzehuels/conceptmap/pkg/errors"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-4o-mini"

const systemPrompt = "Eres un asistente de estudio que construye mapas conceptuales claros y jerárquicos. Respondes únicamente con JSON."

// OpenAICompleter completes prompts with an OpenAI-compatible chat
// completion API, asking for a JSON object reply.
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIOption configures an [OpenAICompleter].
type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	model       string
	baseURL     string
	temperature float32
	httpClient  *http.Client
}

// WithModel selects the chat model. Empty keeps [DefaultModel].
func WithModel(model string) OpenAIOption {
	return func(c *openAIConfig) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL points the client at another OpenAI-compatible endpoint.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) { c.baseURL = url }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) OpenAIOption {
	return func(c *openAIConfig) { c.temperature = t }
}

// WithHTTPClient replaces the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *openAIConfig) { c.httpClient = hc }
}

// NewOpenAICompleter creates a completer authenticated with apiKey.
func NewOpenAICompleter(apiKey string, opts ...OpenAIOption) (*OpenAICompleter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "OpenAI API key is not set (OPENAI_API_KEY)")
	}
	cfg := openAIConfig{model: DefaultModel, temperature: 0.2}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.baseURL != "" {
		if err := apperr.ValidateURL(cfg.baseURL); err != nil {
			return nil, err
		}
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.baseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.baseURL, "/")
	}
	if cfg.httpClient != nil {
		clientCfg.HTTPClient = cfg.httpClient
	}
	return &OpenAICompleter{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.model,
		temperature: cfg.temperature,
	}, nil
}

// Model returns the configured chat model.
func (c *OpenAICompleter) Model() string { return c.model }

// Complete sends prompt as a user message and returns the first choice.
//
// Rate limiting and server errors are returned as retryable so the
// generator backs off and tries again.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", wrapAPIError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", apperr.New(apperr.ErrCodeGeneration, "model returned an empty reply")
	}
	return resp.Choices[0].Message.Content, nil
}

func wrapAPIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == http.StatusTooManyRequests:
		return cache.Retryable(&apperr.RateLimitedError{Message: err.Error()})
	case status >= 500 || status == 0:
		return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	default:
		return fmt.Errorf("chat completion: %w", err)
	}
}

// classify maps completion failures onto coded errors.
func classify(err error) error {
	switch {
	case apperr.GetCode(err) != "":
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Wrap(apperr.ErrCodeTimeout, err, "generation timed out")
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, cache.ErrNetwork):
		return apperr.Wrap(apperr.ErrCodeNetwork, err, "language model unreachable")
	default:
		return apperr.Wrap(apperr.ErrCodeGeneration, err, "generation failed")
	}
}
