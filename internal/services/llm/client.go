package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"reelsmith/internal/services"
)

const (
	defaultHTTPTimeout   = 120 * time.Second
	defaultRetryAttempts = 3
)

// Config captures the runtime settings required to talk to the LLM.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	TimeoutSeconds  int
}

// Client wraps an OpenAI-compatible chat completion API.
type Client struct {
	cfg    Config
	client openai.Client
	schema *ResponseSchema

	httpClient *http.Client
	maxRetries int
}

// ResponseSchema constrains the model output to a JSON schema.
type ResponseSchema struct {
	Name        string
	Description string
	Schema      any
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the SDK retry count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts >= 0 {
			c.maxRetries = attempts
		}
	}
}

// WithResponseSchema requests structured output matching schema.
func WithResponseSchema(schema ResponseSchema) Option {
	return func(c *Client) {
		if schema.Schema != nil {
			c.schema = &schema
		}
	}
}

// NewClient constructs an LLM client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		cfg: Config{
			APIKey:          strings.TrimSpace(cfg.APIKey),
			BaseURL:         strings.TrimSpace(cfg.BaseURL),
			Model:           strings.TrimSpace(cfg.Model),
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
			TimeoutSeconds:  cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: defaultRetryAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}

	requestOpts := []option.RequestOption{
		option.WithAPIKey(c.cfg.APIKey),
		option.WithHTTPClient(c.httpClient),
		option.WithMaxRetries(c.maxRetries),
	}
	if c.cfg.BaseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(c.cfg.BaseURL))
	}
	c.client = openai.NewClient(requestOpts...)
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Generate sends prompt as a single user message and returns the JSON payload
// produced by the model, with code fences and surrounding prose removed.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", services.Wrap(services.ErrValidation, "llm", "generate", "prompt required", nil)
	}
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "llm", "generate", "api key required", nil)
	}

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(c.cfg.Model),
		Temperature: openai.Float(c.cfg.Temperature),
	}
	if c.cfg.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(c.cfg.MaxOutputTokens))
	}
	if c.schema != nil {
		schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
			Name:   c.schema.Name,
			Schema: c.schema.Schema,
			Strict: openai.Bool(true),
		}
		if c.schema.Description != "" {
			schemaParam.Description = openai.String(c.schema.Description)
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classifyError(ctx, err)
	}
	if len(completion.Choices) == 0 {
		return "", services.Wrap(services.ErrTransient, "llm", "generate", "no choices returned", nil)
	}
	choice := completion.Choices[0]
	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		detail := fmt.Sprintf("empty content (finish_reason=%q, refusal=%q)", choice.FinishReason, choice.Message.Refusal)
		return "", services.Wrap(services.ErrTransient, "llm", "generate", detail, nil)
	}
	return SanitizeJSONPayload(content), nil
}

func classifyError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "llm", "generate", "request timed out", err)
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return services.Wrap(services.ErrConfiguration, "llm", "generate", "credentials rejected", err)
		case http.StatusBadRequest, http.StatusNotFound:
			return services.Wrap(services.ErrConfiguration, "llm", "generate", "request rejected", err)
		}
	}
	return services.Wrap(services.ErrTransient, "llm", "generate", "request failed", err)
}
