package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"

	"DailyDigest/internal/config"
	"DailyDigest/internal/ports"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	defaultTimeout = 60 * time.Second
)

var (
	// ErrMissingCredentials means no API key was supplied; enrichment must be skipped.
	ErrMissingCredentials = errors.New("llm api key is not configured")
	// ErrUnknownProvider is returned for providers other than openai and anthropic.
	ErrUnknownProvider = errors.New("unknown llm provider")
	// ErrEmptyResponse is returned when the model produced no choices.
	ErrEmptyResponse = errors.New("llm returned no choices")
)

// Client implements ports.ChatClient on top of a langchaingo model.
type Client struct {
	model    llms.Model
	jsonMode bool
	timeout  time.Duration
	logger   *slog.Logger
}

var _ ports.ChatClient = (*Client)(nil)

// New builds a client for the configured provider.
func New(cfg config.LLMConfig, log *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingCredentials
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}

	var (
		model    llms.Model
		jsonMode bool
		err      error
	)

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOpenAI:
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
			openai.WithHTTPClient(httpClient),
		}
		if cfg.Endpoint != "" {
			opts = append(opts, openai.WithBaseURL(cfg.Endpoint))
		}
		model, err = openai.New(opts...)
		jsonMode = true
	case ProviderAnthropic:
		opts := []anthropic.Option{
			anthropic.WithToken(cfg.APIKey),
			anthropic.WithModel(cfg.Model),
			anthropic.WithHTTPClient(httpClient),
		}
		if cfg.Endpoint != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.Endpoint))
		}
		model, err = anthropic.New(opts...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s model: %w", cfg.Provider, err)
	}

	return NewWithModel(model, jsonMode, timeout, log), nil
}

// NewWithModel wraps an already constructed langchaingo model.
func NewWithModel(model llms.Model, jsonMode bool, timeout time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{model: model, jsonMode: jsonMode, timeout: timeout, logger: log}
}

// Complete sends the prompt and returns the first choice text.
func (c *Client) Complete(ctx context.Context, prompt ports.Prompt) (string, error) {
	if c == nil || c.model == nil {
		return "", ErrMissingCredentials
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	content := make([]llms.MessageContent, 0, 2)
	if system := strings.TrimSpace(prompt.System); system != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}
	content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, prompt.User))

	opts := []llms.CallOption{llms.WithTemperature(0.2)}
	if prompt.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(prompt.MaxTokens))
	}
	if prompt.JSON && c.jsonMode {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := c.model.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	c.logger.Debug("model answered", "chars", len(text))
	return text, nil
}
