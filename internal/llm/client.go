package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gdg-garage/trip-planner-api/internal/planner"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

const systemPrompt = "You are a travel planning assistant that answers with JSON only."

type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
}

// Client talks to an OpenAI compatible chat completions endpoint.
type Client struct {
	client  openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewClient(opts Options, logger *zap.Logger) *Client {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		// The planner falls back on failure, retrying here only delays that.
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		client:  openai.NewClient(reqOpts...),
		model:   opts.Model,
		timeout: opts.Timeout,
		logger:  logger.Named("llm"),
	}
}

// Generate returns the completion text for prompt. Failures wrap
// planner.ErrModelUnavailable or planner.ErrModelError.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	started := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: status %d: %s", planner.ErrModelUnavailable, apiErr.StatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("%w: %v", planner.ErrModelUnavailable, err)
	}

	c.logger.Debug("Completion received",
		zap.String("model", c.model),
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("choices", len(resp.Choices)))

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", planner.ErrModelError)
	}
	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return "", fmt.Errorf("%w: completion blocked by content filter", planner.ErrModelError)
	}
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("%w: refused: %s", planner.ErrModelError, choice.Message.Refusal)
	}
	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty completion", planner.ErrModelError)
	}
	return content, nil
}
