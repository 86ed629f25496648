// Package llm provides the completion client used for decision requests.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/ChardPeter/chaddybot-bridge/internal/errors"
	"github.com/ChardPeter/chaddybot-bridge/pkg/utils"
)

// maxBodySnippet caps how much of an upstream error body makes it into
// logs and error chains.
const maxBodySnippet = 200

// Completer issues one completion per decision request. Implementations
// must not retry; the caller owns the request budget.
type Completer interface {
	Complete(ctx context.Context, instruction, marketContext string) (string, error)
	Model() string
}

// ClientConfig holds the completion client settings.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client implements Completer on the OpenAI chat completion API.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a completion client. Without an API key the client
// still constructs, so the bridge can serve liveness checks, but every
// completion fails fast with a missing credential error.
func NewClient(cfg ClientConfig) *Client {
	var client *openai.Client
	if cfg.APIKey != "" {
		oc := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}
		client = openai.NewClientWithConfig(oc)
	}

	return &Client{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends the instruction and market context as a single chat
// completion and returns the raw response text. Exactly one attempt is
// made per call.
func (c *Client) Complete(ctx context.Context, instruction, marketContext string) (string, error) {
	if strings.TrimSpace(marketContext) == "" {
		return "", apperrors.ErrEmptyContext
	}
	if c.client == nil {
		return "", apperrors.ErrMissingCredential
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instruction},
			{Role: openai.ChatMessageRoleUser, Content: marketContext},
		},
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.ErrEmptyCompletion
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", apperrors.ErrEmptyCompletion
	}

	return content, nil
}

// classify maps transport and API failures onto the bridge error set.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ErrDeadlineExceeded
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apperrors.NewUpstreamError(apiErr.HTTPStatusCode, utils.TruncateString(apiErr.Message, maxBodySnippet), err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return apperrors.NewUpstreamError(reqErr.HTTPStatusCode, utils.TruncateString(reqErr.Error(), maxBodySnippet), err)
	}

	return apperrors.NewUpstreamError(0, utils.TruncateString(err.Error(), maxBodySnippet), err)
}
