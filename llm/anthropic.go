package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/use-agent/facecards/models"
)

// AnthropicCompleter calls the Claude Messages API.
type AnthropicCompleter struct {
	client anthropic.Client
	model  string
}

// NewAnthropicCompleter creates a completer for model. Extra options (base
// URL, HTTP client) are passed to the SDK.
func NewAnthropicCompleter(apiKey, model string, opts ...option.RequestOption) *AnthropicCompleter {
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	return &AnthropicCompleter{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// Complete implements Completer.
func (a *AnthropicCompleter) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", classifyAnthropicError(err)
	}

	var reply strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			reply.WriteString(block.Text)
		}
	}
	if reply.Len() == 0 {
		return "", models.NewScrapeError(models.ErrCodeLLMFailure, "model returned no text", nil)
	}
	return reply.String(), nil
}

func classifyAnthropicError(err error) *models.ScrapeError {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return models.NewScrapeError(models.ErrCodeLLMAuthFailure, "Anthropic rejected the API key", err)
		case http.StatusTooManyRequests:
			return models.NewScrapeError(models.ErrCodeLLMRateLimited, "Anthropic rate limit reached", err)
		}
	}
	return models.NewScrapeError(models.ErrCodeLLMFailure, "Anthropic request failed", err)
}
