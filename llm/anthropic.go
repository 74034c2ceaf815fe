// Anthropic Completer implementation using official anthropic-sdk-go.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for Anthropic Messages API
// - The Messages API has no seed parameter; Request.Seed is not sent

package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// defaultAnthropicMaxTokens is used when the request sets no ceiling;
// the Messages API requires one.
const defaultAnthropicMaxTokens = 4096

// AnthropicProvider implements the Completer interface for Anthropic Claude.
type AnthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey, baseURL string) *AnthropicProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicProvider{client: anthropic.NewClient(opts...)}
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Complete sends all segments as content blocks of a single user message.
func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (Answer, error) {
	maxTokens := int64(defaultAnthropicMaxTokens)
	if req.MaxCompletionTokens != nil {
		maxTokens = int64(*req.MaxCompletionTokens)
	}

	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: maxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return Answer{}, fmt.Errorf("%w: anthropic messages: %w", ErrTransport, err)
	}

	content := ""
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			content += variant.Text
		}
	}
	if content == "" {
		return unexpectedAnswer(message.RawJSON()), nil
	}

	return Answer{Text: content}, nil
}

// Verify AnthropicProvider implements Completer
var _ Completer = (*AnthropicProvider)(nil)
