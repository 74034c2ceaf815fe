// OpenAI-compatible chat completion client.
//
// Information Hiding:
// - Endpoint path and bearer authentication
// - Request body layout for the Chat Completions API
// - Tolerant reply parsing: only choices[0].message.content is read

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	openaiBaseURL   = "https://api.openai.com/v1"
	deepseekBaseURL = "https://api.deepseek.com/v1"
)

// maxErrorBody bounds how much of an error reply is copied into an error.
const maxErrorBody = 512

// chatRequest is the wire body. Seed is always sent; the token ceiling
// only when set.
type chatRequest struct {
	Model               string    `json:"model"`
	Messages            []Message `json:"messages"`
	Seed                int64     `json:"seed"`
	MaxCompletionTokens *uint32   `json:"max_completion_tokens,omitempty"`
}

// ChatClient implements Completer for OpenAI and OpenAI-compatible services.
type ChatClient struct {
	name string
	http *resty.Client
}

// NewChatClient creates a client for the chat completion API at baseURL.
func NewChatClient(name, baseURL, apiKey string) *ChatClient {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &ChatClient{name: name, http: c}
}

// NewOpenAIClient creates a client for api.openai.com (or baseURL when set).
func NewOpenAIClient(apiKey, baseURL string) *ChatClient {
	if baseURL == "" {
		baseURL = openaiBaseURL
	}
	return NewChatClient("openai", baseURL, apiKey)
}

// NewDeepSeekClient creates a client for the DeepSeek OpenAI-compatible API.
func NewDeepSeekClient(apiKey, baseURL string) *ChatClient {
	if baseURL == "" {
		baseURL = deepseekBaseURL
	}
	return NewChatClient("deepseek", baseURL, apiKey)
}

// Name returns the provider name.
func (c *ChatClient) Name() string {
	return c.name
}

// Complete sends a chat completion request.
func (c *ChatClient) Complete(ctx context.Context, req Request) (Answer, error) {
	body := chatRequest{
		Model:               req.Model,
		Messages:            req.Messages,
		Seed:                req.Seed,
		MaxCompletionTokens: req.MaxCompletionTokens,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return Answer{}, fmt.Errorf("%w: %s chat completion: %w", ErrTransport, c.name, err)
	}
	// An error status with a JSON body is reported like any other reply
	// without content; only unparsable error bodies are hard failures.
	if resp.IsError() && !gjson.ValidBytes(resp.Body()) {
		return Answer{}, fmt.Errorf("%w: %s chat completion: %s; body: %s",
			ErrTransport, c.name, resp.Status(), truncate(resp.String(), maxErrorBody))
	}

	return parseChatReply(resp.Body())
}

// parseChatReply extracts choices[0].message.content from a reply body.
func parseChatReply(raw []byte) (Answer, error) {
	if !gjson.ValidBytes(raw) {
		return Answer{}, fmt.Errorf("%w: reply is not valid JSON: %q", ErrTransport, truncate(string(raw), maxErrorBody))
	}

	content := gjson.GetBytes(raw, "choices.0.message.content")
	if content.Type != gjson.String {
		return unexpectedAnswer(string(raw)), nil
	}
	return Answer{Text: content.String()}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Verify ChatClient implements Completer
var _ Completer = (*ChatClient)(nil)
