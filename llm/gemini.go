// Google Gemini Completer implementation using official google.golang.org/genai SDK.
//
// Information Hiding:
// - API authentication and client creation
// - Request/response format for Gemini API
// - Gemini seeds are 32-bit; Request.Seed is truncated

package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider implements the Completer interface for Google Gemini.
type GeminiProvider struct {
	client  *genai.Client
	initErr error // Stores client initialization error for deferred reporting
}

// NewGeminiProvider creates a new Gemini provider.
// If client initialization fails, the error is stored and returned on first use.
func NewGeminiProvider(apiKey, baseURL string) *GeminiProvider {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(context.Background(), cfg)
	if err != nil {
		return &GeminiProvider{initErr: fmt.Errorf("failed to initialize Gemini client: %w", err)}
	}
	return &GeminiProvider{client: client}
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Complete sends all segments as parts of a single user content.
func (p *GeminiProvider) Complete(ctx context.Context, req Request) (Answer, error) {
	if p.initErr != nil {
		return Answer{}, p.initErr
	}
	if p.client == nil {
		return Answer{}, fmt.Errorf("gemini client not initialized")
	}
	if len(req.Messages) == 0 {
		return Answer{}, fmt.Errorf("gemini: no message segments")
	}

	content := genai.NewContentFromText(req.Messages[0].Content, genai.RoleUser)
	for _, msg := range req.Messages[1:] {
		content.Parts = append(content.Parts, genai.NewPartFromText(msg.Content))
	}

	config := &genai.GenerateContentConfig{
		Seed: genai.Ptr(int32(req.Seed)),
	}
	if req.MaxCompletionTokens != nil {
		config.MaxOutputTokens = int32(*req.MaxCompletionTokens)
	}

	response, err := p.client.Models.GenerateContent(ctx, req.Model, []*genai.Content{content}, config)
	if err != nil {
		return Answer{}, fmt.Errorf("%w: gemini generate content: %w", ErrTransport, err)
	}

	text := response.Text()
	if text == "" {
		raw, _ := json.Marshal(response)
		return unexpectedAnswer(string(raw)), nil
	}

	return Answer{Text: text}, nil
}

// Verify GeminiProvider implements Completer
var _ Completer = (*GeminiProvider)(nil)
