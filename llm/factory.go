// Completer factory keyed by provider.
//
// Quick Start:
//
//	// Credentials resolved by the caller (see config.CredentialsFor)
//	c, err := llm.New(config.Credentials{Provider: "openai", APIKey: key})
//
//	// Or pick the provider explicitly
//	c, err := llm.ProviderDeepSeek.New(key, "")

package llm

import (
	"fmt"
	"strings"

	"github.com/richinex/dnclgen/config"
)

// ProviderType represents supported LLM providers.
type ProviderType int

const (
	// ProviderOpenAI is the OpenAI provider (GPT models).
	ProviderOpenAI ProviderType = iota
	// ProviderDeepSeek is the DeepSeek provider (OpenAI-compatible API).
	ProviderDeepSeek
	// ProviderAnthropic is the Anthropic provider (Claude models).
	ProviderAnthropic
	// ProviderGemini is the Google Gemini provider.
	ProviderGemini
)

// String returns the string representation of the provider type.
func (p ProviderType) String() string {
	switch p {
	case ProviderOpenAI:
		return "openai"
	case ProviderDeepSeek:
		return "deepseek"
	case ProviderAnthropic:
		return "anthropic"
	case ProviderGemini:
		return "gemini"
	default:
		return "unknown"
	}
}

// DefaultModel returns the default model for this provider.
func (p ProviderType) DefaultModel() string {
	switch p {
	case ProviderOpenAI:
		return ModelOpenAIGPT4o
	case ProviderDeepSeek:
		return ModelDeepSeekChat
	case ProviderAnthropic:
		return ModelAnthropicClaudeSonnet4
	case ProviderGemini:
		return ModelGeminiFlash25
	default:
		return ""
	}
}

// ParseProviderType parses a provider from string (case-insensitive).
func ParseProviderType(s string) (ProviderType, error) {
	switch strings.ToLower(s) {
	case "", "openai", "gpt":
		return ProviderOpenAI, nil
	case "deepseek":
		return ProviderDeepSeek, nil
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	case "gemini", "google":
		return ProviderGemini, nil
	default:
		return 0, fmt.Errorf("unknown provider: %s", s)
	}
}

// New creates a Completer for this provider.
func (p ProviderType) New(apiKey, baseURL string) (Completer, error) {
	switch p {
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey, baseURL), nil
	case ProviderDeepSeek:
		return NewDeepSeekClient(apiKey, baseURL), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(apiKey, baseURL), nil
	case ProviderGemini:
		return NewGeminiProvider(apiKey, baseURL), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %v", p)
	}
}

// New creates a Completer from resolved credentials.
func New(creds config.Credentials) (Completer, error) {
	p, err := ParseProviderType(creds.Provider)
	if err != nil {
		return nil, err
	}
	return p.New(creds.APIKey, creds.BaseURL)
}

// Model identifier constants.
const (
	// ModelOpenAIGPT4o is the default translation model.
	ModelOpenAIGPT4o = "gpt-4o"
	// ModelDeepSeekChat is DeepSeek's general chat model.
	ModelDeepSeekChat = "deepseek-chat"
	// ModelAnthropicClaudeSonnet4 is Claude Sonnet 4.
	ModelAnthropicClaudeSonnet4 = "claude-sonnet-4-20250514"
	// ModelGeminiFlash25 is Gemini 2.5 Flash.
	ModelGeminiFlash25 = "gemini-2.5-flash"
)
