// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider-specific configuration lookup
//
// The translation core never reads the environment itself; callers resolve
// Credentials here and pass them in.

package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
)

// ErrMissingAPIKey is returned when a provider's API key variable is unset.
var ErrMissingAPIKey = errors.New("API key not set")

// Default values used when the environment does not override them.
const (
	DefaultProvider     = "openai"
	DefaultCacheDir     = "gpt_responses"
	DefaultCacheBackend = "file"
)

// Settings holds all application configuration.
type Settings struct {
	LLM   LLMConfig
	Cache CacheConfig
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider            string
	Model               string // Empty means the request default
	BaseURL             string
	Target              string
	MaxCompletionTokens *uint32
}

// CacheConfig holds response cache configuration.
type CacheConfig struct {
	Dir     string
	Backend string // "file" or "sqlite"
}

// Credentials authenticate calls to one provider.
type Credentials struct {
	Provider string
	APIKey   string
	BaseURL  string
}

// CredentialsFunc resolves credentials for a provider at call time.
type CredentialsFunc func(provider string) (Credentials, error)

// StaticCredentials returns a CredentialsFunc that always yields creds.
func StaticCredentials(creds Credentials) CredentialsFunc {
	return func(string) (Credentials, error) {
		return creds, nil
	}
}

// providerInfo holds configuration for a specific LLM provider.
type providerInfo struct {
	modelEnv   string
	apiKeyEnv  string
	baseURLEnv string
}

// Supported providers and their configuration.
var providers = map[string]providerInfo{
	"openai":    {"OPENAI_MODEL", "OPENAI_API_KEY", "OPENAI_BASE_URL"},
	"deepseek":  {"DEEPSEEK_MODEL", "DEEPSEEK_API_KEY", "DEEPSEEK_BASE_URL"},
	"anthropic": {"ANTHROPIC_MODEL", "ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL"},
	"gemini":    {"GEMINI_MODEL", "GEMINI_API_KEY", "GEMINI_BASE_URL"},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

// New creates settings for the specified provider, loading values from environment variables.
// An empty provider falls back to DNCL_PROVIDER and then to openai.
// Returns an error if the provider is unknown or environment variables contain invalid values.
func New(provider string) (Settings, error) {
	if provider == "" {
		provider = getEnv("DNCL_PROVIDER", DefaultProvider)
	}
	provider = NormalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return Settings{}, err
	}

	maxTokens, err := getEnvOptionalUint32("DNCL_MAX_COMPLETION_TOKENS")
	if err != nil {
		return Settings{}, err
	}

	backend := strings.ToLower(getEnv("DNCL_CACHE_BACKEND", DefaultCacheBackend))
	if backend != "file" && backend != "sqlite" {
		return Settings{}, fmt.Errorf("invalid value for DNCL_CACHE_BACKEND: %q", backend)
	}

	return Settings{
		LLM: LLMConfig{
			Provider:            provider,
			Model:               os.Getenv(info.modelEnv),
			BaseURL:             os.Getenv(info.baseURLEnv),
			Target:              os.Getenv("DNCL_TARGET"),
			MaxCompletionTokens: maxTokens,
		},
		Cache: CacheConfig{
			Dir:     getEnv("DNCL_CACHE_DIR", DefaultCacheDir),
			Backend: backend,
		},
	}, nil
}

// NormalizeProvider converts provider aliases to canonical names.
func NormalizeProvider(provider string) string {
	provider = strings.ToLower(provider)
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// CredentialsFor returns the credentials for a provider from environment variables.
func CredentialsFor(provider string) (Credentials, error) {
	provider = NormalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return Credentials{}, err
	}

	key := os.Getenv(info.apiKeyEnv)
	if key == "" {
		return Credentials{}, fmt.Errorf("%s environment variable not set: %w", info.apiKeyEnv, ErrMissingAPIKey)
	}
	return Credentials{
		Provider: provider,
		APIKey:   key,
		BaseURL:  os.Getenv(info.baseURLEnv),
	}, nil
}

// SupportedProviders returns the supported provider names in sorted order.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	slices.Sort(result)
	return result
}

// Environment variable helpers with proper error handling

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvOptionalUint32(key string) (*uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return nil, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	v := uint32(i)
	return &v, nil
}
