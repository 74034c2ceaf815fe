// Model availability catalog.
//
// The list of model ids offered by the service is fetched once and kept in
// <cache dir>/available_models.toml. It is refreshed only when that file is
// absent.

package llm

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	toml "github.com/pelletier/go-toml/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/richinex/dnclgen/config"
)

// ModelsFileName is the catalog file inside the cache directory.
const ModelsFileName = "available_models.toml"

// ErrModelUnavailable is returned by Check for unlisted models.
var ErrModelUnavailable = errors.New("model is not available")

// ModelLister lists the model ids a service currently exposes.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// OpenAIModelLister lists models through the OpenAI /models endpoint.
type OpenAIModelLister struct {
	client *openai.Client
}

// NewOpenAIModelLister creates a lister for api.openai.com or a compatible baseURL.
func NewOpenAIModelLister(apiKey, baseURL string) *OpenAIModelLister {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIModelLister{client: openai.NewClientWithConfig(cfg)}
}

// ListModels returns the ids in data[].id.
func (l *OpenAIModelLister) ListModels(ctx context.Context) ([]string, error) {
	list, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list models: %w", ErrTransport, err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// NewModelLister returns a lister for providers with an OpenAI-style /models endpoint.
func NewModelLister(creds config.Credentials) (ModelLister, error) {
	p, err := ParseProviderType(creds.Provider)
	if err != nil {
		return nil, err
	}

	switch p {
	case ProviderOpenAI:
		base := creds.BaseURL
		if base == "" {
			base = openaiBaseURL
		}
		return NewOpenAIModelLister(creds.APIKey, base), nil
	case ProviderDeepSeek:
		base := creds.BaseURL
		if base == "" {
			base = deepseekBaseURL
		}
		return NewOpenAIModelLister(creds.APIKey, base), nil
	default:
		return nil, fmt.Errorf("model listing not supported for provider %s", p)
	}
}

type modelsFile struct {
	AvailableModels []string `toml:"available_models"`
}

// Catalog caches a ModelLister's result on disk.
type Catalog struct {
	lister ModelLister
	path   string
}

// NewCatalog creates a catalog stored under cacheDir.
func NewCatalog(lister ModelLister, cacheDir string) *Catalog {
	return &Catalog{lister: lister, path: filepath.Join(cacheDir, ModelsFileName)}
}

// Path returns the catalog file location.
func (c *Catalog) Path() string {
	return c.path
}

// Available returns the cached model list, fetching and saving it when absent.
func (c *Catalog) Available(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(c.path)
	if err == nil {
		var cached modelsFile
		if err := toml.Unmarshal(data, &cached); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", c.path, err)
		}
		return cached.AvailableModels, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", c.path, err)
	}

	models, err := c.lister.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	out, err := toml.Marshal(modelsFile{AvailableModels: models})
	if err != nil {
		return nil, fmt.Errorf("failed to encode model list: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(c.path, out, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", c.path, err)
	}

	return models, nil
}

// Check returns ErrModelUnavailable when model is not in the catalog.
func (c *Catalog) Check(ctx context.Context, model string) error {
	models, err := c.Available(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(models, model) {
		return fmt.Errorf("model %s: %w", model, ErrModelUnavailable)
	}
	return nil
}
