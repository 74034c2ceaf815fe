package transpile

import (
	"fmt"
	"os"

	"github.com/richinex/dnclgen/internal/prompt"
	"github.com/richinex/dnclgen/model"
)

// Options describes one translation. Exactly one of Text or File supplies
// the DNCL source; File wins when both are set.
type Options struct {
	Text                string
	File                string
	Model               string // Empty means the provider default
	Seed                *int64 // Nil means the fingerprint of the fenced source
	MaxCompletionTokens *uint32
	Target              string // Empty means "go"
	Provider            string // Empty means the Transpiler's provider
}

// source returns the raw DNCL text named by opts.
func (o Options) source() (string, error) {
	if o.File == "" {
		return o.Text, nil
	}
	data, err := os.ReadFile(o.File)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", o.File, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%s: %w", o.File, ErrEmptyFile)
	}
	return string(data), nil
}

// BuildRequest normalizes opts into a request. defaultModel applies when
// opts.Model is empty. No network or credential access happens here, so
// the cache key is known up front.
func BuildRequest(opts Options, defaultModel string) (model.TranslationRequest, error) {
	target, err := model.LookupTarget(opts.Target)
	if err != nil {
		return model.TranslationRequest{}, err
	}

	raw, err := opts.source()
	if err != nil {
		return model.TranslationRequest{}, err
	}

	code := prompt.Normalize(raw)
	if code == "" {
		return model.TranslationRequest{}, ErrEmptySource
	}

	spec, err := prompt.Specification(target)
	if err != nil {
		return model.TranslationRequest{}, err
	}

	modelName := opts.Model
	if modelName == "" {
		modelName = defaultModel
	}

	return model.NewTranslationRequest(model.RequestParams{
		Model:               modelName,
		Seed:                opts.Seed,
		MaxCompletionTokens: opts.MaxCompletionTokens,
		Specification:       spec,
		Source:              prompt.Fence(code),
		Target:              target,
	})
}
