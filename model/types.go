// Package model provides domain types shared across packages.
package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/richinex/dnclgen/fingerprint"
)

// DefaultModel is used when a request does not name a model.
const DefaultModel = "gpt-4o"

// ErrEmptySource is returned when the normalized DNCL source is empty.
var ErrEmptySource = errors.New("code is empty")

// Target describes a language the DNCL program is translated into.
type Target struct {
	Name           string   // Canonical identifier: "go", "rust", "python"
	Display        string   // Name used in the instruction text
	Tags           []string // Fence tags accepted when extracting code
	DependencyNote string   // How third-party packages are supplied by the user
}

// HasTag reports whether tag names this target (case-insensitive).
func (t Target) HasTag(tag string) bool {
	for _, candidate := range t.Tags {
		if strings.EqualFold(candidate, tag) {
			return true
		}
	}
	return false
}

var targets = []Target{
	{
		Name:           "go",
		Display:        "Go",
		Tags:           []string{"go", "golang"},
		DependencyNote: "サードパーティパッケージはユーザー側が自分で `go.mod` に追加するため、存在するものと仮定して構いません。",
	},
	{
		Name:           "rust",
		Display:        "Rust",
		Tags:           []string{"rust", "rs"},
		DependencyNote: "`rand` 等のサードパーティクレートはユーザー側が自分で `Cargo.toml` に追加するため、存在するものと仮定して構いません。",
	},
	{
		Name:           "python",
		Display:        "Python",
		Tags:           []string{"python", "py", "python3"},
		DependencyNote: "サードパーティパッケージはユーザー側が自分でインストールするため、存在するものと仮定して構いません。",
	},
}

// DefaultTarget is the language used when none is given.
const DefaultTarget = "go"

// LookupTarget returns the target registered under name or one of its tags.
func LookupTarget(name string) (Target, error) {
	if name == "" {
		name = DefaultTarget
	}
	for _, t := range targets {
		if strings.EqualFold(t.Name, name) || t.HasTag(name) {
			return t, nil
		}
	}
	return Target{}, fmt.Errorf("unknown target language: %q", name)
}

// Targets returns the canonical names of all supported targets.
func Targets() []string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}
	return names
}

// TranslationRequest is the normalized, immutable description of one
// translation. Construct it with NewTranslationRequest.
type TranslationRequest struct {
	Model               string
	Seed                int64
	MaxCompletionTokens *uint32
	// Specification is the fixed DNCL document plus target instruction.
	Specification string
	// Source is the normalized DNCL program wrapped in a ```dncl fence.
	Source string
	Target Target
}

// RequestParams carries the caller-controlled fields of a request.
// Zero values select defaults.
type RequestParams struct {
	Model               string
	Seed                *int64
	MaxCompletionTokens *uint32
	Specification       string
	Source              string
	Target              Target
}

// NewTranslationRequest validates params and resolves the model and seed
// defaults. The default seed is the fingerprint of the fenced source, so
// identical programs are reproducible without an explicit seed.
func NewTranslationRequest(p RequestParams) (TranslationRequest, error) {
	if strings.TrimSpace(p.Source) == "" {
		return TranslationRequest{}, ErrEmptySource
	}

	model := p.Model
	if model == "" {
		model = DefaultModel
	}

	seed := fingerprint.Prompt(p.Source)
	if p.Seed != nil {
		seed = *p.Seed
	}

	var maxTokens *uint32
	if p.MaxCompletionTokens != nil {
		v := *p.MaxCompletionTokens
		maxTokens = &v
	}

	return TranslationRequest{
		Model:               model,
		Seed:                seed,
		MaxCompletionTokens: maxTokens,
		Specification:       p.Specification,
		Source:              p.Source,
		Target:              p.Target,
	}, nil
}

// PromptText is the full text sent to the model: specification then source.
func (r TranslationRequest) PromptText() string {
	if r.Specification == "" {
		return r.Source
	}
	return r.Specification + "\n\n" + r.Source
}

// Segments returns the ordered message segments submitted to the service.
func (r TranslationRequest) Segments() []string {
	if r.Specification == "" {
		return []string{r.Source}
	}
	return []string{r.Specification, r.Source}
}

// Key returns the cache key for the request.
func (r TranslationRequest) Key() int64 {
	return fingerprint.Request(r.Model, r.Seed, r.MaxCompletionTokens, r.PromptText())
}

// CacheRecord is the persisted form of a completed request.
type CacheRecord struct {
	Model               string  `toml:"model"`
	Seed                int64   `toml:"seed"`
	MaxCompletionTokens *uint32 `toml:"max_completion_tokens,omitempty"`
	Response            string  `toml:"response,multiline"`
}

// NewCacheRecord builds the record stored for req.
func NewCacheRecord(req TranslationRequest, response string) CacheRecord {
	return CacheRecord{
		Model:               req.Model,
		Seed:                req.Seed,
		MaxCompletionTokens: req.MaxCompletionTokens,
		Response:            response,
	}
}
