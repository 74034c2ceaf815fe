// Package transpile orchestrates DNCL translation: build the request, consult
// the cache, call the completion service on a miss, store the answer and
// extract the code from it.
//
// Information Hiding:
// - Order of cache lookup, credential resolution and remote call
// - Which errors are fatal and which are only logged
// - Request ids and history bookkeeping

package transpile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/richinex/dnclgen/cache"
	"github.com/richinex/dnclgen/config"
	"github.com/richinex/dnclgen/internal/logger"
	"github.com/richinex/dnclgen/internal/markdown"
	"github.com/richinex/dnclgen/llm"
	"github.com/richinex/dnclgen/model"
	"github.com/richinex/dnclgen/storage"
)

// CompleterFactory builds a completion client bound to creds.
type CompleterFactory func(creds config.Credentials) (llm.Completer, error)

// ModelListerFactory builds a model lister bound to creds.
type ModelListerFactory func(creds config.Credentials) (llm.ModelLister, error)

// Result describes one finished translation.
type Result struct {
	ID        string // Request id
	Request   model.TranslationRequest
	Key       int64
	Raw       string // Answer as stored in the cache
	Code      string // Extracted code
	CacheHit  bool
	Malformed bool
}

// Transpiler runs translations against a cache and a completion service.
// It is safe for concurrent use when its store and history are.
type Transpiler struct {
	store        cache.Store
	provider     string
	defaultModel string
	credentials  config.CredentialsFunc
	newCompleter CompleterFactory
	history      storage.HistoryRecorder
	limiter      *rate.Limiter
	logger       *slog.Logger
	now          func() time.Time

	checkModels bool
	modelsDir   string
	newLister   ModelListerFactory
}

// TranspilerOption configures a Transpiler.
type TranspilerOption func(*Transpiler)

// WithProvider selects the provider used when Options.Provider is empty.
func WithProvider(provider string) TranspilerOption {
	return func(t *Transpiler) {
		t.provider = config.NormalizeProvider(provider)
	}
}

// WithDefaultModel overrides the provider's default model.
func WithDefaultModel(name string) TranspilerOption {
	return func(t *Transpiler) {
		t.defaultModel = name
	}
}

// WithCredentials sets the credential source. Without it every cache miss
// fails with ErrConfiguration.
func WithCredentials(fn config.CredentialsFunc) TranspilerOption {
	return func(t *Transpiler) {
		t.credentials = fn
	}
}

// WithCompleterFactory replaces llm.New.
func WithCompleterFactory(fn CompleterFactory) TranspilerOption {
	return func(t *Transpiler) {
		t.newCompleter = fn
	}
}

// WithModelCheck validates the model against the catalog kept in dir
// before each remote call. A nil factory means llm.NewModelLister.
func WithModelCheck(dir string, fn ModelListerFactory) TranspilerOption {
	return func(t *Transpiler) {
		t.checkModels = true
		t.modelsDir = dir
		if fn != nil {
			t.newLister = fn
		}
	}
}

// WithHistory records every translation in h.
func WithHistory(h storage.HistoryRecorder) TranspilerOption {
	return func(t *Transpiler) {
		t.history = h
	}
}

// WithRateLimit spaces remote calls to at most r per second with the given burst.
// Cache hits are never delayed.
func WithRateLimit(r rate.Limit, burst int) TranspilerOption {
	return func(t *Transpiler) {
		t.limiter = rate.NewLimiter(r, burst)
	}
}

// WithLogger sets the logger. Otherwise the context's logger is used.
func WithLogger(l *slog.Logger) TranspilerOption {
	return func(t *Transpiler) {
		t.logger = l
	}
}

// New creates a Transpiler backed by store.
func New(store cache.Store, opts ...TranspilerOption) *Transpiler {
	t := &Transpiler{
		store:        store,
		provider:     config.DefaultProvider,
		newCompleter: llm.New,
		newLister:    llm.NewModelLister,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Request builds the request Translate would send for opts.
func (t *Transpiler) Request(opts Options) (model.TranslationRequest, error) {
	provider := t.providerFor(opts)
	return BuildRequest(opts, t.modelFor(provider))
}

// Translate returns the code for opts.
func (t *Transpiler) Translate(ctx context.Context, opts Options) (string, error) {
	res, err := t.Run(ctx, opts)
	if err != nil {
		return "", err
	}
	return res.Code, nil
}

// Run performs one translation and reports how it was satisfied.
func (t *Transpiler) Run(ctx context.Context, opts Options) (Result, error) {
	id := uuid.NewString()
	provider := t.providerFor(opts)
	log := t.log(ctx).With("request_id", id, "provider", provider)

	req, err := BuildRequest(opts, t.modelFor(provider))
	if err != nil {
		return Result{}, stageError(StageNormalize, err)
	}
	key := req.Key()
	log = log.With("key", key, "model", req.Model, "target", req.Target.Name)

	res := Result{ID: id, Request: req, Key: key}

	raw, ok, err := t.store.Load(ctx, req)
	if err != nil {
		return Result{}, stageError(StageLookup, fmt.Errorf("%w: %w", ErrStorage, err))
	}

	if ok {
		log.Debug("cache hit")
		res.CacheHit = true
		res.Malformed = llm.IsDiagnostic(raw)
	} else {
		log.Debug("cache miss")
		answer, err := t.complete(ctx, provider, req)
		if err != nil {
			return Result{}, err
		}
		raw = answer.Text
		res.Malformed = answer.Malformed
		if answer.Malformed {
			log.Warn("unexpected reply shape; caching diagnostic")
		}

		if err := t.store.Store(ctx, req, raw); err != nil {
			log.Warn("failed to store response", "error", err)
		}
	}

	res.Raw = raw
	res.Code = markdown.CodeOrRaw(raw, req.Target.Tags...)
	t.record(ctx, log, provider, res)
	return res, nil
}

func (t *Transpiler) complete(ctx context.Context, provider string, req model.TranslationRequest) (llm.Answer, error) {
	if t.credentials == nil {
		return llm.Answer{}, stageError(StageCredentials, fmt.Errorf("%w: no credential source", ErrConfiguration))
	}
	creds, err := t.credentials(provider)
	if err != nil {
		return llm.Answer{}, stageError(StageCredentials, fmt.Errorf("%w: %w", ErrConfiguration, err))
	}
	if creds.Provider == "" {
		creds.Provider = provider
	}

	if t.checkModels {
		if err := t.checkModel(ctx, creds, req.Model); err != nil {
			return llm.Answer{}, stageError(StageModelCheck, err)
		}
	}

	client, err := t.newCompleter(creds)
	if err != nil {
		return llm.Answer{}, stageError(StageCredentials, fmt.Errorf("%w: %w", ErrConfiguration, err))
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return llm.Answer{}, stageError(StageCall, err)
		}
	}

	answer, err := client.Complete(ctx, llm.NewRequest(req.Model, req.Seed, req.MaxCompletionTokens, req.Segments()...))
	if err != nil {
		if !errors.Is(err, ErrTransport) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", ErrTransport, err)
		}
		return llm.Answer{}, stageError(StageCall, err)
	}
	return answer, nil
}

func (t *Transpiler) checkModel(ctx context.Context, creds config.Credentials, name string) error {
	lister, err := t.newLister(creds)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return llm.NewCatalog(lister, t.modelsDir).Check(ctx, name)
}

func (t *Transpiler) record(ctx context.Context, log *slog.Logger, provider string, res Result) {
	if t.history == nil {
		return
	}
	err := t.history.Record(ctx, storage.HistoryEntry{
		ID:        res.ID,
		Key:       res.Key,
		Provider:  provider,
		Model:     res.Request.Model,
		Target:    res.Request.Target.Name,
		CacheHit:  res.CacheHit,
		Malformed: res.Malformed,
		CreatedAt: t.now().Unix(),
	})
	if err != nil {
		log.Warn("failed to record history", "error", err)
	}
}

func (t *Transpiler) providerFor(opts Options) string {
	if opts.Provider != "" {
		return config.NormalizeProvider(opts.Provider)
	}
	return t.provider
}

func (t *Transpiler) modelFor(provider string) string {
	if t.defaultModel != "" {
		return t.defaultModel
	}
	if p, err := llm.ParseProviderType(provider); err == nil {
		return p.DefaultModel()
	}
	return model.DefaultModel
}

func (t *Transpiler) log(ctx context.Context) *slog.Logger {
	if t.logger != nil {
		return t.logger
	}
	return logger.FromContext(ctx)
}
