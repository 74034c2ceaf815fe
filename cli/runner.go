// Command execution for CLI commands.
//
// Information Hiding:
// - Settings, cache backend and history wiring hidden
// - Input resolution (file, --text, stdin) hidden
// - Output formatting hidden

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/richinex/dnclgen/cache"
	"github.com/richinex/dnclgen/config"
	"github.com/richinex/dnclgen/internal/logger"
	"github.com/richinex/dnclgen/llm"
	"github.com/richinex/dnclgen/storage"
	"github.com/richinex/dnclgen/transpile"
)

// Options holds global CLI options.
type Options struct {
	Provider string
	CacheDir string // Overrides DNCL_CACHE_DIR when set
	Verbose  bool
}

// Input describes what to translate. Flag values override directives
// found in Text or stdin.
type Input struct {
	File       string
	Text       string
	Stdin      io.Reader
	Model      string
	Seed       *int64
	MaxTokens  *uint32
	Target     string
	Out        string // Write code here instead of stdout
	CheckModel bool
}

// env is the wiring shared by all commands.
type env struct {
	settings config.Settings
	store    cache.Store
	history  *storage.SqliteStorage // nil unless opened read-write
	closers  []func() error
}

func (e *env) Close() error {
	var errs []error
	for _, c := range e.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// access says whether a command may create files in the cache directory.
type access int

const (
	readOnly access = iota
	readWrite
)

func setup(opts Options, mode access) (*env, error) {
	if opts.Verbose {
		logger.SetDefault(logger.New(os.Stderr, os.Getenv("DNCL_LOG_FORMAT"), "debug"))
	}

	settings, err := config.New(opts.Provider)
	if err != nil {
		return nil, err
	}
	if opts.CacheDir != "" {
		settings.Cache.Dir = opts.CacheDir
	}

	e := &env{settings: settings}
	dbPath := filepath.Join(settings.Cache.Dir, storage.DefaultFileName)

	if mode == readWrite {
		history, err := storage.OpenSqlite(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		e.history = history
		e.closers = append(e.closers, history.Close)
	}

	switch {
	case settings.Cache.Backend != "sqlite":
		e.store = cache.NewFileStore(settings.Cache.Dir)
	case e.history != nil:
		e.store = e.history
	default:
		store, err := openReadOnly(dbPath)
		if err != nil {
			return nil, err
		}
		e.store = store
		if db, ok := store.(*storage.SqliteStorage); ok {
			e.closers = append(e.closers, db.Close)
		}
	}

	return e, nil
}

// openReadOnly opens the response database without creating it. A missing
// database is an empty cache.
func openReadOnly(path string) (cache.Store, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return cache.NewMemoryStore(), nil
	}
	return storage.OpenSqliteReadOnly(path)
}

func (e *env) transpiler(checkModel bool) *transpile.Transpiler {
	opts := []transpile.TranspilerOption{
		transpile.WithProvider(e.settings.LLM.Provider),
		transpile.WithCredentials(config.CredentialsFor),
	}
	if e.history != nil {
		opts = append(opts, transpile.WithHistory(e.history))
	}
	if e.settings.LLM.Model != "" {
		opts = append(opts, transpile.WithDefaultModel(e.settings.LLM.Model))
	}
	if checkModel {
		opts = append(opts, transpile.WithModelCheck(e.settings.Cache.Dir, nil))
	}
	return transpile.New(e.store, opts...)
}

// resolve turns CLI input into translation options.
func (e *env) resolve(in Input) (transpile.Options, error) {
	var opts transpile.Options

	switch {
	case in.File != "":
		opts.File = in.File
	default:
		text := in.Text
		if text == "" && in.Stdin != nil {
			data, err := io.ReadAll(in.Stdin)
			if err != nil {
				return transpile.Options{}, fmt.Errorf("failed to read stdin: %w", err)
			}
			text = string(data)
		}
		parsed, err := transpile.ParseDirectives(text)
		if err != nil {
			return transpile.Options{}, err
		}
		opts = parsed
	}

	if in.Model != "" {
		opts.Model = in.Model
	}
	if in.Seed != nil {
		opts.Seed = in.Seed
	}
	if in.MaxTokens != nil {
		opts.MaxCompletionTokens = in.MaxTokens
	} else if opts.MaxCompletionTokens == nil {
		opts.MaxCompletionTokens = e.settings.LLM.MaxCompletionTokens
	}
	if in.Target != "" {
		opts.Target = in.Target
	} else if opts.Target == "" {
		opts.Target = e.settings.LLM.Target
	}

	return opts, nil
}

// Translate translates one input and writes the code.
func Translate(ctx context.Context, in Input, opts Options, out io.Writer) (err error) {
	e, err := setup(opts, readWrite)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, e.Close()) }()

	topts, err := e.resolve(in)
	if err != nil {
		return err
	}

	res, err := e.transpiler(in.CheckModel).Run(ctx, topts)
	if err != nil {
		return err
	}

	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "key=%d model=%s seed=%d cache_hit=%v\n", res.Key, res.Request.Model, res.Request.Seed, res.CacheHit)
	}
	if res.Malformed {
		fmt.Fprintln(os.Stderr, "Warning: the service returned an unexpected reply")
	}

	if in.Out != "" {
		if err := os.WriteFile(in.Out, []byte(res.Code+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", in.Out, err)
		}
		return nil
	}
	_, err = fmt.Fprintln(out, res.Code)
	return err
}

// Key prints the cache key and effective parameters for an input without
// calling the service.
func Key(ctx context.Context, in Input, opts Options, out io.Writer) (err error) {
	e, err := setup(opts, readOnly)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, e.Close()) }()

	topts, err := e.resolve(in)
	if err != nil {
		return err
	}

	req, err := e.transpiler(false).Request(topts)
	if err != nil {
		return err
	}

	_, cached, err := e.store.Load(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "key:    %d\n", req.Key())
	fmt.Fprintf(out, "model:  %s\n", req.Model)
	fmt.Fprintf(out, "seed:   %d\n", req.Seed)
	if req.MaxCompletionTokens != nil {
		fmt.Fprintf(out, "tokens: %d\n", *req.MaxCompletionTokens)
	}
	fmt.Fprintf(out, "target: %s\n", req.Target.Name)
	fmt.Fprintf(out, "cached: %v\n", cached)
	if fileStore, ok := e.store.(*cache.FileStore); ok {
		fmt.Fprintf(out, "path:   %s\n", fileStore.PathFor(req.Key()))
	}
	return nil
}

// Models lists the model ids available to the provider, caching the list.
func Models(ctx context.Context, opts Options, out io.Writer) (err error) {
	e, err := setup(opts, readOnly)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, e.Close()) }()

	creds, err := config.CredentialsFor(e.settings.LLM.Provider)
	if err != nil {
		return err
	}
	lister, err := llm.NewModelLister(creds)
	if err != nil {
		return err
	}

	catalog := llm.NewCatalog(lister, e.settings.Cache.Dir)
	models, err := catalog.Available(ctx)
	if err != nil {
		return err
	}

	for _, m := range models {
		fmt.Fprintln(out, m)
	}
	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "(%d models, cached in %s)\n", len(models), catalog.Path())
	}
	return nil
}

// History prints recorded translations, newest first.
func History(ctx context.Context, limit int, opts Options, out io.Writer) (err error) {
	e, err := setup(opts, readWrite)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, e.Close()) }()

	entries, err := e.history.ListHistory(ctx, limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No translations recorded.")
		return nil
	}

	for _, h := range entries {
		status := "miss"
		if h.CacheHit {
			status = "hit"
		}
		if h.Malformed {
			status += ",unexpected"
		}
		fmt.Fprintf(out, "%s  %s  %-9s %-20s %-6s %-14s %d\n",
			time.Unix(h.CreatedAt, 0).Format(time.RFC3339),
			h.ID, h.Provider, h.Model, h.Target, status, h.Key)
	}
	return nil
}
