package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/richinex/dnclgen/model"
)

func newRequest(t *testing.T, source string) model.TranslationRequest {
	t.Helper()
	tokens := uint32(1024)
	req, err := model.NewTranslationRequest(model.RequestParams{
		Source:              "```dncl\n" + source + "\n```",
		Specification:       "spec",
		MaxCompletionTokens: &tokens,
	})
	if err != nil {
		t.Fatalf("NewTranslationRequest: %v", err)
	}
	return req
}

func TestFileStoreLoadMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "not-created-yet"))

	response, ok, err := store.Load(context.Background(), newRequest(t, "x = 1"))
	if err != nil {
		t.Fatalf("expected no error for missing entry, got %v", err)
	}
	if ok || response != "" {
		t.Errorf("expected no entry, got ok=%v response=%q", ok, response)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gpt_responses")
	store := NewFileStore(dir)
	ctx := context.Background()
	req := newRequest(t, "x = 1")

	response := "```go\npackage main\n\nfunc main() {\n\tprintln(\"\\\"quoted\\\"\")\n}\n```\n"
	if err := store.Store(ctx, req, response); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, ok, err := store.Load(ctx, req)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ok {
		t.Fatal("expected entry after Store")
	}
	if got != response {
		t.Errorf("round trip changed response:\nwant %q\ngot  %q", response, got)
	}
}

func TestFileStoreInvalidUTF8(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()
	req := newRequest(t, "x = 1")

	if err := store.Store(ctx, req, "invalid utf8 \xff\xfe"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, ok, err := store.Load(ctx, req)
	if err != nil {
		t.Fatalf("entry with invalid UTF-8 must stay readable, got %v", err)
	}
	if !ok || got != "invalid utf8 \uFFFD" {
		t.Errorf("expected replacement character, got ok=%v %q", ok, got)
	}
}

func TestFileStoreRecordLayout(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	req := newRequest(t, "x = 1")

	if err := store.Store(context.Background(), req, "answer"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	data, err := os.ReadFile(store.PathFor(req.Key()))
	if err != nil {
		t.Fatalf("expected entry file: %v", err)
	}

	var record model.CacheRecord
	if err := toml.Unmarshal(data, &record); err != nil {
		t.Fatalf("entry is not TOML: %v", err)
	}
	if record.Model != req.Model || record.Seed != req.Seed || record.Response != "answer" {
		t.Errorf("unexpected record: %+v", record)
	}
	if record.MaxCompletionTokens == nil || *record.MaxCompletionTokens != 1024 {
		t.Errorf("expected max_completion_tokens 1024, got %v", record.MaxCompletionTokens)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected exactly one file in cache dir, got %d", len(entries))
	}
	if !strings.HasPrefix(entries[0].Name(), "cache_") {
		t.Errorf("unexpected file name %q", entries[0].Name())
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()
	req := newRequest(t, "x = 1")

	if err := store.Store(ctx, req, "first"); err != nil {
		t.Fatal(err)
	}
	if err := store.Store(ctx, req, "second"); err != nil {
		t.Fatal(err)
	}

	got, _, err := store.Load(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if got != "second" {
		t.Errorf("expected last write to win, got %q", got)
	}
}

func TestFileStoreDistinctKeys(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()
	a := newRequest(t, "x = 1")
	b := newRequest(t, "x = 2")

	if err := store.Store(ctx, a, "A"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.Load(ctx, b); ok {
		t.Error("expected no entry for a different request")
	}
}

func TestFileStoreCorruptEntry(t *testing.T) {
	tests := map[string]string{
		"not toml":         "response = \"unterminated",
		"missing response": "model = \"gpt-4o\"\nseed = 1\n",
	}

	for name, contents := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			store := NewFileStore(dir)
			req := newRequest(t, "x = 1")

			if err := os.WriteFile(store.PathFor(req.Key()), []byte(contents), 0o644); err != nil {
				t.Fatal(err)
			}

			_, ok, err := store.Load(context.Background(), req)
			if !errors.Is(err, ErrCorrupt) {
				t.Errorf("expected ErrCorrupt, got %v", err)
			}
			if ok {
				t.Error("expected ok=false for corrupt entry")
			}
		})
	}
}

func TestFileStoreWriteFailure(t *testing.T) {
	// A regular file where the cache directory should be.
	parent := t.TempDir()
	blocker := filepath.Join(parent, "cache")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(blocker)
	if err := store.Store(context.Background(), newRequest(t, "x = 1"), "answer"); err == nil {
		t.Error("expected error when cache dir cannot be created")
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	req := newRequest(t, "x = 1")

	if _, ok, err := store.Load(ctx, req); ok || err != nil {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}
	if err := store.Store(ctx, req, "answer"); err != nil {
		t.Fatal(err)
	}
	got, ok, err := store.Load(ctx, req)
	if err != nil || !ok || got != "answer" {
		t.Errorf("unexpected load: %q %v %v", got, ok, err)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", store.Len())
	}
}
