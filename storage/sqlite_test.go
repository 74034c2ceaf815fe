package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/richinex/dnclgen/model"
)

func testRequest(source string) model.TranslationRequest {
	return model.TranslationRequest{
		Model:         "gpt-4o",
		Seed:          7,
		Specification: "spec",
		Source:        source,
		Target:        "go",
	}
}

func TestLoadMissing(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer storage.Close()

	_, ok, err := storage.Load(context.Background(), testRequest("a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no entry")
	}
}

func TestStoreAndLoad(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()
	tokens := uint32(128)
	req := testRequest("a")
	req.MaxCompletionTokens = &tokens

	if err := storage.Store(ctx, req, "```go\nfunc main() {}\n```"); err != nil {
		t.Fatalf("failed to store: %v", err)
	}

	got, ok, err := storage.Load(ctx, req)
	if err != nil || !ok {
		t.Fatalf("expected entry, got ok=%v err=%v", ok, err)
	}
	if got != "```go\nfunc main() {}\n```" {
		t.Errorf("unexpected response %q", got)
	}

	other := testRequest("b")
	if _, ok, _ := storage.Load(ctx, other); ok {
		t.Error("different request should not hit")
	}
}

func TestStoreReplaces(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()
	req := testRequest("a")
	if err := storage.Store(ctx, req, "first"); err != nil {
		t.Fatalf("failed to store: %v", err)
	}
	if err := storage.Store(ctx, req, "second"); err != nil {
		t.Fatalf("failed to store: %v", err)
	}

	got, _, _ := storage.Load(ctx, req)
	if got != "second" {
		t.Errorf("expected replaced response, got %q", got)
	}
}

func TestOpenSqlitePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)
	ctx := context.Background()
	req := testRequest("a")

	storage, err := OpenSqlite(path)
	if err != nil {
		t.Fatalf("failed to open: %v", err)
	}
	if err := storage.Store(ctx, req, "kept"); err != nil {
		t.Fatalf("failed to store: %v", err)
	}
	storage.Close()

	reopened, err := OpenSqlite(path)
	if err != nil {
		t.Fatalf("failed to reopen: %v", err)
	}
	defer reopened.Close()

	got, ok, err := reopened.Load(ctx, req)
	if err != nil || !ok || got != "kept" {
		t.Errorf("expected persisted entry, got %q ok=%v err=%v", got, ok, err)
	}
}

func TestHistory(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()
	entries := []HistoryEntry{
		{ID: "a", Key: 1, Provider: "openai", Model: "gpt-4o", Target: "go", CreatedAt: 100},
		{ID: "b", Key: 1, Provider: "openai", Model: "gpt-4o", Target: "go", CacheHit: true, CreatedAt: 200},
		{ID: "c", Key: 2, Provider: "openai", Model: "gpt-4o", Target: "rust", Malformed: true, CreatedAt: 300},
	}
	for _, e := range entries {
		if err := storage.Record(ctx, e); err != nil {
			t.Fatalf("failed to record: %v", err)
		}
	}

	got, err := storage.ListHistory(ctx, 0)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].ID != "c" || got[2].ID != "a" {
		t.Errorf("expected newest first, got %s..%s", got[0].ID, got[2].ID)
	}
	if !got[1].CacheHit || got[0].CacheHit {
		t.Error("cache_hit not round-tripped")
	}
	if !got[0].Malformed {
		t.Error("malformed not round-tripped")
	}

	limited, err := storage.ListHistory(ctx, 2)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 entries, got %d", len(limited))
	}
}

func TestListHistoryEmpty(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer storage.Close()

	got, err := storage.ListHistory(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestOpenSqliteReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	ctx := context.Background()
	req := testRequest("a")

	if _, err := OpenSqliteReadOnly(path); err == nil {
		t.Fatal("expected error for missing database")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("read-only open must not create the file, stat err=%v", err)
	}

	storage, err := OpenSqlite(path)
	if err != nil {
		t.Fatalf("failed to open: %v", err)
	}
	if err := storage.Store(ctx, req, "kept"); err != nil {
		t.Fatalf("failed to store: %v", err)
	}
	storage.Close()

	ro, err := OpenSqliteReadOnly(path)
	if err != nil {
		t.Fatalf("failed to open read-only: %v", err)
	}
	defer ro.Close()

	got, ok, err := ro.Load(ctx, req)
	if err != nil || !ok || got != "kept" {
		t.Errorf("expected stored entry, got %q ok=%v err=%v", got, ok, err)
	}
	if err := ro.Store(ctx, testRequest("b"), "x"); err == nil {
		t.Error("expected write to fail on read-only storage")
	}
}
