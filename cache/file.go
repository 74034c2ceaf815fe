// File-per-entry cache store.
//
// Each entry is a TOML file named after the request fingerprint:
//
//	<dir>/cache_<key>.toml
//
//	model = "gpt-4o"
//	seed = 123456789
//	max_completion_tokens = 1024
//	response = """..."""

package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/richinex/dnclgen/model"
)

// FileStore implements Store with one TOML file per entry.
// Writes go to a temporary file that is renamed into place, so readers
// never observe a partial record.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the cache root.
func (s *FileStore) Dir() string {
	return s.dir
}

// PathFor returns the entry file for a cache key.
func (s *FileStore) PathFor(key int64) string {
	return filepath.Join(s.dir, "cache_"+strconv.FormatInt(key, 10)+".toml")
}

// Load reads the entry for req.
func (s *FileStore) Load(ctx context.Context, req model.TranslationRequest) (string, bool, error) {
	path := s.PathFor(req.Key())

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var record storedRecord
	if err := toml.Unmarshal(data, &record); err != nil {
		return "", false, fmt.Errorf("%w: %s: %w", ErrCorrupt, path, err)
	}
	if record.Response == nil {
		return "", false, fmt.Errorf("%w: %s: missing response", ErrCorrupt, path)
	}
	return *record.Response, true, nil
}

// storedRecord decodes an entry while detecting a missing response field.
type storedRecord struct {
	Model               string  `toml:"model"`
	Seed                int64   `toml:"seed"`
	MaxCompletionTokens *uint32 `toml:"max_completion_tokens"`
	Response            *string `toml:"response"`
}

// Store writes the entry for req. TOML cannot carry invalid UTF-8, so such
// bytes are replaced with U+FFFD to keep the entry readable.
func (s *FileStore) Store(ctx context.Context, req model.TranslationRequest, response string) error {
	response = strings.ToValidUTF8(response, "\uFFFD")

	data, err := toml.Marshal(model.NewCacheRecord(req, response))
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".cache_*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache entry: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := os.Rename(tmpName, s.PathFor(req.Key())); err != nil {
		return fmt.Errorf("failed to commit cache entry: %w", err)
	}
	return nil
}

// Verify FileStore implements Store
var _ Store = (*FileStore)(nil)
