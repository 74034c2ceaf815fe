// Package cache provides the response cache consulted before every remote call.
//
// Information Hiding:
// - Storage backend implementation details hidden behind Store
// - Keys are derived from the full request; callers never build paths
// - A missing entry is a normal result, not an error

package cache

import (
	"context"
	"errors"

	"github.com/richinex/dnclgen/model"
)

// ErrCorrupt marks an existing entry that cannot be decoded.
var ErrCorrupt = errors.New("corrupt cache entry")

// Store maps a request fingerprint to a previously obtained response.
type Store interface {
	// Load returns the cached response for req.
	// Returns ok=false (and no error) if there is no entry.
	// Returns an error for storage failures and undecodable entries.
	Load(ctx context.Context, req model.TranslationRequest) (response string, ok bool, err error)

	// Store records response for req, replacing any previous entry.
	Store(ctx context.Context, req model.TranslationRequest, response string) error
}
