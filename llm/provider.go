// Package llm provides LLM provider abstractions.
//
// Completer is the abstract interface for completion services.
// Each implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Provider-specific reply shapes

package llm

import (
	"context"
)

// Completer issues one synchronous completion request.
type Completer interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Complete sends req and returns the first textual answer. A reply of
	// the wrong shape yields a Malformed answer, not an error.
	Complete(ctx context.Context, req Request) (Answer, error)
}
