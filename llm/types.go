// Package llm provides shared data models for LLM providers.
package llm

import (
	"errors"
	"strings"
)

// ErrTransport marks failures to obtain any reply from the service:
// connection errors and unparsable reply envelopes, whatever the status.
var ErrTransport = errors.New("completion transport failed")

// RoleUser is the only role used: every segment is part of one request.
const RoleUser = "user"

// unexpectedPrefix starts the diagnostic answer for replies of the wrong shape.
const unexpectedPrefix = "[Unexpected response]\n"

// Message is one segment of the request message array.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Request is a single completion call.
type Request struct {
	Model               string
	Seed                int64
	MaxCompletionTokens *uint32
	Messages            []Message
}

// NewRequest builds a request whose segments are all attributed to the user.
func NewRequest(model string, seed int64, maxCompletionTokens *uint32, segments ...string) Request {
	messages := make([]Message, len(segments))
	for i, s := range segments {
		messages[i] = UserMessage(s)
	}
	return Request{
		Model:               model,
		Seed:                seed,
		MaxCompletionTokens: maxCompletionTokens,
		Messages:            messages,
	}
}

// Answer is the textual content extracted from a reply.
type Answer struct {
	Text string
	// Malformed is set when the reply did not match the expected schema and
	// Text holds a diagnostic embedding the raw reply.
	Malformed bool
}

// IsDiagnostic reports whether text is a stored unexpected-reply diagnostic.
func IsDiagnostic(text string) bool {
	return strings.HasPrefix(text, unexpectedPrefix)
}

// unexpectedAnswer wraps a raw reply that lacked the expected content field.
func unexpectedAnswer(raw string) Answer {
	return Answer{Text: unexpectedPrefix + strings.TrimSpace(raw), Malformed: true}
}
