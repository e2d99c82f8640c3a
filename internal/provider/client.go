// Package provider implements the generation backends behind the board
// and the agent family: a primary Gemini backend with schema-constrained
// structured output, an OpenAI fallback backend, and an Imagen image
// generator. Backends are selected per persona, not per call.
package provider

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured is returned when a backend is called without its
// credential. Configuration errors are never retried and never degrade to
// another backend.
var ErrNotConfigured = errors.New("API key not configured")

// Client is the uniform text-generation capability implemented by each
// backend.
type Client interface {
	// GenerateText sends one system+user prompt pair and returns the
	// completion text.
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// GenerateStructured sends a prompt pair and returns raw JSON text
	// conforming to jsonSchema. The caller unmarshals; a malformed
	// response surfaces as an error from the caller's decode.
	GenerateStructured(ctx context.Context, systemPrompt, userPrompt, jsonSchema string) (string, error)
}

// ChatSession is a lazily created multi-turn conversation carrying its own
// internal history, independent of the locally displayed one.
type ChatSession interface {
	SendMessage(ctx context.Context, text string) (string, error)
}

// ChatCapable is implemented by backends with native multi-turn session
// state. Backends without it get the displayed history replayed on every
// call instead.
type ChatCapable interface {
	StartChat(systemPrompt string) ChatSession
}

// ConversationClient is implemented by stateless backends that accept a
// replayed history alongside the new message.
type ConversationClient interface {
	GenerateConversation(ctx context.Context, systemPrompt string, history []Turn, message string) (string, error)
}

// Turn is one replayed exchange entry for stateless backends.
type Turn struct {
	FromUser bool
	Text     string
}

// ImageGenerator produces image bytes from a prompt. Only the primary
// backend has an image path; visualize operations are unavailable when
// only the fallback is configured.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// ensureDeadline applies a default timeout when the caller's context has
// none, so a hung call cannot outlive the client's configured patience.
func ensureDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
