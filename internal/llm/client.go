// Package llm abstracts the remote language-model provider behind a small
// completion interface with a typed error taxonomy, so agents can treat
// authentication, rate-limit and generic provider failures uniformly.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrAuthentication indicates the provider rejected our credentials.
	ErrAuthentication = errors.New("authentication failed")

	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrProvider indicates any other provider-side failure, including
	// timeouts of the network round-trip.
	ErrProvider = errors.New("provider error")
)

// CompletionRequest describes one text-completion call.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// Client is the gateway to a text-completion provider.
type Client interface {
	// Complete performs one completion round-trip and returns the raw
	// reply text. Failures wrap one of ErrAuthentication, ErrRateLimited
	// or ErrProvider.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
