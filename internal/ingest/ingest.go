// Package ingest supplies inbound messages from external communication
// sources. Only mock sources are implemented; real Gmail/Twilio
// integration would slot in behind the same Source interface.
package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Message is a normalized inbound communication.
type Message struct {
	Sender   string            `json:"sender"`
	Content  string            `json:"content"`
	Source   string            `json:"source"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Error is an ingestion failure. It is a distinct kind from agent
// fallback: callers receive it as an explicit error, not as a
// fallback-shaped output.
type Error struct {
	Source string
	Cause  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ingestion from %s failed: %v", e.Source, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Source supplies messages from one external system.
type Source interface {
	// Name identifies the source ("gmail", "phone").
	Name() string

	// Fetch returns the next available message.
	Fetch(ctx context.Context) (*Message, error)
}

// Fetcher wraps a Source with bounded retries. Repeated transient
// failures surface as *Error.
type Fetcher struct {
	source     Source
	maxRetries int
}

// NewFetcher creates a retrying fetcher around a source.
func NewFetcher(source Source, maxRetries int) *Fetcher {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Fetcher{source: source, maxRetries: maxRetries}
}

// Fetch attempts to pull one message, retrying up to the configured bound.
func (f *Fetcher) Fetch(ctx context.Context) (*Message, error) {
	var lastErr error

	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		msg, err := f.source.Fetch(ctx)
		if err == nil {
			return msg, nil
		}

		lastErr = err
		log.Warn().
			Str("source", f.source.Name()).
			Int("attempt", attempt).
			Err(err).
			Msg("ingestion attempt failed")

		if ctx.Err() != nil {
			break
		}
	}

	return nil, &Error{Source: f.source.Name(), Cause: lastErr}
}
