package agents

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID attaches a per-request correlation identifier to the
// context so agent events can be traced back to the originating request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the correlation identifier, generating one
// when the caller did not supply it.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}

// emitEvent logs one structured observability event per agent invocation.
// Fallback invocations log at warn level, successful ones at info.
func emitEvent(ctx context.Context, agent string, in *Input, out *Output) {
	evt := log.Info()
	if out.FallbackUsed {
		evt = log.Warn()
	}

	evt.
		Str("event_type", "agent_execution").
		Time("timestamp", time.Now().UTC()).
		Str("agent", agent).
		Str("request_id", RequestIDFromContext(ctx)).
		Interface("input", in).
		Interface("output", out).
		Bool("fallback_used", out.FallbackUsed).
		Str("error", out.Error).
		Msg("agent execution")
}
