// Package agents implements the triage agents and the lifecycle contract
// that wraps them. Every agent conforms to the Runner interface; the
// Executor gives each invocation a uniform envelope of validation, timing,
// confidence clamping, event emission and structured fallback.
package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dsqlabs/triagent/internal/metrics"
	"github.com/dsqlabs/triagent/internal/triage"
)

// Input is the message handed to an agent.
type Input struct {
	Sender         string                 `json:"sender"`
	Content        string                 `json:"content"`
	Classification *triage.Classification `json:"classification,omitempty"`
	Metadata       map[string]string      `json:"metadata,omitempty"`
}

// Output is the normalized result of one agent invocation.
type Output struct {
	Category         triage.Category `json:"category,omitempty"`
	Priority         triage.Priority `json:"priority,omitempty"`
	Intent           string          `json:"intent,omitempty"`
	RecommendedQueue triage.Queue    `json:"recommended_queue,omitempty"`
	ReplyDraft       string          `json:"reply_draft,omitempty"`
	Confidence       float64         `json:"confidence"`
	FallbackUsed     bool            `json:"fallback_used"`
	Error            string          `json:"error,omitempty"`
	AgentName        string          `json:"agent_name"`
	AgentVersion     string          `json:"agent_version"`
	LatencyMS        float64         `json:"latency_ms"`
}

// Clone returns a copy of the output.
func (o *Output) Clone() *Output {
	c := *o
	return &c
}

// ValidationError rejects an input before any model call. It is the only
// failure the Executor surfaces to the caller instead of converting into
// the fallback output.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// Runner is the agent-specific logic executed inside the contract.
type Runner interface {
	// Name identifies the agent in outputs, logs and metrics.
	Name() string

	// Version is the agent implementation version.
	Version() string

	// Run executes the agent logic for one input.
	Run(ctx context.Context, in *Input) (*Output, error)

	// Fallback returns the agent's fixed fallback output template.
	Fallback() *Output
}

// Preprocessor is an optional hook run before Run. A returned
// *ValidationError surfaces to the caller; any other error resolves to
// the fallback output.
type Preprocessor interface {
	Preprocess(ctx context.Context, in *Input) error
}

// Postprocessor is an optional hook run after Run. It mutates the output
// in place and must not replace it.
type Postprocessor interface {
	Postprocess(ctx context.Context, out *Output) error
}

// Executor wraps a Runner with the lifecycle contract.
type Executor struct {
	runner Runner
}

// NewExecutor creates the lifecycle wrapper for an agent.
func NewExecutor(r Runner) *Executor {
	return &Executor{runner: r}
}

// Execute runs one agent invocation. It returns an error only for input
// validation failures; every other failure mode resolves to the agent's
// fallback output with FallbackUsed set and Error populated. Callers must
// inspect that flag rather than rely on the returned error.
func (e *Executor) Execute(ctx context.Context, in *Input) (*Output, error) {
	if in == nil {
		return nil, &ValidationError{Field: "input", Reason: "missing"}
	}
	if strings.TrimSpace(in.Sender) == "" {
		return nil, &ValidationError{Field: "sender", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, &ValidationError{Field: "content", Reason: "must not be empty"}
	}

	start := time.Now()

	if p, ok := e.runner.(Preprocessor); ok {
		if err := p.Preprocess(ctx, in); err != nil {
			if verr, ok := err.(*ValidationError); ok {
				return nil, verr
			}
			return e.fallback(ctx, in, start, err), nil
		}
	}

	out, err := e.run(ctx, in)
	if err != nil {
		return e.fallback(ctx, in, start, err), nil
	}

	if pp, ok := e.runner.(Postprocessor); ok {
		if err := pp.Postprocess(ctx, out); err != nil {
			return e.fallback(ctx, in, start, err), nil
		}
	}

	e.stamp(out, start)

	metrics.AgentInvocations.WithLabelValues(e.runner.Name(), "success").Inc()
	metrics.AgentDuration.WithLabelValues(e.runner.Name()).Observe(time.Since(start).Seconds())
	emitEvent(ctx, e.runner.Name(), in, out)

	return out, nil
}

// run invokes the agent logic, converting a panic into an error so that
// no failure escapes the contract.
func (e *Executor) run(ctx context.Context, in *Input) (out *Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("agent panic: %v", r)
		}
	}()

	return e.runner.Run(ctx, in)
}

// fallback builds the standard fallback output. This path must never fail.
func (e *Executor) fallback(ctx context.Context, in *Input, start time.Time, cause error) *Output {
	out := e.runner.Fallback().Clone()
	out.FallbackUsed = true
	out.Error = cause.Error()
	e.stamp(out, start)

	metrics.AgentInvocations.WithLabelValues(e.runner.Name(), "fallback").Inc()
	metrics.AgentDuration.WithLabelValues(e.runner.Name()).Observe(time.Since(start).Seconds())
	emitEvent(ctx, e.runner.Name(), in, out)

	return out
}

// stamp normalizes confidence and attaches agent identity and timing.
func (e *Executor) stamp(out *Output, start time.Time) {
	out.Confidence = clamp(out.Confidence, 0, 1)
	out.AgentName = e.runner.Name()
	out.AgentVersion = e.runner.Version()
	out.LatencyMS = float64(time.Since(start).Microseconds()) / 1000.0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// minContentLength is the shortest content the agents will attempt a
// semantic judgment on.
const minContentLength = 10

// maxContentLength bounds prompt size and cost.
const maxContentLength = 2000

// sanitizeContent strips newlines, trims whitespace and caps the length.
// The cap counts characters, not bytes, so multi-byte runes survive
// truncation intact.
func sanitizeContent(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)

	if runes := []rune(s); len(runes) > maxContentLength {
		s = string(runes[:maxContentLength])
	}
	return s
}
