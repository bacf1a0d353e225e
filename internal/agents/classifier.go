package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dsqlabs/triagent/internal/llm"
	"github.com/dsqlabs/triagent/internal/metrics"
	"github.com/dsqlabs/triagent/internal/triage"
	"github.com/dsqlabs/triagent/pkg/cache"
)

var (
	// ErrLowConfidence marks a model reply below the confidence
	// threshold. A weak guess is a failure, not a valid answer.
	ErrLowConfidence = errors.New("confidence below threshold")

	// ErrUnparsableReply marks a model reply that is not valid
	// structured data.
	ErrUnparsableReply = errors.New("unparsable model reply")
)

// ModelConfig holds the two-tier model settings shared by the agents.
type ModelConfig struct {
	PrimaryModel        string
	FallbackModel       string
	ConfidenceThreshold float64
	Temperature         float64
	MaxTokens           int
}

// ClassifyAgent turns free text plus optional metadata into a structured
// classification using a primary model with one fallback-model retry.
type ClassifyAgent struct {
	client llm.Client
	cache  cache.Cache
	cfg    ModelConfig
}

// NewClassifyAgent creates the classification agent. cache may be nil to
// disable response caching.
func NewClassifyAgent(client llm.Client, c cache.Cache, cfg ModelConfig) *ClassifyAgent {
	return &ClassifyAgent{client: client, cache: c, cfg: cfg}
}

func (a *ClassifyAgent) Name() string { return "classify-agent" }

func (a *ClassifyAgent) Version() string { return "1.0.0" }

// Fallback is the fixed classification served when both model tiers fail.
func (a *ClassifyAgent) Fallback() *Output {
	return &Output{
		Category:         triage.CategoryGeneral,
		Priority:         triage.PriorityMedium,
		Intent:           "Unclear",
		RecommendedQueue: triage.QueueSupport,
		Confidence:       0.0,
	}
}

// Preprocess rejects content too short for a semantic judgment.
func (a *ClassifyAgent) Preprocess(ctx context.Context, in *Input) error {
	if len(strings.TrimSpace(in.Content)) < minContentLength {
		return &ValidationError{Field: "content", Reason: fmt.Sprintf("must be at least %d characters", minContentLength)}
	}
	return nil
}

// Run classifies one message: cache lookup, primary-model call, then one
// fallback-model retry on any provider, parse or confidence failure.
func (a *ClassifyAgent) Run(ctx context.Context, in *Input) (*Output, error) {
	content := sanitizeContent(in.Content)
	key := a.cacheKey(content, in.Metadata)

	if out, ok := a.cached(ctx, key); ok {
		return out, nil
	}

	out, err := a.classify(ctx, content, in.Metadata, a.cfg.PrimaryModel)
	if err != nil {
		reason := retryReason(err)
		log.Warn().
			Str("agent", a.Name()).
			Str("model", a.cfg.PrimaryModel).
			Str("reason", reason).
			Err(err).
			Msg("primary model failed, retrying on fallback model")
		metrics.AgentRetries.WithLabelValues(a.Name(), reason).Inc()

		out, err = a.classify(ctx, content, in.Metadata, a.cfg.FallbackModel)
		if err != nil {
			return nil, fmt.Errorf("fallback model %s: %w", a.cfg.FallbackModel, err)
		}
	}

	a.store(ctx, key, out)
	return out, nil
}

// classify performs one model attempt: prompt, completion, parse, enum
// validation, confidence floor.
func (a *ClassifyAgent) classify(ctx context.Context, content string, metadata map[string]string, model string) (*Output, error) {
	reply, err := a.client.Complete(ctx, llm.CompletionRequest{
		Model:        model,
		SystemPrompt: classifySystemPrompt,
		UserPrompt:   buildClassifyPrompt(content, metadata),
		Temperature:  a.cfg.Temperature,
		MaxTokens:    a.cfg.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	cls, err := parseClassification(reply)
	if err != nil {
		return nil, err
	}

	if cls.Confidence < a.cfg.ConfidenceThreshold {
		return nil, fmt.Errorf("%w: %.2f < %.2f", ErrLowConfidence, cls.Confidence, a.cfg.ConfidenceThreshold)
	}

	return &Output{
		Category:         cls.Category,
		Priority:         cls.Priority,
		Intent:           cls.Intent,
		RecommendedQueue: cls.RecommendedQueue,
		Confidence:       cls.Confidence,
	}, nil
}

// cacheKey fingerprints the sanitized content, the prompt-relevant
// metadata and the primary model identifier.
func (a *ClassifyAgent) cacheKey(content string, metadata map[string]string) string {
	return cache.Fingerprint(
		"classify",
		content,
		a.cfg.PrimaryModel,
		metadata["product"],
		metadata["channel"],
	)
}

func (a *ClassifyAgent) cached(ctx context.Context, key string) (*Output, bool) {
	if a.cache == nil {
		return nil, false
	}

	data, err := a.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheLookups.WithLabelValues(a.Name(), "miss").Inc()
		return nil, false
	}

	var out Output
	if err := json.Unmarshal(data, &out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding corrupt cache entry")
		_ = a.cache.Delete(ctx, key)
		metrics.CacheLookups.WithLabelValues(a.Name(), "miss").Inc()
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues(a.Name(), "hit").Inc()
	return &out, true
}

func (a *ClassifyAgent) store(ctx context.Context, key string, out *Output) {
	if a.cache == nil {
		return
	}

	data, err := json.Marshal(out)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, data, 0); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache classification")
	}
}

// rawClassification is the wire shape expected from the model.
type rawClassification struct {
	Category         string  `json:"category"`
	Priority         string  `json:"priority"`
	Intent           string  `json:"intent"`
	RecommendedQueue string  `json:"recommended_queue"`
	Confidence       float64 `json:"confidence"`
}

// parseClassification validates a model reply against the closed
// enumerations. Values outside the closed sets are parse failures, never
// silently coerced.
func parseClassification(reply string) (*triage.Classification, error) {
	var raw rawClassification
	if err := json.Unmarshal([]byte(extractJSON(reply)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableReply, err)
	}

	category, err := triage.ParseCategory(raw.Category)
	if err != nil {
		return nil, err
	}
	priority, err := triage.ParsePriority(raw.Priority)
	if err != nil {
		return nil, err
	}
	queue, err := triage.ParseQueue(raw.RecommendedQueue)
	if err != nil {
		return nil, err
	}

	return &triage.Classification{
		Category:         category,
		Priority:         priority,
		Intent:           triage.NormalizeIntent(raw.Intent),
		RecommendedQueue: queue,
		Confidence:       raw.Confidence,
	}, nil
}

// extractJSON strips markdown code fences some models wrap around JSON.
func extractJSON(reply string) string {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// retryReason labels why an attempt is being retried on the fallback
// model. Control flow is identical across reasons; the label is for
// diagnostics only.
func retryReason(err error) string {
	var unknown *triage.UnknownValueError
	switch {
	case errors.Is(err, ErrLowConfidence):
		return "low_confidence"
	case errors.As(err, &unknown):
		return "invalid_enum"
	case errors.Is(err, ErrUnparsableReply):
		return "parse_error"
	default:
		return "provider_error"
	}
}
