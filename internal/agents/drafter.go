package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dsqlabs/triagent/internal/llm"
	"github.com/dsqlabs/triagent/internal/metrics"
	"github.com/dsqlabs/triagent/internal/triage"
	"github.com/dsqlabs/triagent/pkg/cache"
)

// fallbackReply is served when both model tiers fail, so the caller
// always receives some draft.
const fallbackReply = "Thank you for your message. We are reviewing your request and will follow up shortly."

// maxReplyLength caps overly verbose replies.
const maxReplyLength = 1000

// defaultDraftConfidence is assumed when the upstream classification did
// not carry a confidence value.
const defaultDraftConfidence = 0.85

// DraftAgent produces reply text conditioned on a prior classification,
// with the same two-tier model strategy as classification. The confidence
// used for threshold checks is inherited from the upstream classification
// rather than freshly predicted.
type DraftAgent struct {
	client llm.Client
	cache  cache.Cache
	cfg    ModelConfig
}

// NewDraftAgent creates the draft agent. cache may be nil to disable
// response caching.
func NewDraftAgent(client llm.Client, c cache.Cache, cfg ModelConfig) *DraftAgent {
	return &DraftAgent{client: client, cache: c, cfg: cfg}
}

func (a *DraftAgent) Name() string { return "draft-agent" }

func (a *DraftAgent) Version() string { return "1.0.0" }

// Fallback is the fixed, non-model-derived reply.
func (a *DraftAgent) Fallback() *Output {
	return &Output{
		ReplyDraft: fallbackReply,
		Confidence: 0.0,
	}
}

// Preprocess fails fast when the classification context the prompt needs
// is missing.
func (a *DraftAgent) Preprocess(ctx context.Context, in *Input) error {
	if in.Classification == nil {
		return &ValidationError{Field: "classification", Reason: "required for drafting"}
	}
	if in.Classification.Category == "" {
		return &ValidationError{Field: "classification.category", Reason: "must not be empty"}
	}
	if in.Classification.Intent == "" {
		return &ValidationError{Field: "classification.intent", Reason: "must not be empty"}
	}
	if len(strings.TrimSpace(in.Content)) < minContentLength {
		return &ValidationError{Field: "content", Reason: fmt.Sprintf("must be at least %d characters", minContentLength)}
	}
	return nil
}

// Run drafts a reply: cache lookup, primary-model attempt, then one
// fallback-model retry on any provider or confidence failure.
func (a *DraftAgent) Run(ctx context.Context, in *Input) (*Output, error) {
	content := sanitizeContent(in.Content)
	key := a.cacheKey(content, in.Classification)

	if out, ok := a.cached(ctx, key); ok {
		return out, nil
	}

	out, err := a.draft(ctx, content, in.Classification, a.cfg.PrimaryModel)
	if err != nil {
		reason := retryReason(err)
		log.Warn().
			Str("agent", a.Name()).
			Str("model", a.cfg.PrimaryModel).
			Str("reason", reason).
			Err(err).
			Msg("primary model failed, retrying on fallback model")
		metrics.AgentRetries.WithLabelValues(a.Name(), reason).Inc()

		out, err = a.draft(ctx, content, in.Classification, a.cfg.FallbackModel)
		if err != nil {
			return nil, fmt.Errorf("fallback model %s: %w", a.cfg.FallbackModel, err)
		}
	}

	a.store(ctx, key, out)
	return out, nil
}

// Postprocess trims trailing whitespace the model sometimes appends.
func (a *DraftAgent) Postprocess(ctx context.Context, out *Output) error {
	out.ReplyDraft = strings.TrimSpace(out.ReplyDraft)
	return nil
}

func (a *DraftAgent) draft(ctx context.Context, content string, cls *triage.Classification, model string) (*Output, error) {
	tone := triage.ToneFor(cls.Category)

	reply, err := a.client.Complete(ctx, llm.CompletionRequest{
		Model:        model,
		SystemPrompt: draftSystemPrompt,
		UserPrompt:   buildDraftPrompt(content, cls, tone),
		Temperature:  a.cfg.Temperature,
		MaxTokens:    a.cfg.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	confidence := cls.Confidence
	if confidence == 0 {
		confidence = defaultDraftConfidence
	}

	if confidence < a.cfg.ConfidenceThreshold {
		return nil, fmt.Errorf("%w: %.2f < %.2f", ErrLowConfidence, confidence, a.cfg.ConfidenceThreshold)
	}

	return &Output{
		ReplyDraft: processReply(reply),
		Confidence: confidence,
	}, nil
}

// processReply trims the reply, caps its length and restores the
// terminating period when truncation removed one.
func processReply(reply string) string {
	s := strings.TrimSpace(reply)

	runes := []rune(s)
	if len(runes) > maxReplyLength {
		s = strings.TrimSpace(string(runes[:maxReplyLength]))
		if !strings.HasSuffix(s, ".") {
			s += "."
		}
	}
	return s
}

// cacheKey fingerprints the sanitized content, the classification fields
// that shape the prompt, and the primary model identifier. The inherited
// confidence is part of the key: the threshold check depends on it, so a
// below-threshold request must never hit an entry cached by an
// above-threshold one.
func (a *DraftAgent) cacheKey(content string, cls *triage.Classification) string {
	return cache.Fingerprint(
		"draft",
		content,
		a.cfg.PrimaryModel,
		string(cls.Category),
		cls.Intent,
		fmt.Sprintf("%.2f", cls.Confidence),
	)
}

func (a *DraftAgent) cached(ctx context.Context, key string) (*Output, bool) {
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

func (a *DraftAgent) store(ctx context.Context, key string, out *Output) {
	if a.cache == nil {
		return
	}

	data, err := json.Marshal(out)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, data, 0); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache draft")
	}
}
