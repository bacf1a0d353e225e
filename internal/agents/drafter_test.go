package agents

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsqlabs/triagent/internal/llm"
	"github.com/dsqlabs/triagent/internal/triage"
	"github.com/dsqlabs/triagent/pkg/cache"
)

func billingClassification() *triage.Classification {
	return &triage.Classification{
		Category:         triage.CategoryBilling,
		Priority:         triage.PriorityHigh,
		Intent:           "Invoice Dispute",
		RecommendedQueue: triage.QueueFinance,
		Confidence:       0.95,
	}
}

func draftInput() *Input {
	return &Input{
		Sender:         "customer@example.com",
		Content:        "I was charged twice on my last invoice, please fix this as soon as possible.",
		Classification: billingClassification(),
	}
}

func TestDraftAgent_Success(t *testing.T) {
	client := &mockClient{replies: []scriptedReply{
		{reply: "Thank you for reaching out. We have opened a review of the duplicate charge on your invoice."},
	}}
	exec := NewExecutor(NewDraftAgent(client, nil, testModelConfig()))

	out, err := exec.Execute(context.Background(), draftInput())
	require.NoError(t, err)

	assert.Contains(t, out.ReplyDraft, "duplicate charge")
	assert.Equal(t, 0.95, out.Confidence)
	assert.False(t, out.FallbackUsed)
	assert.Equal(t, "draft-agent", out.AgentName)
	assert.Equal(t, []string{"gpt-4"}, client.models())
}

func TestDraftAgent_MissingClassificationRejected(t *testing.T) {
	client := &mockClient{}
	exec := NewExecutor(NewDraftAgent(client, nil, testModelConfig()))

	tests := []struct {
		name  string
		mod   func(in *Input)
		field string
	}{
		{"nil classification", func(in *Input) { in.Classification = nil }, "classification"},
		{"empty category", func(in *Input) { in.Classification.Category = "" }, "classification.category"},
		{"empty intent", func(in *Input) { in.Classification.Intent = "" }, "classification.intent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := draftInput()
			tt.mod(in)

			_, err := exec.Execute(context.Background(), in)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	assert.Empty(t, client.models())
}

func TestDraftAgent_BothTiersFailServesFallbackReply(t *testing.T) {
	client := &mockClient{replies: []scriptedReply{
		{err: llm.ErrProvider},
		{err: llm.ErrProvider},
	}}
	exec := NewExecutor(NewDraftAgent(client, nil, testModelConfig()))

	out, err := exec.Execute(context.Background(), draftInput())
	require.NoError(t, err)

	assert.True(t, out.FallbackUsed)
	assert.Equal(t, fallbackReply, out.ReplyDraft)
	assert.Equal(t, 0.0, out.Confidence)
	assert.NotEmpty(t, out.Error)
}

func TestDraftAgent_InheritedLowConfidenceFailsBothTiers(t *testing.T) {
	// The threshold applies to the inherited classification confidence,
	// so both attempts fail the same check.
	client := &mockClient{replies: []scriptedReply{
		{reply: "Draft one."},
		{reply: "Draft two."},
	}}
	exec := NewExecutor(NewDraftAgent(client, nil, testModelConfig()))

	in := draftInput()
	in.Classification.Confidence = 0.4

	out, err := exec.Execute(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, out.FallbackUsed)
	assert.Equal(t, fallbackReply, out.ReplyDraft)
	assert.Len(t, client.models(), 2)
}

func TestDraftAgent_ZeroConfidenceDefaults(t *testing.T) {
	client := &mockClient{replies: []scriptedReply{
		{reply: "We are looking into your request."},
	}}
	exec := NewExecutor(NewDraftAgent(client, nil, testModelConfig()))

	in := draftInput()
	in.Classification.Confidence = 0

	out, err := exec.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, defaultDraftConfidence, out.Confidence)
	assert.False(t, out.FallbackUsed)
}

func TestDraftAgent_CacheServesRepeatRequests(t *testing.T) {
	client := &mockClient{replies: []scriptedReply{
		{reply: "Thank you, we are reviewing the charge."},
	}}
	mem := cache.NewMemoryCache(10, time.Hour)
	defer mem.Close()

	exec := NewExecutor(NewDraftAgent(client, mem, testModelConfig()))

	first, err := exec.Execute(context.Background(), draftInput())
	require.NoError(t, err)

	second, err := exec.Execute(context.Background(), draftInput())
	require.NoError(t, err)

	assert.Equal(t, first.ReplyDraft, second.ReplyDraft)
	assert.Len(t, client.models(), 1, "repeat request must be served from cache")
}

func TestDraftAgent_CacheKeyDependsOnConfidence(t *testing.T) {
	client := &mockClient{replies: []scriptedReply{
		{reply: "Thank you, we are reviewing the charge."},
		{reply: "Draft one."},
		{reply: "Draft two."},
	}}
	mem := cache.NewMemoryCache(10, time.Hour)
	defer mem.Close()

	exec := NewExecutor(NewDraftAgent(client, mem, testModelConfig()))

	// Prime the cache with an above-threshold draft.
	first, err := exec.Execute(context.Background(), draftInput())
	require.NoError(t, err)
	assert.False(t, first.FallbackUsed)

	// The same content with below-threshold confidence must not be
	// served the cached draft; it fails both tiers instead.
	in := draftInput()
	in.Classification.Confidence = 0.4

	out, err := exec.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, out.FallbackUsed)
	assert.Equal(t, fallbackReply, out.ReplyDraft)
	assert.Len(t, client.models(), 3)
}

func TestProcessReply(t *testing.T) {
	t.Run("short reply unchanged", func(t *testing.T) {
		assert.Equal(t, "Thanks for writing in.", processReply("  Thanks for writing in.  "))
	})

	t.Run("long reply truncated with period", func(t *testing.T) {
		long := strings.Repeat("a", maxReplyLength+200)
		got := processReply(long)
		assert.LessOrEqual(t, len([]rune(got)), maxReplyLength+1)
		assert.True(t, strings.HasSuffix(got, "."))
	})

	t.Run("truncation keeps existing period", func(t *testing.T) {
		long := strings.Repeat("b", maxReplyLength-1) + ". tail that gets cut"
		got := processReply(long)
		assert.True(t, strings.HasSuffix(got, "."))
		assert.False(t, strings.HasSuffix(got, ".."))
	})
}
