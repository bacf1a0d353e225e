package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrAuthentication},
		{"forbidden", http.StatusForbidden, ErrAuthentication},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"server error", http.StatusInternalServerError, ErrProvider},
		{"bad gateway", http.StatusBadGateway, ErrProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyHTTPError(tt.status, "boom")
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "boom")
		})
	}

	t.Run("empty message uses status text", func(t *testing.T) {
		err := classifyHTTPError(http.StatusTooManyRequests, "")
		assert.Contains(t, err.Error(), http.StatusText(http.StatusTooManyRequests))
	})
}

func newTestClient(url string) *OpenAIClient {
	return NewOpenAIClient(OpenAIConfig{
		BaseURL: url,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
}

func TestOpenAIClient_Complete(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello there"}}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	reply, err := client.Complete(context.Background(), CompletionRequest{
		Model:        "gpt-4",
		SystemPrompt: "system",
		UserPrompt:   "user",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestOpenAIClient_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"auth failure", http.StatusUnauthorized, ErrAuthentication},
		{"rate limit", http.StatusTooManyRequests, ErrRateLimited},
		{"provider outage", http.StatusServiceUnavailable, ErrProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"upstream says no","type":"api_error"}}`))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Complete(context.Background(), CompletionRequest{Model: "gpt-4"})
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "upstream says no")
		})
	}
}

func TestOpenAIClient_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), CompletionRequest{Model: "gpt-4"})
	assert.ErrorIs(t, err, ErrProvider)
}

func TestOpenAIClient_UnreachableHost(t *testing.T) {
	client := NewOpenAIClient(OpenAIConfig{
		BaseURL: "http://127.0.0.1:1",
		Timeout: time.Second,
	})

	_, err := client.Complete(context.Background(), CompletionRequest{Model: "gpt-4"})
	assert.ErrorIs(t, err, ErrProvider)
}
