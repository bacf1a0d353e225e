package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWebhookPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload WebhookPayload
		want    NormalizedMessage
	}{
		{
			name: "canonical fields",
			payload: WebhookPayload{
				From:    "client@example.com",
				Subject: "Billing question",
				Content: "Please check my invoice.",
				Product: "Discovery",
				Channel: "email",
			},
			want: NormalizedMessage{
				Sender:  "client@example.com",
				Subject: "Billing question",
				Content: "Please check my invoice.",
				Product: "Discovery",
				Channel: "email",
			},
		},
		{
			name: "alternate field names",
			payload: WebhookPayload{
				Sender:        "alt@example.com",
				Title:         "Alt title",
				Body:          "Body text here.",
				SourceProduct: "Pioneer",
			},
			want: NormalizedMessage{
				Sender:  "alt@example.com",
				Subject: "Alt title",
				Content: "Body text here.",
				Product: "Pioneer",
				Channel: "webhook",
			},
		},
		{
			name: "from wins over sender and email",
			payload: WebhookPayload{
				From:    "primary@example.com",
				Sender:  "secondary@example.com",
				Email:   "tertiary@example.com",
				Message: "hello",
			},
			want: NormalizedMessage{
				Sender:  "primary@example.com",
				Subject: "(no subject)",
				Content: "hello",
				Product: "Unknown",
				Channel: "webhook",
			},
		},
		{
			name:    "empty payload gets defaults",
			payload: WebhookPayload{},
			want: NormalizedMessage{
				Sender:  "unknown@dsq.com",
				Subject: "(no subject)",
				Content: "",
				Product: "Unknown",
				Channel: "webhook",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeWebhookPayload(&tt.payload)
			assert.Equal(t, tt.want.Sender, got.Sender)
			assert.Equal(t, tt.want.Subject, got.Subject)
			assert.Equal(t, tt.want.Content, got.Content)
			assert.Equal(t, tt.want.Product, got.Product)
			assert.Equal(t, tt.want.Channel, got.Channel)
			assert.NotEmpty(t, got.Timestamp)
		})
	}
}

func TestNormalizeWebhookPayload_ProductInference(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"The compactor is jammed again.", "Pioneer"},
		{"Can you move my pickup to Friday?", "Hauler"},
		{"My invoice shows a double charge.", "Discovery"},
		{"Just saying hello.", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := NormalizeWebhookPayload(&WebhookPayload{Content: tt.content})
			assert.Equal(t, tt.want, got.Product)
		})
	}
}

func TestNormalizeWebhookPayload_ExplicitProductSkipsInference(t *testing.T) {
	got := NormalizeWebhookPayload(&WebhookPayload{
		Content: "The compactor is jammed.",
		Product: "Hauler",
	})
	assert.Equal(t, "Hauler", got.Product)
}
