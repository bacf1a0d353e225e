package ingest

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// TwilioClient simulates voicemail-transcription ingestion from Twilio.
type TwilioClient struct {
	mu     sync.Mutex
	inbox  []*Message
	cursor int
}

// NewTwilioClient creates a mock Twilio client with seeded voicemails.
func NewTwilioClient() *TwilioClient {
	log.Info().Msg("initialized mock Twilio client")

	return &TwilioClient{
		inbox: []*Message{
			{
				Sender:  "+15551234567",
				Content: "This is a message regarding my recent delivery issue.",
				Source:  "phone",
				Metadata: map[string]string{
					"call_sid":                 "mock-call-sid-456",
					"transcription_confidence": "0.92",
					"channel":                  "voicemail",
				},
			},
			{
				Sender:  "+15559876543",
				Content: "I need to reschedule my pickup for next week.",
				Source:  "phone",
				Metadata: map[string]string{
					"call_sid":                 "mock-call-sid-789",
					"transcription_confidence": "0.89",
					"channel":                  "voicemail",
				},
			},
		},
	}
}

func (c *TwilioClient) Name() string { return "phone" }

// Fetch returns the next voicemail transcription.
func (c *TwilioClient) Fetch(ctx context.Context) (*Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cursor >= len(c.inbox) {
		return nil, ErrNoMessages
	}

	msg := c.inbox[c.cursor]
	c.cursor++

	log.Info().Str("sender", msg.Sender).Msg("fetched mock voicemail")
	return msg, nil
}
