package ingest

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrNoMessages is returned when a mock inbox has been drained.
var ErrNoMessages = errors.New("no messages available")

// GmailClient simulates email ingestion from a Gmail inbox.
type GmailClient struct {
	mu     sync.Mutex
	inbox  []*Message
	cursor int
}

// NewGmailClient creates a mock Gmail client with a seeded inbox.
func NewGmailClient() *GmailClient {
	log.Info().Msg("initialized mock Gmail client")

	return &GmailClient{
		inbox: []*Message{
			{
				Sender:  "mock.sender@gmail.com",
				Content: "Hi, I noticed a discrepancy in my last invoice for $200.",
				Source:  "gmail",
				Metadata: map[string]string{
					"subject":   "Invoice Issue",
					"thread_id": "mock-thread-123",
					"labels":    "INBOX,UNREAD",
					"channel":   "email",
				},
			},
			{
				Sender:  "client@example.com",
				Content: "When is my next pickup scheduled?",
				Source:  "gmail",
				Metadata: map[string]string{
					"subject":   "Pickup Schedule",
					"thread_id": "mock-thread-456",
					"labels":    "INBOX",
					"channel":   "email",
				},
			},
		},
	}
}

func (c *GmailClient) Name() string { return "gmail" }

// Fetch returns the next unread email from the simulated inbox.
func (c *GmailClient) Fetch(ctx context.Context) (*Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cursor >= len(c.inbox) {
		return nil, ErrNoMessages
	}

	msg := c.inbox[c.cursor]
	c.cursor++

	log.Info().Str("sender", msg.Sender).Msg("fetched mock email")
	return msg, nil
}
