package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/dsqlabs/triagent/internal/agents"
)

// WebhookPayload accepts the loose field names external automation tools
// (Zapier, n8n, SendGrid, Twilio) use for the same concepts.
type WebhookPayload struct {
	From    string `json:"from"`
	Sender  string `json:"sender"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Message string `json:"message"`
	Body    string `json:"body"`
	Product string `json:"product"`
	// SourceProduct is the alternate product field some tools send.
	SourceProduct string `json:"source_product"`
	Channel       string `json:"channel"`
	Timestamp     string `json:"timestamp"`
}

// NormalizedMessage is the webhook payload reduced to the triage input
// shape.
type NormalizedMessage struct {
	Sender    string `json:"sender"`
	Subject   string `json:"subject"`
	Content   string `json:"content"`
	Product   string `json:"product"`
	Channel   string `json:"channel"`
	Timestamp string `json:"timestamp"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// NormalizeWebhookPayload maps a loose webhook payload onto the internal
// message shape, inferring the product from content keywords when it was
// not supplied.
func NormalizeWebhookPayload(p *WebhookPayload) *NormalizedMessage {
	msg := &NormalizedMessage{
		Sender:    firstNonEmpty(p.From, p.Sender, p.Email),
		Subject:   firstNonEmpty(p.Subject, p.Title, "(no subject)"),
		Content:   firstNonEmpty(p.Content, p.Message, p.Body),
		Product:   firstNonEmpty(p.Product, p.SourceProduct, "Unknown"),
		Channel:   firstNonEmpty(p.Channel, "webhook"),
		Timestamp: firstNonEmpty(p.Timestamp, time.Now().UTC().Format(time.RFC3339)),
	}

	if msg.Sender == "" {
		msg.Sender = "unknown@dsq.com"
	}

	if msg.Product == "Unknown" {
		content := strings.ToLower(msg.Content)
		switch {
		case strings.Contains(content, "compactor"):
			msg.Product = "Pioneer"
		case strings.Contains(content, "pickup"):
			msg.Product = "Hauler"
		case strings.Contains(content, "invoice"):
			msg.Product = "Discovery"
		}
	}

	return msg
}

func (s *Server) handleWebhook(c fiber.Ctx) error {
	var payload WebhookPayload
	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	msg := NormalizeWebhookPayload(&payload)

	log.Info().
		Str("sender", msg.Sender).
		Str("product", msg.Product).
		Str("channel", msg.Channel).
		Msg("webhook event received")

	out, err := s.execute(c, s.classifier, &agents.Input{
		Sender:  msg.Sender,
		Content: msg.Content,
		Metadata: map[string]string{
			"subject": msg.Subject,
			"product": msg.Product,
			"channel": msg.Channel,
		},
	})
	if out == nil {
		return err
	}

	return c.JSON(out)
}
