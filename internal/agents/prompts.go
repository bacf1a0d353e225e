package agents

import (
	"fmt"
	"strings"

	"github.com/dsqlabs/triagent/internal/triage"
)

const classifySystemPrompt = "You are a message-triage assistant for a field-operations company. " +
	"You classify inbound client communications into a fixed routing schema and respond with JSON only."

const draftSystemPrompt = "You are a helpful and professional customer support assistant."

// buildClassifyPrompt embeds the message, available metadata and few-shot
// examples demonstrating the exact output schema.
func buildClassifyPrompt(content string, metadata map[string]string) string {
	var b strings.Builder

	b.WriteString("Classify the following message. Respond with a single JSON object and nothing else, using exactly these fields:\n")
	b.WriteString(`{"category": "...", "priority": "...", "intent": "...", "recommended_queue": "...", "confidence": 0.0}` + "\n\n")

	b.WriteString("Allowed category values: Billing Support, Dispatch Communication, Sensor Alert, Marketing, General Inquiry.\n")
	b.WriteString("Allowed priority values: High, Medium, Low.\n")
	b.WriteString("Allowed recommended_queue values: Finance Support, Dispatch Team, Ops Team, Automation, Customer Support.\n")
	b.WriteString("confidence is your certainty between 0.0 and 1.0.\n\n")

	b.WriteString("Examples:\n")
	b.WriteString(`Message: "My invoice shows a duplicate charge of $200 for last month."` + "\n")
	b.WriteString(`{"category": "Billing Support", "priority": "High", "intent": "Invoice Dispute", "recommended_queue": "Finance Support", "confidence": 0.95}` + "\n\n")
	b.WriteString(`Message: "The compactor sensor has been flashing red since yesterday."` + "\n")
	b.WriteString(`{"category": "Sensor Alert", "priority": "High", "intent": "Sensor Malfunction", "recommended_queue": "Ops Team", "confidence": 0.9}` + "\n\n")
	b.WriteString(`Message: "When is the next pickup scheduled for our site?"` + "\n")
	b.WriteString(`{"category": "Dispatch Communication", "priority": "Medium", "intent": "Pickup Schedule", "recommended_queue": "Dispatch Team", "confidence": 0.88}` + "\n\n")

	if product := metadata["product"]; product != "" {
		fmt.Fprintf(&b, "Product context: %s\n", product)
	}
	if channel := metadata["channel"]; channel != "" {
		fmt.Fprintf(&b, "Channel: %s\n", channel)
	}

	fmt.Fprintf(&b, "\nMessage: %q\n", content)

	return b.String()
}

// buildDraftPrompt composes a tone-aware reply prompt using the prior
// classification context.
func buildDraftPrompt(content string, cls *triage.Classification, tone triage.Tone) string {
	var b strings.Builder

	b.WriteString("You are writing a clear, empathetic and professional reply to an incoming client message.\n\n")
	b.WriteString("Use the following classification context to shape your response:\n")
	fmt.Fprintf(&b, "- Category: %s\n", cls.Category)
	fmt.Fprintf(&b, "- Intent: %s\n", cls.Intent)
	fmt.Fprintf(&b, "- Tone: %s\n\n", tone)

	b.WriteString("Here is the client's original message:\n")
	fmt.Fprintf(&b, "%q\n\n", content)

	b.WriteString("Reply in a helpful tone. Do not include headers or disclaimers.")

	return b.String()
}
