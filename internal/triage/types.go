package triage

import (
	"fmt"
	"strings"
)

// Category is the high-level message type assigned by classification.
type Category string

const (
	CategoryBilling   Category = "Billing Support"
	CategoryDispatch  Category = "Dispatch Communication"
	CategorySensor    Category = "Sensor Alert"
	CategoryMarketing Category = "Marketing"
	CategoryGeneral   Category = "General Inquiry"
)

// Priority is the operational urgency of a message.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Queue identifies which internal team should own a message.
type Queue string

const (
	QueueFinance    Queue = "Finance Support"
	QueueDispatch   Queue = "Dispatch Team"
	QueueOps        Queue = "Ops Team"
	QueueAutomation Queue = "Automation"
	QueueSupport    Queue = "Customer Support"
)

// UnknownValueError is returned when a model reply contains a value outside
// one of the closed enumerations.
type UnknownValueError struct {
	Kind  string
	Value string
}

func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("unrecognized %s value: %q", e.Kind, e.Value)
}

var categories = map[string]Category{
	string(CategoryBilling):   CategoryBilling,
	string(CategoryDispatch):  CategoryDispatch,
	string(CategorySensor):    CategorySensor,
	string(CategoryMarketing): CategoryMarketing,
	string(CategoryGeneral):   CategoryGeneral,
}

var priorities = map[string]Priority{
	string(PriorityHigh):   PriorityHigh,
	string(PriorityMedium): PriorityMedium,
	string(PriorityLow):    PriorityLow,
}

var queues = map[string]Queue{
	string(QueueFinance):    QueueFinance,
	string(QueueDispatch):   QueueDispatch,
	string(QueueOps):        QueueOps,
	string(QueueAutomation): QueueAutomation,
	string(QueueSupport):    QueueSupport,
}

// ParseCategory converts a raw string into a Category.
func ParseCategory(s string) (Category, error) {
	if c, ok := categories[strings.TrimSpace(s)]; ok {
		return c, nil
	}
	return "", &UnknownValueError{Kind: "category", Value: s}
}

// ParsePriority converts a raw string into a Priority.
func ParsePriority(s string) (Priority, error) {
	if p, ok := priorities[strings.TrimSpace(s)]; ok {
		return p, nil
	}
	return "", &UnknownValueError{Kind: "priority", Value: s}
}

// ParseQueue converts a raw string into a Queue.
func ParseQueue(s string) (Queue, error) {
	if q, ok := queues[strings.TrimSpace(s)]; ok {
		return q, nil
	}
	return "", &UnknownValueError{Kind: "queue", Value: s}
}

// Classification is the structured result of classifying one message.
type Classification struct {
	Category         Category `json:"category"`
	Priority         Priority `json:"priority"`
	Intent           string   `json:"intent"`
	RecommendedQueue Queue    `json:"recommended_queue"`
	Confidence       float64  `json:"confidence"`
}

// NormalizeIntent trims the intent and capitalizes its first letter.
func NormalizeIntent(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Tone is the writing style the draft agent adopts for a reply.
type Tone string

const (
	// ToneDefault is used for categories without a dedicated tone.
	ToneDefault Tone = "neutral and helpful"
)

var tones = map[Category]Tone{
	CategoryBilling:   "reassuring and precise",
	CategorySensor:    "calm and technically confident",
	CategoryDispatch:  "prompt and respectful",
	CategoryMarketing: "brief and compliant",
	CategoryGeneral:   ToneDefault,
}

// ToneFor returns the reply tone for a category.
func ToneFor(c Category) Tone {
	if t, ok := tones[c]; ok {
		return t
	}
	return ToneDefault
}
