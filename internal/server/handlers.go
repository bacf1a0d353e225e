package server

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/dsqlabs/triagent/internal/agents"
	"github.com/dsqlabs/triagent/internal/ingest"
	"github.com/dsqlabs/triagent/internal/triage"
	"github.com/dsqlabs/triagent/pkg/middleware"
)

// MessageRequest is the body accepted by the classify and triage routes.
type MessageRequest struct {
	Sender   string            `json:"sender"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ClassificationInput is the prior classification supplied to the draft
// route.
type ClassificationInput struct {
	Category   string  `json:"category"`
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence,omitempty"`
}

// DraftRequest is the body accepted by the draft route.
type DraftRequest struct {
	Sender         string              `json:"sender"`
	Content        string              `json:"content"`
	Classification ClassificationInput `json:"classification"`
	Metadata       map[string]string   `json:"metadata,omitempty"`
}

// TriageResponse composes classification and draft results.
type TriageResponse struct {
	Classification *agents.Output `json:"classification"`
	Draft          *agents.Output `json:"draft"`
}

// IngestResponse carries the ingested message plus the triage results.
type IngestResponse struct {
	Message        *ingest.Message `json:"message"`
	Classification *agents.Output  `json:"classification"`
	Draft          *agents.Output  `json:"draft"`
}

func (s *Server) requestContext(c fiber.Ctx) context.Context {
	return agents.WithRequestID(c.Context(), middleware.GetRequestID(c))
}

// execute runs one agent invocation, mapping validation failures to 422.
func (s *Server) execute(c fiber.Ctx, exec *agents.Executor, in *agents.Input) (*agents.Output, error) {
	out, err := exec.Execute(s.requestContext(c), in)
	if err != nil {
		var verr *agents.ValidationError
		if errors.As(err, &verr) {
			return nil, c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":      verr.Error(),
				"request_id": middleware.GetRequestID(c),
			})
		}
		return nil, err
	}
	return out, nil
}

func (s *Server) handleClassify(c fiber.Ctx) error {
	var req MessageRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	out, err := s.execute(c, s.classifier, &agents.Input{
		Sender:   req.Sender,
		Content:  req.Content,
		Metadata: req.Metadata,
	})
	if out == nil {
		return err
	}

	return c.JSON(out)
}

func (s *Server) handleDraft(c fiber.Ctx) error {
	var req DraftRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	out, err := s.execute(c, s.drafter, &agents.Input{
		Sender:  req.Sender,
		Content: req.Content,
		Classification: &triage.Classification{
			Category:   triage.Category(req.Classification.Category),
			Intent:     req.Classification.Intent,
			Confidence: req.Classification.Confidence,
		},
		Metadata: req.Metadata,
	})
	if out == nil {
		return err
	}

	return c.JSON(out)
}

func (s *Server) handleTriage(c fiber.Ctx) error {
	var req MessageRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	resp, err := s.triage(c, &agents.Input{
		Sender:   req.Sender,
		Content:  req.Content,
		Metadata: req.Metadata,
	})
	if resp == nil {
		return err
	}

	return c.JSON(resp)
}

// triage runs classification then drafting, feeding the classification
// into the draft prompt. The fallback classification still yields a
// draft, so the caller always gets both halves.
func (s *Server) triage(c fiber.Ctx, in *agents.Input) (*TriageResponse, error) {
	classification, err := s.execute(c, s.classifier, in)
	if classification == nil {
		return nil, err
	}

	draftIn := &agents.Input{
		Sender:  in.Sender,
		Content: in.Content,
		Classification: &triage.Classification{
			Category:   classification.Category,
			Priority:   classification.Priority,
			Intent:     classification.Intent,
			Confidence: classification.Confidence,
		},
		Metadata: in.Metadata,
	}

	draft, err := s.execute(c, s.drafter, draftIn)
	if draft == nil {
		return nil, err
	}

	return &TriageResponse{
		Classification: classification,
		Draft:          draft,
	}, nil
}

func (s *Server) handleIngest(c fiber.Ctx) error {
	sourceName := c.Query("source", "gmail")

	fetcher, ok := s.sources[sourceName]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown source: " + sourceName,
		})
	}

	msg, err := fetcher.Fetch(s.requestContext(c))
	if err != nil {
		log.Warn().Err(err).Str("source", sourceName).Msg("ingestion failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":      err.Error(),
			"request_id": middleware.GetRequestID(c),
		})
	}

	resp, err := s.triage(c, &agents.Input{
		Sender:   msg.Sender,
		Content:  msg.Content,
		Metadata: msg.Metadata,
	})
	if resp == nil {
		return err
	}

	return c.JSON(IngestResponse{
		Message:        msg,
		Classification: resp.Classification,
		Draft:          resp.Draft,
	})
}

func (s *Server) handleRoot(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "Triagent",
		"status":  "running",
		"version": Version,
	})
}

func (s *Server) handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleReady(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ready"})
}
