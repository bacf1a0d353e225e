// Package server wires the triage agents behind the HTTP boundary.
package server

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/dsqlabs/triagent/internal/agents"
	"github.com/dsqlabs/triagent/internal/ingest"
	"github.com/dsqlabs/triagent/internal/llm"
	"github.com/dsqlabs/triagent/internal/metrics"
	"github.com/dsqlabs/triagent/pkg/cache"
	"github.com/dsqlabs/triagent/pkg/config"
	"github.com/dsqlabs/triagent/pkg/middleware"
)

// Version is the service version reported by the root endpoint.
const Version = "0.1.0"

// Server is the triage HTTP service.
type Server struct {
	cfg *config.Config
	app *fiber.App

	classifier *agents.Executor
	drafter    *agents.Executor

	sources     map[string]*ingest.Fetcher
	resultCache *cache.TieredCache
}

// New assembles the server: LLM client, result cache, agents, ingestion
// sources, middleware and routes.
func New(cfg *config.Config) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      "Triagent",
		ServerHeader: "Triagent/" + Version,
		ErrorHandler: errorHandler,
	})

	client := llm.NewOpenAIClient(llm.OpenAIConfig{
		BaseURL:           cfg.LLM.BaseURL,
		APIKey:            cfg.LLM.APIKey,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
	})

	resultCache := cache.NewTieredCache(cache.TieredConfig{
		MaxEntries:    cfg.Cache.MaxEntries,
		TTL:           cfg.Cache.TTL,
		RedisEnabled:  cfg.Cache.RedisEnabled,
		RedisHost:     cfg.Cache.RedisHost,
		RedisPassword: cfg.Cache.RedisPassword,
		RedisDB:       cfg.Cache.RedisDB,
	})

	s := &Server{
		cfg:         cfg,
		app:         app,
		resultCache: resultCache,
	}

	s.classifier = agents.NewExecutor(agents.NewClassifyAgent(client, resultCache, agents.ModelConfig{
		PrimaryModel:        cfg.LLM.PrimaryModel,
		FallbackModel:       cfg.LLM.FallbackModel,
		ConfidenceThreshold: cfg.Agents.ConfidenceThreshold,
		Temperature:         cfg.Agents.ClassifyTemperature,
		MaxTokens:           cfg.Agents.ClassifyMaxTokens,
	}))

	s.drafter = agents.NewExecutor(agents.NewDraftAgent(client, resultCache, agents.ModelConfig{
		PrimaryModel:        cfg.LLM.PrimaryModel,
		FallbackModel:       cfg.LLM.FallbackModel,
		ConfidenceThreshold: cfg.Agents.ConfidenceThreshold,
		Temperature:         cfg.Agents.DraftTemperature,
		MaxTokens:           cfg.Agents.DraftMaxTokens,
	}))

	gmail := ingest.NewFetcher(ingest.NewGmailClient(), cfg.Ingestion.MaxRetries)
	phone := ingest.NewFetcher(ingest.NewTwilioClient(), cfg.Ingestion.MaxRetries)
	s.sources = map[string]*ingest.Fetcher{
		"gmail": gmail,
		"phone": phone,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	s.app.Use(middleware.Logging(middleware.LoggingConfig{
		SkipPaths: []string{"/health", "/ready", "/metrics"},
	}))
	s.app.Use(middleware.Metrics(middleware.MetricsConfig{
		Requests:  metrics.HTTPRequests,
		SkipPaths: []string{"/health", "/ready", "/metrics"},
	}))
}

func (s *Server) setupRoutes() {
	s.app.Get("/", s.handleRoot)
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/ready", s.handleReady)

	if s.cfg.Monitoring.Prometheus.Enabled {
		s.app.Get("/metrics", middleware.PrometheusHandler())
	}

	messages := s.app.Group("/api/v1/messages")
	messages.Post("/classify", s.handleClassify)
	messages.Post("/draft", s.handleDraft)
	messages.Post("/triage", s.handleTriage)
	messages.Post("/ingest", s.handleIngest)

	s.app.Post("/webhook/incoming", s.handleWebhook)
}

// errorHandler maps unhandled route errors onto the error body shape.
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":      message,
		"request_id": middleware.GetRequestID(c),
	})
}

// Start begins serving. It blocks until the listener stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("HTTP server listening")
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully and releases cache resources.
func (s *Server) Shutdown(ctx context.Context) error {
	defer func() {
		_ = s.resultCache.Close()
	}()
	return s.app.ShutdownWithContext(ctx)
}
