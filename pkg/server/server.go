// Package server provides the public entry point for initializing the
// Assurance AI agent service: it composes configuration, telemetry, the
// embedding and vector-store drivers, the session store, the knowledge
// base, and the chat pipeline into a ready HTTP handler.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/api"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/api/handlers"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/config"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/embeddings"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/events"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/kb"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/llm"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/sessions"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/telemetry"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/vectorstore"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/workflow"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/contracts"
)

// Server holds the initialized service.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush
	// telemetry and close the vector store.
	ShutdownFunc func(context.Context) error
}

// New initializes all components from environment configuration and
// returns a ready Server.
func New(ctx context.Context) (*Server, error) {
	cfg := config.Load()

	otelShutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	emb, err := embeddings.New(cfg.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("init embeddings: %w", err)
	}
	log.Info().Str("provider", emb.Kind()).Int("dimensions", emb.Dimensions()).Msg("Embedding driver initialized")

	var vectorDB contracts.VectorStoreDriver
	var closeStore func()
	switch cfg.VectorStore.Kind {
	case "pgvector":
		pg, err := vectorstore.NewPgvectorStore(ctx, cfg.VectorStore.URL, emb.Dimensions())
		if err != nil {
			return nil, fmt.Errorf("init pgvector: %w", err)
		}
		vectorDB = pg
		closeStore = pg.Close
	default:
		vectorDB = vectorstore.NewEmbeddedStore()
		closeStore = func() {}
	}
	log.Info().Str("kind", vectorDB.Kind()).Msg("Vector store initialized")

	model, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("init language model: %w", err)
	}
	log.Info().Str("provider", cfg.LLM.Provider).Str("model", cfg.LLM.Model).Msg("Language model initialized")

	detector := events.NewDetector(cfg.Workflow.ErrorRules)
	sessionStore := sessions.NewStore(emb, vectorDB, detector)
	knowledgeBase := kb.New(
		vectorstore.NewIndex(kb.IndexName, emb, vectorDB),
		kb.DefaultChunkerConfig(),
	)
	pipeline := workflow.NewPipeline(model, workflow.ConfigFrom(cfg.Workflow))

	h := &handlers.Handlers{
		Sessions: sessionStore,
		Pipeline: pipeline,
		KB:       knowledgeBase,
	}
	router := api.NewRouter(cfg, h)

	shutdown := func(ctx context.Context) error {
		closeStore()
		return otelShutdown(ctx)
	}

	return &Server{
		Handler:      router,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}
