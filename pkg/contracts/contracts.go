// Package contracts defines the service interfaces the workflow and API
// layers depend on. Concrete drivers live under internal/; swapping an
// implementation (embedded vector store for pgvector, OpenAI for Ollama)
// is a wiring change in pkg/server, not a pipeline change.
package contracts

import (
	"context"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/models"
)

// LanguageModel is a single-turn completion client. Both intent
// classification and response generation go through it; conversation
// history is threaded into the prompt by the caller, never kept by the
// model client.
type LanguageModel interface {
	// Complete sends one prompt and returns the model's text response.
	Complete(ctx context.Context, prompt string) (string, error)
}

// EmbeddingDriver turns text into vectors.
type EmbeddingDriver interface {
	// Kind returns the driver identifier (e.g. "openai", "ollama").
	Kind() string

	// Embed generates one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float64, error)

	// Dimensions returns the vector dimensionality this driver produces.
	Dimensions() int

	// MaxBatchSize returns the max texts per Embed call.
	MaxBatchSize() int
}

// VectorStoreDriver is a nearest-neighbor index over embedded documents,
// treated as a black box. Indexes are named: the shared knowledge base is
// one index, each session's private event index is another.
type VectorStoreDriver interface {
	Kind() string

	Upsert(ctx context.Context, index string, docs []models.VectorDoc) error

	// Search returns the topK documents nearest to vector, best first.
	Search(ctx context.Context, index string, vector []float64, topK int, filter map[string]string) ([]models.SearchResult, error)

	// DropIndex removes an entire index (used when a session is deleted).
	DropIndex(ctx context.Context, index string) error

	Count(ctx context.Context, index string) (int, error)

	HealthCheck(ctx context.Context) error
}

// SemanticIndex is the query-level view the retrieval node consumes: embed
// the query, search one index, return ranked hits. Both the per-session
// event index and the shared knowledge base implement it.
type SemanticIndex interface {
	Search(ctx context.Context, query string, topK int) ([]models.SearchResult, error)
}
