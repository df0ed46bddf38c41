package kb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/vectorstore"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/models"
)

// IndexName is the shared documentation index in the vector store.
const IndexName = "kb"

// KnowledgeBase ingests documentation and retrieves it semantically.
// It implements contracts.SemanticIndex for the workflow's doc retrieval.
type KnowledgeBase struct {
	index   *vectorstore.Index
	chunker ChunkerConfig
}

// New creates a knowledge base over the given semantic index.
func New(index *vectorstore.Index, chunker ChunkerConfig) *KnowledgeBase {
	return &KnowledgeBase{index: index, chunker: chunker}
}

// Ingest chunks documents, embeds the chunks, and upserts them into the
// documentation index.
func (kb *KnowledgeBase) Ingest(ctx context.Context, documents []models.KBDocument) (*models.KBIngestResult, error) {
	start := time.Now()

	if len(documents) == 0 {
		return &models.KBIngestResult{}, nil
	}

	now := time.Now()
	var docs []models.VectorDoc
	for docIdx, doc := range documents {
		source := doc.ID
		if source == "" {
			source = uuid.NewString()
		}
		for _, chunk := range ChunkText(doc.Content, kb.chunker) {
			meta := map[string]string{
				"title":       doc.Title,
				"source":      source,
				"chunk_index": fmt.Sprintf("%d", chunk.Index),
				"doc_index":   fmt.Sprintf("%d", docIdx),
			}
			if doc.Source != "" {
				meta["origin"] = doc.Source
			}
			for k, v := range doc.Metadata {
				meta[k] = v
			}
			docs = append(docs, models.VectorDoc{
				ID:        uuid.NewString(),
				Index:     IndexName,
				Content:   chunk.Text,
				Metadata:  meta,
				CreatedAt: now,
			})
		}
	}

	log.Info().
		Int("documents", len(documents)).
		Int("chunks", len(docs)).
		Msg("Chunking complete")

	if err := kb.index.Add(ctx, docs); err != nil {
		return nil, fmt.Errorf("ingest documentation: %w", err)
	}

	elapsed := time.Since(start)
	log.Info().
		Int("documents", len(documents)).
		Int("chunks_created", len(docs)).
		Dur("elapsed", elapsed).
		Msg("Knowledge base ingest complete")

	return &models.KBIngestResult{
		DocumentsProcessed: len(documents),
		ChunksCreated:      len(docs),
		VectorsUpserted:    len(docs),
		ElapsedMs:          elapsed.Milliseconds(),
	}, nil
}

// Search returns the topK documentation chunks nearest to query.
func (kb *KnowledgeBase) Search(ctx context.Context, query string, topK int) ([]models.SearchResult, error) {
	return kb.index.Search(ctx, query, topK)
}

// Drop removes the entire documentation index.
func (kb *KnowledgeBase) Drop(ctx context.Context) error {
	return kb.index.Drop(ctx)
}
