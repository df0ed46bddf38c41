package vectorstore

import (
	"context"
	"fmt"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/contracts"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/models"
)

// Index pairs one named index in a vector store with an embedding driver,
// giving callers the query-level contract the workflow consumes: text in,
// ranked hits out.
type Index struct {
	name  string
	emb   contracts.EmbeddingDriver
	store contracts.VectorStoreDriver
}

// NewIndex creates a semantic view over the named index.
func NewIndex(name string, emb contracts.EmbeddingDriver, store contracts.VectorStoreDriver) *Index {
	return &Index{name: name, emb: emb, store: store}
}

// Name returns the underlying index name.
func (ix *Index) Name() string { return ix.name }

// Add embeds docs' content and upserts them into the index. Docs arrive
// with content and metadata; vectors are filled here.
func (ix *Index) Add(ctx context.Context, docs []models.VectorDoc) error {
	if len(docs) == 0 {
		return nil
	}

	batchSize := ix.emb.MaxBatchSize()
	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, d := range batch {
			texts[i] = d.Content
		}
		vectors, err := ix.emb.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedding driver returned %d vectors for %d texts", len(vectors), len(batch))
		}
		for i := range batch {
			batch[i].Vector = vectors[i]
		}
		if err := ix.store.Upsert(ctx, ix.name, batch); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// Search embeds the query and returns the topK nearest documents.
func (ix *Index) Search(ctx context.Context, query string, topK int) ([]models.SearchResult, error) {
	if topK <= 0 {
		return nil, nil
	}
	vectors, err := ix.emb.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}
	return ix.store.Search(ctx, ix.name, vectors[0], topK, nil)
}

// Drop removes the entire index.
func (ix *Index) Drop(ctx context.Context) error {
	return ix.store.DropIndex(ctx, ix.name)
}
