// Package vectorstore provides the nearest-neighbor index drivers.
// Ships: embedded (in-memory brute-force cosine, the default) and pgvector
// (user-provided PostgreSQL). The workflow treats either as a black box.
package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/models"
)

// EmbeddedStore is a lightweight in-memory vector store using brute-force
// cosine similarity search. Session event indexes are small (hundreds to a
// few thousand events), so brute force is fine; use pgvector for a large
// shared knowledge base.
type EmbeddedStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]*models.VectorDoc // index → id → doc
}

// NewEmbeddedStore creates an in-memory vector store.
func NewEmbeddedStore() *EmbeddedStore {
	return &EmbeddedStore{
		docs: make(map[string]map[string]*models.VectorDoc),
	}
}

func (s *EmbeddedStore) Kind() string { return "embedded" }

func (s *EmbeddedStore) Upsert(_ context.Context, index string, docs []models.VectorDoc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.docs[index]
	if !ok {
		bucket = make(map[string]*models.VectorDoc)
		s.docs[index] = bucket
	}

	now := time.Now()
	for _, d := range docs {
		cp := d
		cp.Index = index
		if cp.ID == "" {
			cp.ID = uuid.NewString()
		}
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = now
		}
		bucket[cp.ID] = &cp
	}
	return nil
}

func (s *EmbeddedStore) Search(_ context.Context, index string, vector []float64, topK int, filter map[string]string) ([]models.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 {
		return nil, nil
	}

	type scored struct {
		doc   *models.VectorDoc
		score float64
	}
	var candidates []scored

	for _, d := range s.docs[index] {
		if len(d.Vector) != len(vector) {
			continue
		}
		match := true
		for fk, fv := range filter {
			if d.Metadata[fk] != fv {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		candidates = append(candidates, scored{doc: d, score: cosineSimilarity(vector, d.Vector)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}

	results := make([]models.SearchResult, topK)
	for i := 0; i < topK; i++ {
		cp := *candidates[i].doc
		results[i] = models.SearchResult{Doc: cp, Score: candidates[i].score}
	}
	return results, nil
}

func (s *EmbeddedStore) DropIndex(_ context.Context, index string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, index)
	return nil
}

func (s *EmbeddedStore) Count(_ context.Context, index string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs[index]), nil
}

func (s *EmbeddedStore) HealthCheck(_ context.Context) error {
	return nil // in-memory, always healthy
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
