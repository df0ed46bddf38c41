package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/models"
)

// IngestDocuments handles POST /api/v1/kb/documents
func (h *Handlers) IngestDocuments(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Documents []models.KBDocument `json:"documents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(body.Documents) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "documents array is required"})
		return
	}

	result, err := h.KB.Ingest(r.Context(), body.Documents)
	if err != nil {
		log.Error().Err(err).Msg("Knowledge-base ingest failed")
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// QueryDocuments handles POST /api/v1/kb/query
func (h *Handlers) QueryDocuments(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
		TopK  int    `json:"topK"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if body.Query == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}
	if body.TopK <= 0 {
		body.TopK = 5
	}

	hits, err := h.KB.Search(r.Context(), body.Query, body.TopK)
	if err != nil {
		log.Error().Err(err).Msg("Knowledge-base query failed")
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"query":   body.Query,
		"results": hits,
	})
}
