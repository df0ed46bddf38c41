// Package handlers implements the HTTP API: session lifecycle, event
// upload, chat turns, and knowledge-base management.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/kb"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/sessions"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/workflow"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/models"
)

// Handlers holds the API's dependencies.
type Handlers struct {
	Sessions *sessions.Store
	Pipeline *workflow.Pipeline
	KB       *kb.KnowledgeBase
}

// CreateSession handles POST /api/v1/sessions
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	session := h.Sessions.Create(body.UserID)
	respondJSON(w, http.StatusCreated, session)
}

// ListSessions handles GET /api/v1/sessions
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.Sessions.List())
}

// GetSession handles GET /api/v1/sessions/{sessionID}
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.Sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondNotFound(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// DeleteSession handles DELETE /api/v1/sessions/{sessionID}
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondNotFound(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadEvents handles POST /api/v1/sessions/{sessionID}/events
func (h *Handlers) UploadEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var body struct {
		Events []models.Event `json:"events"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(body.Events) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "events array is required"})
		return
	}

	result, err := h.Sessions.AddEvents(r.Context(), sessionID, body.Events)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			respondNotFound(w, err)
			return
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("Event upload failed")
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetHistory handles GET /api/v1/sessions/{sessionID}/history
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.Sessions.History(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondNotFound(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

// Chat handles POST /api/v1/sessions/{sessionID}/chat
//
// Session existence is the one precondition surfaced to the caller; the
// pipeline itself degrades rather than fails, so once it runs there is
// always a response to append and return.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if _, err := h.Sessions.Get(sessionID); err != nil {
		respondNotFound(w, err)
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Message == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	history, err := h.Sessions.History(sessionID)
	if err != nil {
		respondNotFound(w, err)
		return
	}
	eventIndex, err := h.Sessions.EventIndex(sessionID)
	if err != nil {
		respondNotFound(w, err)
		return
	}

	final := h.Pipeline.Invoke(r.Context(), workflow.State{
		SessionID:   sessionID,
		UserMessage: req.Message,
		History:     history,
		EventIndex:  eventIndex,
		DocIndex:    h.KB,
	})

	now := time.Now().UTC()
	if err := h.Sessions.AddMessage(sessionID, models.ChatMessage{Role: "user", Content: req.Message, Timestamp: now}); err != nil {
		respondNotFound(w, err)
		return
	}
	if err := h.Sessions.AddMessage(sessionID, models.ChatMessage{Role: "assistant", Content: final.Response, Timestamp: now}); err != nil {
		respondNotFound(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.ChatResponse{
		Response: final.Response,
		Metadata: final.Metadata(),
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondNotFound(w http.ResponseWriter, err error) {
	respondJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
}
