// Package models defines the shared domain types for the Assurance AI agent:
// debugging sessions, telemetry events, retrieved context, and the chat API
// request/response shapes.
package models

import "time"

// ── Conversation ────────────────────────────────────────────

// ChatMessage is a single turn in a session's conversation history.
type ChatMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one debugging session: its conversation history plus the raw
// Assurance events uploaded for it. Sessions live in memory only; a restart
// drops them.
type Session struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	History   []ChatMessage `json:"history"`
	Events    []Event       `json:"events,omitempty"`
}

// ── Telemetry Events ────────────────────────────────────────

// Event is one Assurance telemetry record from a monitored mobile app.
// Payload is opaque: SDK-extension events carry ACPExtensionEvent* fields,
// backend-service events carry status/logLevel/message fields.
type Event struct {
	ID        string                 `json:"eventId,omitempty"`
	Vendor    string                 `json:"vendor,omitempty"`
	Type      string                 `json:"type,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// EventUploadResult reports the outcome of an event upload.
type EventUploadResult struct {
	Received   int `json:"received"`
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
}

// ── Vector Store ────────────────────────────────────────────

// VectorDoc is a single embedded document in a vector index.
type VectorDoc struct {
	ID        string            `json:"id"`
	Index     string            `json:"index"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Vector    []float64         `json:"vector,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// SearchResult is a ranked nearest-neighbor hit.
type SearchResult struct {
	Doc   VectorDoc `json:"doc"`
	Score float64   `json:"score"`
}

// ── Knowledge Base ──────────────────────────────────────────

// KBDocument is a documentation source submitted for ingestion.
type KBDocument struct {
	ID       string            `json:"id,omitempty"`
	Title    string            `json:"title"`
	Source   string            `json:"source,omitempty"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// KBIngestResult reports the outcome of a documentation ingest.
type KBIngestResult struct {
	DocumentsProcessed int   `json:"documents_processed"`
	ChunksCreated      int   `json:"chunks_created"`
	VectorsUpserted    int   `json:"vectors_upserted"`
	ElapsedMs          int64 `json:"elapsed_ms"`
}

// ── Chat API ────────────────────────────────────────────────

// ChatRequest is the body of POST /sessions/{id}/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatMetadata carries observability data about one chat turn.
type ChatMetadata struct {
	Intent            string `json:"intent"`
	EventContextUsed  bool   `json:"eventContextUsed"`
	KnowledgeBaseUsed bool   `json:"knowledgeBaseUsed"`
	EventsRetrieved   int    `json:"eventsRetrieved"`
	DocsRetrieved     int    `json:"docsRetrieved"`
	EventsIncluded    int    `json:"eventsIncluded"`
	ErrorCount        int    `json:"errorCount,omitempty"`
	TokensUsed        int    `json:"tokensUsed"`
}

// ChatResponse is the result of one chat turn.
type ChatResponse struct {
	Response string       `json:"response"`
	Metadata ChatMetadata `json:"metadata"`
}
