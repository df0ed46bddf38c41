// Package sessions provides in-memory session management for debugging
// conversations and the Assurance events uploaded into them.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/events"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/vectorstore"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/contracts"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/models"
)

// ErrNotFound is returned when a session ID does not exist.
var ErrNotFound = errors.New("session not found")

// record guards one session and its per-session event index. The per-record
// mutex keeps concurrent uploads to the same session serialized without
// blocking other sessions.
type record struct {
	mu      sync.Mutex
	session *models.Session
	seen    map[string]struct{} // dedup keys of uploaded events
	index   *vectorstore.Index
}

// Store is a thread-safe in-memory session store. Each session owns a named
// vector index ("session:<id>") holding its embedded events.
type Store struct {
	mu       sync.RWMutex
	records  map[string]*record
	emb      contracts.EmbeddingDriver
	vectorDB contracts.VectorStoreDriver
	detector *events.Detector
}

// NewStore creates a session store backed by the given embedding driver and
// vector store.
func NewStore(emb contracts.EmbeddingDriver, vectorDB contracts.VectorStoreDriver, detector *events.Detector) *Store {
	return &Store{
		records:  make(map[string]*record),
		emb:      emb,
		vectorDB: vectorDB,
		detector: detector,
	}
}

// indexName returns the vector index name for a session.
func indexName(sessionID string) string {
	return "session:" + sessionID
}

// Create registers a new session and returns it.
func (s *Store) Create(userID string) *models.Session {
	now := time.Now().UTC()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[session.ID] = &record{
		session: session,
		seen:    make(map[string]struct{}),
		index:   vectorstore.NewIndex(indexName(session.ID), s.emb, s.vectorDB),
	}

	copy := *session
	return &copy
}

// Get returns a snapshot of the session.
func (s *Store) Get(sessionID string) (*models.Session, error) {
	rec, err := s.record(sessionID)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	copy := *rec.session
	copy.History = append([]models.ChatMessage(nil), rec.session.History...)
	copy.Events = append([]models.Event(nil), rec.session.Events...)
	return &copy, nil
}

// List returns snapshots of all sessions, without history or events.
func (s *Store) List() []models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Session, 0, len(s.records))
	for _, rec := range s.records {
		rec.mu.Lock()
		copy := *rec.session
		copy.History = nil
		copy.Events = nil
		rec.mu.Unlock()
		result = append(result, copy)
	}
	return result
}

// Delete removes a session and drops its event index.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	rec, ok := s.records[sessionID]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.records, sessionID)
	s.mu.Unlock()

	if err := rec.index.Drop(ctx); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to drop session event index")
	}
	return nil
}

// AddMessage appends a chat message to the session history.
func (s *Store) AddMessage(sessionID string, msg models.ChatMessage) error {
	rec, err := s.record(sessionID)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	rec.session.History = append(rec.session.History, msg)
	rec.session.UpdatedAt = time.Now().UTC()
	return nil
}

// History returns the session's chat history in chronological order.
func (s *Store) History(sessionID string) ([]models.ChatMessage, error) {
	rec, err := s.record(sessionID)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]models.ChatMessage(nil), rec.session.History...), nil
}

// AddEvents uploads events into a session: duplicates (by event ID, or by
// content fingerprint when the ID is missing) are dropped, the rest are
// rendered, embedded and upserted into the session's event index.
func (s *Store) AddEvents(ctx context.Context, sessionID string, batch []models.Event) (*models.EventUploadResult, error) {
	rec, err := s.record(sessionID)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	result := &models.EventUploadResult{Received: len(batch)}
	var fresh []models.Event
	// keys holds the dedup key recorded for each fresh event. For ID-less
	// events that key is the content fingerprint, which Key() no longer
	// returns once an ID is assigned below, so it must be remembered here
	// for rollback.
	var keys []string
	var docs []models.VectorDoc
	for _, ev := range batch {
		key := events.Key(ev)
		if _, dup := rec.seen[key]; dup {
			result.Duplicates++
			continue
		}
		rec.seen[key] = struct{}{}

		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		fresh = append(fresh, ev)
		keys = append(keys, key)
		docs = append(docs, models.VectorDoc{
			ID:       ev.ID,
			Index:    rec.index.Name(),
			Content:  events.Render(ev),
			Metadata: events.Metadata(ev, s.detector.IsError(ev)),
		})
	}

	if len(docs) > 0 {
		if err := rec.index.Add(ctx, docs); err != nil {
			// Roll back dedup marks so a retry can succeed.
			for _, key := range keys {
				delete(rec.seen, key)
			}
			return nil, fmt.Errorf("index events: %w", err)
		}
	}

	rec.session.Events = append(rec.session.Events, fresh...)
	rec.session.UpdatedAt = time.Now().UTC()
	result.Added = len(fresh)

	log.Info().
		Str("session_id", sessionID).
		Int("received", result.Received).
		Int("added", result.Added).
		Int("duplicates", result.Duplicates).
		Msg("Events uploaded")
	return result, nil
}

// EventIndex returns the session's semantic event index.
func (s *Store) EventIndex(sessionID string) (*vectorstore.Index, error) {
	rec, err := s.record(sessionID)
	if err != nil {
		return nil, err
	}
	return rec.index, nil
}

func (s *Store) record(sessionID string) (*record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return rec, nil
}
