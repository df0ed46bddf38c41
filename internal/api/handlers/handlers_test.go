package handlers_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/api"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/api/handlers"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/config"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/events"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/kb"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/sessions"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/vectorstore"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/workflow"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/models"
)

type hashEmbedder struct{}

func (hashEmbedder) Kind() string      { return "hash" }
func (hashEmbedder) Dimensions() int   { return 8 }
func (hashEmbedder) MaxBatchSize() int { return 16 }

func (hashEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		sum := sha256.Sum256([]byte(text))
		vec := make([]float64, 8)
		for j := range vec {
			vec[j] = float64(sum[j])/255.0 + 0.01
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// scriptedModel answers "general" to classification prompts and a fixed
// response otherwise.
type scriptedModel struct{}

func (scriptedModel) Complete(_ context.Context, prompt string) (string, error) {
	if bytes.Contains([]byte(prompt), []byte("exactly one word")) {
		return "general", nil
	}
	return "grounded answer", nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	emb := hashEmbedder{}
	store := vectorstore.NewEmbeddedStore()
	detector := events.NewDetector(nil)
	sessionStore := sessions.NewStore(emb, store, detector)
	knowledgeBase := kb.New(vectorstore.NewIndex(kb.IndexName, emb, store), kb.DefaultChunkerConfig())
	pipeline := workflow.NewPipeline(scriptedModel{}, workflow.Config{
		TotalBudget:         8000,
		SystemPromptReserve: 500,
		ResponseReserve:     1000,
		DebugEventK:         15,
		DefaultEventK:       5,
		DocCap:              3,
	})

	h := &handlers.Handlers{
		Sessions: sessionStore,
		Pipeline: pipeline,
		KB:       knowledgeBase,
	}
	return api.NewRouter(&config.Config{Version: "test"}, h)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, router http.Handler) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/sessions", map[string]string{"userId": "dev-1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session status = %d, want 201", rec.Code)
	}
	var session models.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.ID == "" {
		t.Fatal("created session has empty ID")
	}
	return session.ID
}

func TestSessionLifecycle(t *testing.T) {
	router := newTestRouter(t)
	id := createSession(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/sessions/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get session status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete session status = %d, want 204", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/sessions/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get deleted session status = %d, want 404", rec.Code)
	}
}

func TestChatUnknownSessionIs404(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/sessions/nope/chat", models.ChatRequest{Message: "hi"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("chat status = %d, want 404", rec.Code)
	}
}

func TestEventUploadRejectsDuplicates(t *testing.T) {
	router := newTestRouter(t)
	id := createSession(t, router)

	batch := map[string]interface{}{
		"events": []models.Event{
			{ID: "ev-1", Vendor: "com.adobe.griffon", Type: "generic"},
			{ID: "ev-1", Vendor: "com.adobe.griffon", Type: "generic"},
		},
	}
	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/events", id), batch)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var result models.EventUploadResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Added != 1 || result.Duplicates != 1 {
		t.Errorf("result = %+v, want 1 added, 1 duplicate", result)
	}
}

func TestChatAppendsHistory(t *testing.T) {
	router := newTestRouter(t)
	id := createSession(t, router)

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/chat", id), models.ChatRequest{Message: "what is assurance"})
	if rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp models.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Response != "grounded answer" {
		t.Errorf("response = %q, want scripted answer", resp.Response)
	}
	if resp.Metadata.Intent != "general" {
		t.Errorf("intent = %q, want general", resp.Metadata.Intent)
	}

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/sessions/%s/history", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d, want 200", rec.Code)
	}
	var body struct {
		History []models.ChatMessage `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(body.History) != 2 {
		t.Fatalf("history length = %d, want user + assistant", len(body.History))
	}
	if body.History[0].Role != "user" || body.History[1].Role != "assistant" {
		t.Errorf("history roles = %q, %q, want user then assistant", body.History[0].Role, body.History[1].Role)
	}
}

func TestKnowledgeBaseIngestAndQuery(t *testing.T) {
	router := newTestRouter(t)

	ingest := map[string]interface{}{
		"documents": []models.KBDocument{
			{Title: "Assurance Overview", Content: "Assurance lets you inspect SDK events in real time."},
		},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/kb/documents", ingest)
	if rec.Code != http.StatusOK {
		t.Fatalf("ingest status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var result models.KBIngestResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.DocumentsProcessed != 1 || result.ChunksCreated == 0 {
		t.Errorf("ingest result = %+v", result)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/kb/query", map[string]interface{}{"query": "inspect SDK events"})
	if rec.Code != http.StatusOK {
		t.Fatalf("query status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var queryResp struct {
		Results []models.SearchResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &queryResp); err != nil {
		t.Fatalf("decode query response: %v", err)
	}
	if len(queryResp.Results) == 0 {
		t.Error("query returned no results")
	}
	if got := queryResp.Results[0].Doc.Metadata["title"]; got != "Assurance Overview" {
		t.Errorf("title = %q, want Assurance Overview", got)
	}
}
