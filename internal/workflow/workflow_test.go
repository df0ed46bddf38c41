package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/tokens"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/workflow"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/models"
)

// fakeModel replays scripted completions in call order.
type fakeModel struct {
	replies []reply
	calls   int
}

type reply struct {
	text string
	err  error
}

func (m *fakeModel) Complete(_ context.Context, _ string) (string, error) {
	if m.calls >= len(m.replies) {
		return "", errors.New("no scripted reply")
	}
	r := m.replies[m.calls]
	m.calls++
	return r.text, r.err
}

// fakeIndex returns fixed hits or a fixed error.
type fakeIndex struct {
	hits []models.SearchResult
	err  error
}

func (ix *fakeIndex) Search(_ context.Context, _ string, topK int) ([]models.SearchResult, error) {
	if ix.err != nil {
		return nil, ix.err
	}
	if topK < len(ix.hits) {
		return ix.hits[:topK], nil
	}
	return ix.hits, nil
}

func testConfig() workflow.Config {
	return workflow.Config{
		TotalBudget:         8000,
		SystemPromptReserve: 500,
		ResponseReserve:     1000,
		DebugEventK:         15,
		DefaultEventK:       5,
		DocCap:              3,
	}
}

func eventHit(id, content string, isError bool) models.SearchResult {
	return models.SearchResult{
		Doc: models.VectorDoc{
			ID:       id,
			Content:  content,
			Metadata: map[string]string{"category": "sdk", "error": fmt.Sprintf("%t", isError)},
		},
		Score: 0.9,
	}
}

func docHit(title, content string) models.SearchResult {
	return models.SearchResult{
		Doc: models.VectorDoc{
			Content:  content,
			Metadata: map[string]string{"title": title, "source": "doc"},
		},
		Score: 0.8,
	}
}

func TestRealizedTokensWithinAvailable(t *testing.T) {
	cfg := testConfig()
	long := strings.Repeat("telemetry payload data ", 200)

	var rawEvents, rawDocs []models.SearchResult
	for i := 0; i < 30; i++ {
		rawEvents = append(rawEvents, eventHit(fmt.Sprintf("ev-%d", i), long, false))
		rawDocs = append(rawDocs, docHit(fmt.Sprintf("Doc %d", i), long))
	}
	var history []models.ChatMessage
	for i := 0; i < 50; i++ {
		history = append(history, models.ChatMessage{Role: "user", Content: long})
	}

	for _, intent := range []workflow.Intent{workflow.IntentDebug, workflow.IntentAnalytics, workflow.IntentGeneral} {
		state := workflow.FormatContexts(cfg, workflow.State{
			UserMessage: "why did tracking break",
			Intent:      intent,
			RawEvents:   rawEvents,
			RawDocs:     rawDocs,
			History:     history,
		})
		available := cfg.Available("why did tracking break")
		if got := state.Tokens.Total(); got > available {
			t.Errorf("intent %s: realized tokens %d exceed available %d", intent, got, available)
		}
	}
}

func TestDebugBudgetScenario(t *testing.T) {
	userMsg := "why did it fail"
	// Reserves of zero make Available exactly 1000 for this message.
	cfg := workflow.Config{
		TotalBudget: 1000 + tokens.Estimate(userMsg),
		DebugEventK: 15,
		DocCap:      3,
	}
	if got := cfg.Available(userMsg); got != 1000 {
		t.Fatalf("Available = %d, want 1000", got)
	}

	var rawEvents []models.SearchResult
	for i := 0; i < 20; i++ {
		rawEvents = append(rawEvents, eventHit(fmt.Sprintf("ev-%d", i), strings.Repeat("event detail ", 40), false))
	}

	state := workflow.FormatContexts(cfg, workflow.State{
		UserMessage: userMsg,
		Intent:      workflow.IntentDebug,
		RawEvents:   rawEvents,
	})

	// Debug split: events get 60% of 1000 = 600 tokens, 30 per event.
	if state.Tokens.Events > 600 {
		t.Errorf("event tokens = %d, exceed 600 slice", state.Tokens.Events)
	}
	if state.EventsIncluded == 0 {
		t.Error("no events included despite 600-token slice")
	}
	for _, block := range strings.Split(state.EventContext, "\n\n") {
		if got := tokens.Estimate(block); got > 30 {
			t.Errorf("included event uses %d tokens, exceeds 30-token per-event cap", got)
		}
	}
}

func TestHistoryDropsOldestFirst(t *testing.T) {
	cfg := workflow.Config{TotalBudget: 100}

	var history []models.ChatMessage
	for i := 0; i < 10; i++ {
		history = append(history, models.ChatMessage{
			Role:    "user",
			Content: fmt.Sprintf("message number %02d padded out a bit", i),
		})
	}

	state := workflow.FormatContexts(cfg, workflow.State{
		UserMessage: "q",
		Intent:      workflow.IntentGeneral,
		History:     history,
	})

	if state.HistoryContext == "" {
		t.Fatal("history context is empty")
	}
	// The formatted block must equal the chronological join of exactly the
	// last k messages for some k.
	lines := strings.Split(strings.TrimRight(state.HistoryContext, "\n"), "\n")
	k := len(lines)
	if k >= len(history) {
		t.Fatalf("expected truncation, got all %d messages", k)
	}
	var want strings.Builder
	for _, m := range history[len(history)-k:] {
		fmt.Fprintf(&want, "%s: %s\n", m.Role, m.Content)
	}
	if state.HistoryContext != want.String() {
		t.Errorf("history block is not the chronological tail:\ngot:\n%s\nwant:\n%s", state.HistoryContext, want.String())
	}
}

func TestDocTokensCountSeparators(t *testing.T) {
	// Available 100 for a 1-token message with zero reserves; general
	// intent gives docs 50 tokens. Each doc renders to exactly 25 tokens
	// ("[T]\n" + 96 chars), so the second costs 26 with the separator and
	// must be dropped.
	cfg := workflow.Config{TotalBudget: 101, DocCap: 3}
	content := strings.Repeat("d", 96)

	state := workflow.FormatContexts(cfg, workflow.State{
		UserMessage: "q",
		Intent:      workflow.IntentGeneral,
		RawDocs:     []models.SearchResult{docHit("T", content), docHit("T", content)},
	})

	if got := strings.Count(state.DocContext, content); got != 1 {
		t.Errorf("doc context holds %d docs, want 1", got)
	}
	if state.Tokens.Docs != 25 {
		t.Errorf("Tokens.Docs = %d, want 25", state.Tokens.Docs)
	}
	if got := tokens.Estimate(state.DocContext); got != state.Tokens.Docs {
		t.Errorf("Estimate(DocContext) = %d, Tokens.Docs = %d", got, state.Tokens.Docs)
	}
}

func TestParseIntentFallback(t *testing.T) {
	tests := []struct {
		in   string
		want workflow.Intent
	}{
		{"debug", workflow.IntentDebug},
		{" Debug \n", workflow.IntentDebug},
		{"ANALYTICS", workflow.IntentAnalytics},
		{"general", workflow.IntentGeneral},
		{"maybe", workflow.IntentGeneral},
		{"", workflow.IntentGeneral},
		{"debugging", workflow.IntentGeneral},
	}
	for _, tt := range tests {
		if got := workflow.ParseIntent(tt.in); got != tt.want {
			t.Errorf("ParseIntent(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestClassifierOOVDefaultsToGeneral(t *testing.T) {
	model := &fakeModel{replies: []reply{
		{text: "maybe"},
		{text: "here is an answer"},
	}}
	p := workflow.NewPipeline(model, testConfig())

	final := p.Invoke(context.Background(), workflow.State{UserMessage: "hmm"})
	if final.Intent != workflow.IntentGeneral {
		t.Errorf("intent = %s, want general", final.Intent)
	}
}

func TestClassifierErrorDefaultsToGeneral(t *testing.T) {
	model := &fakeModel{replies: []reply{
		{err: errors.New("model down")},
		{text: "answer"},
	}}
	p := workflow.NewPipeline(model, testConfig())

	final := p.Invoke(context.Background(), workflow.State{UserMessage: "hi"})
	if final.Intent != workflow.IntentGeneral {
		t.Errorf("intent = %s, want general", final.Intent)
	}
	if final.Response != "answer" {
		t.Errorf("response = %q, workflow should continue past classification failure", final.Response)
	}
}

func TestRetrievalFailureIsIsolated(t *testing.T) {
	hits := []models.SearchResult{eventHit("ev-1", "trackAction failed", true)}

	model := &fakeModel{replies: []reply{
		{text: "debug"},
		{text: "answer"},
	}}
	p := workflow.NewPipeline(model, testConfig())

	final := p.Invoke(context.Background(), workflow.State{
		UserMessage: "why did the error happen", // cue opens the kb gate
		EventIndex:  &fakeIndex{hits: hits},
		DocIndex:    &fakeIndex{err: errors.New("kb unavailable")},
	})
	if len(final.RawEvents) != 1 {
		t.Errorf("rawEvents = %d, want 1 despite doc-index failure", len(final.RawEvents))
	}
	if len(final.RawDocs) != 0 {
		t.Errorf("rawDocs = %d, want 0", len(final.RawDocs))
	}

	// Mirror case: event index fails, docs survive.
	model = &fakeModel{replies: []reply{
		{text: "general"},
		{text: "answer"},
	}}
	p = workflow.NewPipeline(model, testConfig())
	final = p.Invoke(context.Background(), workflow.State{
		UserMessage: "what is assurance",
		EventIndex:  &fakeIndex{err: errors.New("index gone")},
		DocIndex:    &fakeIndex{hits: []models.SearchResult{docHit("Assurance", "Assurance is a debugging product.")}},
	})
	if len(final.RawDocs) != 1 {
		t.Errorf("rawDocs = %d, want 1 despite event-index failure", len(final.RawDocs))
	}
	if len(final.RawEvents) != 0 {
		t.Errorf("rawEvents = %d, want 0", len(final.RawEvents))
	}
}

func TestKnowledgeBaseGateMatchesWholeWords(t *testing.T) {
	docs := []models.SearchResult{docHit("Tracking", "trackAction sends an analytics hit.")}

	tests := []struct {
		message  string
		wantDocs int
	}{
		{"tell me how?", 1},            // trailing punctuation still counts
		{"explain trackAction", 1},
		{"what's a lifecycle event", 1},
		{"show me the event totals", 0}, // no cue, non-general intent
	}
	for _, tt := range tests {
		model := &fakeModel{replies: []reply{
			{text: "analytics"},
			{text: "answer"},
		}}
		p := workflow.NewPipeline(model, testConfig())

		final := p.Invoke(context.Background(), workflow.State{
			UserMessage: tt.message,
			DocIndex:    &fakeIndex{hits: docs},
		})
		if len(final.RawDocs) != tt.wantDocs {
			t.Errorf("message %q retrieved %d docs, want %d", tt.message, len(final.RawDocs), tt.wantDocs)
		}
	}
}

func TestDebugBranchCountsErrors(t *testing.T) {
	hits := []models.SearchResult{
		eventHit("ev-1", "network failure", true),
		eventHit("ev-2", "lifecycle start", false),
		eventHit("ev-3", "crash report", true),
	}
	model := &fakeModel{replies: []reply{
		{text: "debug"},
		{text: "answer"},
	}}
	p := workflow.NewPipeline(model, testConfig())

	final := p.Invoke(context.Background(), workflow.State{
		UserMessage: "app crashed",
		EventIndex:  &fakeIndex{hits: hits},
	})
	if final.ErrorCount != 2 {
		t.Errorf("errorCount = %d, want 2", final.ErrorCount)
	}
}

func TestGenerationFailureReturnsFallback(t *testing.T) {
	model := &fakeModel{replies: []reply{
		{text: "general"},
		{err: errors.New("model overloaded")},
	}}
	p := workflow.NewPipeline(model, testConfig())

	final := p.Invoke(context.Background(), workflow.State{UserMessage: "hello"})
	if final.Response == "" {
		t.Fatal("response is empty, want fallback text")
	}
}

func TestEmptyContextStillResponds(t *testing.T) {
	model := &fakeModel{replies: []reply{
		{text: "general"},
		{text: "I don't have session context, but here is what I know."},
	}}
	p := workflow.NewPipeline(model, testConfig())

	final := p.Invoke(context.Background(), workflow.State{UserMessage: "what does trackState mean"})
	if final.Response == "" {
		t.Fatal("response is empty")
	}
	if final.EventContext != "" || final.DocContext != "" || final.HistoryContext != "" {
		t.Error("expected all context blocks empty")
	}
}

func TestFormatContextsIsDeterministic(t *testing.T) {
	cfg := testConfig()
	state := workflow.State{
		UserMessage: "why is tracking broken",
		Intent:      workflow.IntentDebug,
		RawEvents: []models.SearchResult{
			eventHit("ev-1", strings.Repeat("alpha ", 100), true),
			eventHit("ev-2", strings.Repeat("bravo ", 100), false),
		},
		RawDocs: []models.SearchResult{
			docHit("Tracking", strings.Repeat("docs ", 100)),
		},
		History: []models.ChatMessage{
			{Role: "user", Content: "earlier question"},
			{Role: "assistant", Content: "earlier answer"},
		},
	}

	a := workflow.FormatContexts(cfg, state)
	b := workflow.FormatContexts(cfg, state)
	if a.EventContext != b.EventContext {
		t.Error("event context differs across identical invocations")
	}
	if a.DocContext != b.DocContext {
		t.Error("doc context differs across identical invocations")
	}
	if a.HistoryContext != b.HistoryContext {
		t.Error("history context differs across identical invocations")
	}
	if a.Tokens != b.Tokens {
		t.Errorf("token usage differs: %+v vs %+v", a.Tokens, b.Tokens)
	}
}

func TestDegenerateBudgetDoesNotPanic(t *testing.T) {
	cfg := workflow.Config{TotalBudget: 10, SystemPromptReserve: 500, ResponseReserve: 1000, DocCap: 3}
	state := workflow.FormatContexts(cfg, workflow.State{
		UserMessage: "anything",
		Intent:      workflow.IntentDebug,
		RawEvents:   []models.SearchResult{eventHit("ev-1", "content", false)},
		RawDocs:     []models.SearchResult{docHit("T", "content")},
		History:     []models.ChatMessage{{Role: "user", Content: "hi"}},
	})
	if state.Tokens.Total() != 0 {
		t.Errorf("tokens used = %d, want 0 with exhausted budget", state.Tokens.Total())
	}
	if state.EventContext != "" || state.DocContext != "" || state.HistoryContext != "" {
		t.Error("context blocks should be empty with exhausted budget")
	}
}
