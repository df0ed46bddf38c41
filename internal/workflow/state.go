// Package workflow implements the chat pipeline: a linear state machine
// that classifies the user's intent, retrieves session events and
// documentation in parallel, fits the retrieved context into a token
// budget, and generates the assistant's response.
package workflow

import (
	"strings"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/contracts"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/models"
)

// Intent classifies a user message. The zero value is IntentGeneral, which
// is also the fallback when classification fails.
type Intent int

const (
	IntentGeneral Intent = iota
	IntentDebug
	IntentAnalytics
)

func (i Intent) String() string {
	switch i {
	case IntentDebug:
		return "debug"
	case IntentAnalytics:
		return "analytics"
	default:
		return "general"
	}
}

// ParseIntent maps a model answer onto the closed intent set. Anything
// outside the set resolves to IntentGeneral.
func ParseIntent(s string) Intent {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return IntentDebug
	case "analytics":
		return IntentAnalytics
	default:
		return IntentGeneral
	}
}

// TokenUsage reports the realized token cost of each formatted context
// block, not the nominal slice sizes.
type TokenUsage struct {
	Events  int
	Docs    int
	History int
}

// Total returns the combined realized context cost.
func (u TokenUsage) Total() int {
	return u.Events + u.Docs + u.History
}

// State carries one chat turn through the pipeline. Each node reads the
// fields filled in by earlier nodes and writes its own; nothing here is
// shared across invocations.
type State struct {
	SessionID   string
	UserMessage string
	History     []models.ChatMessage

	// Per-invocation collaborators. EventIndex is the session's private
	// event index; DocIndex is the shared knowledge base. Either may be
	// nil, in which case that retrieval contributes nothing.
	EventIndex contracts.SemanticIndex
	DocIndex   contracts.SemanticIndex

	// Filled by classifyIntent.
	Intent Intent

	// Filled by retrieveContexts.
	RawEvents []models.SearchResult
	RawDocs   []models.SearchResult

	// Filled by analyzeErrors (debug intent only).
	ErrorCount int

	// Filled by formatContexts.
	EventContext   string
	DocContext     string
	HistoryContext string
	EventsIncluded int
	Tokens         TokenUsage

	// Filled by generateResponse.
	Response string
}

// Metadata summarizes the finished turn for the API response.
func (s State) Metadata() models.ChatMetadata {
	return models.ChatMetadata{
		Intent:            s.Intent.String(),
		EventContextUsed:  s.EventContext != "",
		KnowledgeBaseUsed: s.DocContext != "",
		EventsRetrieved:   len(s.RawEvents),
		DocsRetrieved:     len(s.RawDocs),
		EventsIncluded:    s.EventsIncluded,
		ErrorCount:        s.ErrorCount,
		TokensUsed:        s.Tokens.Total(),
	}
}
