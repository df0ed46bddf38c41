package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/events"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/tokens"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/models"
)

// budgetSlices holds the intent-conditioned percentage split of the
// available budget. Values are percentages and sum to at most 100, which
// keeps the slice sum within the available budget.
type budgetSlices struct {
	events  int
	docs    int
	history int
}

// slicesFor maps intent to its budget split. Debug turns are dominated by
// raw event evidence, general turns by documentation.
func slicesFor(intent Intent) budgetSlices {
	switch intent {
	case IntentDebug:
		return budgetSlices{events: 60, history: 30, docs: 10}
	case IntentGeneral:
		return budgetSlices{events: 20, history: 30, docs: 50}
	default:
		return budgetSlices{events: 50, history: 30, docs: 20}
	}
}

// Available returns the context budget left after the fixed reserves and
// the user message itself. Never negative.
func (c Config) Available(userMessage string) int {
	available := c.TotalBudget - c.SystemPromptReserve - tokens.Estimate(userMessage) - c.ResponseReserve
	if available < 0 {
		return 0
	}
	return available
}

// FormatContexts converts the retrieved candidates and the conversation
// history into three token-bounded text blocks. Pure and deterministic for
// a fixed candidate ordering; no network calls.
func FormatContexts(cfg Config, s State) State {
	available := cfg.Available(s.UserMessage)
	split := slicesFor(s.Intent)
	eventSlice := available * split.events / 100
	docSlice := available * split.docs / 100
	historySlice := available * split.history / 100

	count := len(s.RawEvents)
	if count < 1 {
		count = 1
	}
	batch := events.FormatBatch(s.RawEvents, eventSlice/count, eventSlice)
	s.EventContext = batch.Block
	s.EventsIncluded = batch.Included
	s.Tokens.Events = batch.TokensUsed

	s.DocContext, s.Tokens.Docs = formatDocs(s.RawDocs, cfg.DocCap, docSlice)
	s.HistoryContext, s.Tokens.History = formatHistory(s.History, historySlice)
	return s
}

func (p *Pipeline) formatContexts(_ context.Context, s State) State {
	s = FormatContexts(p.cfg, s)
	log.Debug().
		Str("session_id", s.SessionID).
		Int("events_included", s.EventsIncluded).
		Int("tokens_events", s.Tokens.Events).
		Int("tokens_docs", s.Tokens.Docs).
		Int("tokens_history", s.Tokens.History).
		Msg("Contexts formatted")
	return s
}

// formatDocs renders up to cap top-ranked docs as "[title]\ncontent",
// accumulating whole docs while the running total stays within the slice.
// The returned count includes the joining separators.
func formatDocs(docs []models.SearchResult, limit, slice int) (string, int) {
	const separator = "\n\n"

	var blocks []string
	used := 0
	for i, hit := range docs {
		if i >= limit {
			break
		}
		title := hit.Doc.Metadata["title"]
		text := fmt.Sprintf("[%s]\n%s", title, hit.Doc.Content)
		cost := tokens.Estimate(text)
		if len(blocks) > 0 {
			cost += tokens.Estimate(separator)
		}
		if used+cost > slice {
			break
		}
		blocks = append(blocks, text)
		used += cost
	}
	return strings.Join(blocks, separator), used
}

// formatHistory walks the conversation most-recent-first so truncation
// drops the oldest turns, then restores chronological order for the
// prompt.
func formatHistory(history []models.ChatMessage, slice int) (string, int) {
	var lines []string
	used := 0
	for i := len(history) - 1; i >= 0; i-- {
		line := fmt.Sprintf("%s: %s\n", history[i].Role, history[i].Content)
		cost := tokens.Estimate(line)
		if used+cost > slice {
			break
		}
		lines = append(lines, line)
		used += cost
	}

	// lines were collected newest-first; reverse back to chronological.
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return strings.Join(lines, ""), used
}
