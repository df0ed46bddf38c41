package workflow

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/models"
)

// kbTopK is the knowledge-base retrieval breadth. More candidates than the
// doc inclusion cap are fetched so the formatter picks from a ranked pool.
const kbTopK = 5

// Lexical markers of an explanatory or definitional question. Matching any
// of them opens the knowledge-base gate for non-general intents. Word cues
// match whole words so trailing punctuation ("how?") still counts.
var kbPhraseCues = []string{"what is", "what's"}

var kbWordCues = map[string]struct{}{
	"how":           {},
	"why":           {},
	"explain":       {},
	"explains":      {},
	"documentation": {},
	"docs":          {},
	"mean":          {},
	"means":         {},
}

// retrieveContexts runs the two semantic lookups concurrently: session
// events and knowledge-base docs. Either lookup failing leaves that source
// empty and logged; the pipeline continues regardless.
func (p *Pipeline) retrieveContexts(ctx context.Context, s State) State {
	eventK := p.cfg.DefaultEventK
	if s.Intent == IntentDebug {
		eventK = p.cfg.DebugEventK
	}
	docK := 0
	if wantsKnowledgeBase(s.Intent, s.UserMessage) {
		docK = kbTopK
	}

	var wg sync.WaitGroup
	var rawEvents, rawDocs []models.SearchResult

	wg.Add(1)
	go func() {
		defer wg.Done()
		if s.EventIndex == nil {
			return
		}
		hits, err := s.EventIndex.Search(ctx, s.UserMessage, eventK)
		if err != nil {
			log.Warn().Err(err).Str("session_id", s.SessionID).Msg("Event retrieval failed, continuing without events")
			return
		}
		rawEvents = hits
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if s.DocIndex == nil || docK == 0 {
			return
		}
		hits, err := s.DocIndex.Search(ctx, s.UserMessage, docK)
		if err != nil {
			log.Warn().Err(err).Str("session_id", s.SessionID).Msg("Knowledge-base retrieval failed, continuing without docs")
			return
		}
		rawDocs = hits
	}()

	wg.Wait()
	s.RawEvents = rawEvents
	s.RawDocs = rawDocs

	log.Debug().
		Str("session_id", s.SessionID).
		Int("events", len(s.RawEvents)).
		Int("docs", len(s.RawDocs)).
		Msg("Context retrieval complete")
	return s
}

// wantsKnowledgeBase gates documentation retrieval: always for general
// intent, otherwise only when the message reads like an explanatory
// question. A cheap heuristic, not a classifier.
func wantsKnowledgeBase(intent Intent, message string) bool {
	if intent == IntentGeneral {
		return true
	}
	lower := strings.ToLower(message)
	for _, cue := range kbPhraseCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, word := range words {
		if _, ok := kbWordCues[word]; ok {
			return true
		}
	}
	return false
}
