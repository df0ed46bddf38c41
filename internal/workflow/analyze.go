package workflow

import (
	"context"

	"github.com/rs/zerolog/log"
)

// analyzeErrors counts error-flagged events among the retrieved candidates.
// Runs only on the debug branch; it annotates the state without reordering
// or filtering what the formatter sees.
func (p *Pipeline) analyzeErrors(_ context.Context, s State) State {
	count := 0
	for _, hit := range s.RawEvents {
		if hit.Doc.Metadata["error"] == "true" {
			count++
		}
	}
	s.ErrorCount = count

	if count > 0 {
		log.Debug().
			Str("session_id", s.SessionID).
			Int("error_events", count).
			Msg("Error events detected in retrieved context")
	}
	return s
}
