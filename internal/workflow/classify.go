package workflow

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

const classifyPrompt = `You are classifying a question asked about a mobile SDK debugging session.
Answer with exactly one word from this list and nothing else:
- debug: the user is investigating a failure, crash, error, or unexpected SDK behavior
- analytics: the user is asking about analytics tracking, metrics, or event counts
- general: anything else, including questions about concepts or documentation

Question: %s

Answer:`

// classifyIntent asks the model for a one-word intent. An out-of-vocabulary
// answer or a failed call falls back to general; classification is never
// fatal.
func (p *Pipeline) classifyIntent(ctx context.Context, s State) State {
	answer, err := p.model.Complete(ctx, fmt.Sprintf(classifyPrompt, s.UserMessage))
	if err != nil {
		log.Warn().Err(err).Str("session_id", s.SessionID).Msg("Intent classification failed, defaulting to general")
		s.Intent = IntentGeneral
		return s
	}

	s.Intent = ParseIntent(answer)
	log.Debug().
		Str("session_id", s.SessionID).
		Str("intent", s.Intent.String()).
		Msg("Intent classified")
	return s
}
