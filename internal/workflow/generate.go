package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const systemPrompt = `You are an assistant helping mobile developers debug their app's SDK integration.
You answer questions about an Assurance debugging session: the telemetry events the app emitted, analytics tracking behavior, and SDK concepts.
Ground your answers in the session context provided below when it is relevant. If the context does not contain the answer, say so instead of guessing.`

// fallbackResponse is returned when the model call fails. The terminal
// node always yields some string.
const fallbackResponse = "I wasn't able to generate a response for this request. Please try again."

// generateResponse assembles the final prompt and makes the single
// generation call. A failed call degrades to a fixed fallback message.
func (p *Pipeline) generateResponse(ctx context.Context, s State) State {
	prompt := buildPrompt(s)

	response, err := p.model.Complete(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Str("session_id", s.SessionID).Msg("Response generation failed, returning fallback")
		s.Response = fallbackResponse
		return s
	}
	if strings.TrimSpace(response) == "" {
		s.Response = fallbackResponse
		return s
	}

	s.Response = response
	return s
}

// buildPrompt concatenates the prompt sections in fixed order: system
// prompt, doc context, event context, error annotation, history, user
// message. Empty context blocks are omitted entirely.
func buildPrompt(s State) string {
	var b strings.Builder
	b.WriteString(systemPrompt)

	if s.DocContext != "" {
		b.WriteString("\n\nRelevant documentation:\n")
		b.WriteString(s.DocContext)
	}
	if s.EventContext != "" {
		b.WriteString("\n\nSession events:\n")
		b.WriteString(s.EventContext)
	}
	if s.Intent == IntentDebug && s.ErrorCount > 0 {
		fmt.Fprintf(&b, "\n\nNote: %d of the retrieved events carry error signals.", s.ErrorCount)
	}

	b.WriteString("\n\nConversation so far:\n")
	if s.HistoryContext != "" {
		b.WriteString(s.HistoryContext)
	} else {
		b.WriteString("(no previous messages)\n")
	}

	b.WriteString("\nUser: ")
	b.WriteString(s.UserMessage)
	return b.String()
}
