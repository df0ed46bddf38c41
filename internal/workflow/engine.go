package workflow

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/config"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/contracts"
)

// Config holds the pipeline's budget and retrieval constants. The
// intent-conditioned allocation shape is fixed; the magnitudes come from
// configuration.
type Config struct {
	TotalBudget         int
	SystemPromptReserve int
	ResponseReserve     int
	DebugEventK         int
	DefaultEventK       int
	DocCap              int
}

// ConfigFrom builds a pipeline config from the service configuration.
func ConfigFrom(cfg config.WorkflowConfig) Config {
	return Config{
		TotalBudget:         cfg.TotalBudget,
		SystemPromptReserve: cfg.SystemPromptReserve,
		ResponseReserve:     cfg.ResponseReserve,
		DebugEventK:         cfg.DebugEventK,
		DefaultEventK:       cfg.DefaultEventK,
		DocCap:              cfg.DocCap,
	}
}

// node identifies one pipeline stage.
type node int

const (
	nodeClassify node = iota
	nodeRetrieve
	nodeAnalyze
	nodeFormat
	nodeGenerate
	nodeEnd
)

func (n node) String() string {
	switch n {
	case nodeClassify:
		return "classifyIntent"
	case nodeRetrieve:
		return "retrieveContexts"
	case nodeAnalyze:
		return "analyzeErrors"
	case nodeFormat:
		return "formatContexts"
	case nodeGenerate:
		return "generateResponse"
	default:
		return "end"
	}
}

// transition pairs a node's work with the edge to the next node. The edge
// may depend on state: retrieval routes through error analysis only for
// debug intent.
type transition struct {
	run  func(p *Pipeline, ctx context.Context, s State) State
	next func(s State) node
}

var transitions = map[node]transition{
	nodeClassify: {
		run:  (*Pipeline).classifyIntent,
		next: func(State) node { return nodeRetrieve },
	},
	nodeRetrieve: {
		run: (*Pipeline).retrieveContexts,
		next: func(s State) node {
			if s.Intent == IntentDebug {
				return nodeAnalyze
			}
			return nodeFormat
		},
	},
	nodeAnalyze: {
		run:  (*Pipeline).analyzeErrors,
		next: func(State) node { return nodeFormat },
	},
	nodeFormat: {
		run:  (*Pipeline).formatContexts,
		next: func(State) node { return nodeGenerate },
	},
	nodeGenerate: {
		run:  (*Pipeline).generateResponse,
		next: func(State) node { return nodeEnd },
	},
}

// Pipeline executes the chat workflow. It owns no per-session state and is
// safe to invoke concurrently; every invocation works on its own State.
type Pipeline struct {
	model contracts.LanguageModel
	cfg   Config
}

// NewPipeline creates the chat pipeline.
func NewPipeline(model contracts.LanguageModel, cfg Config) *Pipeline {
	return &Pipeline{model: model, cfg: cfg}
}

// Invoke runs the state machine from classification to generation and
// returns the final state. Node failures degrade (fallback intent, empty
// context, fallback response); Invoke itself never fails.
func (p *Pipeline) Invoke(ctx context.Context, s State) State {
	for current := nodeClassify; current != nodeEnd; {
		t := transitions[current]
		s = t.run(p, ctx, s)
		next := t.next(s)
		log.Debug().
			Str("session_id", s.SessionID).
			Str("node", current.String()).
			Str("next", next.String()).
			Msg("Pipeline step complete")
		current = next
	}
	return s
}
