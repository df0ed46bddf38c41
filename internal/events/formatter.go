package events

import (
	"strings"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/tokens"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/models"
)

// Format bounds one retrieved event's pre-rendered text to budget tokens.
// Text that already fits is returned unchanged; otherwise the estimator's
// middle-out truncation applies.
func Format(content string, budget int) string {
	if !tokens.Exceeds(content, budget) {
		return content
	}
	return tokens.Truncate(content, budget)
}

// BatchResult reports what a FormatBatch call actually included, for
// observability; correctness only depends on Block and TokensUsed.
type BatchResult struct {
	Block      string
	Included   int
	Offered    int
	TokensUsed int
}

// separator joins formatted events in a batch block.
const separator = "\n\n"

// FormatBatch formats retrieved events under a total token slice. Each
// event is first bounded to perEvent tokens, then events accumulate in rank
// order until adding the next whole formatted event would exceed the slice.
// Events are never split at the aggregation level: either a formatted event
// fits entirely or it (and everything after it) is dropped. TokensUsed
// counts the joining separators, so it tracks Estimate(Block).
func FormatBatch(results []models.SearchResult, perEvent, slice int) BatchResult {
	out := BatchResult{Offered: len(results)}
	if slice <= 0 || perEvent <= 0 {
		return out
	}

	var blocks []string
	for _, r := range results {
		formatted := Format(r.Doc.Content, perEvent)
		if formatted == "" {
			continue
		}
		cost := tokens.Estimate(formatted)
		if len(blocks) > 0 {
			cost += tokens.Estimate(separator)
		}
		if out.TokensUsed+cost > slice {
			break
		}
		blocks = append(blocks, formatted)
		out.TokensUsed += cost
		out.Included++
	}

	out.Block = strings.Join(blocks, separator)
	return out
}
