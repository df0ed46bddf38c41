package events_test

import (
	"strings"
	"testing"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/events"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/tokens"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/models"
)

func result(content string) models.SearchResult {
	return models.SearchResult{Doc: models.VectorDoc{Content: content}}
}

func TestFormatPassthroughWhenFits(t *testing.T) {
	content := "Event evt-1 type=generic"
	if got := events.Format(content, 100); got != content {
		t.Errorf("Format changed text that fit the budget: %q", got)
	}
}

func TestFormatTruncatesOverBudget(t *testing.T) {
	content := strings.Repeat("lifecycle start ", 200)
	got := events.Format(content, 20)
	if est := tokens.Estimate(got); est > 20 {
		t.Errorf("formatted event estimates %d tokens, budget 20", est)
	}
	if !strings.Contains(got, tokens.ElisionMarker) {
		t.Error("over-budget event should carry the elision marker")
	}
}

func TestFormatBatchStopsAtSlice(t *testing.T) {
	// 20 candidates, slice 600, per-event cap 30 (600/20): matches the
	// debug-intent allocation at a 1000-token available budget.
	var results []models.SearchResult
	for i := 0; i < 20; i++ {
		results = append(results, result(strings.Repeat("x", 500))) // 125 tokens raw
	}

	batch := events.FormatBatch(results, 30, 600)

	if batch.TokensUsed > 600 {
		t.Errorf("batch used %d tokens, slice is 600", batch.TokensUsed)
	}
	if batch.Included == 0 {
		t.Fatal("batch included no events")
	}
	if batch.Offered != 20 {
		t.Errorf("Offered = %d, want 20", batch.Offered)
	}
	// Every included event was pre-truncated to its 30-token share.
	for _, block := range strings.Split(batch.Block, "\n\n") {
		if est := tokens.Estimate(block); est > 30 {
			t.Errorf("included event estimates %d tokens, per-event cap 30", est)
		}
	}
}

func TestFormatBatchWholeUnitStop(t *testing.T) {
	// Three events of 25 tokens each under a 60-token slice: exactly two
	// fit (25 + separator + 25 = 51); the third must be dropped whole,
	// not split.
	content := strings.Repeat("y", 100) // 25 tokens
	results := []models.SearchResult{result(content), result(content), result(content)}

	batch := events.FormatBatch(results, 30, 60)

	if batch.Included != 2 {
		t.Errorf("Included = %d, want 2", batch.Included)
	}
	if batch.TokensUsed != 51 {
		t.Errorf("TokensUsed = %d, want 51", batch.TokensUsed)
	}
	// The realized figure tracks the actual block estimate.
	if got := tokens.Estimate(batch.Block); got != batch.TokensUsed {
		t.Errorf("Estimate(Block) = %d, TokensUsed = %d", got, batch.TokensUsed)
	}
	if strings.Count(batch.Block, content) != 2 {
		t.Error("block should contain exactly the two whole events")
	}
}

func TestFormatBatchZeroSlice(t *testing.T) {
	batch := events.FormatBatch([]models.SearchResult{result("abc")}, 10, 0)
	if batch.Block != "" || batch.Included != 0 {
		t.Errorf("zero slice should include nothing, got %+v", batch)
	}
}

func TestFormatBatchEmptyInput(t *testing.T) {
	batch := events.FormatBatch(nil, 10, 100)
	if batch.Block != "" || batch.Included != 0 || batch.Offered != 0 {
		t.Errorf("empty input should be a no-op, got %+v", batch)
	}
}
