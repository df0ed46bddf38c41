// Package tokens approximates language-model token costs. It is a
// character-ratio estimate, not a tokenizer: good enough for budget
// allocation, never used for billing.
package tokens

import "unicode/utf8"

// CharsPerToken is the assumed character-to-token ratio.
const CharsPerToken = 4

// ElisionMarker is inserted where truncation removed the middle of a text.
const ElisionMarker = "\n... [truncated] ...\n"

// Estimate returns the approximate token count of text: ceil(len/4).
func Estimate(text string) int {
	return (len(text) + CharsPerToken - 1) / CharsPerToken
}

// Exceeds reports whether text's estimated token count is above limit.
func Exceeds(text string, limit int) bool {
	return Estimate(text) > limit
}

// Truncate shortens text so that Estimate(result) <= maxTokens. Both the
// start and the end of a context block tend to carry signal, so it keeps
// roughly the first 70% and last 10% of the allowed character budget joined
// by ElisionMarker instead of cutting from the head only.
func Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if !Exceeds(text, maxTokens) {
		return text
	}

	charBudget := maxTokens * CharsPerToken

	// Not enough room for the marker: plain prefix cut.
	if charBudget <= len(ElisionMarker) {
		return cutTail(text, charBudget)
	}

	head := charBudget * 7 / 10
	tail := charBudget / 10
	if head+tail+len(ElisionMarker) > charBudget {
		head = charBudget - tail - len(ElisionMarker)
	}
	if head <= 0 {
		return cutTail(text, charBudget)
	}

	prefix := cutTail(text, head)
	suffix := cutHead(text, len(text)-tail)
	return prefix + ElisionMarker + suffix
}

// cutTail returns a prefix of s at most n bytes long, backed off to a rune
// boundary so the result stays valid UTF-8.
func cutTail(s string, n int) string {
	if n >= len(s) {
		return s
	}
	if n < 0 {
		n = 0
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// cutHead returns the suffix of s starting at or after byte offset n,
// advanced to a rune boundary.
func cutHead(s string, n int) string {
	if n <= 0 {
		return s
	}
	if n >= len(s) {
		return ""
	}
	for n < len(s) && !utf8.RuneStart(s[n]) {
		n++
	}
	return s[n:]
}
