package llm

import (
	"math"
	"strings"
	"unicode/utf8"
)

// EstimateTokenCount provides a rough estimation of token count for text.
// This is a simplified approximation: typically 1 token ≈ 0.75 words ≈ 4
// characters for English text, with a buffer for special tokens.
func EstimateTokenCount(text string) int {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\n", " ")

	charCount := utf8.RuneCountInString(text)

	return int(math.Ceil(float64(charCount) / 3.5))
}
