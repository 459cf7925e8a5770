package article

import (
	"strings"
	"unicode"
)

// CountWords counts words in mixed-script text. Latin-script runs count
// one word each; runs of other scripts (CJK and similar, which have no
// word spacing) count one word per two characters, rounded up.
func CountWords(text string) int {
	words := 0
	latinRun := false
	nonLatin := 0

	flushNonLatin := func() {
		if nonLatin > 0 {
			words += (nonLatin + 1) / 2
			nonLatin = 0
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			if latinRun {
				words++
				latinRun = false
			}
			flushNonLatin()
		case unicode.Is(unicode.Latin, r) || unicode.IsDigit(r):
			flushNonLatin()
			latinRun = true
		default:
			if latinRun {
				words++
				latinRun = false
			}
			nonLatin++
		}
	}
	if latinRun {
		words++
	}
	flushNonLatin()
	return words
}

// readingTime estimates minutes at 200 words per minute, minimum 1.
func readingTime(wordCount int) int {
	minutes := (wordCount + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

var advancedMarkers = []string{
	"distributed consensus", "lock-free", "memory barrier", "formal verification",
	"compiler internals", "kernel", "bytecode", "cache coherence", "raft", "paxos",
}

var beginnerMarkers = []string{
	"introduction to", "getting started", "what is", "beginner", "first steps",
	"step by step", "tutorial", "basics of",
}

// inferDifficulty picks a difficulty label from marker phrases when the
// model left the field empty.
func inferDifficulty(text string) string {
	lower := strings.ToLower(text)
	for _, m := range advancedMarkers {
		if strings.Contains(lower, m) {
			return "advanced"
		}
	}
	for _, m := range beginnerMarkers {
		if strings.Contains(lower, m) {
			return "beginner"
		}
	}
	return "intermediate"
}
