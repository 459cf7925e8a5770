package article

import "testing"

func TestCountWords(t *testing.T) {
	cases := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"plain english", "concurrency in go is not parallelism", 6},
		{"punctuation and symbols", "go, rust & zig!", 3},
		{"digits count as words", "http2 has 2 connection modes", 5},
		{"cjk pairs", "分散システム", 3},
		{"mixed scripts", "Raft入門 guide", 3},
		{"markdown noise", "## Heading\n- item one\n- item two", 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CountWords(tc.text); got != tc.want {
				t.Errorf("CountWords(%q) = %d, want %d", tc.text, got, tc.want)
			}
		})
	}
}

func TestReadingTime(t *testing.T) {
	cases := []struct{ words, want int }{
		{0, 1},
		{50, 1},
		{200, 1},
		{201, 2},
		{1000, 5},
	}
	for _, tc := range cases {
		if got := readingTime(tc.words); got != tc.want {
			t.Errorf("readingTime(%d) = %d, want %d", tc.words, got, tc.want)
		}
	}
}

func TestInferDifficulty(t *testing.T) {
	cases := []struct{ text, want string }{
		{"Getting started with channels", "beginner"},
		{"A step by step walkthrough", "beginner"},
		{"Implementing Raft and handling cache coherence", "advanced"},
		{"Structuring Go services for maintainability", "intermediate"},
	}
	for _, tc := range cases {
		if got := inferDifficulty(tc.text); got != tc.want {
			t.Errorf("inferDifficulty(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}
