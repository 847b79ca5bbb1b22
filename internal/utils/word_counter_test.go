package utils

import (
	"strings"
	"testing"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "whitespace only", text: " \t\n\r  ", want: 0},
		{name: "single word", text: "hello", want: 1},
		{name: "leading and trailing whitespace", text: "  hello world  ", want: 2},
		{name: "runs of mixed whitespace", text: "one\n\ntwo\t\tthree   four", want: 4},
		{name: "punctuation stays attached", text: "Hello, world! It's-fine.", want: 3},
		{name: "unicode whitespace", text: "a b c", want: 3},
		{name: "non-latin words", text: "привет мир", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountWords(tt.text); got != tt.want {
				t.Errorf("CountWords(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestCountWords_Threshold(t *testing.T) {
	text := strings.Repeat("word ", 800)
	if got := CountWords(text); got != 800 {
		t.Errorf("CountWords() = %d, want 800", got)
	}
}
