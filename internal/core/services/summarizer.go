package services

import "strings"

const (
	minFragmentLen   = 20
	summarySentences = 5
	maxKeyPoints     = 10
	fallbackChars    = 500
)

// Summarizer derives a short summary and key points from transcript text.
// It is a deterministic extractive placeholder: identical input always
// yields identical output, so the stage can be redone at any time.
type Summarizer struct{}

// Summarize splits the text into sentence-like units on . ! ?, discards
// fragments of 20 characters or fewer, joins the first 5 survivors as the
// summary and returns the first 10 as key points. When nothing survives the
// summary falls back to the first 500 characters of the raw text.
func (Summarizer) Summarize(text string) (string, []string) {
	normalized := strings.NewReplacer("!", ".", "?", ".").Replace(text)

	var sentences []string
	for _, raw := range strings.Split(normalized, ".") {
		if s := strings.TrimSpace(raw); len(s) > minFragmentLen {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 0 {
		return firstChars(text, fallbackChars), nil
	}

	n := len(sentences)
	summary := strings.Join(sentences[:min(n, summarySentences)], ". ") + "."
	keyPoints := sentences[:min(n, maxKeyPoints)]
	return summary, keyPoints
}

// WordCount counts whitespace-separated words in transcript text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func firstChars(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
