package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizer_Summarize(t *testing.T) {
	var s Summarizer

	t.Run("takes the first five sentences", func(t *testing.T) {
		var parts []string
		for i := 0; i < 8; i++ {
			parts = append(parts, "This is sentence number one of the lecture")
		}
		text := strings.Join(parts, ". ") + "."

		summary, keyPoints := s.Summarize(text)

		assert.Equal(t, 5, strings.Count(summary, "This is sentence"))
		assert.True(t, strings.HasSuffix(summary, "."))
		assert.Len(t, keyPoints, 8)
	})

	t.Run("caps key points at ten", func(t *testing.T) {
		var parts []string
		for i := 0; i < 14; i++ {
			parts = append(parts, "Another sufficiently long sentence here")
		}
		_, keyPoints := s.Summarize(strings.Join(parts, ". "))

		assert.Len(t, keyPoints, 10)
	})

	t.Run("question and exclamation marks split sentences", func(t *testing.T) {
		text := "Is this a question about the lecture topic? It certainly looks like one! And a closing statement too."

		summary, keyPoints := s.Summarize(text)

		assert.Len(t, keyPoints, 3)
		assert.Contains(t, summary, "Is this a question about the lecture topic")
	})

	t.Run("short fragments are discarded", func(t *testing.T) {
		text := "Yes. No. Maybe. This fragment is long enough to survive filtering."

		summary, keyPoints := s.Summarize(text)

		assert.Equal(t, "This fragment is long enough to survive filtering.", summary)
		assert.Len(t, keyPoints, 1)
	})

	t.Run("falls back to the first 500 characters", func(t *testing.T) {
		text := strings.Repeat("uh. ", 200) // every fragment too short to survive
		summary, keyPoints := s.Summarize(text)

		assert.Equal(t, string([]rune(text)[:500]), summary)
		assert.Empty(t, keyPoints)
	})

	t.Run("short text without sentences is returned whole", func(t *testing.T) {
		summary, keyPoints := s.Summarize("uh huh")

		assert.Equal(t, "uh huh", summary)
		assert.Empty(t, keyPoints)
	})

	t.Run("identical input yields identical output", func(t *testing.T) {
		text := "The mitochondria is the powerhouse of the cell. Photosynthesis converts light into chemical energy! Does osmosis move water across membranes?"

		s1, k1 := s.Summarize(text)
		s2, k2 := s.Summarize(text)

		assert.Equal(t, s1, s2)
		assert.Equal(t, k1, k2)
	})
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 5, WordCount("one two three four five"))
	assert.Equal(t, 2, WordCount("  spaced   out  "))
}
