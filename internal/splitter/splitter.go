package splitter

import (
	"strings"
)

// Options controls how text is split into passages.
type Options struct {
	MaxWords int
	Overlap  int
}

// Passage is a slice of the document text.
type Passage struct {
	Index     int
	Content   string
	WordCount int
}

// Split performs a simple word-based sliding window with overlap.
// Words are whitespace-delimited; overlapping windows keep question-relevant
// context from being cut at passage boundaries.
func Split(text string, opts Options) []Passage {
	if opts.MaxWords <= 0 {
		opts.MaxWords = 400
	}
	if opts.Overlap < 0 {
		opts.Overlap = 0
	}

	words := strings.Fields(text)
	var passages []Passage
	if len(words) == 0 {
		return passages
	}

	step := opts.MaxWords - opts.Overlap
	if step <= 0 {
		step = opts.MaxWords
	}

	for start := 0; start < len(words); start += step {
		end := start + opts.MaxWords
		if end > len(words) {
			end = len(words)
		}
		segment := strings.Join(words[start:end], " ")
		passages = append(passages, Passage{
			Index:     len(passages),
			Content:   segment,
			WordCount: end - start,
		})
		if end == len(words) {
			break
		}
	}
	return passages
}
