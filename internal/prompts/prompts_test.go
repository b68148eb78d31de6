package prompts

import (
	"strings"
	"testing"
)

func TestExtractionSubstitution(t *testing.T) {
	p := Extraction("What is Go?", "Go is a language. Cats purr.")
	if !strings.Contains(p, "Question: What is Go?") {
		t.Errorf("prompt missing question: %q", p)
	}
	if !strings.Contains(p, "Go is a language. Cats purr.") {
		t.Errorf("prompt missing passage: %q", p)
	}
}

func TestSummaryPrefixesQuestion(t *testing.T) {
	p := Summary("What is Go?", "Extract: Go is a language\nSource: Doc1")
	if !strings.Contains(p, "Question:What is Go?") {
		t.Errorf("prompt missing prefixed question: %q", p)
	}
	if !strings.Contains(p, `"SOURCE:"`) {
		t.Errorf("prompt missing citation marker instruction: %q", p)
	}
}

func TestCollateHistory(t *testing.T) {
	tests := []struct {
		name    string
		history []Exchange
		want    string
	}{
		{
			name: "empty",
			want: "",
		},
		{
			name:    "single exchange",
			history: []Exchange{{Question: "hi", Answer: "hello"}},
			want:    "User: hi\nAssistant: hello",
		},
		{
			name: "oldest first",
			history: []Exchange{
				{Question: "q1", Answer: "a1"},
				{Question: "q2", Answer: "a2"},
			},
			want: "User: q1\nAssistant: a1\nUser: q2\nAssistant: a2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CollateHistory(tt.history); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
