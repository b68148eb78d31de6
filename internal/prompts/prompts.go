package prompts

import (
	"fmt"
	"strings"
)

// Fixed instruction templates for the retrieval-augmented operations. The
// placeholders are substituted positionally via fmt; keep the verbs in sync
// with the builder functions below.

const extractionTemplate = `You are given a question and a passage. Copy verbatim the sentences from the passage that are relevant to answering the question. Do not paraphrase, summarize, or add any words of your own. If nothing in the passage is relevant, say exactly "I don't know".

Question: %s

Passage:
%s

Relevant verbatim extract:`

const summaryTemplate = `Use the extracts below to answer the question. Base the answer only on the extracts. After the answer, cite the sources you used on a new line starting with the exact marker "SOURCE:" followed by a comma-separated list of source names. If the extracts do not contain the answer, say "I don't know" and cite nothing.

%s

Extracts:
%s

Answer:`

const standaloneTemplate = `Given the conversation below, and a follow-up question, rephrase the follow-up question as a standalone question.

Chat history: %s
Follow-up question: %s`

// Exchange is one question/answer turn of a conversation, oldest first when
// collected into a history.
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Extraction builds the verbatim-extraction prompt for one passage.
func Extraction(question, passage string) string {
	return fmt.Sprintf(extractionTemplate, question, passage)
}

// Summary builds the cited-answer prompt from pre-rendered extracts.
func Summary(question, extracts string) string {
	return fmt.Sprintf(summaryTemplate, "Question:"+question, extracts)
}

// Standalone builds the follow-up rewriting prompt from a collated history.
func Standalone(history, question string) string {
	return fmt.Sprintf(standaloneTemplate, history, question)
}

// CollateHistory flattens question/answer pairs into a transcript, oldest
// exchange first.
func CollateHistory(history []Exchange) string {
	var b strings.Builder
	for i, ex := range history {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "User: %s\nAssistant: %s", ex.Question, ex.Answer)
	}
	return b.String()
}
