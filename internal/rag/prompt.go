package rag

import (
	"fmt"
	"strings"
)

const answerSystemPrompt = "You are a helpful assistant. Answer the question using only the provided context. " +
	"If the context does not contain the answer, state explicitly that the information is not present in the document."

func answerPrompt(contextBlock, question string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nAnswer:", contextBlock, question)
}

func multiQueryPrompt(question string) string {
	return fmt.Sprintf("Generate exactly 3 different rephrasings of the following question to improve document retrieval. "+
		"Write one rephrasing per line with no numbering or extra text.\n\nOriginal question: %s", question)
}

func hydePrompt(question string) string {
	return fmt.Sprintf("Write a short hypothetical passage that would answer the following question.\n\nQuestion: %s\nPassage:", question)
}

// formatContext joins chunk texts with blank lines, the shape the answer
// prompt expects.
func formatContext(chunks []Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Text
	}
	return strings.Join(parts, "\n\n")
}

// parseQueries splits generated paraphrases on newlines, dropping blanks.
func parseQueries(raw string) []string {
	var queries []string
	for _, line := range strings.Split(raw, "\n") {
		if q := strings.TrimSpace(line); q != "" {
			queries = append(queries, q)
		}
	}
	return queries
}
