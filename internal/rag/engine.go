package rag

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Retriever returns the chunks most similar to a query. *Index satisfies
// it; tests substitute stubs.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]Chunk, error)
}

// Generator produces a completion for a system/user prompt pair.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Strategy tags. Unrecognized tags fall back to basic; that fallback is a
// stated contract of the Ask operation, not an error.
const (
	StrategyBasic      = "basic"
	StrategyMultiQuery = "multi_query"
	StrategyHyDE       = "hyde"
)

// NormalizeStrategy maps a raw strategy tag to one of the closed set.
func NormalizeStrategy(tag string) string {
	switch strings.TrimSpace(tag) {
	case StrategyMultiQuery:
		return StrategyMultiQuery
	case StrategyHyDE:
		return StrategyHyDE
	default:
		return StrategyBasic
	}
}

// Answer is a generated response with its evidentiary excerpts.
type Answer struct {
	Text     string
	Sources  []string
	Strategy string
}

// Engine runs one retrieval strategy over an index and generates the final
// answer. It is stateless per call: everything it needs arrives as
// arguments or was fixed at construction.
type Engine struct {
	gen          Generator
	topK         int
	previewCount int
	previewChars int
}

func NewEngine(gen Generator, topK, previewCount, previewChars int) *Engine {
	if topK <= 0 {
		topK = 4
	}
	if previewCount <= 0 {
		previewCount = 3
	}
	if previewChars <= 0 {
		previewChars = 200
	}
	return &Engine{
		gen:          gen,
		topK:         topK,
		previewCount: previewCount,
		previewChars: previewChars,
	}
}

// Answer retrieves context per the requested strategy, generates the final
// answer, and attaches excerpt previews.
//
// The previews come from a separate top-previewCount retrieval on the
// original question, independent of the chunks the strategy fed into the
// answer. For multi_query and hyde the two sets can differ; this mirrors
// the documented product behavior rather than being an oversight.
func (e *Engine) Answer(ctx context.Context, question, strategyTag string, r Retriever) (*Answer, error) {
	strategy := NormalizeStrategy(strategyTag)

	var docs []Chunk
	var err error
	switch strategy {
	case StrategyMultiQuery:
		docs, err = e.multiQueryRetrieve(ctx, question, r)
	case StrategyHyDE:
		docs, err = e.hydeRetrieve(ctx, question, r)
	default:
		docs, err = r.Retrieve(ctx, question, e.topK)
	}
	if err != nil {
		return nil, err
	}

	answer, err := e.gen.Generate(ctx, answerSystemPrompt, answerPrompt(formatContext(docs), question))
	if err != nil {
		return nil, fmt.Errorf("generate answer failed: %w", err)
	}

	previews, err := e.previews(ctx, question, r)
	if err != nil {
		return nil, err
	}

	return &Answer{
		Text:     strings.TrimSpace(answer),
		Sources:  previews,
		Strategy: strategy,
	}, nil
}

// multiQueryRetrieve fans the question out into generated paraphrases,
// retrieves for each, and merges by exact chunk text, first query wins.
// Paraphrase generation failing (or parsing to zero queries) degrades to
// an empty set, and a retrieval failure for one paraphrase skips only that
// paraphrase; both are logged, not surfaced.
func (e *Engine) multiQueryRetrieve(ctx context.Context, question string, r Retriever) ([]Chunk, error) {
	raw, err := e.gen.Generate(ctx, "", multiQueryPrompt(question))
	if err != nil {
		log.Printf("multi-query paraphrase generation failed: %v", err)
		return nil, nil
	}

	var merged []Chunk
	seen := make(map[string]struct{})
	for _, query := range parseQueries(raw) {
		docs, err := r.Retrieve(ctx, query, e.topK)
		if err != nil {
			log.Printf("multi-query retrieval failed for %q: %v", query, err)
			continue
		}
		for _, d := range docs {
			if _, dup := seen[d.Text]; dup {
				continue
			}
			seen[d.Text] = struct{}{}
			merged = append(merged, d)
		}
	}
	return merged, nil
}

// hydeRetrieve generates a hypothetical passage answering the question and
// retrieves with that passage instead of the question itself.
func (e *Engine) hydeRetrieve(ctx context.Context, question string, r Retriever) ([]Chunk, error) {
	hypothetical, err := e.gen.Generate(ctx, "", hydePrompt(question))
	if err != nil {
		return nil, fmt.Errorf("generate hypothetical passage failed: %w", err)
	}
	return r.Retrieve(ctx, hypothetical, e.topK)
}

func (e *Engine) previews(ctx context.Context, question string, r Retriever) ([]string, error) {
	docs, err := r.Retrieve(ctx, question, e.previewCount)
	if err != nil {
		return nil, fmt.Errorf("retrieve source previews failed: %w", err)
	}

	previews := make([]string, 0, len(docs))
	for _, d := range docs {
		previews = append(previews, truncateRunes(d.Text, e.previewChars))
	}
	return previews, nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
