package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRetriever records every query it was asked and answers from a fixed
// map; queries with no entry return fallback.
type stubRetriever struct {
	byQuery  map[string][]Chunk
	fallback []Chunk
	failOn   map[string]error
	queries  []string
}

func (s *stubRetriever) Retrieve(_ context.Context, query string, k int) ([]Chunk, error) {
	s.queries = append(s.queries, query)
	if err, ok := s.failOn[query]; ok {
		return nil, err
	}
	docs, ok := s.byQuery[query]
	if !ok {
		docs = s.fallback
	}
	if k < len(docs) {
		docs = docs[:k]
	}
	return docs, nil
}

type stubGenerator struct {
	responses []string
	errs      []error
	prompts   []string
}

func (s *stubGenerator) Generate(_ context.Context, _, user string) (string, error) {
	i := len(s.prompts)
	s.prompts = append(s.prompts, user)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", errors.New("unexpected generate call")
}

func chunksOf(texts ...string) []Chunk {
	out := make([]Chunk, len(texts))
	for i, t := range texts {
		out[i] = Chunk{Text: t}
	}
	return out
}

func TestNormalizeStrategy(t *testing.T) {
	assert.Equal(t, StrategyBasic, NormalizeStrategy(""))
	assert.Equal(t, StrategyBasic, NormalizeStrategy("basic"))
	assert.Equal(t, StrategyBasic, NormalizeStrategy("graph_rag"))
	assert.Equal(t, StrategyMultiQuery, NormalizeStrategy("multi_query"))
	assert.Equal(t, StrategyHyDE, NormalizeStrategy(" hyde "))
}

func TestAnswerBasicUsesQuestionAsQuery(t *testing.T) {
	r := &stubRetriever{fallback: chunksOf("alpha", "beta")}
	g := &stubGenerator{responses: []string{"  the answer  "}}
	e := NewEngine(g, 4, 3, 200)

	answer, err := e.Answer(context.Background(), "what is alpha?", "basic", r)
	require.NoError(t, err)

	assert.Equal(t, "the answer", answer.Text)
	assert.Equal(t, StrategyBasic, answer.Strategy)
	// One retrieval for context, one for previews, both on the question.
	require.Len(t, r.queries, 2)
	assert.Equal(t, "what is alpha?", r.queries[0])
	assert.Equal(t, "what is alpha?", r.queries[1])
	// The generation prompt carries the retrieved context.
	require.Len(t, g.prompts, 1)
	assert.Contains(t, g.prompts[0], "alpha")
	assert.Contains(t, g.prompts[0], "beta")
	assert.Contains(t, g.prompts[0], "what is alpha?")
}

func TestAnswerUnknownStrategyFallsBackToBasic(t *testing.T) {
	r := &stubRetriever{fallback: chunksOf("alpha")}
	g := &stubGenerator{responses: []string{"ok"}}
	e := NewEngine(g, 4, 3, 200)

	answer, err := e.Answer(context.Background(), "q", "no_such_strategy", r)
	require.NoError(t, err)
	assert.Equal(t, StrategyBasic, answer.Strategy)
	// No paraphrase generation happened: only the final answer call.
	assert.Len(t, g.prompts, 1)
}

func TestAnswerPreviewsAreTruncated(t *testing.T) {
	long := strings.Repeat("p", 300)
	short := "short excerpt"
	r := &stubRetriever{fallback: chunksOf(long, short, "third", "fourth")}
	g := &stubGenerator{responses: []string{"ok"}}
	e := NewEngine(g, 4, 3, 200)

	answer, err := e.Answer(context.Background(), "q", "basic", r)
	require.NoError(t, err)

	require.Len(t, answer.Sources, 3)
	assert.Equal(t, strings.Repeat("p", 200)+"...", answer.Sources[0])
	assert.Equal(t, short, answer.Sources[1])
}

func TestAnswerMultiQueryMergesAndDedupes(t *testing.T) {
	r := &stubRetriever{
		byQuery: map[string][]Chunk{
			"q1": chunksOf("shared", "only-q1"),
			"q2": chunksOf("shared", "only-q2"),
			"q3": chunksOf("only-q3"),
			"q":  chunksOf("preview"),
		},
	}
	g := &stubGenerator{responses: []string{"q1\nq2\nq3", "merged answer"}}
	e := NewEngine(g, 4, 3, 200)

	answer, err := e.Answer(context.Background(), "q", StrategyMultiQuery, r)
	require.NoError(t, err)
	assert.Equal(t, StrategyMultiQuery, answer.Strategy)

	// First-wins dedupe: "shared" appears once, from q1's results.
	ctxPrompt := g.prompts[1]
	assert.Equal(t, 1, strings.Count(ctxPrompt, "shared"))
	assert.Contains(t, ctxPrompt, "only-q1")
	assert.Contains(t, ctxPrompt, "only-q2")
	assert.Contains(t, ctxPrompt, "only-q3")
}

func TestAnswerMultiQuerySkipsFailedParaphrase(t *testing.T) {
	r := &stubRetriever{
		byQuery: map[string][]Chunk{
			"q1": chunksOf("from-q1"),
			"q3": chunksOf("from-q3"),
			"q":  chunksOf("preview"),
		},
		failOn: map[string]error{"q2": errors.New("embed down")},
	}
	g := &stubGenerator{responses: []string{"q1\nq2\nq3", "answer"}}
	e := NewEngine(g, 4, 3, 200)

	answer, err := e.Answer(context.Background(), "q", StrategyMultiQuery, r)
	require.NoError(t, err)

	assert.Contains(t, g.prompts[1], "from-q1")
	assert.Contains(t, g.prompts[1], "from-q3")
	assert.NotContains(t, g.prompts[1], "from-q2")
	assert.Equal(t, "answer", answer.Text)
}

func TestAnswerMultiQueryParaphraseFailureDegradesToEmptyContext(t *testing.T) {
	r := &stubRetriever{fallback: chunksOf("preview")}
	g := &stubGenerator{
		errs:      []error{errors.New("llm unavailable"), nil},
		responses: []string{"", "answer without context"},
	}
	e := NewEngine(g, 4, 3, 200)

	answer, err := e.Answer(context.Background(), "q", StrategyMultiQuery, r)
	require.NoError(t, err)
	assert.Equal(t, "answer without context", answer.Text)
	// The only retrieval was for previews.
	assert.Equal(t, []string{"q"}, r.queries)
}

func TestAnswerHyDERetrievesWithHypothetical(t *testing.T) {
	r := &stubRetriever{
		byQuery: map[string][]Chunk{
			"hypothetical passage": chunksOf("hyde-hit"),
			"q":                    chunksOf("preview"),
		},
	}
	g := &stubGenerator{responses: []string{"hypothetical passage", "final"}}
	e := NewEngine(g, 4, 3, 200)

	answer, err := e.Answer(context.Background(), "q", StrategyHyDE, r)
	require.NoError(t, err)

	assert.Equal(t, StrategyHyDE, answer.Strategy)
	assert.Equal(t, "hypothetical passage", r.queries[0])
	assert.Contains(t, g.prompts[1], "hyde-hit")
}

func TestAnswerHyDEGenerationFailureSurfaces(t *testing.T) {
	r := &stubRetriever{fallback: chunksOf("preview")}
	g := &stubGenerator{errs: []error{errors.New("llm unavailable")}}
	e := NewEngine(g, 4, 3, 200)

	_, err := e.Answer(context.Background(), "q", StrategyHyDE, r)
	require.Error(t, err)
	assert.Empty(t, r.queries)
}

func TestAnswerGenerationFailureSurfaces(t *testing.T) {
	r := &stubRetriever{fallback: chunksOf("alpha")}
	g := &stubGenerator{errs: []error{errors.New("llm unavailable")}}
	e := NewEngine(g, 4, 3, 200)

	_, err := e.Answer(context.Background(), "q", "basic", r)
	require.Error(t, err)
}

func TestParseQueries(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, parseQueries("a\nb\n\n  c  \n"))
	assert.Empty(t, parseQueries("  \n\n"))
}
