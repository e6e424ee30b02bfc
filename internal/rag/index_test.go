package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder maps known texts to fixed vectors.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
	batches int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.vectors[text]
	if !ok {
		return []float32{0, 0, 1}, nil
	}
	return v, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.batches++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func axisEmbedder() *stubEmbedder {
	return &stubEmbedder{vectors: map[string][]float32{
		"north": {1, 0, 0},
		"east":  {0, 1, 0},
		"up":    {0, 0, 1},
		// Closer to north than to east.
		"north-east-ish": {3, 1, 0},
	}}
}

func TestBuildIndexAndRetrieveOrdersBySimilarity(t *testing.T) {
	emb := axisEmbedder()
	ix, err := BuildIndex(context.Background(), emb, chunksOf("north", "east", "up"))
	require.NoError(t, err)
	assert.Equal(t, 3, ix.Len())

	docs, err := ix.Retrieve(context.Background(), "north-east-ish", 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "north", docs[0].Text)
	assert.Equal(t, "east", docs[1].Text)
}

func TestRetrieveKLargerThanIndexReturnsEverything(t *testing.T) {
	ix, err := BuildIndex(context.Background(), axisEmbedder(), chunksOf("north", "east"))
	require.NoError(t, err)

	docs, err := ix.Retrieve(context.Background(), "north", 10)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestBuildIndexBatchesEmbeddings(t *testing.T) {
	texts := make([]string, 25)
	for i := range texts {
		texts[i] = "chunk"
	}
	emb := axisEmbedder()
	ix, err := BuildIndex(context.Background(), emb, chunksOf(texts...))
	require.NoError(t, err)

	assert.Equal(t, 25, ix.Len())
	assert.Equal(t, 3, emb.batches)
}

func TestBuildIndexEmbedFailureIsAllOrNothing(t *testing.T) {
	emb := &stubEmbedder{err: errors.New("embedding service down")}
	ix, err := BuildIndex(context.Background(), emb, chunksOf("a", "b"))
	require.Error(t, err)
	assert.Nil(t, ix)
}

func TestBuildIndexRejectsEmptyInput(t *testing.T) {
	_, err := BuildIndex(context.Background(), axisEmbedder(), nil)
	require.Error(t, err)
}

func TestReleaseFreesIndex(t *testing.T) {
	ix, err := BuildIndex(context.Background(), axisEmbedder(), chunksOf("north"))
	require.NoError(t, err)

	ix.Release()
	ix.Release() // idempotent

	assert.Equal(t, 0, ix.Len())
	_, err = ix.Retrieve(context.Background(), "north", 1)
	assert.ErrorIs(t, err, ErrIndexReleased)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-6)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.Zero(t, cosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Zero(t, cosineSimilarity(nil, nil))
}
