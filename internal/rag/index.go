package rag

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Embedder maps text to a vector. Implementations call out to an
// embedding service and must honor ctx cancellation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ErrIndexReleased is returned by Retrieve after Release has freed the
// index's vectors.
var ErrIndexReleased = errors.New("index has been released")

const embedBatchSize = 10 // embedding APIs commonly cap batch input size

// Index is a brute-force cosine-similarity index over one document's
// chunks. Built once per ingestion, read-only afterwards, and freed with
// Release when the owning corpus is replaced or cleared.
type Index struct {
	mu       sync.RWMutex
	embedder Embedder
	chunks   []Chunk
	vectors  [][]float32
	released bool
}

// BuildIndex embeds all chunks and returns a ready index. The returned
// index is fully built or an error is returned; there is no partial state.
func BuildIndex(ctx context.Context, embedder Embedder, chunks []Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, errors.New("no chunks to index")
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	var vectors [][]float32
	for i := 0; i < len(texts); i += embedBatchSize {
		end := i + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := embedder.EmbedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embed chunk batch failed: %w", err)
		}
		vectors = append(vectors, batch...)
	}
	if len(vectors) != len(chunks) {
		return nil, errors.New("embedding count mismatch")
	}

	return &Index{
		embedder: embedder,
		chunks:   chunks,
		vectors:  vectors,
	}, nil
}

// Retrieve returns the top-k chunks most similar to query.
func (ix *Index) Retrieve(ctx context.Context, query string, k int) ([]Chunk, error) {
	queryVec, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query failed: %w", err)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.released {
		return nil, ErrIndexReleased
	}

	scores := make([]float32, len(ix.vectors))
	for i := range ix.vectors {
		scores[i] = cosineSimilarity(queryVec, ix.vectors[i])
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k <= 0 || k > len(order) {
		k = len(order)
	}
	out := make([]Chunk, k)
	for i := 0; i < k; i++ {
		out[i] = ix.chunks[order[i]]
	}
	return out, nil
}

// Len reports the number of indexed chunks, zero after Release.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

// Release frees the index's chunks and vectors. Safe to call more than
// once; subsequent Retrieve calls fail with ErrIndexReleased.
func (ix *Index) Release() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.released = true
	ix.chunks = nil
	ix.vectors = nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
