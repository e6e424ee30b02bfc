package rag

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunk is one bounded slice of a source document, carrying the source
// metadata it came from.
type Chunk struct {
	Text       string
	Source     string
	SourceKind string
	Ordinal    int
}

// SplitText splits text into overlapping chunks of at most size runes,
// with overlap runes shared between consecutive chunks. Each cut prefers a
// paragraph break, then a line break, then a sentence end, then a word
// boundary near the end of the window, falling back to a hard cut when the
// window has no such boundary. Chunk order follows document order.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		cut := boundaryCut(runes, start, end)
		chunks = append(chunks, string(runes[start:cut]))

		next := cut - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// boundaryCut finds the best cut position in runes[start:end], scanning
// backwards over the tail quarter of the window. Returns end when no
// boundary is found there.
func boundaryCut(runes []rune, start, end int) int {
	floor := end - (end-start)/4
	if floor <= start {
		floor = start + 1
	}

	type boundary func(i int) bool
	paragraph := func(i int) bool {
		return runes[i] == '\n' && i > 0 && runes[i-1] == '\n'
	}
	line := func(i int) bool { return runes[i] == '\n' }
	sentence := func(i int) bool {
		if i == 0 {
			return false
		}
		prev := runes[i-1]
		return (prev == '.' || prev == '!' || prev == '?') && runes[i] == ' '
	}
	word := func(i int) bool { return runes[i] == ' ' || runes[i] == '\t' }

	for _, match := range []boundary{paragraph, line, sentence, word} {
		for i := end - 1; i >= floor; i-- {
			if match(i) {
				return i + 1
			}
		}
	}
	return end
}

// MakeChunks splits text and attaches source metadata to every chunk.
func MakeChunks(text, source, sourceKind string, size, overlap int) []Chunk {
	parts := SplitText(text, size, overlap)
	chunks := make([]Chunk, len(parts))
	for i, p := range parts {
		chunks[i] = Chunk{
			Text:       p,
			Source:     source,
			SourceKind: sourceKind,
			Ordinal:    i,
		}
	}
	return chunks
}
