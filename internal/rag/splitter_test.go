package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextShortInputSingleChunk(t *testing.T) {
	text := strings.Repeat("x", 1000)
	chunks := SplitText(text, 1000, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitTextEmptyInput(t *testing.T) {
	assert.Nil(t, SplitText("", 1000, 200))
}

func TestSplitTextHardCutsWithoutBoundaries(t *testing.T) {
	text := strings.Repeat("a", 2000)
	chunks := SplitText(text, 1000, 200)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 1000)
	assert.Len(t, chunks[1], 1000)
	assert.Len(t, chunks[2], 400)
}

func TestSplitTextConsecutiveChunksOverlap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 400; i++ {
		sb.WriteString("word ")
	}
	chunks := SplitText(sb.String(), 1000, 200)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		tail := chunks[i-1][len(chunks[i-1])-50:]
		assert.Contains(t, chunks[i], tail, "chunk %d should share its predecessor's tail", i)
	}
}

func TestSplitTextPrefersParagraphBoundary(t *testing.T) {
	para1 := strings.Repeat("b", 850)
	para2 := strings.Repeat("c", 850)
	text := para1 + "\n\n" + para2

	chunks := SplitText(text, 1000, 200)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, para1+"\n\n", chunks[0])
}

func TestSplitTextPrefersWordBoundaryOverHardCut(t *testing.T) {
	// One space near the end of the first window, no other boundaries.
	text := strings.Repeat("d", 950) + " " + strings.Repeat("e", 600)
	chunks := SplitText(text, 1000, 200)
	require.Greater(t, len(chunks), 1)
	assert.True(t, strings.HasSuffix(chunks[0], " "), "first chunk should end at the word boundary")
	assert.Len(t, chunks[0], 951)
}

func TestSplitTextChunkOrderIsStable(t *testing.T) {
	// Distinct letter runs make every chunk's position in the document
	// unique, so chunk order can be checked against document order.
	text := strings.Repeat("a", 900) + strings.Repeat("b", 900) + strings.Repeat("c", 900)
	chunks := SplitText(text, 1000, 200)
	require.Greater(t, len(chunks), 1)

	prev := -1
	for i, c := range chunks {
		idx := strings.Index(text, c)
		require.GreaterOrEqual(t, idx, 0, "chunk %d not found in document", i)
		assert.Greater(t, idx, prev, "chunk %d out of document order", i)
		prev = idx
	}
	assert.True(t, strings.HasSuffix(text, chunks[len(chunks)-1]))
}

func TestMakeChunksAttachesMetadata(t *testing.T) {
	text := strings.Repeat("a", 2000)
	chunks := MakeChunks(text, "report.txt", "file", 1000, 200)

	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, "report.txt", c.Source)
		assert.Equal(t, "file", c.SourceKind)
		assert.Equal(t, i, c.Ordinal)
	}
}
