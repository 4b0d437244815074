package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextShortInputSingleChunk(t *testing.T) {
	chunker := NewTextChunker()

	chunks := chunker.ChunkText("first paragraph\n\nsecond paragraph", 1000, 200)

	require.Len(t, chunks, 1)
	assert.Equal(t, "first paragraph\n\nsecond paragraph", chunks[0])
}

func TestChunkTextSplitsOnParagraphs(t *testing.T) {
	chunker := NewTextChunker()

	para := strings.Repeat("word ", 30) // ~150 chars
	text := strings.Join([]string{para, para, para, para}, "\n\n")

	chunks := chunker.ChunkText(text, 200, 0)

	assert.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	chunker := NewTextChunker()

	assert.Empty(t, chunker.ChunkText("", 1000, 200))
	assert.Empty(t, chunker.ChunkText("\n\n\n\n", 1000, 200))
}

func TestChunkTextOversizedParagraphFallsBackToSentences(t *testing.T) {
	chunker := NewTextChunker()

	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("This is a reasonably long sentence about resume screening. ")
	}

	chunks := chunker.ChunkText(b.String(), 300, 0)

	assert.Greater(t, len(chunks), 1)
}

func TestChunkTextOverlapChunksAlwaysCarryNewContent(t *testing.T) {
	chunker := NewTextChunker()

	paraA := strings.Repeat("a", 90)
	paraB := strings.Repeat("b", 90)

	chunks := chunker.ChunkText(paraA+"\n\n"+paraB, 100, 20)

	require.Len(t, chunks, 2)
	assert.Equal(t, paraA, chunks[0])
	// the second chunk starts with the seeded overlap but must contain the
	// paragraph that forced the split, never the previous tail alone
	assert.Contains(t, chunks[1], paraB)
	assert.NotEqual(t, strings.Repeat("a", 20), strings.TrimSpace(chunks[1]))
}

func TestChunkTextDefaultsInvalidArguments(t *testing.T) {
	chunker := NewTextChunker()

	// nonsense sizes fall back to workable defaults instead of panicking
	chunks := chunker.ChunkText("some text", 0, -5)

	require.Len(t, chunks, 1)
	assert.Equal(t, "some text", chunks[0])
}
