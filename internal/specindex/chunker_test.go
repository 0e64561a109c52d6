package specindex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_OverlappingWindows(t *testing.T) {
	doc := Document{Pages: []string{"abcdefghijklmnopqrst"}} // 20 runes
	chunks := Split(doc, ChunkConfig{Size: 10, Overlap: 3})

	require.Len(t, chunks, 3)
	assert.Equal(t, "abcdefghij", chunks[0].Text)
	assert.Equal(t, "hijklmnopq", chunks[1].Text)
	assert.Equal(t, "opqrst", chunks[2].Text)

	// a fact on a window boundary survives in the overlap
	assert.True(t, strings.HasPrefix(chunks[1].Text, chunks[0].Text[7:]))
}

func TestSplit_Provenance(t *testing.T) {
	doc := Document{Pages: []string{"first page text", "", "third page text"}}
	chunks := Split(doc, ChunkConfig{Size: 100, Overlap: 10})

	require.Len(t, chunks, 2, "empty pages yield no chunks")
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 3, chunks[1].Page)
	assert.Equal(t, 0, chunks[0].Offset)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[1].Index)
	assert.Equal(t, "p1:0", chunks[0].ID)
	assert.Equal(t, "p3:0", chunks[1].ID)
}

func TestSplit_ShortPageSingleChunk(t *testing.T) {
	doc := Document{Pages: []string{"tiny"}}
	chunks := Split(doc, ChunkConfig{Size: 750, Overlap: 100})

	require.Len(t, chunks, 1)
	assert.Equal(t, "tiny", chunks[0].Text)
}

func TestSplit_MultibyteSafe(t *testing.T) {
	doc := Document{Pages: []string{strings.Repeat("é", 12)}}
	chunks := Split(doc, ChunkConfig{Size: 5, Overlap: 1})

	for _, c := range chunks {
		assert.True(t, strings.HasPrefix(c.Text, "é"), "windows must cut on rune boundaries")
	}
}
