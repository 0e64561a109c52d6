package specindex

import "fmt"

// Chunk is one overlapping text window with provenance for citation.
type Chunk struct {
	ID     string
	Text   string
	Page   int // 1-based source page
	Offset int // rune offset within the page
	Index  int // insertion index across the whole document
}

// ChunkConfig controls window slicing.
type ChunkConfig struct {
	Size    int // window length in runes
	Overlap int // runes shared between consecutive windows
}

func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{Size: 750, Overlap: 100}
}

// Split slices every page of the document into overlapping windows. The
// overlap exists so a fact spanning a window boundary is still retrievable
// intact from at least one chunk.
func Split(doc Document, cfg ChunkConfig) []Chunk {
	if cfg.Size <= 0 {
		cfg.Size = 750
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		cfg.Overlap = cfg.Size / 8
	}
	step := cfg.Size - cfg.Overlap

	var chunks []Chunk
	for p, text := range doc.Pages {
		runes := []rune(text)
		if len(runes) == 0 {
			continue
		}
		page := p + 1
		for off := 0; off < len(runes); off += step {
			end := min(off+cfg.Size, len(runes))
			chunks = append(chunks, Chunk{
				ID:     fmt.Sprintf("p%d:%d", page, off),
				Text:   string(runes[off:end]),
				Page:   page,
				Offset: off,
				Index:  len(chunks),
			})
			if end == len(runes) {
				break
			}
		}
	}
	return chunks
}
