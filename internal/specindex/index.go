package specindex

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"mbseqa/internal/llm"
)

// IndexBuildError reports an unreadable or empty specification document.
// No index means no retrieval, so callers treat this as fatal.
type IndexBuildError struct {
	Source string
	Err    error
}

func (e *IndexBuildError) Error() string {
	return fmt.Sprintf("build spec index from %s: %v", e.Source, e.Err)
}

func (e *IndexBuildError) Unwrap() error { return e.Err }

// Result is one retrieval hit.
type Result struct {
	Chunk Chunk
	Score float32
}

// Index holds chunk embeddings in memory and answers nearest-neighbor
// queries by cosine similarity. Built once, read-only afterwards; safe for
// concurrent queries.
type Index struct {
	chunks   []Chunk
	vectors  [][]float32
	embedder llm.Embedder
}

// Build embeds all chunks of the document. A non-nil cache is consulted by
// document hash first, so repeated runs over the same spec skip the
// embedding calls entirely.
func Build(ctx context.Context, source string, doc Document, cfg ChunkConfig, embedder llm.Embedder, cache *Store, log *zap.Logger) (*Index, error) {
	chunks := Split(doc, cfg)
	if len(chunks) == 0 {
		return nil, &IndexBuildError{Source: source, Err: fmt.Errorf("document produced no chunks")}
	}

	ids := make([]string, len(chunks))
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
		texts[i] = c.Text
	}

	if cache != nil {
		if vectors, ok, err := cache.Load(doc.Hash, ids); err != nil {
			log.Warn("embedding cache read failed", zap.Error(err))
		} else if ok {
			log.Info("embedding cache hit", zap.String("doc_hash", shortHash(doc.Hash)), zap.Int("chunks", len(chunks)))
			return &Index{chunks: chunks, vectors: vectors, embedder: embedder}, nil
		}
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, &IndexBuildError{Source: source, Err: err}
	}
	if len(vectors) != len(chunks) {
		return nil, &IndexBuildError{Source: source, Err: fmt.Errorf("embedding count mismatch: got %d, expected %d", len(vectors), len(chunks))}
	}

	if cache != nil {
		if err := cache.Save(doc.Hash, ids, vectors); err != nil {
			log.Warn("embedding cache write failed", zap.Error(err))
		}
	}

	return &Index{chunks: chunks, vectors: vectors, embedder: embedder}, nil
}

// Size returns the corpus size.
func (idx *Index) Size() int { return len(idx.chunks) }

// Query embeds text and returns the k nearest chunks, descending by score,
// ties stable by chunk insertion order. k larger than the corpus returns
// the full corpus; k < 1 is an error.
func (idx *Index) Query(ctx context.Context, text string, k int) ([]Result, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be a positive integer, got %d", k)
	}

	vecs, err := idx.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embed query: no vector returned")
	}
	query := vecs[0]

	results := make([]Result, len(idx.chunks))
	for i, c := range idx.chunks {
		results[i] = Result{Chunk: c, Score: Cosine(query, idx.vectors[i])}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// shortHash abbreviates a document hash for log lines. Hashes shorter than
// the abbreviation are passed through unchanged.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// Cosine computes cosine similarity between two vectors. Mismatched or
// empty vectors score zero.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float32
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(magA))) * float32(math.Sqrt(float64(magB))))
}
