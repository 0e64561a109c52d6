package specindex

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubEmbedder maps text to a fixed 2-dimensional vector so similarity
// ordering is fully controlled by the test.
type stubEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, ok := s.vectors[t]
		if !ok {
			vec = []float32{0, 1}
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimension() int { return 2 }

// tenPageDoc yields one chunk per page with decreasing similarity to the
// query vector [1, 0].
func tenPageDoc(emb *stubEmbedder) Document {
	doc := Document{Hash: "test-hash"}
	for i := 0; i < 10; i++ {
		text := fmt.Sprintf("page %d", i)
		doc.Pages = append(doc.Pages, text)
		emb.vectors[text] = []float32{1, float32(i)}
	}
	return doc
}

func newTestIndex(t *testing.T, cache *Store) (*Index, *stubEmbedder) {
	t.Helper()
	emb := &stubEmbedder{vectors: map[string][]float32{"query": {1, 0}}}
	doc := tenPageDoc(emb)
	idx, err := Build(context.Background(), "test.pdf", doc, ChunkConfig{Size: 750, Overlap: 100}, emb, cache, zap.NewNop())
	require.NoError(t, err)
	return idx, emb
}

func TestQuery_TopKOrdering(t *testing.T) {
	idx, _ := newTestIndex(t, nil)

	results, err := idx.Query(context.Background(), "query", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score, "scores must be non-increasing")
	}
	assert.Equal(t, "page 0", results[0].Chunk.Text)
}

func TestQuery_KLargerThanCorpus(t *testing.T) {
	idx, _ := newTestIndex(t, nil)

	results, err := idx.Query(context.Background(), "query", 1000)
	require.NoError(t, err)
	assert.Len(t, results, 10, "oversized k returns the full corpus without error")
}

func TestQuery_InvalidK(t *testing.T) {
	idx, _ := newTestIndex(t, nil)

	_, err := idx.Query(context.Background(), "query", 0)
	assert.Error(t, err)
	_, err = idx.Query(context.Background(), "query", -1)
	assert.Error(t, err)
}

func TestQuery_TieStableByInsertionOrder(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{"query": {1, 0}}}
	doc := Document{Hash: "ties"}
	for i := 0; i < 4; i++ {
		text := fmt.Sprintf("same %d", i)
		doc.Pages = append(doc.Pages, text)
		emb.vectors[text] = []float32{1, 0} // identical scores
	}
	idx, err := Build(context.Background(), "ties.pdf", doc, DefaultChunkConfig(), emb, nil, zap.NewNop())
	require.NoError(t, err)

	results, err := idx.Query(context.Background(), "query", 4)
	require.NoError(t, err)
	for i, r := range results {
		assert.Equal(t, i, r.Chunk.Index, "equal scores keep insertion order")
	}
}

func TestBuild_EmptyDocument(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{}}
	_, err := Build(context.Background(), "empty.pdf", Document{}, DefaultChunkConfig(), emb, nil, zap.NewNop())
	require.Error(t, err)

	var buildErr *IndexBuildError
	assert.ErrorAs(t, err, &buildErr)
}

func TestBuild_EmbeddingCache(t *testing.T) {
	cache, err := OpenStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	_, emb1 := newTestIndex(t, cache)
	assert.Equal(t, 1, emb1.calls, "cold cache embeds the corpus")

	idx2, emb2 := newTestIndex(t, cache)
	assert.Equal(t, 0, emb2.calls, "warm cache skips embedding entirely")

	results, err := idx2.Query(context.Background(), "query", 1)
	require.NoError(t, err)
	assert.Equal(t, "page 0", results[0].Chunk.Text)
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "abc", shortHash("abc"), "short hashes pass through")
	assert.Equal(t, "0123456789ab", shortHash("0123456789ab"))
	assert.Equal(t, "0123456789ab", shortHash("0123456789abcdef"))
	assert.Equal(t, "", shortHash(""))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0}, []float32{2, 0}), 1e-6)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.Equal(t, float32(0), Cosine([]float32{1}, []float32{1, 2}), "mismatched dimensions score zero")
	assert.Equal(t, float32(0), Cosine(nil, nil))
}
