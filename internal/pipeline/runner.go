package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"mbseqa/internal/citation"
	"mbseqa/internal/llm"
	"mbseqa/internal/model"
	"mbseqa/internal/qa"
	"mbseqa/internal/resolver"
	"mbseqa/internal/snippet"
	"mbseqa/internal/specindex"
)

// CitationIssues is the validator's report attached to a successful record.
type CitationIssues struct {
	Hallucinated []string `json:"hallucinated"`
	Unused       []string `json:"unused"`
}

// RecordQA is the QASet as emitted, with the citation report alongside.
type RecordQA struct {
	qa.QASet
	CitationIssues CitationIssues `json:"citation_issues"`
}

// Record is the outcome of one seed question. Exactly one of QA or Error
// is set: failures are data, never reasons to abort the batch.
type Record struct {
	Question string    `json:"question"`
	QA       *RecordQA `json:"qa,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Options tunes per-question processing.
type Options struct {
	PDFChunks       int           // top-k spec chunks per question
	ModelSnippets   int           // top-n model snippets per question
	SnippetDepth    int           // snippet depth limit, 0 unbounded
	SnippetMaxLen   int           // snippet length cap in runes
	Workers         int           // bounded worker pool size, 1 = sequential
	QuestionTimeout time.Duration // budget for one question's external calls
}

// Runner processes seed questions against a read-only graph and index.
// Graph and Index are built once before the batch; per-question units share
// no mutable state, so a bounded worker pool needs no locking.
type Runner struct {
	graph     *model.Graph
	index     *specindex.Index
	resolver  *resolver.Resolver
	extractor *qa.EntityExtractor
	generator *qa.Generator
	embedder  llm.Embedder
	opts      Options
	log       *zap.Logger
}

func NewRunner(g *model.Graph, idx *specindex.Index, res *resolver.Resolver, ext *qa.EntityExtractor, gen *qa.Generator, emb llm.Embedder, opts Options, log *zap.Logger) *Runner {
	if opts.PDFChunks <= 0 {
		opts.PDFChunks = 5
	}
	if opts.ModelSnippets <= 0 {
		opts.ModelSnippets = 8
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QuestionTimeout <= 0 {
		opts.QuestionTimeout = 5 * time.Minute
	}
	return &Runner{
		graph:     g,
		index:     idx,
		resolver:  res,
		extractor: ext,
		generator: gen,
		embedder:  emb,
		opts:      opts,
		log:       log,
	}
}

// Run processes every question and returns one record per input, in input
// order regardless of completion order. A failure in one question never
// aborts its siblings.
func (r *Runner) Run(ctx context.Context, questions []string) []Record {
	records := make([]Record, len(questions))
	sem := make(chan struct{}, r.opts.Workers)
	var wg sync.WaitGroup

	for i, question := range questions {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, question string) {
			defer wg.Done()
			defer func() { <-sem }()

			qctx, cancel := context.WithTimeout(ctx, r.opts.QuestionTimeout)
			defer cancel()

			rec := r.processOne(qctx, question)
			if rec.Error != "" {
				r.log.Warn("question failed", zap.Int("index", i), zap.String("question", question), zap.String("error", rec.Error))
			} else {
				r.log.Info("question done", zap.Int("index", i), zap.String("question", question))
			}
			records[i] = rec
		}(i, question)
	}

	wg.Wait()
	return records
}

func (r *Runner) processOne(ctx context.Context, question string) Record {
	rec := Record{Question: question}

	// 1. Extract entity names
	entities, err := r.extractor.Extract(ctx, question)
	if err != nil {
		rec.Error = err.Error()
		return rec
	}

	// 2. Resolve against the graph; unresolved is a normal outcome
	resolved := r.resolver.ResolveAll(entities, r.graph)
	var nodeIDs []string
	for _, ent := range resolved {
		if ent.Kind != resolver.MatchNone {
			nodeIDs = append(nodeIDs, ent.NodeID)
		}
	}

	// 3. Rank resolved nodes against the question, keep the top slice
	nodeIDs, err = r.rankNodes(ctx, question, nodeIDs)
	if err != nil {
		rec.Error = fmt.Sprintf("rank model snippets: %v", err)
		return rec
	}

	// 4. Assemble context with per-question citation tokens
	asm := citation.NewAssembler()

	pdfHits, err := r.index.Query(ctx, question, r.opts.PDFChunks)
	if err != nil {
		rec.Error = fmt.Sprintf("spec retrieval: %v", err)
		return rec
	}
	pdfBlocks := make([]string, 0, len(pdfHits))
	for _, hit := range pdfHits {
		tok := asm.Next()
		pdfBlocks = append(pdfBlocks, fmt.Sprintf("%s (page %d)\n%s", tok, hit.Chunk.Page, hit.Chunk.Text))
	}

	var modelBlocks []string
	for _, id := range nodeIDs {
		rendered := snippet.Extract(r.graph, id, snippet.Options{
			DepthLimit: r.opts.SnippetDepth,
			MaxLen:     r.opts.SnippetMaxLen,
		})
		if rendered == "" {
			continue
		}
		node, _ := r.graph.Get(id)
		tok := asm.Next()
		modelBlocks = append(modelBlocks, fmt.Sprintf("%s (%s) id=%s\n```xml\n%s\n```", tok, node.Tag, id, rendered))
	}

	// 5. Generate the QA set
	set, err := r.generator.Generate(ctx, question, pdfBlocks, modelBlocks)
	if err != nil {
		rec.Error = err.Error()
		return rec
	}

	// 6. Validate citations across all ten answers
	var all []string
	for _, pair := range set.Categories() {
		all = append(all, pair.Answer)
	}
	result := citation.Validate(joinAnswers(all), asm.Supplied())

	rec.QA = &RecordQA{
		QASet: *set,
		CitationIssues: CitationIssues{
			Hallucinated: tokensToStrings(result.Hallucinated),
			Unused:       tokensToStrings(result.Unused),
		},
	}
	return rec
}

// rankNodes orders resolved nodes by embedding similarity of their
// descriptions to the question and keeps the top ModelSnippets. Duplicate
// occurrences survive resolution but collapse here, first occurrence wins.
func (r *Runner) rankNodes(ctx context.Context, question string, nodeIDs []string) ([]string, error) {
	if len(nodeIDs) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(nodeIDs))
	var unique []string
	for _, id := range nodeIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) <= r.opts.ModelSnippets {
		return unique, nil
	}

	texts := make([]string, 0, len(unique)+1)
	texts = append(texts, question)
	for _, id := range unique {
		node, _ := r.graph.Get(id)
		texts = append(texts, node.Description())
	}
	vecs, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, expected %d", len(vecs), len(texts))
	}

	type scored struct {
		id    string
		score float32
	}
	ranked := make([]scored, len(unique))
	for i, id := range unique {
		ranked[i] = scored{id: id, score: specindex.Cosine(vecs[0], vecs[i+1])}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]string, 0, r.opts.ModelSnippets)
	for _, s := range ranked[:r.opts.ModelSnippets] {
		out = append(out, s.id)
	}
	return out, nil
}

func joinAnswers(answers []string) string {
	var b []byte
	for i, a := range answers {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, a...)
	}
	return string(b)
}

func tokensToStrings(tokens []citation.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = string(t)
	}
	return out
}
