package resolver

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"mbseqa/internal/model"
)

// MatchKind tells which strategy produced a resolution.
type MatchKind string

const (
	MatchExact MatchKind = "exact"
	MatchFuzzy MatchKind = "fuzzy"
	MatchNone  MatchKind = "none"
)

// ResolvedEntity is the per-query result of mapping an extracted name onto
// the graph. NodeID is empty when the entity stayed unresolved, which is a
// normal outcome, not an error.
type ResolvedEntity struct {
	Raw    string
	NodeID string
	Kind   MatchKind
	Score  float64
}

// Strategy is one resolution attempt. Strategies run in fixed order and the
// first hit wins, so adding a new matching scheme never touches call sites.
type Strategy interface {
	Name() string
	Resolve(name string, g *model.Graph) (ResolvedEntity, bool)
}

// Resolver maps extracted entity names to graph node identifiers.
type Resolver struct {
	strategies []Strategy
}

// New builds the default exact-then-fuzzy chain with the given fuzzy
// acceptance threshold (0-1 scale).
func New(threshold float64) *Resolver {
	return NewWithStrategies(
		ExactStrategy{},
		NewFuzzyStrategy(threshold),
	)
}

func NewWithStrategies(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Resolve runs the strategy chain for one name. Pure given the graph
// snapshot; no side effects.
func (r *Resolver) Resolve(name string, g *model.Graph) ResolvedEntity {
	for _, s := range r.strategies {
		if ent, ok := s.Resolve(name, g); ok {
			return ent
		}
	}
	return ResolvedEntity{Raw: name, Kind: MatchNone}
}

// ResolveAll resolves a batch, preserving input order including duplicates.
// A name appearing twice yields two results; downstream snippet budgets are
// per occurrence.
func (r *Resolver) ResolveAll(names []string, g *model.Graph) []ResolvedEntity {
	out := make([]ResolvedEntity, len(names))
	for i, name := range names {
		out[i] = r.Resolve(name, g)
	}
	return out
}

// preferShallowest applies the documented tie-break to candidate ids that
// scored equally: fewest ancestors first, then the lexicographically
// smallest identifier. Names are not unique in real models, so this has to
// be deterministic behavior rather than map-iteration luck.
func preferShallowest(ids []string, g *model.Graph) string {
	best := ""
	bestDepth := -1
	for _, id := range ids {
		d := g.Depth(id)
		if best == "" || d < bestDepth || (d == bestDepth && id < best) {
			best = id
			bestDepth = d
		}
	}
	return best
}

// ExactStrategy matches the raw name against display names, case-sensitive.
type ExactStrategy struct{}

func (ExactStrategy) Name() string { return "exact" }

func (ExactStrategy) Resolve(name string, g *model.Graph) (ResolvedEntity, bool) {
	ids := g.ByName(name)
	if len(ids) == 0 {
		return ResolvedEntity{}, false
	}
	return ResolvedEntity{
		Raw:    name,
		NodeID: preferShallowest(ids, g),
		Kind:   MatchExact,
		Score:  1.0,
	}, true
}

// FuzzyStrategy scores the query against every node display name with a
// normalized string-similarity metric and accepts the best candidate only
// above the threshold. Comparison is case-insensitive and
// whitespace-normalized.
type FuzzyStrategy struct {
	threshold float64
	metric    *metrics.JaroWinkler
}

func NewFuzzyStrategy(threshold float64) *FuzzyStrategy {
	return &FuzzyStrategy{
		threshold: threshold,
		metric:    metrics.NewJaroWinkler(),
	}
}

func (*FuzzyStrategy) Name() string { return "fuzzy" }

func (s *FuzzyStrategy) Resolve(name string, g *model.Graph) (ResolvedEntity, bool) {
	query := normalize(name)
	if query == "" {
		return ResolvedEntity{}, false
	}

	bestScore := 0.0
	var bestIDs []string
	for _, id := range g.IDs() {
		n, _ := g.Get(id)
		if n.Name == "" {
			continue
		}
		score := strutil.Similarity(query, normalize(n.Name), s.metric)
		switch {
		case score > bestScore:
			bestScore = score
			bestIDs = bestIDs[:0]
			bestIDs = append(bestIDs, id)
		case score == bestScore && score > 0:
			bestIDs = append(bestIDs, id)
		}
	}

	if bestScore <= s.threshold || len(bestIDs) == 0 {
		return ResolvedEntity{}, false
	}
	return ResolvedEntity{
		Raw:    name,
		NodeID: preferShallowest(bestIDs, g),
		Kind:   MatchFuzzy,
		Score:  bestScore,
	}, true
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
