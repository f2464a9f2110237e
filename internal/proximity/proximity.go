// Package proximity builds the hypothesis similarity graph, selecting
// uncompared pairs and accumulating scored edges without duplicating work.
package proximity

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"coscientist/internal/logging"
	"coscientist/internal/memory"
)

// DefaultMaxComparisons caps similarity comparisons per round.
const DefaultMaxComparisons = 20

func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// Pair is one candidate comparison.
type Pair struct {
	A, B memory.Hypothesis
}

// CompareFunc scores the similarity of two hypotheses via the external
// text-generation capability. ok=false means no usable score; the pair simply
// yields no edge this round.
type CompareFunc func(ctx context.Context, a, b memory.Hypothesis) (score float64, ok bool, err error)

// RoundConfig bounds one graph-building round.
type RoundConfig struct {
	MaxComparisons int
	Concurrency    int
}

// HasEdge reports whether the unordered pair (a, b) already has an edge.
func HasEdge(edges []memory.Edge, a, b string) bool {
	for _, e := range edges {
		if (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a) {
			return true
		}
	}
	return false
}

// SelectPairs returns all uncompared unordered pairs, prioritizing hypotheses
// with fewer existing edges (ascending degree, then nested pairing).
func SelectPairs(hyps []memory.Hypothesis, edges []memory.Edge) []Pair {
	degree := make(map[string]int)
	for _, e := range edges {
		degree[e.Source]++
		degree[e.Target]++
	}

	sorted := append([]memory.Hypothesis(nil), hyps...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return degree[sorted[i].ID] < degree[sorted[j].ID]
	})

	var pairs []Pair
	for i, a := range sorted {
		for _, b := range sorted[i+1:] {
			if !HasEdge(edges, a.ID, b.ID) {
				pairs = append(pairs, Pair{A: a, B: b})
			}
		}
	}
	return pairs
}

// RunRound compares up to MaxComparisons uncompared pairs concurrently and
// appends the resulting edges in a single merge. Edge existence is re-checked
// immediately before each append, so repeated invocation over the same
// hypothesis set never produces duplicate edges.
func RunRound(ctx context.Context, hyps []memory.Hypothesis, edges []memory.Edge, compare CompareFunc, cfg RoundConfig) ([]memory.Edge, int, error) {
	if cfg.MaxComparisons <= 0 {
		cfg.MaxComparisons = DefaultMaxComparisons
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	pairs := SelectPairs(hyps, edges)
	if len(pairs) > cfg.MaxComparisons {
		pairs = pairs[:cfg.MaxComparisons]
	}
	out := append([]memory.Edge(nil), edges...)
	if len(pairs) == 0 {
		return out, 0, nil
	}

	logger := logging.New("proximity")

	type result struct {
		score float64
		ok    bool
	}
	results := make([]result, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i, p := range pairs {
		i, p := i, p
		g.Go(func() error {
			score, ok, err := compare(gctx, p.A, p.B)
			if err != nil {
				logger.Warn("comparison failed, pair skipped",
					"a", p.A.ID, "b", p.B.ID, "error", err)
				return nil
			}
			results[i] = result{score: score, ok: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	added := 0
	for i, r := range results {
		if !r.ok {
			continue
		}
		a, b := pairs[i].A.ID, pairs[i].B.ID
		if HasEdge(out, a, b) {
			continue
		}
		out = append(out, memory.Edge{
			ID:         uuid.NewString(),
			Source:     a,
			Target:     b,
			Similarity: r.score,
			CreatedAt:  nowUTC(),
		})
		added++
	}
	return out, added, nil
}
