package tournament

import (
	"context"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"coscientist/internal/logging"
	"coscientist/internal/memory"
)

// Outcome is the structured result of one debate match. Played is false when
// the debate produced no parseable winner; such matches change no ratings and
// do not count toward the matches-played statistic.
type Outcome struct {
	AWon       bool
	Confidence float64
	Played     bool
}

// DebateFunc runs one pairwise debate against the external text-generation
// capability. An error marks the match unplayed for the round; it never fails
// the round.
type DebateFunc func(ctx context.Context, a, b memory.Hypothesis) (Outcome, error)

// RoundConfig bounds one tournament round.
type RoundConfig struct {
	MaxMatches  int
	Concurrency int
	Rng         *rand.Rand
}

// RunRound seeds missing ratings, selects up to MaxMatches pairs, fans the
// debates out with bounded concurrency, and merges all rating updates in a
// single pass. Returns the updated table and the number of matches actually
// played.
func RunRound(ctx context.Context, hyps []memory.Hypothesis, table map[string]float64, debate DebateFunc, cfg RoundConfig) (map[string]float64, int, error) {
	if cfg.MaxMatches <= 0 {
		cfg.MaxMatches = DefaultMaxMatches
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Rng == nil {
		cfg.Rng = rand.New(rand.NewSource(rand.Int63()))
	}

	updated := Seed(table, hyps)
	pairs := SelectPairs(hyps, updated, cfg.Rng)
	if len(pairs) > cfg.MaxMatches {
		pairs = pairs[:cfg.MaxMatches]
	}
	if len(pairs) == 0 {
		return updated, 0, nil
	}

	logger := logging.New("tournament")

	// Fan-out: debates run concurrently, outcomes land in fixed slots.
	// Fan-in below applies updates serially so the table has one writer.
	outcomes := make([]Outcome, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i, p := range pairs {
		i, p := i, p
		g.Go(func() error {
			out, err := debate(gctx, p.A, p.B)
			if err != nil {
				logger.Warn("debate failed, match skipped",
					"a", p.A.ID, "b", p.B.ID, "error", err)
				return nil
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	played := 0
	for i, out := range outcomes {
		if !out.Played {
			continue
		}
		Update(updated, pairs[i].A.ID, pairs[i].B.ID, out.AWon, out.Confidence)
		played++
	}
	return updated, played, nil
}
