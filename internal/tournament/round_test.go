package tournament

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"

	"coscientist/internal/memory"
)

func twoHypotheses() []memory.Hypothesis {
	return []memory.Hypothesis{{ID: "h1", Title: "A"}, {ID: "h2", Title: "B"}}
}

func TestRunRound_TwoHypothesesOneMatch(t *testing.T) {
	var calls atomic.Int32
	debate := func(ctx context.Context, a, b memory.Hypothesis) (Outcome, error) {
		calls.Add(1)
		return Outcome{AWon: true, Confidence: 1, Played: true}, nil
	}

	table, played, err := RunRound(context.Background(), twoHypotheses(), nil, debate, RoundConfig{
		MaxMatches: 10,
		Rng:        rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("RunRound: %v", err)
	}
	if calls.Load() != 1 || played != 1 {
		t.Fatalf("expected exactly one match, got calls=%d played=%d", calls.Load(), played)
	}
	if len(table) != 2 {
		t.Fatalf("expected 2 rating entries, got %d", len(table))
	}
	if table["h1"]+table["h2"] != 2*InitialRating {
		t.Fatalf("ratings not zero-sum around baseline: %+v", table)
	}
}

func TestRunRound_NoWinnerNoUpdate(t *testing.T) {
	debate := func(ctx context.Context, a, b memory.Hypothesis) (Outcome, error) {
		return Outcome{}, nil // no parseable winner
	}

	table, played, err := RunRound(context.Background(), twoHypotheses(), nil, debate, RoundConfig{
		MaxMatches: 10,
		Rng:        rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("RunRound: %v", err)
	}
	if played != 0 {
		t.Fatalf("unplayed match counted: %d", played)
	}
	if table["h1"] != InitialRating || table["h2"] != InitialRating {
		t.Fatalf("ratings changed without a winner: %+v", table)
	}
}

func TestRunRound_DebateErrorSkipsMatch(t *testing.T) {
	debate := func(ctx context.Context, a, b memory.Hypothesis) (Outcome, error) {
		return Outcome{}, errors.New("capability unreachable")
	}

	table, played, err := RunRound(context.Background(), twoHypotheses(), nil, debate, RoundConfig{
		MaxMatches: 10,
		Rng:        rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("RunRound must not fail on debate errors: %v", err)
	}
	if played != 0 || len(table) != 2 {
		t.Fatalf("played=%d table=%+v", played, table)
	}
}

func TestRunRound_RespectsMatchCap(t *testing.T) {
	var hyps []memory.Hypothesis
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		hyps = append(hyps, memory.Hypothesis{ID: id})
	}
	var calls atomic.Int32
	debate := func(ctx context.Context, a, b memory.Hypothesis) (Outcome, error) {
		calls.Add(1)
		return Outcome{AWon: true, Confidence: 0.5, Played: true}, nil
	}

	_, played, err := RunRound(context.Background(), hyps, nil, debate, RoundConfig{
		MaxMatches: 3,
		Rng:        rand.New(rand.NewSource(2)),
	})
	if err != nil {
		t.Fatalf("RunRound: %v", err)
	}
	if calls.Load() != 3 || played != 3 {
		t.Fatalf("cap ignored: calls=%d played=%d", calls.Load(), played)
	}
}

func TestRunRound_EmptySetIsNoOp(t *testing.T) {
	debate := func(ctx context.Context, a, b memory.Hypothesis) (Outcome, error) {
		t.Fatal("debate must not be called with no pairs")
		return Outcome{}, nil
	}
	table, played, err := RunRound(context.Background(), nil, map[string]float64{"x": 1510}, debate, RoundConfig{})
	if err != nil {
		t.Fatalf("RunRound: %v", err)
	}
	if played != 0 || table["x"] != 1510 {
		t.Fatalf("empty set changed state: played=%d table=%+v", played, table)
	}
}

func TestRunRound_PreservesExistingRatings(t *testing.T) {
	existing := map[string]float64{"h1": 1640}
	debate := func(ctx context.Context, a, b memory.Hypothesis) (Outcome, error) {
		return Outcome{}, nil
	}
	table, _, err := RunRound(context.Background(), twoHypotheses(), existing, debate, RoundConfig{
		Rng: rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("RunRound: %v", err)
	}
	if table["h1"] != 1640 {
		t.Fatalf("existing rating lost: %+v", table)
	}
	if existing["h2"] != 0 {
		t.Fatal("input table mutated")
	}
}
