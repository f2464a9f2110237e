package tournament

import (
	"math"
	"math/rand"
	"testing"

	"coscientist/internal/memory"
)

func TestUpdate_ZeroSum(t *testing.T) {
	for _, c := range []struct {
		ra, rb     float64
		aWon       bool
		confidence float64
	}{
		{1500, 1500, true, 1},
		{1600, 1400, false, 0.8},
		{1200, 1900, true, 0.33},
	} {
		table := map[string]float64{"a": c.ra, "b": c.rb}
		Update(table, "a", "b", c.aWon, c.confidence)
		deltaA := table["a"] - c.ra
		deltaB := table["b"] - c.rb
		if math.Abs(deltaA+deltaB) > 1e-9 {
			t.Errorf("not zero-sum: ΔA=%f ΔB=%f (case %+v)", deltaA, deltaB, c)
		}
	}
}

func TestUpdate_ConfidenceScalesK(t *testing.T) {
	table := map[string]float64{"a": 1500, "b": 1500}
	Update(table, "a", "b", true, 0)
	if table["a"] != 1500 || table["b"] != 1500 {
		t.Fatalf("confidence 0 must not move ratings: %+v", table)
	}

	Update(table, "a", "b", true, 1)
	// Equal ratings, expected score 0.5: full K=32 gives ±16.
	if table["a"] != 1516 || table["b"] != 1484 {
		t.Fatalf("confidence 1 must apply full K: %+v", table)
	}
}

func TestUpdate_SeedsUnknownIDs(t *testing.T) {
	table := map[string]float64{}
	Update(table, "a", "b", false, 1)
	if table["a"] != 1484 || table["b"] != 1516 {
		t.Fatalf("unseen ids should start at baseline: %+v", table)
	}
}

func TestExpected(t *testing.T) {
	if e := Expected(1500, 1500); e != 0.5 {
		t.Errorf("Expected equal ratings: %f", e)
	}
	e := Expected(1900, 1500)
	if e <= 0.5 || e >= 1 {
		t.Errorf("Expected for stronger player out of range: %f", e)
	}
	if math.Abs(Expected(1500, 1900)-(1-e)) > 1e-12 {
		t.Error("Expected is not symmetric")
	}
}

func TestSeed(t *testing.T) {
	hyps := []memory.Hypothesis{{ID: "a"}, {ID: "b"}}
	table := Seed(map[string]float64{"a": 1612}, hyps)
	if table["a"] != 1612 {
		t.Errorf("existing rating overwritten: %f", table["a"])
	}
	if table["b"] != InitialRating {
		t.Errorf("newcomer not seeded: %f", table["b"])
	}
}

func TestSelectPairs_NoDuplicatePairs(t *testing.T) {
	var hyps []memory.Hypothesis
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		hyps = append(hyps, memory.Hypothesis{ID: id})
	}
	rng := rand.New(rand.NewSource(7))
	pairs := SelectPairs(hyps, map[string]float64{}, rng)

	seen := map[[2]string]bool{}
	for _, p := range pairs {
		if p.A.ID == p.B.ID {
			t.Fatalf("self-pair %s", p.A.ID)
		}
		key := [2]string{p.A.ID, p.B.ID}
		if p.B.ID < p.A.ID {
			key = [2]string{p.B.ID, p.A.ID}
		}
		if seen[key] {
			t.Fatalf("duplicate pair %v", key)
		}
		seen[key] = true
	}
}

func TestSelectPairs_TooFewHypotheses(t *testing.T) {
	if pairs := SelectPairs(nil, nil, rand.New(rand.NewSource(1))); pairs != nil {
		t.Fatalf("no hypotheses: %v", pairs)
	}
	one := []memory.Hypothesis{{ID: "a"}}
	if pairs := SelectPairs(one, nil, rand.New(rand.NewSource(1))); pairs != nil {
		t.Fatalf("single hypothesis: %v", pairs)
	}
}

func TestSelectPairs_TwoHypothesesSinglePair(t *testing.T) {
	hyps := []memory.Hypothesis{{ID: "a"}, {ID: "b"}}
	pairs := SelectPairs(hyps, map[string]float64{}, rand.New(rand.NewSource(3)))
	if len(pairs) != 1 {
		t.Fatalf("expected exactly one pair, got %d", len(pairs))
	}
}
