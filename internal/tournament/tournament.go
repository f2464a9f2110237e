// Package tournament maintains Elo-style ratings over hypotheses and runs
// bounded rounds of pairwise debate matches.
package tournament

import (
	"math"
	"math/rand"
	"sort"

	"coscientist/internal/memory"
)

const (
	// InitialRating is the baseline assigned to a hypothesis on first sight.
	InitialRating = 1500
	// BaseK is the full adjustment factor; the effective K is BaseK scaled
	// by the debate confidence.
	BaseK = 32
	// DefaultMaxMatches caps matches per round.
	DefaultMaxMatches = 10
)

// Pair is one candidate match.
type Pair struct {
	A, B memory.Hypothesis
}

// Seed returns a copy of table with every listed hypothesis present,
// assigning InitialRating to newcomers.
func Seed(table map[string]float64, hyps []memory.Hypothesis) map[string]float64 {
	out := make(map[string]float64, len(hyps))
	for k, v := range table {
		out[k] = v
	}
	for _, h := range hyps {
		if _, ok := out[h.ID]; !ok {
			out[h.ID] = InitialRating
		}
	}
	return out
}

// Expected returns the expected score of the first player given both ratings.
func Expected(ra, rb float64) float64 {
	return 1 / (1 + math.Pow(10, (rb-ra)/400))
}

// Update applies a confidence-weighted Elo update for a decided match.
// The adjustment is zero-sum: the winner gains exactly what the loser loses.
func Update(table map[string]float64, idA, idB string, aWon bool, confidence float64) {
	ra, ok := table[idA]
	if !ok {
		ra = InitialRating
	}
	rb, ok := table[idB]
	if !ok {
		rb = InitialRating
	}

	expA := Expected(ra, rb)
	expB := 1 - expA
	k := BaseK * confidence

	if aWon {
		table[idA] = ra + k*(1-expA)
		table[idB] = rb + k*(0-expB)
	} else {
		table[idA] = ra + k*(0-expA)
		table[idB] = rb + k*(1-expB)
	}
}

// SelectPairs builds the candidate match list from three strategies:
// adjacent-by-rating pairs (close competitors), uniform random pairs without
// replacement (upsets), and top half against reversed bottom half (extremes).
// The concatenation is shuffled; callers truncate it to their match limit.
func SelectPairs(hyps []memory.Hypothesis, table map[string]float64, rng *rand.Rand) []Pair {
	if len(hyps) < 2 {
		return nil
	}

	sorted := append([]memory.Hypothesis(nil), hyps...)
	rating := func(h memory.Hypothesis) float64 {
		if r, ok := table[h.ID]; ok {
			return r
		}
		return InitialRating
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return rating(sorted[i]) < rating(sorted[j])
	})

	var pairs []Pair
	for i := 0; i+1 < len(sorted); i += 2 {
		pairs = append(pairs, Pair{A: sorted[i], B: sorted[i+1]})
	}

	remaining := append([]memory.Hypothesis(nil), sorted...)
	for len(remaining) >= 2 {
		a := remaining[rng.Intn(len(remaining))]
		remaining = remove(remaining, a.ID)
		b := remaining[rng.Intn(len(remaining))]
		remaining = remove(remaining, b.ID)
		pairs = append(pairs, Pair{A: a, B: b})
	}

	n := len(sorted) / 2
	low, high := sorted[:n], sorted[n:]
	for i := 0; i < len(low); i++ {
		pairs = append(pairs, Pair{A: low[i], B: high[len(high)-1-i]})
	}

	rng.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })

	// The strategies overlap; a pair must not be debated twice in one round.
	seen := make(map[[2]string]bool, len(pairs))
	unique := pairs[:0]
	for _, p := range pairs {
		key := [2]string{p.A.ID, p.B.ID}
		if p.B.ID < p.A.ID {
			key = [2]string{p.B.ID, p.A.ID}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, p)
	}
	return unique
}

func remove(hyps []memory.Hypothesis, id string) []memory.Hypothesis {
	out := hyps[:0]
	for _, h := range hyps {
		if h.ID != id {
			out = append(out, h)
		}
	}
	return out
}
