package extract

import (
	"strconv"
	"strings"
)

// Debate winners. WinnerNone means the match produced no usable result.
const (
	WinnerA    = "A"
	WinnerB    = "B"
	WinnerNone = ""
)

// DefaultConfidence applies when a winner is declared but the confidence
// token is missing or unparseable.
const DefaultConfidence = 0.5

// DebateOutcome extracts the winner and confidence from a pairwise debate.
// The winner token is restricted to A/B; anything else yields WinnerNone,
// which callers must treat as "no rating update", not an error. Confidence is
// a percentage coerced into [0,1].
func DebateOutcome(text string) (winner string, confidence float64) {
	winner = WinnerNone
	confidence = DefaultConfidence

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "WINNER:"):
			token := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(line, "WINNER:")))
			if token == WinnerA || token == WinnerB {
				winner = token
			}
		case strings.HasPrefix(line, "CONFIDENCE:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "CONFIDENCE:"))
			raw = strings.TrimSuffix(raw, "%")
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				confidence = clamp01(v / 100)
			}
		}
	}
	return winner, confidence
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
