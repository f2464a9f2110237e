package extract

import (
	"strconv"
	"strings"
)

// Similarity extracts the overall similarity score from a pairwise comparison.
// Out-of-range values are clamped into [0,1]; a missing score line yields
// ok=false, meaning no edge is created.
func Similarity(text string) (score float64, ok bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "OVERALL_SIMILARITY:") {
			continue
		}
		raw := strings.TrimSpace(strings.TrimPrefix(line, "OVERALL_SIMILARITY:"))
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		return clamp01(v), true
	}
	return 0, false
}
