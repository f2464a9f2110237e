package extract

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"coscientist/internal/memory"
)

// Review score bounds. Parsed scores are clamped into this range; a missing
// or unparseable score defaults to the minimum.
const (
	MinScore = 1
	MaxScore = 10
)

// Criteria is the fixed set of review criteria, in scoring order.
var Criteria = []string{
	"scientific_merit",
	"novelty",
	"testability",
	"impact",
	"limitations",
}

// Reviews parses reflection output into one review per hypothesis. Sections
// are split on the "Hypothesis" marker and bound to hypotheses positionally;
// surplus sections are ignored. Criterion names are located case-insensitively.
func Reviews(text string, hypotheses []memory.Hypothesis) []memory.Review {
	sections := splitSections(text)

	var out []memory.Review
	for i, section := range sections {
		if i >= len(hypotheses) {
			break
		}
		scores := make(map[string]int, len(Criteria))
		for _, criterion := range Criteria {
			scores[criterion] = MinScore
		}
		for _, line := range strings.Split(section, "\n") {
			lower := strings.ToLower(line)
			for _, criterion := range Criteria {
				label := strings.ReplaceAll(criterion, "_", " ")
				if strings.Contains(lower, label) && strings.Contains(lower, ":") {
					if v, ok := parseScore(lower); ok {
						scores[criterion] = clampScore(v)
					}
				}
			}
		}

		total := 0
		for _, v := range scores {
			total += v
		}

		out = append(out, memory.Review{
			ID:             uuid.NewString(),
			HypothesisID:   hypotheses[i].ID,
			Scores:         scores,
			OverallScore:   float64(total) / float64(len(scores)),
			Recommendation: recommendation(section),
			FullReview:     strings.TrimSpace(section),
			Source:         memory.StateReflection,
		})
	}
	return out
}

func splitSections(text string) []string {
	parts := strings.Split(text, "Hypothesis")
	var sections []string
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sections = append(sections, s)
		}
	}
	return sections
}

// parseScore extracts the numeric score from a "criterion: N/10" line.
func parseScore(line string) (int, bool) {
	after := line[strings.Index(line, ":")+1:]
	after = strings.TrimSpace(after)
	if i := strings.Index(after, "/"); i >= 0 {
		after = after[:i]
	}
	after = strings.TrimSpace(after)
	v, err := strconv.Atoi(after)
	if err != nil {
		return 0, false
	}
	return v, true
}

func clampScore(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// recommendation scans a review section for a categorical verdict.
// "Revise" is the default when no verdict is found.
func recommendation(section string) string {
	lower := strings.ToLower(section)
	switch {
	case strings.Contains(lower, "accept"):
		return "Accept"
	case strings.Contains(lower, "reject"):
		return "Reject"
	default:
		return "Revise"
	}
}
