package extract

import "strings"

// planKeywords maps each step name to the phrases that select it. Scanned in
// a fixed order so extraction is deterministic; the first matching step wins
// per line.
var planKeywords = []struct {
	step     string
	keywords []string
}{
	{"generation", []string{"generation", "generate", "create", "new ideas", "new hypotheses"}},
	{"reflection", []string{"reflection", "review", "evaluate"}},
	{"ranking", []string{"ranking", "tournament", "prioritize", "rank"}},
	{"evolution", []string{"evolution", "refine", "improve", "iterate"}},
	{"proximity", []string{"proximity", "cluster", "similarity", "graph"}},
	{"meta_review", []string{"meta", "meta-review", "synthesize", "overview", "summarize"}},
}

// Plan scans free-text planning output for step names, one step at most per
// line. An empty result is legitimate: it triggers the scheduler's
// deterministic fallback policy.
func Plan(text string) []string {
	var steps []string
	for _, line := range strings.Split(strings.ToLower(text), "\n") {
		for _, entry := range planKeywords {
			matched := false
			for _, kw := range entry.keywords {
				if strings.Contains(line, kw) {
					matched = true
					break
				}
			}
			if matched {
				steps = append(steps, entry.step)
				break
			}
		}
	}
	return steps
}
