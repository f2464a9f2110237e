package orchestrate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"coscientist/internal/memory"
	"coscientist/internal/schedule"
)

// promptParams carries everything a step prompt template can reference.
type promptParams struct {
	ResearchGoal  string
	NumHypotheses int
	Iteration     int

	HypothesisCount   int
	UnreviewedCount   int
	TournamentSummary string

	HypothesesText string
	ReviewsText    string

	ATitle, ADescription, AReviews string
	BTitle, BDescription, BReviews string
}

// fillPrompt executes an inline prompt template with the given params.
func fillPrompt(name, tmplStr string, params promptParams) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

const supervisorPrompt = `You are the Supervisor agent. Coordinate the research process for this goal:

"{{.ResearchGoal}}"

Current system state:
- Iteration: {{.Iteration}}
- Total hypotheses generated: {{.HypothesisCount}}
- Hypotheses awaiting review: {{.UnreviewedCount}}
- Tournament state: {{.TournamentSummary}}

Available steps: generation, reflection, ranking, evolution, proximity, meta_review.
Balance generating new ideas against improving existing ones, keep hypotheses
reviewed and ranked, and periodically synthesize findings.

Provide a brief explanation, then a prioritized list of steps to run next.
`

const generationPrompt = `You are the Generation agent. Generate {{.NumHypotheses}} distinct, novel,
scientifically plausible hypotheses addressing this research goal:

"{{.ResearchGoal}}"

For each hypothesis provide a clear title, then 2-3 paragraphs covering the
core idea, how it addresses the goal, and potential validation approaches.
Number each hypothesis ("1. Title", "2. Title", ...).
{{if .HypothesesText}}
Avoid duplicating these existing hypotheses:
{{.HypothesesText}}{{end}}`

const reflectionPrompt = `You are the Reflection agent, acting as a scientific peer reviewer for this goal:

"{{.ResearchGoal}}"

For each hypothesis below, provide a numerical score (1-10) for each criterion:
Scientific Merit, Novelty, Testability, Impact, Limitations.
Then give an overall recommendation (Accept/Revise/Reject) with justification.
Start each assessment with "Hypothesis N".

Hypotheses to review:
{{.HypothesesText}}`

const debatePrompt = `You are the Ranking agent. Compare two competing hypotheses for this goal:

"{{.ResearchGoal}}"

Hypothesis A:
Title: {{.ATitle}}
Description:
{{.ADescription}}

Reviews:
{{.AReviews}}

Hypothesis B:
Title: {{.BTitle}}
Description:
{{.BDescription}}

Reviews:
{{.BReviews}}

Compare scientific merit, novelty, feasibility, impact, and clarity.
Format your response as:
WINNER: [A/B]
CONFIDENCE: [0-100]
JUSTIFICATION:
[Your analysis]
`

const evolutionPrompt = `You are the Evolution agent. Refine the following hypotheses for this goal:

"{{.ResearchGoal}}"

Input hypotheses:
{{.HypothesesText}}

For each, generate 1-2 evolved variants that keep the core idea, address
limitations, and improve feasibility. Format each variant as:
Title: ...
Parent: Hypothesis N (ID: ...)
Evolution Strategy: ...
Description: ...
Improvements:
- ...
Validation: ...
`

const similarityPrompt = `You are the Proximity agent. Rate the similarity of two hypotheses for this goal:

"{{.ResearchGoal}}"

Hypothesis A:
Title: {{.ATitle}}
Description:
{{.ADescription}}

Hypothesis B:
Title: {{.BTitle}}
Description:
{{.BDescription}}

Compare core concepts, approach, outcomes, implementation, and resources.
End your response with a single line:
OVERALL_SIMILARITY: [0-1]
`

const metaReviewPrompt = `You are the Meta-review agent. Synthesize a research overview for this goal:

"{{.ResearchGoal}}"

Top hypotheses:
{{.HypothesesText}}

Reviews and tournament performance:
{{.ReviewsText}}

Produce a structured overview: executive summary, key findings, assessment of
the top hypotheses, strategic recommendations, and future directions.
`

// formatHypotheses renders hypotheses for inclusion in a prompt.
func formatHypotheses(hyps []memory.Hypothesis, ratings map[string]float64) string {
	var b strings.Builder
	for i, h := range hyps {
		fmt.Fprintf(&b, "\nHypothesis %d (ID: %s)", i+1, h.ID)
		if r, ok := ratings[h.ID]; ok {
			fmt.Fprintf(&b, " (Ranking Score: %.1f)", r)
		}
		fmt.Fprintf(&b, ":\nTitle: %s\nDescription:\n%s\n", h.Title, h.Description)
		b.WriteString(strings.Repeat("-", 40) + "\n")
	}
	return b.String()
}

// formatReviews renders the reviews of one hypothesis for a debate prompt.
func formatReviews(reviews []memory.Review, hypothesisID string) string {
	var b strings.Builder
	for _, r := range reviews {
		if r.HypothesisID != hypothesisID {
			continue
		}
		fmt.Fprintf(&b, "Overall Score: %.1f/10\nRecommendation: %s\n", r.OverallScore, r.Recommendation)
		for criterion, score := range r.Scores {
			fmt.Fprintf(&b, "- %s: %d/10\n", strings.ReplaceAll(criterion, "_", " "), score)
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "No reviews available.\n"
	}
	return b.String()
}

// tournamentSummary renders the scheduler summary line used in the
// supervisor prompt.
func tournamentSummary(s schedule.Summary) string {
	out := fmt.Sprintf("%d hypotheses ranked", s.RankedCount)
	if s.TopTitle != "" {
		out += ", top hypothesis: " + s.TopTitle
	}
	return out
}
