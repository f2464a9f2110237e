// Package schedule decides which processing step runs next and drains a
// per-round step queue.
package schedule

import "coscientist/internal/memory"

// Step is one named unit of orchestration work. The vocabulary is closed;
// any other token parses to StepSupervisor (replan).
type Step string

const (
	StepGeneration Step = "generation"
	StepReflection Step = "reflection"
	StepRanking    Step = "ranking"
	StepEvolution  Step = "evolution"
	StepProximity  Step = "proximity"
	StepMetaReview Step = "meta_review"
	StepSupervisor Step = "supervisor"
	StepEnd        Step = "end"
)

// ParseStep maps a token to the step vocabulary. Unknown tokens become
// StepSupervisor so free-text planning can never route outside the enum.
func ParseStep(s string) Step {
	switch Step(s) {
	case StepGeneration, StepReflection, StepRanking, StepEvolution,
		StepProximity, StepMetaReview, StepSupervisor, StepEnd:
		return Step(s)
	default:
		return StepSupervisor
	}
}

// Summary is the scheduler's view of the envelope, also used to build the
// supervisor prompt.
type Summary struct {
	HypothesisCount int
	UnreviewedCount int
	RankedCount     int
	TopTitle        string
}

// Summarize derives the scheduler inputs from an envelope snapshot.
func Summarize(env *memory.Envelope) Summary {
	s := Summary{
		HypothesisCount: len(env.Hypotheses),
		UnreviewedCount: len(env.Unreviewed()),
		RankedCount:     len(env.Tournament.Rankings),
	}
	var best float64
	for _, h := range env.Hypotheses {
		if r, ok := env.Tournament.Rankings[h.ID]; ok && (s.TopTitle == "" || r > best) {
			best = r
			s.TopTitle = h.Title
		}
	}
	return s
}

// Fallback is the deterministic step policy used whenever free-text planning
// yields no parseable steps. It guarantees forward progress: iteration 0
// bootstraps, every fifth iteration synthesizes, and the rest alternate among
// three fixed mixes keyed by iteration modulo 3.
func Fallback(iteration int) []Step {
	switch {
	case iteration == 0:
		return []Step{StepGeneration, StepReflection, StepRanking}
	case iteration%5 == 0:
		return []Step{StepMetaReview}
	}
	switch iteration % 3 {
	case 0:
		return []Step{StepEvolution, StepReflection, StepRanking, StepProximity}
	case 1:
		return []Step{StepGeneration, StepReflection, StepRanking}
	default:
		return []Step{StepProximity, StepEvolution, StepReflection, StepRanking}
	}
}

// Decide builds the round's step queue from planned step names, falling back
// to the deterministic policy when the plan is empty.
func Decide(planned []string, iteration int) []Step {
	var steps []Step
	for _, name := range planned {
		if step := ParseStep(name); step != StepSupervisor && step != StepEnd {
			steps = append(steps, step)
		}
	}
	if len(steps) == 0 {
		steps = Fallback(iteration)
	}
	return steps
}

// Next returns the head of a queue, or StepEnd for an empty one.
func Next(queue []Step) Step {
	if len(queue) == 0 {
		return StepEnd
	}
	return queue[0]
}
