package orchestrate

import (
	"context"
	"fmt"

	"coscientist/internal/extract"
	"coscientist/internal/memory"
	"coscientist/internal/proximity"
	"coscientist/internal/tournament"
)

// runGeneration appends newly produced hypotheses; it never replaces.
func (l *Loop) runGeneration(ctx context.Context, env *memory.Envelope) (memory.Delta, error) {
	batch := l.cfg.LaterBatch
	if env.Iterations == 0 {
		batch = l.cfg.InitialBatch
	}
	prompt, err := fillPrompt("generation", generationPrompt, promptParams{
		ResearchGoal:   env.ResearchGoal,
		NumHypotheses:  batch,
		HypothesesText: existingTitles(env.Hypotheses),
	})
	if err != nil {
		return memory.Delta{}, err
	}
	out, err := l.generate(ctx, prompt)
	if err != nil {
		return memory.Delta{}, err
	}

	hyps := extract.Hypotheses(out, env.ResearchGoal)
	titles := make([]string, len(hyps))
	for i, h := range hyps {
		titles[i] = h.Title
	}
	l.log.Info("generation complete", "hypotheses", len(hyps))
	return memory.Delta{
		AddHypotheses: hyps,
		StepStates: map[string]memory.StepState{
			memory.StateGeneration: {
				"last_generation":      out,
				"generated_hypotheses": titles,
			},
		},
	}, nil
}

func existingTitles(hyps []memory.Hypothesis) string {
	s := ""
	for _, h := range hyps {
		s += "- " + h.Title + "\n"
	}
	return s
}

// runReflection reviews only hypotheses without an existing review.
func (l *Loop) runReflection(ctx context.Context, env *memory.Envelope) (memory.Delta, error) {
	unreviewed := env.Unreviewed()
	if len(unreviewed) == 0 {
		l.log.Info("reflection skipped, nothing unreviewed")
		return memory.Delta{}, nil
	}
	prompt, err := fillPrompt("reflection", reflectionPrompt, promptParams{
		ResearchGoal:   env.ResearchGoal,
		HypothesesText: formatHypotheses(unreviewed, nil),
	})
	if err != nil {
		return memory.Delta{}, err
	}
	out, err := l.generate(ctx, prompt)
	if err != nil {
		return memory.Delta{}, err
	}

	reviews := extract.Reviews(out, unreviewed)
	ids := make([]string, len(unreviewed))
	for i, h := range unreviewed {
		ids[i] = h.ID
	}
	l.log.Info("reflection complete", "reviews", len(reviews))
	return memory.Delta{
		AddReviews: reviews,
		StepStates: map[string]memory.StepState{
			memory.StateReflection: {
				"last_review":         out,
				"reviewed_hypotheses": ids,
			},
		},
	}, nil
}

// runRanking seeds missing ratings and runs one bounded tournament round.
func (l *Loop) runRanking(ctx context.Context, env *memory.Envelope) (memory.Delta, error) {
	debate := func(ctx context.Context, a, b memory.Hypothesis) (tournament.Outcome, error) {
		prompt, err := fillPrompt("debate", debatePrompt, promptParams{
			ResearchGoal: env.ResearchGoal,
			ATitle:       a.Title,
			ADescription: a.Description,
			AReviews:     formatReviews(env.Reviews, a.ID),
			BTitle:       b.Title,
			BDescription: b.Description,
			BReviews:     formatReviews(env.Reviews, b.ID),
		})
		if err != nil {
			return tournament.Outcome{}, err
		}
		out, err := l.generate(ctx, prompt)
		if err != nil {
			return tournament.Outcome{}, err
		}
		winner, confidence := extract.DebateOutcome(out)
		return tournament.Outcome{
			AWon:       winner == extract.WinnerA,
			Confidence: confidence,
			Played:     winner != extract.WinnerNone,
		}, nil
	}

	table, played, err := tournament.RunRound(ctx, env.Hypotheses, env.Tournament.Rankings, debate, tournament.RoundConfig{
		MaxMatches:  l.cfg.MaxMatches,
		Concurrency: l.cfg.Concurrency,
		Rng:         l.rng,
	})
	if err != nil {
		return memory.Delta{}, err
	}
	l.log.Info("ranking complete", "matches_played", played, "rated", len(table))
	return memory.Delta{
		Ratings:       table,
		MatchesPlayed: played,
		StepStates: map[string]memory.StepState{
			memory.StateRanking: {
				"last_tournament": map[string]any{
					"matches_played": played,
				},
			},
		},
	}, nil
}

// runEvolution refines the top-rated slice. Any hypothesis referenced as
// parent by a produced child leaves the active set; un-evolved hypotheses are
// untouched.
func (l *Loop) runEvolution(ctx context.Context, env *memory.Envelope) (memory.Delta, error) {
	top := env.TopRated(l.cfg.EvolveTop, tournament.InitialRating)
	if len(top) == 0 {
		l.log.Info("evolution skipped, no hypotheses")
		return memory.Delta{}, nil
	}
	prompt, err := fillPrompt("evolution", evolutionPrompt, promptParams{
		ResearchGoal:   env.ResearchGoal,
		HypothesesText: formatHypotheses(top, env.Tournament.Rankings),
	})
	if err != nil {
		return memory.Delta{}, err
	}
	out, err := l.generate(ctx, prompt)
	if err != nil {
		return memory.Delta{}, err
	}

	children := extract.Evolved(out, env.ResearchGoal)

	known := make(map[string]bool, len(env.Hypotheses))
	for _, h := range env.Hypotheses {
		known[h.ID] = true
	}
	replaced := map[string]bool{}
	for _, c := range children {
		if c.ParentID != "" && known[c.ParentID] {
			replaced[c.ParentID] = true
		}
	}
	var removed []string
	for id := range replaced {
		removed = append(removed, id)
	}

	l.log.Info("evolution complete", "children", len(children), "replaced", len(removed))
	return memory.Delta{
		AddHypotheses:    children,
		RemoveHypotheses: removed,
		Evolved:          len(children),
		StepStates: map[string]memory.StepState{
			memory.StateEvolution: {
				"last_evolution": out,
				"evolved_from":   removed,
			},
		},
	}, nil
}

// runProximity grows the similarity graph by one bounded round.
func (l *Loop) runProximity(ctx context.Context, env *memory.Envelope) (memory.Delta, error) {
	compare := func(ctx context.Context, a, b memory.Hypothesis) (float64, bool, error) {
		prompt, err := fillPrompt("similarity", similarityPrompt, promptParams{
			ResearchGoal: env.ResearchGoal,
			ATitle:       a.Title,
			ADescription: a.Description,
			BTitle:       b.Title,
			BDescription: b.Description,
		})
		if err != nil {
			return 0, false, err
		}
		out, err := l.generate(ctx, prompt)
		if err != nil {
			return 0, false, err
		}
		score, ok := extract.Similarity(out)
		return score, ok, nil
	}

	edges, added, err := proximity.RunRound(ctx, env.Hypotheses, env.Proximity.Edges, compare, proximity.RoundConfig{
		MaxComparisons: l.cfg.MaxComparisons,
		Concurrency:    l.cfg.Concurrency,
	})
	if err != nil {
		return memory.Delta{}, err
	}
	l.log.Info("proximity complete", "new_edges", added, "total_edges", len(edges))
	return memory.Delta{
		Edges: edges,
		StepStates: map[string]memory.StepState{
			memory.StateProximity: {
				"last_analysis": map[string]any{
					"new_edges": added,
				},
			},
		},
	}, nil
}

// runMetaReview synthesizes an overview of the top slice and advances the
// iteration counter; it is the only step that does, which makes it the round
// boundary.
func (l *Loop) runMetaReview(ctx context.Context, env *memory.Envelope) (memory.Delta, error) {
	top := env.TopRated(l.cfg.MetaReviewTop, tournament.InitialRating)
	prompt, err := fillPrompt("meta_review", metaReviewPrompt, promptParams{
		ResearchGoal:   env.ResearchGoal,
		HypothesesText: formatHypotheses(top, env.Tournament.Rankings),
		ReviewsText:    reviewsDigest(env, top),
	})
	if err != nil {
		return memory.Delta{}, err
	}
	out, err := l.generate(ctx, prompt)
	if err != nil {
		// Iteration still advances so a flaky capability cannot stall the
		// round counter on meta-review-only rounds.
		if _, applyErr := l.mem.Apply(memory.Delta{AdvanceIteration: true}); applyErr != nil {
			return memory.Delta{}, applyErr
		}
		return memory.Delta{}, err
	}

	ids := make([]string, len(top))
	for i, h := range top {
		ids[i] = h.ID
	}
	l.log.Info("meta-review complete", "synthesized", len(top))
	return memory.Delta{
		AdvanceIteration: true,
		StepStates: map[string]memory.StepState{
			memory.StateMetaReview: {
				"last_review":         out,
				"reviewed_hypotheses": ids,
			},
		},
	}, nil
}

func reviewsDigest(env *memory.Envelope, top []memory.Hypothesis) string {
	s := ""
	for _, h := range top {
		s += fmt.Sprintf("\nReviews for %s:\n%s", h.Title, formatReviews(env.Reviews, h.ID))
	}
	return s
}
