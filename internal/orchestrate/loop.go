// Package orchestrate ties the record store, extraction layer, tournament
// engine, similarity graph builder, and scheduler into the iterative
// refinement loop.
package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"coscientist/internal/extract"
	"coscientist/internal/logging"
	"coscientist/internal/memory"
	"coscientist/internal/schedule"
)

// Config bounds one research session.
type Config struct {
	MaxRounds      int           // round cap; the only terminal condition in practice
	MaxMatches     int           // tournament matches per ranking step
	MaxComparisons int           // similarity comparisons per proximity step
	EvolveTop      int           // top slice evolved per evolution step
	MetaReviewTop  int           // top slice synthesized per meta-review step
	InitialBatch   int           // hypotheses requested at iteration 0
	LaterBatch     int           // hypotheses requested on later iterations
	Concurrency    int           // fan-out bound inside a step
	CallTimeout    time.Duration // per-capability-call deadline
	Seed           int64         // rng seed; 0 means time-based
}

// DefaultConfig returns the caps the original system ran with.
func DefaultConfig() Config {
	return Config{
		MaxRounds:      10,
		MaxMatches:     10,
		MaxComparisons: 20,
		EvolveTop:      3,
		MetaReviewTop:  5,
		InitialBatch:   5,
		LaterBatch:     3,
		Concurrency:    4,
		CallTimeout:    2 * time.Minute,
	}
}

// ErrNoResult marks a capability call that returned nothing usable. Steps
// observing it are skipped for the round; the session continues.
var ErrNoResult = errors.New("no result from capability")

// Loop drives one research session: one step at a time, each step a
// load-act-save against the record store.
type Loop struct {
	mem *memory.Memory
	gen Generator
	cfg Config
	rng *rand.Rand
	log *slog.Logger
}

// New builds a loop over a record store and a text-generation capability.
func New(mem *memory.Memory, gen Generator, cfg Config) *Loop {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Loop{
		mem: mem,
		gen: gen,
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
		log: logging.New("loop"),
	}
}

// generate calls the capability with a bounded deadline. Empty output maps
// to ErrNoResult.
func (l *Loop) generate(ctx context.Context, prompt string) (string, error) {
	if l.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.CallTimeout)
		defer cancel()
	}
	out, err := l.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("capability call: %w", err)
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrNoResult
	}
	return out, nil
}

// Run executes rounds until the scheduler yields an empty queue or the round
// cap is reached, then returns the final envelope. A failing step is skipped
// for its round; no step error aborts the session.
func (l *Loop) Run(ctx context.Context, goal string) (*memory.Envelope, error) {
	if goal != "" {
		if err := l.mem.SetResearchGoal(goal); err != nil {
			return nil, fmt.Errorf("set research goal: %w", err)
		}
	}

	for round := 0; round < l.cfg.MaxRounds; round++ {
		env, err := l.mem.Envelope()
		if err != nil {
			return nil, fmt.Errorf("load envelope: %w", err)
		}

		steps := schedule.Decide(l.plan(ctx, env), env.Iterations)
		if schedule.Next(steps) == schedule.StepEnd {
			l.log.Info("scheduler signalled end", "round", round)
			break
		}
		l.log.Info("round planned", "round", round, "iteration", env.Iterations, "steps", steps)

		queue := schedule.NewQueue(steps)
		for {
			step, ok := queue.Next()
			if !ok {
				break
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := l.RunStep(ctx, step); err != nil {
				l.log.Warn("step failed, skipping for this round",
					"step", step, "error", err)
			}
			queue.Complete()
		}
	}

	return l.mem.Envelope()
}

// RunStep executes one named step against the record store.
func (l *Loop) RunStep(ctx context.Context, step schedule.Step) error {
	env, err := l.mem.Envelope()
	if err != nil {
		return fmt.Errorf("load envelope: %w", err)
	}

	var delta memory.Delta
	switch step {
	case schedule.StepGeneration:
		delta, err = l.runGeneration(ctx, env)
	case schedule.StepReflection:
		delta, err = l.runReflection(ctx, env)
	case schedule.StepRanking:
		delta, err = l.runRanking(ctx, env)
	case schedule.StepEvolution:
		delta, err = l.runEvolution(ctx, env)
	case schedule.StepProximity:
		delta, err = l.runProximity(ctx, env)
	case schedule.StepMetaReview:
		delta, err = l.runMetaReview(ctx, env)
	case schedule.StepEnd:
		return nil
	default:
		// Supervisor replans at round boundaries; inside a round it is a no-op.
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := l.mem.Apply(delta); err != nil {
		return fmt.Errorf("apply %s delta: %w", step, err)
	}
	return nil
}

// plan asks the capability for a step plan and extracts step names from the
// free text. Any failure degrades to nil, which selects the fallback policy.
func (l *Loop) plan(ctx context.Context, env *memory.Envelope) []string {
	summary := schedule.Summarize(env)
	prompt, err := fillPrompt("supervisor", supervisorPrompt, promptParams{
		ResearchGoal:      env.ResearchGoal,
		Iteration:         env.Iterations,
		HypothesisCount:   summary.HypothesisCount,
		UnreviewedCount:   summary.UnreviewedCount,
		TournamentSummary: tournamentSummary(summary),
	})
	if err != nil {
		l.log.Warn("supervisor prompt failed, using fallback policy", "error", err)
		return nil
	}
	out, err := l.generate(ctx, prompt)
	if err != nil {
		l.log.Warn("supervisor call failed, using fallback policy", "error", err)
		return nil
	}

	planned := extract.Plan(out)
	if _, err := l.mem.Apply(memory.Delta{StepStates: map[string]memory.StepState{
		memory.StateSupervisor: {
			"last_decision": out,
			"task_queue":    planned,
		},
	}}); err != nil {
		l.log.Warn("supervisor state not persisted", "error", err)
	}
	return planned
}
