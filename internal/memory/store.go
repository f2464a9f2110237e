package memory

import (
	"log/slog"

	"github.com/google/uuid"

	"coscientist/internal/logging"
)

// DefaultDBPath is the default relative path for the SQLite DB.
// Resolve against cwd; Open() creates the parent dir (e.g. .coscientist).
const DefaultDBPath = ".coscientist/sessions.db"

// DefaultFileDir is the default directory for JSON session documents.
const DefaultFileDir = ".coscientist/sessions"

// Store is the persistence backend for one session's envelope. Load never
// fails on a missing or corrupt document: it reinitializes a fresh default
// envelope instead (documented data-loss trade for availability).
// Implementations: FileStore (JSON document), SQLStore (SQLite), MemStore.
type Store interface {
	SessionID() string
	Load() (*Envelope, error)
	Save(*Envelope) error
	Close() error
}

// Delta is the result of one step: the records to merge into the envelope.
// Merging is centralized in Memory.Apply so a step's concurrent sub-operations
// are committed by a single write.
type Delta struct {
	ResearchGoal     string
	AddHypotheses    []Hypothesis
	RemoveHypotheses []string
	AddReviews       []Review
	Ratings          map[string]float64 // full replacement when non-nil
	MatchesPlayed    int
	Edges            []Edge // full replacement when non-nil
	Evolved          int
	StepStates       map[string]StepState
	AdvanceIteration bool
}

// Memory is the record store facade: every mutation is a whole-envelope
// read-modify-write against the backing Store.
type Memory struct {
	store Store
	log   *slog.Logger
}

// New wraps a Store in the record-store facade.
func New(store Store) *Memory {
	return &Memory{store: store, log: logging.New("memory")}
}

// SessionID returns the backing store's session identifier.
func (m *Memory) SessionID() string { return m.store.SessionID() }

// Envelope loads a copy of the current envelope.
func (m *Memory) Envelope() (*Envelope, error) { return m.store.Load() }

// Close releases the backing store.
func (m *Memory) Close() error { return m.store.Close() }

// Apply merges a step delta into the envelope under a single
// load-modify-save. Removals happen before additions so an evolution delta
// that drops parents and appends children is atomic.
func (m *Memory) Apply(d Delta) (*Envelope, error) {
	env, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	if d.ResearchGoal != "" {
		env.ResearchGoal = d.ResearchGoal
	}

	if len(d.RemoveHypotheses) > 0 {
		drop := make(map[string]bool, len(d.RemoveHypotheses))
		for _, id := range d.RemoveHypotheses {
			drop[id] = true
		}
		kept := env.Hypotheses[:0]
		for _, h := range env.Hypotheses {
			if !drop[h.ID] {
				kept = append(kept, h)
			}
		}
		env.Hypotheses = kept
	}

	if len(d.AddHypotheses) > 0 {
		seq := 0
		for _, h := range env.Hypotheses {
			if h.Seq > seq {
				seq = h.Seq
			}
		}
		for _, h := range d.AddHypotheses {
			seq++
			h.Seq = seq
			if h.ID == "" {
				h.ID = uuid.NewString()
			}
			if h.CreatedAt == "" {
				h.CreatedAt = nowUTC()
			}
			env.Hypotheses = append(env.Hypotheses, h)
		}
		env.Stats.HypothesesGenerated += len(d.AddHypotheses)
	}

	if len(d.AddReviews) > 0 {
		for _, r := range d.AddReviews {
			if r.ID == "" {
				r.ID = uuid.NewString()
			}
			if r.CreatedAt == "" {
				r.CreatedAt = nowUTC()
			}
			env.Reviews = append(env.Reviews, r)
		}
		env.Stats.HypothesesReviewed += len(d.AddReviews)
	}

	if d.Ratings != nil {
		env.Tournament.Rankings = d.Ratings
		env.Tournament.TotalMatches += d.MatchesPlayed
		env.Stats.TournamentMatches += d.MatchesPlayed
	}

	if d.Edges != nil {
		env.Proximity.Edges = d.Edges
		env.Proximity.LastUpdate = nowUTC()
	}

	env.Stats.HypothesesEvolved += d.Evolved

	for name, st := range d.StepStates {
		env.StepStates[name] = st
	}

	if d.AdvanceIteration {
		env.Iterations++
	}

	if err := m.store.Save(env); err != nil {
		return nil, err
	}
	return env, nil
}

// SetResearchGoal records the session's research goal.
func (m *Memory) SetResearchGoal(goal string) error {
	_, err := m.Apply(Delta{ResearchGoal: goal})
	return err
}

// Hypotheses returns all hypotheses currently in the active set.
func (m *Memory) Hypotheses() ([]Hypothesis, error) {
	env, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	return env.Hypotheses, nil
}

// AddHypotheses appends newly produced hypotheses, assigning ids, timestamps
// and creation order.
func (m *Memory) AddHypotheses(hs []Hypothesis) error {
	_, err := m.Apply(Delta{AddHypotheses: hs})
	return err
}

// AddReviews appends reviews produced by the reflection step.
func (m *Memory) AddReviews(rs []Review) error {
	_, err := m.Apply(Delta{AddReviews: rs})
	return err
}

// Ratings returns the current rating table.
func (m *Memory) Ratings() (map[string]float64, error) {
	env, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	return env.Tournament.Rankings, nil
}

// SetRatings replaces the rating table and accumulates the matches-played
// statistic.
func (m *Memory) SetRatings(table map[string]float64, matchesPlayed int) error {
	_, err := m.Apply(Delta{Ratings: table, MatchesPlayed: matchesPlayed})
	return err
}

// Edges returns the similarity graph's edge list.
func (m *Memory) Edges() ([]Edge, error) {
	env, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	return env.Proximity.Edges, nil
}

// SetEdges replaces the similarity graph's edge list.
func (m *Memory) SetEdges(edges []Edge) error {
	_, err := m.Apply(Delta{Edges: edges})
	return err
}

// StepState returns the stored state for one step, never nil.
func (m *Memory) StepState(name string) (StepState, error) {
	env, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	st, ok := env.StepStates[name]
	if !ok {
		return StepState{}, nil
	}
	return st, nil
}

// SetStepState replaces the stored state for one step.
func (m *Memory) SetStepState(name string, st StepState) error {
	_, err := m.Apply(Delta{StepStates: map[string]StepState{name: st}})
	return err
}

// IncrementIteration advances the iteration counter and returns the new value.
func (m *Memory) IncrementIteration() (int, error) {
	env, err := m.Apply(Delta{AdvanceIteration: true})
	if err != nil {
		return 0, err
	}
	return env.Iterations, nil
}
