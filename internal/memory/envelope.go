package memory

import (
	"sort"
	"time"
)

// Step name vocabulary used for per-step agent state keys.
const (
	StateSupervisor = "supervisor"
	StateGeneration = "generation"
	StateReflection = "reflection"
	StateRanking    = "ranking"
	StateEvolution  = "evolution"
	StateProximity  = "proximity"
	StateMetaReview = "meta_review"
)

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// Hypothesis is one candidate research idea. Immutable once created; a
// hypothesis is only ever removed from the active set when an evolved child
// references it as parent.
type Hypothesis struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ParentID     string   `json:"parent_id,omitempty"`
	Strategies   []string `json:"evolution_strategy,omitempty"`
	Improvements []string `json:"improvements,omitempty"`
	Validation   string   `json:"validation_approach,omitempty"`
	ResearchGoal string   `json:"research_goal"`
	Source       string   `json:"source"`
	CreatedAt    string   `json:"created_at"`
	Seq          int      `json:"seq"`
}

// Review is a structured critique of one hypothesis. Never mutated.
type Review struct {
	ID             string         `json:"id"`
	HypothesisID   string         `json:"hypothesis_id"`
	Scores         map[string]int `json:"scores"`
	OverallScore   float64        `json:"overall_score"`
	Recommendation string         `json:"recommendation"`
	FullReview     string         `json:"full_review"`
	Source         string         `json:"source"`
	CreatedAt      string         `json:"created_at"`
}

// Edge is a scored similarity relation between two hypotheses. The pair is
// unordered: (source, target) and (target, source) are the same edge.
type Edge struct {
	ID         string  `json:"id"`
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Similarity float64 `json:"similarity"`
	CreatedAt  string  `json:"created_at"`
}

// TournamentState holds the Elo-style rating table and the running match count.
type TournamentState struct {
	Rankings     map[string]float64 `json:"rankings"`
	TotalMatches int                `json:"total_matches"`
}

// ProximityGraph accumulates similarity edges across rounds.
type ProximityGraph struct {
	Edges      []Edge `json:"edges"`
	LastUpdate string `json:"last_update,omitempty"`
}

// Statistics tracks per-session counters for diagnostics.
type Statistics struct {
	HypothesesGenerated int `json:"hypotheses_generated"`
	HypothesesReviewed  int `json:"hypotheses_reviewed"`
	TournamentMatches   int `json:"tournament_matches"`
	HypothesesEvolved   int `json:"hypotheses_evolved"`
}

// StepState is the free-form per-step agent state, including last-seen raw
// output for diagnostics.
type StepState map[string]any

// Envelope is the complete persisted session state. It is owned by the store;
// every other component works on a copy obtained through Load.
type Envelope struct {
	SessionID    string               `json:"session_id"`
	CreatedAt    string               `json:"created_at"`
	UpdatedAt    string               `json:"updated_at"`
	ResearchGoal string               `json:"research_goal"`
	Hypotheses   []Hypothesis         `json:"hypotheses"`
	Reviews      []Review             `json:"reviews"`
	Tournament   TournamentState      `json:"tournament_state"`
	Proximity    ProximityGraph       `json:"proximity_graph"`
	Iterations   int                  `json:"iterations"`
	Stats        Statistics           `json:"statistics"`
	StepStates   map[string]StepState `json:"agent_states"`
}

// NewEnvelope returns a fresh, valid default envelope for a session.
func NewEnvelope(sessionID string) *Envelope {
	ts := nowUTC()
	return &Envelope{
		SessionID:  sessionID,
		CreatedAt:  ts,
		UpdatedAt:  ts,
		Hypotheses: []Hypothesis{},
		Reviews:    []Review{},
		Tournament: TournamentState{Rankings: map[string]float64{}},
		Proximity:  ProximityGraph{Edges: []Edge{}},
		StepStates: map[string]StepState{},
	}
}

// normalize ensures collections are non-nil after decoding older or hand-edited
// documents, so callers never need nil checks.
func (e *Envelope) normalize() {
	if e.Hypotheses == nil {
		e.Hypotheses = []Hypothesis{}
	}
	if e.Reviews == nil {
		e.Reviews = []Review{}
	}
	if e.Tournament.Rankings == nil {
		e.Tournament.Rankings = map[string]float64{}
	}
	if e.Proximity.Edges == nil {
		e.Proximity.Edges = []Edge{}
	}
	if e.StepStates == nil {
		e.StepStates = map[string]StepState{}
	}
}

// Clone returns a deep copy of the envelope. Steps mutate their own copy and
// commit through Save; the stored envelope is never aliased.
func (e *Envelope) Clone() *Envelope {
	cp := *e
	cp.Hypotheses = make([]Hypothesis, len(e.Hypotheses))
	for i, h := range e.Hypotheses {
		cp.Hypotheses[i] = h
		if h.Strategies != nil {
			cp.Hypotheses[i].Strategies = append([]string(nil), h.Strategies...)
		}
		if h.Improvements != nil {
			cp.Hypotheses[i].Improvements = append([]string(nil), h.Improvements...)
		}
	}
	cp.Reviews = make([]Review, len(e.Reviews))
	for i, r := range e.Reviews {
		cp.Reviews[i] = r
		if r.Scores != nil {
			sc := make(map[string]int, len(r.Scores))
			for k, v := range r.Scores {
				sc[k] = v
			}
			cp.Reviews[i].Scores = sc
		}
	}
	cp.Tournament.Rankings = make(map[string]float64, len(e.Tournament.Rankings))
	for k, v := range e.Tournament.Rankings {
		cp.Tournament.Rankings[k] = v
	}
	cp.Proximity.Edges = append([]Edge(nil), e.Proximity.Edges...)
	cp.StepStates = make(map[string]StepState, len(e.StepStates))
	for name, st := range e.StepStates {
		inner := make(StepState, len(st))
		for k, v := range st {
			inner[k] = v
		}
		cp.StepStates[name] = inner
	}
	return &cp
}

// Unreviewed returns the hypotheses that do not yet have a review.
func (e *Envelope) Unreviewed() []Hypothesis {
	reviewed := make(map[string]bool, len(e.Reviews))
	for _, r := range e.Reviews {
		reviewed[r.HypothesisID] = true
	}
	var out []Hypothesis
	for _, h := range e.Hypotheses {
		if !reviewed[h.ID] {
			out = append(out, h)
		}
	}
	return out
}

// TopRated returns up to n hypotheses ordered by descending rating. Hypotheses
// without a rating rank at the initial baseline.
func (e *Envelope) TopRated(n int, baseline float64) []Hypothesis {
	sorted := append([]Hypothesis(nil), e.Hypotheses...)
	rating := func(h Hypothesis) float64 {
		if r, ok := e.Tournament.Rankings[h.ID]; ok {
			return r
		}
		return baseline
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return rating(sorted[i]) > rating(sorted[j])
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
