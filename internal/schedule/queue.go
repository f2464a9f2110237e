package schedule

// Phase is the queue's position in the per-round state machine.
type Phase string

const (
	// PhaseAwaiting means the queue is ready to hand out its next step.
	PhaseAwaiting Phase = "awaiting-step"
	// PhaseRunning means a step has been popped and not yet completed.
	PhaseRunning Phase = "running-step"
	// PhaseDrained means the queue emptied; the round is over. Drained is
	// not terminal: the scheduler is re-invoked for a new round unless the
	// caller's round cap is hit.
	PhaseDrained Phase = "drained"
)

// Queue drains an ordered list of steps for one round. Transient and
// reconstructible from state; never persisted as history.
type Queue struct {
	steps   []Step
	current Step
	phase   Phase
}

// NewQueue starts a round over the given steps.
func NewQueue(steps []Step) *Queue {
	return &Queue{steps: append([]Step(nil), steps...), phase: PhaseAwaiting}
}

// Phase returns the queue's current phase.
func (q *Queue) Phase() Phase { return q.phase }

// Current returns the step being run, if any.
func (q *Queue) Current() (Step, bool) {
	return q.current, q.phase == PhaseRunning
}

// Pending returns the steps not yet popped.
func (q *Queue) Pending() []Step { return append([]Step(nil), q.steps...) }

// Next pops the head of the queue and enters running-step. When the queue is
// empty it enters drained and reports false.
func (q *Queue) Next() (Step, bool) {
	if q.phase == PhaseRunning {
		return q.current, true
	}
	if len(q.steps) == 0 {
		q.phase = PhaseDrained
		q.current = StepEnd
		return StepEnd, false
	}
	q.current = q.steps[0]
	q.steps = q.steps[1:]
	q.phase = PhaseRunning
	return q.current, true
}

// Complete marks the running step finished, returning to awaiting-step.
func (q *Queue) Complete() {
	if q.phase == PhaseRunning {
		q.phase = PhaseAwaiting
		q.current = ""
	}
}
