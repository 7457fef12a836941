package scheduler

import "fmt"

// ItemState is one station in an item's retry lifecycle.
type ItemState int

const (
	StatePending ItemState = iota
	StateAttempting
	StateRetrying
	StateSucceeded
	StateExhausted
)

// String returns the lowercase state name.
func (s ItemState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAttempting:
		return "attempting"
	case StateRetrying:
		return "retrying"
	case StateSucceeded:
		return "succeeded"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("ItemState(%d)", int(s))
	}
}

// Terminal reports whether no further attempts may happen from this state.
func (s ItemState) Terminal() bool {
	return s == StateSucceeded || s == StateExhausted
}

var validTransitions = map[ItemState][]ItemState{
	StatePending:    {StateAttempting},
	StateAttempting: {StateSucceeded, StateRetrying, StateExhausted},
	StateRetrying:   {StateAttempting},
}

// tracker records per-item state and attempt counts for one run.
//
// It is only touched from the scheduler goroutine, so it needs no locking.
type tracker struct {
	states   map[string]ItemState
	attempts map[string]int
}

func newTracker(projects []string) *tracker {
	t := &tracker{
		states:   make(map[string]ItemState, len(projects)),
		attempts: make(map[string]int, len(projects)),
	}
	for _, project := range projects {
		t.states[project] = StatePending
	}
	return t
}

func (t *tracker) transition(project string, to ItemState) error {
	from, ok := t.states[project]
	if !ok {
		return fmt.Errorf("unknown item %q", project)
	}
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			t.states[project] = to
			if to == StateAttempting {
				t.attempts[project]++
			}
			return nil
		}
	}
	return fmt.Errorf("invalid transition %s -> %s for %q", from, to, project)
}

func (t *tracker) state(project string) ItemState { return t.states[project] }

func (t *tracker) attemptCount(project string) int { return t.attempts[project] }

func (t *tracker) inState(state ItemState) map[string]struct{} {
	out := make(map[string]struct{})
	for project, s := range t.states {
		if s == state {
			out[project] = struct{}{}
		}
	}
	return out
}
