package scrape

// State is a step of one scrape
type State int

const (
	StateIdle State = iota
	StateFetching
	StateRetrying
	StateParsing
	StateNormalizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateRetrying:
		return "retrying"
	case StateParsing:
		return "parsing"
	case StateNormalizing:
		return "normalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

var transitions = map[State][]State{
	StateIdle:        {StateFetching, StateFailed},
	StateFetching:    {StateRetrying, StateParsing, StateFailed},
	StateRetrying:    {StateFetching, StateFailed},
	StateParsing:     {StateNormalizing, StateFailed},
	StateNormalizing: {StateDone},
}

// CanTransition reports whether a scrape may move from one state to another
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionFunc observes state changes of a scrape
type TransitionFunc func(id string, from, to State)

// machine tracks the state of one invocation
type machine struct {
	runID   string
	current State
	hook    TransitionFunc
}

func (m *machine) to(next State) {
	if !CanTransition(m.current, next) {
		panic("scrape: invalid transition " + m.current.String() + " -> " + next.String())
	}
	prev := m.current
	m.current = next
	if m.hook != nil {
		m.hook(m.runID, prev, next)
	}
}
