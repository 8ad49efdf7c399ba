package enrich

// State is the phase of a run.
type State int

const (
	StateFresh State = iota
	StateResuming
	StateRunning
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "FRESH"
	case StateResuming:
		return "RESUMING"
	case StateRunning:
		return "RUNNING"
	case StateComplete:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}
