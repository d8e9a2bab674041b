package beatsync

// State of the beat synchronization state machine
type State uint8

const (
	StateIdle State = iota
	StateFetchingAnalysis
	StateScheduling
	StatePaused
	StateResyncing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateFetchingAnalysis:
		return "FetchingAnalysis"
	case StateScheduling:
		return "Scheduling"
	case StatePaused:
		return "Paused"
	case StateResyncing:
		return "Resyncing"
	}
	return "Unknown"
}
