package engine

// Phase is the lifecycle state of an Engine.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseDispatching
	PhaseCollecting
	PhaseAggregating
	PhaseDone
	PhaseConfigRejected
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDispatching:
		return "dispatching"
	case PhaseCollecting:
		return "collecting"
	case PhaseAggregating:
		return "aggregating"
	case PhaseDone:
		return "done"
	case PhaseConfigRejected:
		return "config_rejected"
	default:
		return "unknown"
	}
}

// Phase returns the current lifecycle state.
func (e *Engine) Phase() Phase {
	return Phase(e.phase.Load())
}
