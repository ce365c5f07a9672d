package services

type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseCollecting
	PhaseSending
	PhaseApplying
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCollecting:
		return "collecting"
	case PhaseSending:
		return "sending"
	case PhaseApplying:
		return "applying"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}
