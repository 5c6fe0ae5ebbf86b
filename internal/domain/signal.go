package domain

// SignalAction is the per-bar instruction a strategy emits.
type SignalAction string

// Signal action constants.
const (
	SignalHold  SignalAction = "HOLD"
	SignalEnter SignalAction = "ENTER"
	SignalExit  SignalAction = "EXIT"
)

// Signal is one element of the exposure stream a strategy produces,
// aligned index-for-index with the bar series it was built from.
type Signal struct {
	Action SignalAction
	Reason string
}
