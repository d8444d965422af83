package session

// Outcome is the result of a best-effort precondition clearer such as a
// consent banner or a bot-verification widget.
type Outcome int

const (
	// OutcomeNotPresent means there was nothing to clear.
	OutcomeNotPresent Outcome = iota
	// OutcomeHandled means the obstacle was found and cleared.
	OutcomeHandled
	// OutcomeFailedIgnored means the obstacle was found but clearing it failed.
	OutcomeFailedIgnored
)

// String returns the string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeNotPresent:
		return "not present"
	case OutcomeHandled:
		return "handled"
	case OutcomeFailedIgnored:
		return "failed (ignored)"
	default:
		return "unknown"
	}
}
