package domain

// Status is the current state of a target. The zero value is StatusUnknown,
// which means no check has ever been recorded.
type Status int

const (
	StatusUnknown Status = iota
	StatusUp
	StatusDown
)

// StatusFromCheck maps the latest stored check to a Status. A nil check
// yields StatusUnknown.
func StatusFromCheck(cr *CheckResult) Status {
	switch {
	case cr == nil:
		return StatusUnknown
	case cr.Status:
		return StatusUp
	default:
		return StatusDown
	}
}

func (s Status) String() string {
	switch s {
	case StatusUp:
		return "up"
	case StatusDown:
		return "down"
	default:
		return "unknown"
	}
}

// MarshalJSON keeps unknown distinct from down: null, true or false.
func (s Status) MarshalJSON() ([]byte, error) {
	switch s {
	case StatusUp:
		return []byte("true"), nil
	case StatusDown:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}
