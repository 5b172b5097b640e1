package multistrip

import "fmt"

// Kind classifies the recoverable conditions the subsystem can hit.
// None of them are fatal; each degrades a channel or keeps defaults.
type Kind int

// Error kinds.
const (
	AllocationFailure Kind = iota + 1
	OptionalAllocationFailure
	MissingBus
	MissingConfig
	ReplaceFailure
)

func (k Kind) String() string {
	switch k {
	case AllocationFailure:
		return "ALLOCATION_FAILURE"
	case OptionalAllocationFailure:
		return "OPTIONAL_ALLOCATION_FAILURE"
	case MissingBus:
		return "MISSING_BUS"
	case MissingConfig:
		return "MISSING_CONFIG"
	case ReplaceFailure:
		return "REPLACE_FAILURE"
	default:
		return "UNKNOWN"
	}
}

// Error records a condition handled inside the subsystem. It is kept for
// status reporting; lifecycle hooks never return it.
type Error struct {
	Kind    Kind
	Channel int
	Bus     int
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Channel >= 0 {
		msg = fmt.Sprintf("%s: channel %d", msg, e.Channel)
	}
	if e.Bus >= 0 {
		msg = fmt.Sprintf("%s: bus %d", msg, e.Bus)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind Kind, channel, bus int, cause error) *Error {
	return &Error{Kind: kind, Channel: channel, Bus: bus, Cause: cause}
}
