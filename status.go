package transfer

// StatusKind is the context state machine:
//
//	NotInitialized -> Ready <-> Writing -> {Ready, Error}
//
// Full is entered from Ready after fullOverflowThreshold consecutive buffer
// overflows without a successful flush. Error and Full are not terminal: a
// successful caller-triggered flush restores Ready. Close returns the
// context to NotInitialized.
type StatusKind int32

const (
	StatusNotInitialized StatusKind = iota
	StatusReady
	StatusWriting
	StatusError
	StatusFull
)

func (s StatusKind) String() string {
	switch s {
	case StatusNotInitialized:
		return "not_initialized"
	case StatusReady:
		return "ready"
	case StatusWriting:
		return "writing"
	case StatusError:
		return "error"
	case StatusFull:
		return "full"
	default:
		return "unknown"
	}
}
